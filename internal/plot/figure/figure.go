package figure

import (
	"fmt"

	"precond-report/internal/dataset"
)

// Figure is a grid of panels rendered into one image.
type Figure struct {
	Title  string
	Rows   int
	Cols   int
	Panels []Panel
}

type SeriesKind int

const (
	Line SeriesKind = iota
	LinePoints
	Scatter
)

type AxisRole int

const (
	Primary AxisRole = iota
	Secondary
)

type LineKind int

const (
	Solid LineKind = iota
	Dashed
	Dotted
)

// Series is one set of points. Points with a non-finite coordinate are not
// drawn.
type Series struct {
	Name  string
	Kind  SeriesKind
	X, Y  []float64
	Style int
	Color string
	Line  LineKind
	Axis  AxisRole

	// ColorBy colors each point on a continuous scale instead of Style.
	ColorBy   []float64
	ColorName string
	ColorMap  string
}

// Bar is one bar series. Values align with the panel's categories.
type Bar struct {
	Name   string
	Values []float64
	Style  int
	// Colors overrides the style color per category when set.
	Colors []string
}

type HLine struct {
	Y     float64
	Label string
	Color string
	Line  LineKind
}

type Annotation struct {
	X, Y float64
	Text string
}

// Heatmap is a Rows x Cols grid. NaN cells are left as background.
type Heatmap struct {
	RowValues []float64
	ColValues []float64
	Cells     [][]float64
	Min, Max  float64
	Palette   string
	Reverse   bool
	Annotate  bool
}

type Panel struct {
	Row, Col int
	// ColSpan widens the panel over neighbouring columns. Zero means one.
	ColSpan int

	Title   string
	XLabel  string
	YLabel  string
	Y2Label string

	// XColumn and YColumn pick up the column's mapped axis limits. Explicit
	// limits below take precedence. ConfigLabel leaves the axis on the data.
	XColumn dataset.Column
	YColumn dataset.Column

	XMin, XMax *float64
	YMin, YMax *float64

	// Categories turns the x axis (y axis for horizontal bars) nominal.
	Categories  []string
	TickStep    int
	Horizontal  bool
	RotateTicks bool
	Series      []Series
	Bars        []Bar
	HLines      []HLine
	Annotations []Annotation
	Heatmap     *Heatmap
	Note        string
	Legend      bool
}

func Float(v float64) *float64 {
	return &v
}

func (p Panel) Span() int {
	if p.ColSpan < 1 {
		return 1
	}
	return p.ColSpan
}

// Validate checks that every panel sits inside the grid without overlap.
func (f *Figure) Validate() error {
	if f.Rows < 1 || f.Cols < 1 {
		return fmt.Errorf("figure grid must be at least 1x1, got %dx%d", f.Rows, f.Cols)
	}
	used := make(map[[2]int]bool)
	for i, p := range f.Panels {
		if p.Row < 0 || p.Row >= f.Rows || p.Col < 0 || p.Col+p.Span() > f.Cols {
			return fmt.Errorf("panel %d (%q) is outside the %dx%d grid", i, p.Title, f.Rows, f.Cols)
		}
		for c := p.Col; c < p.Col+p.Span(); c++ {
			cell := [2]int{p.Row, c}
			if used[cell] {
				return fmt.Errorf("panel %d (%q) overlaps another panel at row %d col %d", i, p.Title, p.Row, c)
			}
			used[cell] = true
		}
		for _, b := range p.Bars {
			if len(b.Values) != len(p.Categories) {
				return fmt.Errorf("panel %d (%q): bar %q has %d values for %d categories",
					i, p.Title, b.Name, len(b.Values), len(p.Categories))
			}
		}
		for _, s := range p.Series {
			if len(s.X) != len(s.Y) {
				return fmt.Errorf("panel %d (%q): series %q has %d x and %d y values",
					i, p.Title, s.Name, len(s.X), len(s.Y))
			}
		}
	}
	return nil
}

// Panel returns the first panel with the given title.
func (f *Figure) Panel(title string) (Panel, bool) {
	for _, p := range f.Panels {
		if p.Title == title {
			return p, true
		}
	}
	return Panel{}, false
}

// Ticks returns category labels keeping every step-th and blanking the rest.
func Ticks(labels []string, step int) []string {
	if step < 1 {
		step = 1
	}
	out := make([]string, len(labels))
	for i, l := range labels {
		if i%step == 0 {
			out[i] = l
		}
	}
	return out
}

// TickStep returns a step that leaves at most max labels.
func TickStep(n, max int) int {
	if max < 1 || n <= max {
		return 1
	}
	step := n / max
	if n%max != 0 {
		step++
	}
	return step
}
