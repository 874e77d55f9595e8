package figure

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"strconv"

	"precond-report/internal/dataset"
	"precond-report/internal/plot/mappings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

type Renderer struct {
	theme  Theme
	logger *logrus.Logger
}

func NewRenderer(theme Theme, logger *logrus.Logger) *Renderer {
	return &Renderer{theme: theme, logger: logger}
}

// Save renders fig and writes it to path, replacing any existing file.
func (r *Renderer) Save(fig *Figure, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create artifact: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return r.WriteTo(fig, f)
}

func (r *Renderer) WriteTo(fig *Figure, w io.Writer) error {
	if err := fig.Validate(); err != nil {
		return fmt.Errorf("invalid figure: %w", err)
	}

	canvas, err := r.newCanvas()
	if err != nil {
		return err
	}

	if err := r.draw(fig, draw.New(canvas)); err != nil {
		return err
	}

	if _, err := canvas.WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode %s: %w", r.theme.Format, err)
	}
	return nil
}

func (r *Renderer) newCanvas() (vg.CanvasWriterTo, error) {
	t := r.theme
	switch t.Format {
	case "png", "jpg", "jpeg", "tif", "tiff":
		img := vgimg.NewWith(
			vgimg.UseWH(t.Width, t.Height),
			vgimg.UseDPI(t.DPI),
			vgimg.UseBackgroundColor(color.White),
		)
		switch t.Format {
		case "png":
			return vgimg.PngCanvas{Canvas: img}, nil
		case "jpg", "jpeg":
			return vgimg.JpegCanvas{Canvas: img}, nil
		default:
			return vgimg.TiffCanvas{Canvas: img}, nil
		}
	default:
		c, err := draw.NewFormattedCanvas(t.Width, t.Height, t.Format)
		if err != nil {
			return nil, fmt.Errorf("unsupported output format %q: %w", t.Format, err)
		}
		return c, nil
	}
}

func (r *Renderer) textStyle(size vg.Length) text.Style {
	return text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, size),
		XAlign:  draw.XCenter,
		YAlign:  draw.YTop,
		Handler: plot.DefaultTextHandler,
	}
}

func (r *Renderer) draw(fig *Figure, dc draw.Canvas) error {
	pad := r.theme.Padding
	titleH := vg.Length(0)
	if fig.Title != "" {
		titleH = r.theme.TitleSize * 2
		dc.FillText(r.textStyle(r.theme.TitleSize), vg.Point{
			X: (dc.Min.X + dc.Max.X) / 2,
			Y: dc.Max.Y - r.theme.TitleSize/2,
		}, fig.Title)
	}

	tiles := draw.Tiles{
		Rows:      fig.Rows,
		Cols:      fig.Cols,
		PadTop:    titleH + pad/2,
		PadBottom: pad,
		PadLeft:   pad,
		PadRight:  pad,
		PadX:      pad * 2,
		PadY:      pad * 2,
	}

	for _, p := range fig.Panels {
		c := panelCanvas(tiles, dc, p)

		if p.empty() {
			r.drawNote(c, p)
			continue
		}

		plt, err := r.buildPlot(p, c)
		if err != nil {
			return fmt.Errorf("panel %q: %w", p.Title, err)
		}
		plt.Draw(c)
	}
	return nil
}

func panelCanvas(tiles draw.Tiles, dc draw.Canvas, p Panel) draw.Canvas {
	first := tiles.At(dc, p.Col, p.Row)
	if p.Span() == 1 {
		return first
	}
	last := tiles.At(dc, p.Col+p.Span()-1, p.Row)
	first.Rectangle.Max.X = last.Rectangle.Max.X
	return first
}

func (p Panel) empty() bool {
	return len(p.Series) == 0 && len(p.Bars) == 0 && p.Heatmap == nil
}

func (r *Renderer) drawNote(c draw.Canvas, p Panel) {
	if p.Title != "" {
		c.FillText(r.textStyle(r.theme.PanelSize), vg.Point{
			X: (c.Min.X + c.Max.X) / 2,
			Y: c.Max.Y,
		}, p.Title)
	}
	note := p.Note
	if note == "" {
		note = "No data"
	}
	sty := r.textStyle(r.theme.PanelSize)
	sty.YAlign = draw.YCenter
	c.FillText(sty, c.Center(), note)
}

func (r *Renderer) buildPlot(p Panel, c draw.Canvas) (*plot.Plot, error) {
	plt := plot.New()
	plt.Title.Text = p.Title
	plt.Title.TextStyle.Font.Size = r.theme.PanelSize
	plt.X.Label.Text = p.XLabel
	plt.Y.Label.Text = p.YLabel
	if p.Y2Label != "" {
		plt.Y.Label.Text = p.YLabel + " / " + p.Y2Label
	}
	plt.X.Label.TextStyle.Font.Size = r.theme.FontSize
	plt.Y.Label.TextStyle.Font.Size = r.theme.FontSize
	plt.Legend.Top = true
	plt.Legend.TextStyle.Font.Size = r.theme.FontSize * 0.85

	if r.theme.Grid {
		plt.Add(plotter.NewGrid())
	}

	if p.Heatmap != nil {
		if err := r.addHeatmap(plt, p.Heatmap); err != nil {
			return nil, err
		}
	}
	if err := r.addBars(plt, p, c); err != nil {
		return nil, err
	}
	if err := r.addSeries(plt, p); err != nil {
		return nil, err
	}
	r.addHLines(plt, p)
	if err := r.addAnnotations(plt, p); err != nil {
		return nil, err
	}

	if len(p.Categories) > 0 {
		r.applyCategories(plt, p)
	}
	applyLimits(plt, p)

	if !p.Legend {
		plt.Legend = plot.NewLegend()
	}
	return plt, nil
}

func finiteXYs(xs, ys []float64) (plotter.XYs, []int) {
	var pts plotter.XYs
	var idx []int
	for i := range xs {
		if isFinite(xs[i]) && isFinite(ys[i]) {
			pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
			idx = append(idx, i)
		}
	}
	return pts, idx
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func lineDashes(k LineKind) []vg.Length {
	switch k {
	case Dashed:
		return []vg.Length{vg.Points(6), vg.Points(3)}
	case Dotted:
		return []vg.Length{vg.Points(1.5), vg.Points(2.5)}
	default:
		return nil
	}
}

func (r *Renderer) addSeries(plt *plot.Plot, p Panel) error {
	for _, s := range p.Series {
		pts, idx := finiteXYs(s.X, s.Y)
		if len(pts) == 0 {
			r.logger.WithFields(logrus.Fields{
				"panel":  p.Title,
				"series": s.Name,
			}).Debug("Series has no finite points, skipping")
			continue
		}

		style := mappings.GetSeriesStyle(s.Style)
		ls := style.ToLineStyle()
		gs := style.ToGlyphStyle()
		if s.Color != "" {
			ls.Color = mappings.Color(s.Color)
			gs.Color = ls.Color
		}
		if s.Line != Solid {
			ls.Dashes = lineDashes(s.Line)
		}

		switch s.Kind {
		case Line:
			l, err := plotter.NewLine(pts)
			if err != nil {
				return err
			}
			l.LineStyle = ls
			plt.Add(l)
			if s.Name != "" {
				plt.Legend.Add(s.Name, l)
			}
		case LinePoints:
			l, sc, err := plotter.NewLinePoints(pts)
			if err != nil {
				return err
			}
			l.LineStyle = ls
			sc.GlyphStyle = gs
			plt.Add(l, sc)
			if s.Name != "" {
				plt.Legend.Add(s.Name, l, sc)
			}
		case Scatter:
			sc, err := plotter.NewScatter(pts)
			if err != nil {
				return err
			}
			sc.GlyphStyle = gs
			if len(s.ColorBy) > 0 {
				if err := r.colorScatter(plt, sc, s, idx); err != nil {
					return err
				}
			} else if s.Name != "" {
				plt.Legend.Add(s.Name, sc)
			}
			plt.Add(sc)
		}
	}
	return nil
}

func colorMap(name string) palette.ColorMap {
	switch name {
	case "plasma":
		return moreland.ExtendedBlackBody()
	case "bluered":
		return moreland.SmoothBlueRed()
	default:
		return moreland.ExtendedKindlmann()
	}
}

type glyphThumb draw.GlyphStyle

func (g glyphThumb) Thumbnail(c *draw.Canvas) {
	c.DrawGlyph(draw.GlyphStyle(g), c.Center())
}

// colorScatter colors each point by s.ColorBy and adds legend entries for the
// scale's endpoints.
func (r *Renderer) colorScatter(plt *plot.Plot, sc *plotter.Scatter, s Series, idx []int) error {
	values := make([]float64, len(idx))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, j := range idx {
		v := math.NaN()
		if j < len(s.ColorBy) {
			v = s.ColorBy[j]
		}
		values[i] = v
		if isFinite(v) {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 0) {
		lo, hi = 0, 1
	}
	if lo == hi {
		hi = lo + 1
	}

	cmap := colorMap(s.ColorMap)
	cmap.SetMin(lo)
	cmap.SetMax(hi)

	base := sc.GlyphStyle
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		g := base
		if v := values[i]; isFinite(v) {
			if c, err := cmap.At(v); err == nil {
				g.Color = c
			}
		}
		return g
	}

	name := s.ColorName
	if name == "" {
		name = s.Name
	}
	for _, v := range []float64{lo, hi} {
		c, err := cmap.At(v)
		if err != nil {
			return fmt.Errorf("color scale: %w", err)
		}
		g := base
		g.Color = c
		plt.Legend.Add(fmt.Sprintf("%s = %s", name, formatValue(v)), glyphThumb(g))
	}
	return nil
}

func (r *Renderer) addBars(plt *plot.Plot, p Panel, c draw.Canvas) error {
	if len(p.Bars) == 0 || len(p.Categories) == 0 {
		return nil
	}

	extent := c.Max.X - c.Min.X
	if p.Horizontal {
		extent = c.Max.Y - c.Min.Y
	}
	// Leave room for axes and a gap between categories.
	width := extent * 0.7 / vg.Length(len(p.Categories)) / vg.Length(len(p.Bars))
	if width <= 0 {
		width = vg.Points(2)
	}

	for g, b := range p.Bars {
		offset := (vg.Length(g) - vg.Length(len(p.Bars)-1)/2) * width
		style := mappings.GetSeriesStyle(b.Style)
		legendAdded := false

		for i, v := range b.Values {
			if !isFinite(v) {
				continue
			}
			bc, err := plotter.NewBarChart(plotter.Values{v}, width)
			if err != nil {
				return err
			}
			bc.XMin = float64(i)
			bc.Offset = offset
			bc.Horizontal = p.Horizontal
			bc.LineStyle.Width = 0
			bc.Color = mappings.Color(style.Color)
			if i < len(b.Colors) && b.Colors[i] != "" {
				bc.Color = mappings.Color(b.Colors[i])
			}
			plt.Add(bc)

			if b.Name != "" && !legendAdded {
				plt.Legend.Add(b.Name, bc)
				legendAdded = true
			}
		}
	}
	return nil
}

func (r *Renderer) addHLines(plt *plot.Plot, p Panel) {
	for _, h := range p.HLines {
		if !isFinite(h.Y) {
			continue
		}
		y := h.Y
		fn := plotter.NewFunction(func(float64) float64 { return y })
		fn.Samples = 2
		fn.LineStyle = draw.LineStyle{
			Color:  mappings.Color(h.Color),
			Width:  vg.Points(1.25),
			Dashes: lineDashes(h.Line),
		}
		plt.Add(fn)
		if h.Label != "" {
			plt.Legend.Add(h.Label, fn)
		}

		if p.YMax == nil && y > plt.Y.Max {
			plt.Y.Max = y + math.Abs(y)*0.1
		}
		if p.YMin == nil && y < plt.Y.Min {
			plt.Y.Min = y
		}
	}
}

func (r *Renderer) addAnnotations(plt *plot.Plot, p Panel) error {
	for _, a := range p.Annotations {
		if !isFinite(a.X) || !isFinite(a.Y) {
			continue
		}
		labels, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    plotter.XYs{{X: a.X, Y: a.Y}},
			Labels: []string{a.Text},
		})
		if err != nil {
			return err
		}
		labels.Offset = vg.Point{X: vg.Points(6), Y: vg.Points(6)}
		for i := range labels.TextStyle {
			labels.TextStyle[i].Font.Size = r.theme.FontSize * 0.9
		}
		plt.Add(labels)
	}
	return nil
}

type heatGrid struct {
	h *Heatmap
}

func (g heatGrid) Dims() (c, r int)   { return len(g.h.ColValues), len(g.h.RowValues) }
func (g heatGrid) Z(c, r int) float64 { return g.h.Cells[r][c] }
func (g heatGrid) X(c int) float64    { return float64(c) }
func (g heatGrid) Y(r int) float64    { return float64(r) }
func (g heatGrid) Min() float64       { return g.h.Min }
func (g heatGrid) Max() float64       { return g.h.Max }

type colors []color.Color

func (c colors) Colors() []color.Color { return c }

func heatPalette(name string, reverse bool) (palette.Palette, error) {
	if name == "" {
		name = "RdYlGn"
	}
	p, err := brewer.GetPalette(brewer.TypeAny, name, 11)
	if err != nil {
		return nil, fmt.Errorf("failed to load palette %s: %w", name, err)
	}
	if !reverse {
		return p, nil
	}
	src := p.Colors()
	out := make(colors, len(src))
	for i, c := range src {
		out[len(src)-1-i] = c
	}
	return out, nil
}

func (r *Renderer) addHeatmap(plt *plot.Plot, h *Heatmap) error {
	if len(h.RowValues) == 0 || len(h.ColValues) == 0 {
		return nil
	}

	pal, err := heatPalette(h.Palette, h.Reverse)
	if err != nil {
		return err
	}
	cs := pal.Colors()

	hm := plotter.NewHeatMap(heatGrid{h: h}, pal)
	hm.Underflow = cs[0]
	hm.Overflow = cs[len(cs)-1]
	plt.Add(hm)

	if h.Annotate {
		var pts plotter.XYs
		var cells []string
		for ri := range h.RowValues {
			for ci := range h.ColValues {
				if v := h.Cells[ri][ci]; isFinite(v) {
					pts = append(pts, plotter.XY{X: float64(ci), Y: float64(ri)})
					cells = append(cells, strconv.FormatFloat(v, 'f', 1, 64))
				}
			}
		}
		if len(pts) > 0 {
			labels, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: cells})
			if err != nil {
				return err
			}
			for i := range labels.TextStyle {
				labels.TextStyle[i].XAlign = draw.XCenter
				labels.TextStyle[i].YAlign = draw.YCenter
				labels.TextStyle[i].Font.Size = r.theme.FontSize * 0.8
			}
			plt.Add(labels)
		}
	}

	plt.X.Tick.Marker = plot.ConstantTicks(valueTicks(h.ColValues))
	plt.Y.Tick.Marker = plot.ConstantTicks(valueTicks(h.RowValues))
	plt.X.Min, plt.X.Max = -0.5, float64(len(h.ColValues))-0.5
	plt.Y.Min, plt.Y.Max = -0.5, float64(len(h.RowValues))-0.5
	return nil
}

func valueTicks(values []float64) []plot.Tick {
	ticks := make([]plot.Tick, len(values))
	for i, v := range values {
		ticks[i] = plot.Tick{Value: float64(i), Label: formatValue(v)}
	}
	return ticks
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func (r *Renderer) applyCategories(plt *plot.Plot, p Panel) {
	labels := Ticks(p.Categories, p.TickStep)
	ticks := make([]plot.Tick, len(labels))
	for i, l := range labels {
		ticks[i] = plot.Tick{Value: float64(i), Label: l}
	}

	axis := &plt.X
	if p.Horizontal {
		axis = &plt.Y
	}
	axis.Tick.Marker = plot.ConstantTicks(ticks)
	axis.Min, axis.Max = -0.5, float64(len(labels))-0.5
	axis.Tick.Label.Font.Size = r.theme.FontSize * 0.8

	if p.RotateTicks && !p.Horizontal {
		axis.Tick.Label.Rotation = math.Pi / 4
		axis.Tick.Label.XAlign = draw.XRight
		axis.Tick.Label.YAlign = draw.YCenter
	}
}

func applyLimits(plt *plot.Plot, p Panel) {
	columnLimits(&plt.X, p.XColumn)
	columnLimits(&plt.Y, p.YColumn)

	if p.XMin != nil {
		plt.X.Min = *p.XMin
	}
	if p.XMax != nil {
		plt.X.Max = *p.XMax
	}
	if p.YMin != nil {
		plt.Y.Min = *p.YMin
	}
	if p.YMax != nil {
		plt.Y.Max = *p.YMax
	}
}

// columnLimits widens the axis to the column's mapped range. Data outside
// the range stays visible.
func columnLimits(axis *plot.Axis, c dataset.Column) {
	m, ok := mappings.GetMetricMapping(c)
	if !ok {
		return
	}
	min, minOK, max, maxOK := m.Limits()
	if minOK {
		axis.Min = math.Min(axis.Min, min)
	}
	if maxOK {
		axis.Max = math.Max(axis.Max, max)
	}
}
