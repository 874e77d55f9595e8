package figure

import (
	"strings"

	"precond-report/internal/config"

	"gonum.org/v1/plot/vg"
)

// Theme holds the render settings shared by every report of a run. It is
// built once and passed by value.
type Theme struct {
	Width     vg.Length
	Height    vg.Length
	DPI       int
	Format    string
	TitleSize vg.Length
	PanelSize vg.Length
	FontSize  vg.Length
	Padding   vg.Length
	Grid      bool
}

func NewTheme(out config.OutputConfig) Theme {
	return Theme{
		Width:     vg.Length(out.WidthIn) * vg.Inch,
		Height:    vg.Length(out.HeightIn) * vg.Inch,
		DPI:       out.DPI,
		Format:    strings.ToLower(out.Format),
		TitleSize: vg.Points(16),
		PanelSize: vg.Points(12),
		FontSize:  vg.Points(10),
		Padding:   vg.Points(14),
		Grid:      true,
	}
}
