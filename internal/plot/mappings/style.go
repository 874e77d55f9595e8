package mappings

import (
	"image/color"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

type PlotStyle struct {
	Color     string
	LineStyle string
	LineWidth string
	Mark      string
}

var SeriesStyles = []PlotStyle{
	// First 8: solid lines with distinct markers
	{Color: "blue", LineStyle: "solid", LineWidth: "thick", Mark: "circle"},
	{Color: "orange", LineStyle: "solid", LineWidth: "thick", Mark: "square"},
	{Color: "green", LineStyle: "solid", LineWidth: "thick", Mark: "triangle"},
	{Color: "red", LineStyle: "solid", LineWidth: "thick", Mark: "pyramid"},
	{Color: "purple", LineStyle: "solid", LineWidth: "thick", Mark: "cross"},
	{Color: "brown", LineStyle: "solid", LineWidth: "thick", Mark: "plus"},
	{Color: "magenta", LineStyle: "solid", LineWidth: "thick", Mark: "ring"},
	{Color: "cyan", LineStyle: "solid", LineWidth: "thick", Mark: "box"},

	// Next 8: dashed lines for larger groupings
	{Color: "blue", LineStyle: "dashed", LineWidth: "thick", Mark: "square"},
	{Color: "orange", LineStyle: "dashed", LineWidth: "thick", Mark: "circle"},
	{Color: "green", LineStyle: "dashed", LineWidth: "thick", Mark: "pyramid"},
	{Color: "red", LineStyle: "dashed", LineWidth: "thick", Mark: "triangle"},
	{Color: "purple", LineStyle: "dashed", LineWidth: "thick", Mark: "plus"},
	{Color: "brown", LineStyle: "dashed", LineWidth: "thick", Mark: "cross"},
	{Color: "magenta", LineStyle: "dashed", LineWidth: "thick", Mark: "box"},
	{Color: "cyan", LineStyle: "dashed", LineWidth: "thick", Mark: "ring"},
}

func GetSeriesStyle(index int) PlotStyle {
	if index < 0 {
		index = 0
	}
	return SeriesStyles[index%len(SeriesStyles)]
}

var namedColors = map[string]color.RGBA{
	"black":   {0x00, 0x00, 0x00, 0xff},
	"gray":    {0x80, 0x80, 0x80, 0xff},
	"blue":    {0x1f, 0x77, 0xb4, 0xff},
	"orange":  {0xff, 0x7f, 0x0e, 0xff},
	"green":   {0x2c, 0xa0, 0x2c, 0xff},
	"red":     {0xd6, 0x27, 0x28, 0xff},
	"purple":  {0x94, 0x67, 0xbd, 0xff},
	"brown":   {0x8c, 0x56, 0x4b, 0xff},
	"magenta": {0xe3, 0x77, 0xc2, 0xff},
	"cyan":    {0x17, 0xbe, 0xcf, 0xff},
	"olive":   {0xbc, 0xbd, 0x22, 0xff},
	"steel":   {0x46, 0x82, 0xb4, 0xff},
	"coral":   {0xf0, 0x80, 0x80, 0xff},
}

// Color resolves a style color name. Unknown names are black.
func Color(name string) color.Color {
	if c, ok := namedColors[name]; ok {
		return c
	}
	return color.Black
}

func (ps PlotStyle) Dashes() []vg.Length {
	switch ps.LineStyle {
	case "dashed":
		return []vg.Length{vg.Points(6), vg.Points(3)}
	case "dotted":
		return []vg.Length{vg.Points(1.5), vg.Points(2.5)}
	case "dashdotted":
		return []vg.Length{vg.Points(6), vg.Points(2), vg.Points(1.5), vg.Points(2)}
	default:
		return nil
	}
}

func (ps PlotStyle) Width() vg.Length {
	switch ps.LineWidth {
	case "thin":
		return vg.Points(0.75)
	case "very thick":
		return vg.Points(2.5)
	default:
		return vg.Points(1.5)
	}
}

func (ps PlotStyle) ToLineStyle() draw.LineStyle {
	return draw.LineStyle{
		Color:  Color(ps.Color),
		Width:  ps.Width(),
		Dashes: ps.Dashes(),
	}
}

func (ps PlotStyle) Shape() draw.GlyphDrawer {
	switch ps.Mark {
	case "square":
		return draw.SquareGlyph{}
	case "triangle":
		return draw.TriangleGlyph{}
	case "pyramid":
		return draw.PyramidGlyph{}
	case "cross":
		return draw.CrossGlyph{}
	case "plus":
		return draw.PlusGlyph{}
	case "ring":
		return draw.RingGlyph{}
	case "box":
		return draw.BoxGlyph{}
	default:
		return draw.CircleGlyph{}
	}
}

func (ps PlotStyle) ToGlyphStyle() draw.GlyphStyle {
	return draw.GlyphStyle{
		Color:  Color(ps.Color),
		Radius: vg.Points(3),
		Shape:  ps.Shape(),
	}
}
