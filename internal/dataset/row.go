package dataset

import (
	"fmt"
	"math"
	"strconv"
)

// Row is one benchmark configuration's measurements. Columns that were not
// present in the source read as NaN.
type Row struct {
	Label  string
	values [numColumns]float64
}

func NewRow(label string, values map[Column]float64) Row {
	r := Row{Label: label}
	for i := range r.values {
		r.values[i] = math.NaN()
	}
	for c, v := range values {
		r.Set(c, v)
	}
	return r
}

func (r Row) Value(c Column) float64 {
	if !c.IsNumeric() {
		return math.NaN()
	}
	return r.values[c]
}

func (r *Row) Set(c Column, v float64) {
	if c.IsNumeric() {
		r.values[c] = v
	}
}

// Percent returns the value scaled to percent for fraction columns and
// unchanged for everything else.
func (r Row) Percent(c Column) float64 {
	v := r.Value(c)
	if c.IsFraction() {
		return v * 100
	}
	return v
}

// DisplayLabel returns the config label, or one built from the load
// dimensions in the harness format when the source had none.
func (r Row) DisplayLabel() string {
	if r.Label != "" {
		return r.Label
	}
	return fmt.Sprintf("W%s_WR%.2f_RD%s_RT%s",
		formatNumber(r.Value(NumWriters)),
		r.Value(WriterRate),
		formatNumber(r.Value(NumReaders)),
		formatNumber(r.Value(ReaderRate)))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
