package dataset

import (
	"math"
	"sort"
)

// Dataset is an ordered set of rows loaded from one source. Operations that
// reorder or subset rows return copies.
type Dataset struct {
	ID      string
	Rows    []Row
	present [numColumns]bool
}

func New(id string, columns []Column, rows []Row) *Dataset {
	ds := &Dataset{ID: id, Rows: rows}
	for _, c := range columns {
		if c.Valid() {
			ds.present[c] = true
		}
	}
	return ds
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

func (d *Dataset) Empty() bool {
	return d.Len() == 0
}

// Has reports whether the source carried column c.
func (d *Dataset) Has(c Column) bool {
	return c.Valid() && d.present[c]
}

func (d *Dataset) Columns() []Column {
	var out []Column
	for c := Column(0); c < numColumns; c++ {
		if d.present[c] {
			out = append(out, c)
		}
	}
	return out
}

func (d *Dataset) Values(c Column) []float64 {
	out := make([]float64, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.Value(c)
	}
	return out
}

func (d *Dataset) Percents(c Column) []float64 {
	out := make([]float64, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.Percent(c)
	}
	return out
}

func (d *Dataset) Labels() []string {
	out := make([]string, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.Label
	}
	return out
}

// Distinct returns the sorted distinct non-NaN values of c.
func (d *Dataset) Distinct(c Column) []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, r := range d.Rows {
		v := r.Value(c)
		if math.IsNaN(v) || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

func (d *Dataset) with(rows []Row) *Dataset {
	return &Dataset{ID: d.ID, Rows: rows, present: d.present}
}

func (d *Dataset) Filter(keep func(Row) bool) *Dataset {
	var rows []Row
	for _, r := range d.Rows {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return d.with(rows)
}

// SortedBy returns a copy ordered ascending by cols, compared in order.
// Equal keys keep their source order.
func (d *Dataset) SortedBy(cols ...Column) *Dataset {
	rows := append([]Row(nil), d.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		return LessBy(rows[i], rows[j], cols)
	})
	return d.with(rows)
}

func (d *Dataset) Head(n int) *Dataset {
	if n < 0 {
		n = 0
	}
	if n > len(d.Rows) {
		n = len(d.Rows)
	}
	return d.with(append([]Row(nil), d.Rows[:n]...))
}

// LessBy compares rows lexicographically over cols. NaN sorts last.
func LessBy(a, b Row, cols []Column) bool {
	for _, c := range cols {
		av, bv := a.Value(c), b.Value(c)
		if av == bv || (math.IsNaN(av) && math.IsNaN(bv)) {
			continue
		}
		if math.IsNaN(av) {
			return false
		}
		if math.IsNaN(bv) {
			return true
		}
		return av < bv
	}
	return false
}
