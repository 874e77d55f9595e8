package aggregate

import (
	"math"

	"precond-report/internal/dataset"
)

// PivotTable is a Rows x Cols grid of metric means. Combinations with no
// matching rows hold NaN.
type PivotTable struct {
	RowDim dataset.Column
	ColDim dataset.Column
	Metric dataset.Column
	Rows   []float64
	Cols   []float64
	Cells  [][]float64
}

func Pivot(ds *dataset.Dataset, rowDim, colDim, metric dataset.Column) *PivotTable {
	grouped := GroupBy(ds, []dataset.Column{rowDim, colDim}, []dataset.Column{metric})

	p := &PivotTable{
		RowDim: rowDim,
		ColDim: colDim,
		Metric: metric,
		Rows:   ds.Distinct(rowDim),
		Cols:   ds.Distinct(colDim),
	}

	rowIdx := indexOf(p.Rows)
	colIdx := indexOf(p.Cols)

	p.Cells = make([][]float64, len(p.Rows))
	for i := range p.Cells {
		p.Cells[i] = make([]float64, len(p.Cols))
		for j := range p.Cells[i] {
			p.Cells[i][j] = math.NaN()
		}
	}

	for _, g := range grouped.Groups {
		p.Cells[rowIdx[g.Key[0]]][colIdx[g.Key[1]]] = g.Mean(metric)
	}
	return p
}

func indexOf(values []float64) map[float64]int {
	m := make(map[float64]int, len(values))
	for i, v := range values {
		m[v] = i
	}
	return m
}

func (p *PivotTable) At(r, c int) float64 {
	return p.Cells[r][c]
}

func (p *PivotTable) Defined(r, c int) bool {
	return !math.IsNaN(p.Cells[r][c])
}

// Scale returns a copy with every cell multiplied by f.
func (p *PivotTable) Scale(f float64) *PivotTable {
	out := *p
	out.Rows = append([]float64(nil), p.Rows...)
	out.Cols = append([]float64(nil), p.Cols...)
	out.Cells = make([][]float64, len(p.Cells))
	for i, row := range p.Cells {
		out.Cells[i] = make([]float64, len(row))
		for j, v := range row {
			out.Cells[i][j] = v * f
		}
	}
	return &out
}
