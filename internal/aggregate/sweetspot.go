package aggregate

import (
	"fmt"
	"math"

	"precond-report/internal/dataset"
)

// FindSweetSpot returns the row whose metric is closest to target and its
// index in ds. target uses the metric's stored unit. Ties go to the first row.
func FindSweetSpot(ds *dataset.Dataset, metric dataset.Column, target float64) (dataset.Row, int, error) {
	if ds.Empty() {
		return dataset.Row{}, -1, dataset.ErrEmptyDataset
	}

	best := -1
	bestDist := math.Inf(1)
	for i, row := range ds.Rows {
		v := row.Value(metric)
		if math.IsNaN(v) {
			continue
		}
		if d := math.Abs(v - target); d < bestDist {
			best, bestDist = i, d
		}
	}

	if best < 0 {
		return dataset.Row{}, -1, fmt.Errorf("no %s values: %w", metric, dataset.ErrEmptyDataset)
	}
	return ds.Rows[best], best, nil
}
