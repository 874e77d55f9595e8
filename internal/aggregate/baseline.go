package aggregate

import (
	"context"
	"errors"
	"fmt"
	"math"

	"precond-report/internal/dataset"
)

var ErrDegenerateBaseline = errors.New("baseline value is zero")

type DatasetLoader interface {
	Load(ctx context.Context, id string) (*dataset.Dataset, error)
}

// LoadBaseline returns the first row of the reference dataset, or nil when the
// reference is missing or empty.
func LoadBaseline(ctx context.Context, loader DatasetLoader, id string) (*dataset.Row, error) {
	if id == "" {
		return nil, nil
	}

	ds, err := loader.Load(ctx, id)
	if errors.Is(err, dataset.ErrMissingSource) || errors.Is(err, dataset.ErrEmptyDataset) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load baseline: %w", err)
	}
	if ds.Empty() {
		return nil, nil
	}

	row := ds.Rows[0]
	return &row, nil
}

// Degradation returns the percentage change of metric in row relative to
// baseline. A zero baseline yields +Inf, -Inf or NaN together with
// ErrDegenerateBaseline.
func Degradation(row, baseline dataset.Row, metric dataset.Column) (float64, error) {
	v := row.Value(metric)
	base := baseline.Value(metric)

	if base == 0 {
		var pct float64
		switch {
		case v > 0:
			pct = math.Inf(1)
		case v < 0:
			pct = math.Inf(-1)
		default:
			pct = math.NaN()
		}
		return pct, fmt.Errorf("%s: %w", metric, ErrDegenerateBaseline)
	}

	return (v - base) / base * 100, nil
}
