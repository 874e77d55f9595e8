package aggregate

import (
	"math"
	"sort"

	"precond-report/internal/dataset"

	"gonum.org/v1/gonum/stat"
)

type Group struct {
	Key   []float64
	Count int
	means map[dataset.Column]float64
}

// Mean returns the group mean of c, NaN when c was not aggregated or every
// value was missing.
func (g Group) Mean(c dataset.Column) float64 {
	v, ok := g.means[c]
	if !ok {
		return math.NaN()
	}
	return v
}

type Grouped struct {
	Keys    []dataset.Column
	Metrics []dataset.Column
	Groups  []Group
}

func (g *Grouped) Len() int {
	return len(g.Groups)
}

// Means returns the mean of c for every group in order.
func (g *Grouped) Means(c dataset.Column) []float64 {
	out := make([]float64, len(g.Groups))
	for i, grp := range g.Groups {
		out[i] = grp.Mean(c)
	}
	return out
}

// KeyValues returns the i-th key component for every group in order.
func (g *Grouped) KeyValues(i int) []float64 {
	out := make([]float64, len(g.Groups))
	for j, grp := range g.Groups {
		out[j] = grp.Key[i]
	}
	return out
}

// GroupBy partitions ds by the tuple of keys and averages metrics within each
// partition. Groups are ordered ascending over keys, compared in the order
// given. Rows with a missing key value are dropped. NaN metric values are
// skipped when averaging.
func GroupBy(ds *dataset.Dataset, keys, metrics []dataset.Column) *Grouped {
	type bucket struct {
		key    []float64
		values map[dataset.Column][]float64
		count  int
	}

	buckets := make(map[string]*bucket)
	var order []*bucket

	for _, row := range ds.Rows {
		key := make([]float64, len(keys))
		missing := false
		for i, c := range keys {
			key[i] = row.Value(c)
			if math.IsNaN(key[i]) {
				missing = true
			}
		}
		if missing {
			continue
		}

		id := keyString(key)
		b, ok := buckets[id]
		if !ok {
			b = &bucket{key: key, values: make(map[dataset.Column][]float64)}
			buckets[id] = b
			order = append(order, b)
		}
		b.count++
		for _, m := range metrics {
			if v := row.Value(m); !math.IsNaN(v) {
				b.values[m] = append(b.values[m], v)
			}
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return lessKey(order[i].key, order[j].key)
	})

	out := &Grouped{
		Keys:    append([]dataset.Column(nil), keys...),
		Metrics: append([]dataset.Column(nil), metrics...),
		Groups:  make([]Group, 0, len(order)),
	}
	for _, b := range order {
		g := Group{Key: b.key, Count: b.count, means: make(map[dataset.Column]float64, len(metrics))}
		for _, m := range metrics {
			if vals := b.values[m]; len(vals) > 0 {
				g.means[m] = stat.Mean(vals, nil)
			} else {
				g.means[m] = math.NaN()
			}
		}
		out.Groups = append(out.Groups, g)
	}
	return out
}

func keyString(key []float64) string {
	b := make([]byte, 0, len(key)*8)
	for _, v := range key {
		bits := math.Float64bits(v)
		// -0 and +0 group together
		if v == 0 {
			bits = 0
		}
		for i := 0; i < 8; i++ {
			b = append(b, byte(bits>>(8*i)))
		}
	}
	return string(b)
}

func lessKey(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
