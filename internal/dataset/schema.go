package dataset

// Schema lists the columns a report variant reads.
type Schema struct {
	Name       string
	Dimensions []Column
	Metrics    []Column
}

func (s Schema) Columns() []Column {
	out := make([]Column, 0, len(s.Dimensions)+len(s.Metrics))
	out = append(out, s.Dimensions...)
	return append(out, s.Metrics...)
}

// Validate returns a *SchemaMismatchError naming every column ds lacks.
func (s Schema) Validate(ds *Dataset) error {
	var missing []Column
	seen := make(map[Column]bool)
	for _, c := range s.Columns() {
		if seen[c] {
			continue
		}
		seen[c] = true
		if !ds.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &SchemaMismatchError{Schema: s.Name, Dataset: ds.ID, Missing: missing}
}

// With returns a copy of s that also requires cols.
func (s Schema) With(cols ...Column) Schema {
	out := Schema{
		Name:       s.Name,
		Dimensions: append([]Column(nil), s.Dimensions...),
		Metrics:    append([]Column(nil), s.Metrics...),
	}
	for _, c := range cols {
		if c.Kind() == KindMetric {
			out.Metrics = append(out.Metrics, c)
		} else {
			out.Dimensions = append(out.Dimensions, c)
		}
	}
	return out
}
