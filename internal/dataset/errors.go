package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingSource = errors.New("dataset source not found")
	ErrEmptyDataset  = errors.New("dataset is empty")
)

// SchemaMismatchError names every column a report needs that the dataset lacks.
type SchemaMismatchError struct {
	Schema  string
	Dataset string
	Missing []Column
}

func (e *SchemaMismatchError) Error() string {
	names := make([]string, len(e.Missing))
	for i, c := range e.Missing {
		names[i] = c.String()
	}
	return fmt.Sprintf("dataset %s does not match %s schema: missing columns %s",
		e.Dataset, e.Schema, strings.Join(names, ", "))
}

// ParseError points at the cell that could not be decoded.
type ParseError struct {
	Dataset string
	Line    int
	Column  string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s line %d column %s: %v", e.Dataset, e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
