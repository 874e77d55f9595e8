package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Table is the raw cell grid every source produces before decoding.
type Table struct {
	Header  []string
	Records [][]string
	// Lines holds the source line each record starts on. Sources without
	// lines leave it nil.
	Lines []int
}

func ReadTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := &Table{Header: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read records: %w", err)
		}
		line, _ := reader.FieldPos(0)
		t.Records = append(t.Records, record)
		t.Lines = append(t.Lines, line)
	}
	return t, nil
}

var errFractionRange = errors.New("fraction outside [0,1]")

// Decode converts t into a Dataset. Unknown header names are skipped, empty
// cells read as NaN and fraction columns must lie in [0,1].
func Decode(id string, t *Table) (*Dataset, error) {
	if t == nil || len(t.Records) == 0 {
		return nil, fmt.Errorf("%s: %w", id, ErrEmptyDataset)
	}

	index := make(map[Column]int)
	var columns []Column
	for i, name := range t.Header {
		c, err := ParseColumn(strings.TrimSpace(name))
		if err != nil {
			continue
		}
		if _, dup := index[c]; dup {
			continue
		}
		index[c] = i
		columns = append(columns, c)
	}

	rows := make([]Row, 0, len(t.Records))
	for n, record := range t.Records {
		line := t.line(n)
		row := NewRow("", nil)
		for _, c := range columns {
			i := index[c]
			if i >= len(record) {
				continue
			}
			cell := strings.TrimSpace(record[i])
			if c == ConfigLabel {
				row.Label = cell
				continue
			}
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, &ParseError{Dataset: id, Line: line, Column: c.String(), Err: err}
			}
			if c.IsFraction() && !math.IsNaN(v) && (v < 0 || v > 1) {
				return nil, &ParseError{Dataset: id, Line: line, Column: c.String(),
					Err: fmt.Errorf("%w: %v", errFractionRange, v)}
			}
			row.Set(c, v)
		}
		rows = append(rows, row)
	}

	return New(id, columns, rows), nil
}

// line returns the source line of record n, counting the header as line 1
// when the source did not record positions.
func (t *Table) line(n int) int {
	if n < len(t.Lines) {
		return t.Lines[n]
	}
	return n + 2
}
