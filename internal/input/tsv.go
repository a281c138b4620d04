package input

import (
	"encoding/csv"
	"io"

	"github.com/FocuswithJustin/JuniperLectionary/core/calendar"
	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
	"github.com/FocuswithJustin/JuniperLectionary/core/lectionary"
)

// ReadTSV reads tab-separated rows. The first line is a header naming the
// columns; a "group" column sets the group per row.
func ReadTSV(r io.Reader, opts Options) ([]lectionary.Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, &errors.ParseError{Format: "TSV", Message: err.Error(), Err: err}
	}

	cols, ok := parseHeader(header)
	if !ok {
		return nil, errors.NewParse("TSV", opts.Source, "header names no known column")
	}
	groupCol := -1
	for i, h := range header {
		if collapse(h) == "group" {
			groupCol = i
		}
	}

	var rows []lectionary.Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &errors.ParseError{Format: "TSV", Message: err.Error(), Err: err}
		}

		row, ok := buildRow(rec, cols)
		if !ok {
			continue
		}
		row.Group = opts.Group
		if groupCol >= 0 && groupCol < len(rec) && collapse(rec[groupCol]) != "" {
			g, err := calendar.ParseGroup(rec[groupCol])
			if err != nil {
				return nil, err
			}
			row.Group = g
		}
		row.Index = len(rows) + 1
		line, _ := cr.FieldPos(0)
		row.Source = source(opts, ":%d", line)
		rows = append(rows, row)
	}
	return rows, nil
}
