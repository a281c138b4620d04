// Package input extracts lectionary rows from XHTML tables, TSV files and
// YAML row fixtures.
package input

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/JuniperLectionary/core/calendar"
	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
	"github.com/FocuswithJustin/JuniperLectionary/core/lectionary"
	"github.com/FocuswithJustin/JuniperLectionary/core/normalize"
)

// Format names an input file format.
type Format string

const (
	FormatXHTML Format = "xhtml"
	FormatTSV   Format = "tsv"
	FormatYAML  Format = "yaml"
)

var extensionFormats = map[string]Format{
	".xhtml": FormatXHTML,
	".html":  FormatXHTML,
	".htm":   FormatXHTML,
	".xml":   FormatXHTML,
	".tsv":   FormatTSV,
	".tab":   FormatTSV,
	".txt":   FormatTSV,
	".yaml":  FormatYAML,
	".yml":   FormatYAML,
	".json":  FormatYAML,
}

// DetectFormat returns the format of path by extension, looking through a
// trailing ".xz".
func DetectFormat(path string) (Format, error) {
	name := strings.TrimSuffix(strings.ToLower(path), ".xz")
	if f, ok := extensionFormats[filepath.Ext(name)]; ok {
		return f, nil
	}
	return "", errors.NewUnsupported("input format", filepath.Base(path))
}

// Options tune row extraction.
type Options struct {
	// Group is assigned to rows whose table does not name one.
	Group calendar.Group

	// Source prefixes Row.Source; defaults to the file name.
	Source string
}

// ReadFile reads rows from path, decompressing ".xz" files.
func ReadFile(path string, opts Options) ([]lectionary.Row, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, errors.NewIO("decompress", path, err)
		}
		r = xr
	}

	if opts.Source == "" {
		opts.Source = filepath.Base(path)
	}
	rows, err := Read(r, format, opts)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) && pe.Path == "" {
			pe.Path = path
		}
		return nil, err
	}
	return rows, nil
}

// Read reads rows in the given format.
func Read(r io.Reader, format Format, opts Options) ([]lectionary.Row, error) {
	switch format {
	case FormatXHTML:
		return ReadXHTML(r, opts)
	case FormatTSV:
		return ReadTSV(r, opts)
	case FormatYAML:
		return ReadYAML(r, opts)
	}
	return nil, errors.NewUnsupported("input format", string(format))
}

// column is what a table column holds.
type column struct {
	kind columnKind
	slot normalize.Slot
}

type columnKind int

const (
	columnIgnored columnKind = iota
	columnDescription
	columnCycle
	columnSlot
)

// defaultColumns is the layout of a table without a header row.
var defaultColumns = []column{
	{kind: columnDescription},
	{kind: columnSlot, slot: normalize.FirstReading},
	{kind: columnSlot, slot: normalize.Psalm},
	{kind: columnSlot, slot: normalize.SecondReading},
	{kind: columnSlot, slot: normalize.Acclamation},
	{kind: columnSlot, slot: normalize.Gospel},
}

// headerColumn maps a header cell to a column.
func headerColumn(name string) (column, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "description", "day", "celebration", "date", "title":
		return column{kind: columnDescription}, true
	case "cycle", "year":
		return column{kind: columnCycle}, true
	}
	if slot, err := normalize.ParseSlot(key); err == nil {
		return column{kind: columnSlot, slot: slot}, true
	}
	switch key {
	case "reading i", "1st reading":
		return column{kind: columnSlot, slot: normalize.FirstReading}, true
	case "reading ii", "2nd reading":
		return column{kind: columnSlot, slot: normalize.SecondReading}, true
	case "alleluia verse", "verse before the gospel":
		return column{kind: columnSlot, slot: normalize.Acclamation}, true
	}
	return column{}, false
}

// parseHeader returns the column layout of a header row, or false when no
// cell is recognised.
func parseHeader(cells []string) ([]column, bool) {
	cols := make([]column, len(cells))
	known := 0
	for i, c := range cells {
		if col, ok := headerColumn(c); ok {
			cols[i] = col
			known++
		}
	}
	return cols, known > 0
}

// buildRow fills a row from cells laid out as cols. It reports false for a
// row with no content.
func buildRow(cells []string, cols []column) (lectionary.Row, bool) {
	var row lectionary.Row
	empty := true
	for i, cell := range cells {
		if i >= len(cols) {
			break
		}
		text := collapse(cell)
		if text != "" {
			empty = false
		}
		switch cols[i].kind {
		case columnDescription:
			row.Description = text
		case columnCycle:
			row.Cycle = text
		case columnSlot:
			row.SetCell(cols[i].slot, text)
		}
	}
	return row, !empty
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func source(opts Options, format string, args ...any) string {
	return opts.Source + fmt.Sprintf(format, args...)
}
