package input

import (
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/JuniperLectionary/core/calendar"
	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
	"github.com/FocuswithJustin/JuniperLectionary/core/lectionary"
)

// Element tests use local-name() so the XHTML default namespace does not
// need a prefix binding.
var (
	tablesExpr = xpath.MustCompile(`//*[local-name()='table']`)
	rowsExpr   = xpath.MustCompile(`.//*[local-name()='tr']`)
	cellsExpr  = xpath.MustCompile(`./*[local-name()='td' or local-name()='th']`)
	headerExpr = xpath.MustCompile(`./*[local-name()='th']`)
)

// htmlEntities are the named entities lectionary pages use that XML does
// not predefine.
var htmlEntities = strings.NewReplacer(
	"&nbsp;", "&#160;",
	"&ndash;", "&#8211;",
	"&mdash;", "&#8212;",
	"&rsquo;", "&#8217;",
	"&lsquo;", "&#8216;",
	"&rdquo;", "&#8221;",
	"&ldquo;", "&#8220;",
	"&thinsp;", "&#8201;",
)

// ReadXHTML extracts one row per table row. A row of th cells sets the
// column layout of the rows after it; tables without one use the default
// layout (description then the five slots). A table's data-group attribute
// overrides Options.Group.
func ReadXHTML(r io.Reader, opts Options) ([]lectionary.Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", opts.Source, err)
	}
	doc, err := xmlquery.Parse(strings.NewReader(htmlEntities.Replace(string(data))))
	if err != nil {
		return nil, &errors.ParseError{Format: "XHTML", Message: err.Error(), Err: err}
	}

	var rows []lectionary.Row
	for ti, table := range xmlquery.QuerySelectorAll(doc, tablesExpr) {
		group := opts.Group
		if g := table.SelectAttr("data-group"); g != "" {
			parsed, err := calendar.ParseGroup(g)
			if err != nil {
				return nil, err
			}
			group = parsed
		}

		cols := defaultColumns
		for ri, tr := range xmlquery.QuerySelectorAll(table, rowsExpr) {
			var cells []string
			for _, td := range xmlquery.QuerySelectorAll(tr, cellsExpr) {
				cells = append(cells, td.InnerText())
			}

			if len(xmlquery.QuerySelectorAll(tr, headerExpr)) == len(cells) && len(cells) > 0 {
				if layout, ok := parseHeader(cells); ok {
					cols = layout
				}
				continue
			}

			row, ok := buildRow(cells, cols)
			if !ok {
				continue
			}
			row.Group = group
			row.Index = len(rows) + 1
			row.Source = source(opts, "#table%d/row%d", ti+1, ri+1)
			rows = append(rows, row)
		}
	}
	return rows, nil
}
