package input

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
	"github.com/FocuswithJustin/JuniperLectionary/core/lectionary"
)

// ReadYAML reads a sequence of rows in the lectionary.Row field layout.
func ReadYAML(r io.Reader, opts Options) ([]lectionary.Row, error) {
	var rows []lectionary.Row
	if err := yaml.NewDecoder(r).Decode(&rows); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, &errors.ParseError{Format: "YAML", Message: err.Error(), Err: err}
	}

	for i := range rows {
		if rows[i].Group == "" {
			rows[i].Group = opts.Group
		}
		rows[i].Index = i + 1
		rows[i].Source = source(opts, "[%d]", i)
	}
	return rows, nil
}
