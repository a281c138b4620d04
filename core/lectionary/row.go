package lectionary

import (
	"github.com/FocuswithJustin/JuniperLectionary/core/calendar"
	"github.com/FocuswithJustin/JuniperLectionary/core/normalize"
)

// Row is one extracted input row: a day heading and the raw citation cell
// of each reading slot.
type Row struct {
	Description string         `yaml:"description" json:"description"`
	Group       calendar.Group `yaml:"group,omitempty" json:"group,omitempty"`

	// Cycle overrides the cycle tag of the description when the source
	// table has a separate cycle column.
	Cycle string `yaml:"cycle,omitempty" json:"cycle,omitempty"`

	FirstReading  string `yaml:"firstReading,omitempty" json:"firstReading,omitempty"`
	Psalm         string `yaml:"psalm,omitempty" json:"psalm,omitempty"`
	SecondReading string `yaml:"secondReading,omitempty" json:"secondReading,omitempty"`
	Acclamation   string `yaml:"acclamation,omitempty" json:"acclamation,omitempty"`
	Gospel        string `yaml:"gospel,omitempty" json:"gospel,omitempty"`

	// Index and Source locate the row for log messages.
	Index  int    `yaml:"-" json:"index,omitempty"`
	Source string `yaml:"-" json:"source,omitempty"`
}

// Cell returns the raw citation text of slot s.
func (r Row) Cell(s normalize.Slot) string {
	switch s {
	case normalize.FirstReading:
		return r.FirstReading
	case normalize.Psalm:
		return r.Psalm
	case normalize.SecondReading:
		return r.SecondReading
	case normalize.Acclamation:
		return r.Acclamation
	case normalize.Gospel:
		return r.Gospel
	}
	return ""
}

// SetCell sets the raw citation text of slot s.
func (r *Row) SetCell(s normalize.Slot, text string) {
	switch s {
	case normalize.FirstReading:
		r.FirstReading = text
	case normalize.Psalm:
		r.Psalm = text
	case normalize.SecondReading:
		r.SecondReading = text
	case normalize.Acclamation:
		r.Acclamation = text
	case normalize.Gospel:
		r.Gospel = text
	}
}
