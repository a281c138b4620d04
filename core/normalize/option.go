package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
)

// Slot names one of the five reading positions of a liturgical day.
type Slot int

const (
	FirstReading Slot = iota
	Psalm
	SecondReading
	Acclamation
	Gospel
)

var slotNames = [...]string{"firstReading", "psalm", "secondReading", "acclamation", "gospel"}

// Slots lists every slot in reading order.
func Slots() []Slot {
	return []Slot{FirstReading, Psalm, SecondReading, Acclamation, Gospel}
}

func (s Slot) String() string {
	if s < 0 || int(s) >= len(slotNames) {
		return fmt.Sprintf("Slot(%d)", int(s))
	}
	return slotNames[s]
}

// ParseSlot accepts the slot names used in output records plus a few
// common spellings ("reading1", "gospel_acclamation").
func ParseSlot(name string) (Slot, error) {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(name))
	switch key {
	case "firstreading", "reading1", "first":
		return FirstReading, nil
	case "psalm", "responsorialpsalm", "ps":
		return Psalm, nil
	case "secondreading", "reading2", "second":
		return SecondReading, nil
	case "acclamation", "gospelacclamation", "alleluia":
		return Acclamation, nil
	case "gospel":
		return Gospel, nil
	}
	return 0, errors.NewValidation("slot", fmt.Sprintf("unknown reading slot %q", name))
}

// explicitPlaceholder reports whether the slot records "no biblical
// reference" as a placeholder option instead of an empty list.
func (s Slot) explicitPlaceholder() bool {
	return s == FirstReading || s == Acclamation
}

// Qualifiers, in the order they appear in a note.
const (
	NoteOptional    = "optional"
	NoteCf          = "cf."
	NoteShortForm   = "short form"
	NoteAlternative = "alternative/option"
	NoteNoReference = "no biblical reference"
)

// ReadingOption is one canonical citation for a slot.
type ReadingOption struct {
	CanonicalCode string
	StandardText  string
	Note          string

	// Cleaned is the candidate text handed to the parser.
	Cleaned string
}

// IsPlaceholder reports whether o is the explicit no-reference marker.
func (o ReadingOption) IsPlaceholder() bool {
	return o.CanonicalCode == "" && o.Note == NoteNoReference
}

type readingOptionJSON struct {
	ReferenceCanonical *string `json:"referenceCanonical"`
	ReferenceStandard  *string `json:"referenceStandard"`
	Note               *string `json:"note"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// MarshalJSON writes empty fields as null.
func (o ReadingOption) MarshalJSON() ([]byte, error) {
	return json.Marshal(readingOptionJSON{
		ReferenceCanonical: nullable(o.CanonicalCode),
		ReferenceStandard:  nullable(o.StandardText),
		Note:               nullable(o.Note),
	})
}

func (o *ReadingOption) UnmarshalJSON(data []byte) error {
	var raw readingOptionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.CanonicalCode = deref(raw.ReferenceCanonical)
	o.StandardText = deref(raw.ReferenceStandard)
	o.Note = deref(raw.Note)
	return nil
}

// qualifiers collects the notes of one candidate before they are joined.
type qualifiers struct {
	optional bool
	cf       bool
	short    bool
	citedIn  string
	title    string
}

func (q qualifiers) note(alternative bool) string {
	var parts []string
	if q.optional {
		parts = append(parts, NoteOptional)
	}
	if q.cf {
		parts = append(parts, NoteCf)
	}
	if q.short {
		parts = append(parts, NoteShortForm)
	} else if alternative {
		parts = append(parts, NoteAlternative)
	}
	if q.citedIn != "" {
		parts = append(parts, q.citedIn)
	}
	if q.title != "" {
		parts = append(parts, q.title)
	}
	return strings.Join(parts, "; ")
}
