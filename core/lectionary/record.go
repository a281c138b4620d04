// Package lectionary assembles liturgical-day records from input rows: each
// row's citations are normalised per reading slot and its heading is matched
// against the day catalogue.
package lectionary

import (
	"encoding/hex"
	"encoding/json"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/JuniperLectionary/core/calendar"
	"github.com/FocuswithJustin/JuniperLectionary/core/normalize"
)

// ReadingSet holds the options of the five reading slots.
type ReadingSet struct {
	FirstReading  []normalize.ReadingOption `json:"firstReading"`
	Psalm         []normalize.ReadingOption `json:"psalm"`
	SecondReading []normalize.ReadingOption `json:"secondReading"`
	Acclamation   []normalize.ReadingOption `json:"acclamation"`
	Gospel        []normalize.ReadingOption `json:"gospel"`
}

func (rs *ReadingSet) slot(s normalize.Slot) *[]normalize.ReadingOption {
	switch s {
	case normalize.FirstReading:
		return &rs.FirstReading
	case normalize.Psalm:
		return &rs.Psalm
	case normalize.SecondReading:
		return &rs.SecondReading
	case normalize.Acclamation:
		return &rs.Acclamation
	case normalize.Gospel:
		return &rs.Gospel
	}
	return nil
}

// Get returns the options of slot s.
func (rs ReadingSet) Get(s normalize.Slot) []normalize.ReadingOption {
	if p := rs.slot(s); p != nil {
		return *p
	}
	return nil
}

// Set replaces the options of slot s.
func (rs *ReadingSet) Set(s normalize.Slot, opts []normalize.ReadingOption) {
	if p := rs.slot(s); p != nil {
		*p = opts
	}
}

// Len returns the total number of options across slots.
func (rs ReadingSet) Len() int {
	n := 0
	for _, s := range normalize.Slots() {
		n += len(rs.Get(s))
	}
	return n
}

// MarshalJSON writes empty slots as [] rather than null.
func (rs ReadingSet) MarshalJSON() ([]byte, error) {
	type plain ReadingSet
	out := plain(rs)
	for _, p := range []*[]normalize.ReadingOption{
		&out.FirstReading, &out.Psalm, &out.SecondReading, &out.Acclamation, &out.Gospel,
	} {
		if *p == nil {
			*p = []normalize.ReadingOption{}
		}
	}
	return json.Marshal(out)
}

// Record is one assembled liturgical day.
type Record struct {
	Identifier string
	Name       string
	Season     string
	Week       int
	DayOfWeek  int
	Date       string
	Rank       string
	MassType   string
	Readings   ReadingSet

	// Not serialised.
	Cycle string
	Group calendar.Group
	Row   int
	Step  calendar.Step
}

type recordJSON struct {
	Identifier string     `json:"identifier"`
	Name       string     `json:"name"`
	Season     *string    `json:"season"`
	Week       *int       `json:"week"`
	DayOfWeek  *int       `json:"dayOfWeek"`
	Date       *string    `json:"date"`
	Rank       *string    `json:"rank"`
	MassType   *string    `json:"massType"`
	Readings   ReadingSet `json:"readings"`
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullInt(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Identifier: r.Identifier,
		Name:       r.Name,
		Season:     nullString(r.Season),
		Week:       nullInt(r.Week),
		DayOfWeek:  nullInt(r.DayOfWeek),
		Date:       nullString(r.Date),
		Rank:       nullString(r.Rank),
		MassType:   nullString(r.MassType),
		Readings:   r.Readings,
	})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record{
		Identifier: raw.Identifier,
		Name:       raw.Name,
		Readings:   raw.Readings,
	}
	if raw.Season != nil {
		r.Season = *raw.Season
	}
	if raw.Week != nil {
		r.Week = *raw.Week
	}
	if raw.DayOfWeek != nil {
		r.DayOfWeek = *raw.DayOfWeek
	}
	if raw.Date != nil {
		r.Date = *raw.Date
	}
	if raw.Rank != nil {
		r.Rank = *raw.Rank
	}
	if raw.MassType != nil {
		r.MassType = *raw.MassType
	}
	return nil
}

// Digest returns the BLAKE3 hash of the record's JSON form.
func (r Record) Digest() string {
	data, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
