package lectionary

import (
	"github.com/FocuswithJustin/JuniperLectionary/core/calendar"
)

// SundayCycles holds the records of the three Sunday cycles.
type SundayCycles struct {
	A []Record `json:"A"`
	B []Record `json:"B"`
	C []Record `json:"C"`
}

// WeekdayCycles holds the records of the two weekday cycles.
type WeekdayCycles struct {
	I  []Record `json:"I"`
	II []Record `json:"II"`
}

// Lectionary is the output document, keyed by cycle and catalogue group.
type Lectionary struct {
	Sunday         SundayCycles  `json:"sunday"`
	Weekday        WeekdayCycles `json:"weekday"`
	ProperOfSaints []Record      `json:"properOfSaints"`
	Commons        []Record      `json:"commons"`
	Ritual         []Record      `json:"ritual"`
	Votive         []Record      `json:"votive"`
	Dead           []Record      `json:"dead"`
}

// New returns a Lectionary with every list empty but non-nil.
func New() *Lectionary {
	return &Lectionary{
		Sunday:         SundayCycles{A: []Record{}, B: []Record{}, C: []Record{}},
		Weekday:        WeekdayCycles{I: []Record{}, II: []Record{}},
		ProperOfSaints: []Record{},
		Commons:        []Record{},
		Ritual:         []Record{},
		Votive:         []Record{},
		Dead:           []Record{},
	}
}

// Assemble places records in a new Lectionary, keeping their order.
func Assemble(records []Record) *Lectionary {
	l := New()
	for _, r := range records {
		l.Add(r)
	}
	return l
}

// Add places r by group and cycle. A temporal record without a cycle letter
// is read every year: a weekday goes to both weekday cycles, anything else
// to all three Sunday cycles.
func (l *Lectionary) Add(r Record) {
	switch r.Group {
	case calendar.GroupProperOfSaints:
		l.ProperOfSaints = append(l.ProperOfSaints, r)
		return
	case calendar.GroupCommons:
		l.Commons = append(l.Commons, r)
		return
	case calendar.GroupRitual:
		l.Ritual = append(l.Ritual, r)
		return
	case calendar.GroupVotive:
		l.Votive = append(l.Votive, r)
		return
	case calendar.GroupDead:
		l.Dead = append(l.Dead, r)
		return
	}

	switch r.Cycle {
	case "A":
		l.Sunday.A = append(l.Sunday.A, r)
	case "B":
		l.Sunday.B = append(l.Sunday.B, r)
	case "C":
		l.Sunday.C = append(l.Sunday.C, r)
	case "I":
		l.Weekday.I = append(l.Weekday.I, r)
	case "II":
		l.Weekday.II = append(l.Weekday.II, r)
	default:
		if r.DayOfWeek >= calendar.Monday && r.DayOfWeek <= calendar.Saturday {
			l.Weekday.I = append(l.Weekday.I, r)
			l.Weekday.II = append(l.Weekday.II, r)
			return
		}
		l.Sunday.A = append(l.Sunday.A, r)
		l.Sunday.B = append(l.Sunday.B, r)
		l.Sunday.C = append(l.Sunday.C, r)
	}
}

// Records returns the placed records in group order. A record that Add put
// in several cycle lists appears once per list.
func (l *Lectionary) Records() []Record {
	var out []Record
	for _, list := range [][]Record{
		l.Sunday.A, l.Sunday.B, l.Sunday.C, l.Weekday.I, l.Weekday.II,
		l.ProperOfSaints, l.Commons, l.Ritual, l.Votive, l.Dead,
	} {
		out = append(out, list...)
	}
	return out
}

// Len returns the number of placed records.
func (l *Lectionary) Len() int {
	return len(l.Records())
}
