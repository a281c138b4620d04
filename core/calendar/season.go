package calendar

import "strings"

// Season is a liturgical season tag as used in catalogue entries.
type Season string

const (
	Advent       Season = "ADVENT"
	Christmas    Season = "CHRISTMAS"
	Lent         Season = "LENT"
	HolyWeek     Season = "HOLY_WEEK"
	Easter       Season = "EASTER"
	OrdinaryTime Season = "ORDINARY_TIME"
)

// seasonWords maps folded season phrases to seasons, longest first so
// "ordinary time" wins over "ordinary".
var seasonWords = []struct {
	phrase string
	season Season
}{
	{"ordinary time", OrdinaryTime},
	{"christmastide", Christmas},
	{"eastertide", Easter},
	{"holy week", HolyWeek},
	{"christmas", Christmas},
	{"ordinary", OrdinaryTime},
	{"advent", Advent},
	{"easter", Easter},
	{"lent", Lent},
}

// ParseSeason maps a season name ("Advent", "ordinary time", "EASTER") to a
// Season.
func ParseSeason(s string) (Season, bool) {
	key := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "_", " ")))
	for _, w := range seasonWords {
		if key == w.phrase {
			return w.season, true
		}
	}
	return "", false
}

// EqualFold reports whether a catalogue season string names s.
func (s Season) EqualFold(other string) bool {
	if strings.EqualFold(string(s), other) {
		return true
	}
	parsed, ok := ParseSeason(other)
	return ok && parsed == s
}

// Days of the week, ISO numbering. Zero means unknown.
const (
	Monday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = map[string]int{
	"monday":    Monday,
	"tuesday":   Tuesday,
	"wednesday": Wednesday,
	"thursday":  Thursday,
	"friday":    Friday,
	"saturday":  Saturday,
	"sunday":    Sunday,
}

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"eleventh": 11, "twelfth": 12, "thirteenth": 13, "fourteenth": 14,
	"fifteenth": 15, "sixteenth": 16, "seventeenth": 17, "eighteenth": 18,
	"nineteenth": 19, "twentieth": 20, "thirtieth": 30,
}

var monthNames = map[string]int{
	"january": 1, "jan": 1, "february": 2, "feb": 2, "march": 3, "mar": 3,
	"april": 4, "apr": 4, "may": 5, "june": 6, "jun": 6, "july": 7, "jul": 7,
	"august": 8, "aug": 8, "september": 9, "sep": 9, "sept": 9,
	"october": 10, "oct": 10, "november": 11, "nov": 11, "december": 12, "dec": 12,
}

// Mass types recognised in descriptions.
const (
	MassVigil      = "vigil"
	MassNight      = "night"
	MassDawn       = "dawn"
	MassDay        = "day"
	MassProcession = "procession"
	MassEvening    = "evening"
)
