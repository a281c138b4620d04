package calendar

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
	"github.com/FocuswithJustin/JuniperLectionary/core/normalize"
)

// DayDescription is the parsed form of a free-text day heading such as
// "3rd Sunday of Lent A" or "December 8 - Immaculate Conception".
type DayDescription struct {
	Raw string `json:"raw"`

	Season Season `json:"season,omitempty"`

	// Week is the week of the season, 0 when not stated.
	Week int `json:"week,omitempty"`

	// DayOfWeek uses ISO numbering (Monday = 1, Sunday = 7), 0 when not stated.
	DayOfWeek int `json:"dayOfWeek,omitempty"`

	// Cycle is one of A, B, C, I, II after expansion, empty otherwise.
	Cycle string `json:"cycle,omitempty"`

	// CycleTag is the tag as written, before expansion ("ABC").
	CycleTag string `json:"cycleTag,omitempty"`

	// MonthDay is "MM-DD" for fixed-date descriptions.
	MonthDay string `json:"monthDay,omitempty"`

	MassType string `json:"massType,omitempty"`

	FeastKeyword   string `json:"feastKeyword,omitempty"`
	IsSpecialFeast bool   `json:"isSpecialFeast,omitempty"`
}

// ForCycle returns a copy of d bound to one cycle letter.
func (d DayDescription) ForCycle(cycle string) DayDescription {
	d.Cycle = cycle
	return d
}

// Keywords returns the content words of the description, folded and
// without stopwords, numbers or cycle tags.
func (d DayDescription) Keywords() []string {
	var out []string
	seen := make(map[string]bool)
	for _, tok := range strings.Fields(normalizeText(d.Raw)) {
		if stopwords[tok] || seen[tok] || len(tok) < 2 || isNumberish(tok) {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// Title returns the heading without its trailing cycle tag.
func (d DayDescription) Title() string {
	body := strings.TrimSpace(d.Raw)
	if d.CycleTag == "" {
		return body
	}
	if m := cycleTag.FindStringSubmatchIndex(body); m != nil && body[m[2]:m[3]] == d.CycleTag {
		return strings.TrimRight(body[:m[0]], " ,;:-–—(")
	}
	return body
}

// Slug returns the folded title as an identifier ("first_sunday_of_advent").
func (d DayDescription) Slug() string {
	return strings.ReplaceAll(normalizeText(d.Title()), " ", "_")
}

type feast struct {
	phrase   string
	fragment string
	season   Season
}

// feasts maps feast names to the catalogue id fragment that identifies them.
var feasts = []feast{
	{"immaculate conception", "immaculate_conception", Advent},
	{"nativity of the lord", "nativity", Christmas},
	{"christmas", "nativity", Christmas},
	{"holy family", "holy_family", Christmas},
	{"mother of god", "mother_of_god", Christmas},
	{"epiphany", "epiphany", Christmas},
	{"baptism of the lord", "baptism_lord", Christmas},
	{"presentation of the lord", "presentation_lord", ""},
	{"ash wednesday", "ash_wednesday", Lent},
	{"annunciation", "annunciation", ""},
	{"palm sunday of the passion of the lord", "palm_sunday", HolyWeek},
	{"palm sunday", "palm_sunday", HolyWeek},
	{"passion sunday", "palm_sunday", HolyWeek},
	{"chrism mass", "chrism_mass", HolyWeek},
	{"holy thursday", "holy_thursday", HolyWeek},
	{"lord s supper", "holy_thursday", HolyWeek},
	{"good friday", "good_friday", HolyWeek},
	{"passion of the lord", "good_friday", HolyWeek},
	{"easter vigil", "easter_vigil", Easter},
	{"easter sunday", "easter_sunday", Easter},
	{"resurrection of the lord", "easter_sunday", Easter},
	{"ascension", "ascension", Easter},
	{"pentecost", "pentecost", Easter},
	{"most holy trinity", "trinity", OrdinaryTime},
	{"trinity", "trinity", OrdinaryTime},
	{"body and blood of christ", "corpus_christi", OrdinaryTime},
	{"corpus christi", "corpus_christi", OrdinaryTime},
	{"sacred heart", "sacred_heart", OrdinaryTime},
	{"christ the king", "christ_king", OrdinaryTime},
	{"transfiguration", "transfiguration", ""},
	{"assumption", "assumption", ""},
	{"all saints", "all_saints", ""},
	{"all souls", "all_souls", ""},
	{"exaltation of the holy cross", "exaltation_cross", ""},
	{"birth of saint john the baptist", "nativity_john_baptist", ""},
	{"nativity of saint john the baptist", "nativity_john_baptist", ""},
	{"saints peter and paul", "peter_paul", ""},
}

var fragmentByPhrase = map[string]string{}

func init() {
	sort.SliceStable(feasts, func(i, j int) bool {
		return len(feasts[i].phrase) > len(feasts[j].phrase)
	})
	for _, f := range feasts {
		fragmentByPhrase[f.phrase] = f.fragment
	}
}

// FeastFragment returns the catalogue id fragment of a feast keyword.
func FeastFragment(keyword string) (string, bool) {
	f, ok := fragmentByPhrase[keyword]
	return f, ok
}

// keywordMarkers make a description worth keyword matching even when no
// grammar or feast name applies.
var keywordMarkers = map[string]bool{
	"saint": true, "saints": true, "st": true, "sts": true, "blessed": true,
	"lady": true, "mary": true, "lord": true, "feast": true, "solemnity": true,
	"memorial": true, "mass": true, "masses": true, "common": true, "commons": true,
	"ritual": true, "votive": true, "dead": true, "funeral": true, "marriage": true,
	"wedding": true, "confirmation": true, "baptism": true, "ordination": true,
	"dedication": true, "martyr": true, "martyrs": true, "apostle": true,
	"apostles": true, "virgin": true, "pastor": true, "pastors": true,
	"doctor": true, "religious": true, "holy": true,
}

var stopwords = map[string]bool{
	"of": true, "the": true, "in": true, "and": true, "for": true, "on": true,
	"at": true, "to": true, "after": true, "before": true, "during": true,
	"week": true, "year": true, "cycle": true, "day": true, "mass": true,
	"st": true, "abc": true, "ii": true,
}

const ordinalPattern = `(\d{1,2}(?:st|nd|rd|th)?|(?:twenty |thirty )?(?:first|second|third|fourth|fifth|sixth|seventh|eighth|ninth)|tenth|eleventh|twelfth|thirteenth|fourteenth|fifteenth|sixteenth|seventeenth|eighteenth|nineteenth|twentieth|thirtieth)`

const seasonPattern = `(ordinary time|christmastide|eastertide|holy week|christmas|ordinary|advent|easter|lent)`

const weekdayPattern = `(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`

var (
	cycleTag = regexp.MustCompile(`(?:\(\s*|\b(?:[Yy]ear|[Cc]ycle)\s+)?\b(ABC|AB|AC|BC|A|B|C|II|I)\s*\)?\s*$`)

	sundayGrammar  = regexp.MustCompile(`\b` + ordinalPattern + ` sunday (?:of|in|after) (?:the )?` + seasonPattern + `\b`)
	weekdayGrammar = regexp.MustCompile(`\b` + weekdayPattern + ` (?:of|in|after) (?:the )?(?:` + ordinalPattern + ` week|week (\d{1,2})) (?:of|in|after) (?:the )?` + seasonPattern + `\b`)
	tableGrammar   = regexp.MustCompile(`\b` + seasonPattern + ` week (\d{1,2}) ` + weekdayPattern + `\b`)

	numericDate = regexp.MustCompile(`^\s*(\d{1,2})[-/](\d{1,2})\b`)
	namedDate   = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december|sept|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec) (\d{1,2})\b`)

	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

	massPatterns = []struct {
		re   *regexp.Regexp
		mass string
	}{
		{regexp.MustCompile(`\bvigil\b`), MassVigil},
		{regexp.MustCompile(`\b(?:at )?night\b|\bmidnight\b`), MassNight},
		{regexp.MustCompile(`\bdawn\b`), MassDawn},
		{regexp.MustCompile(`\b(?:during the|mass of the) day\b`), MassDay},
		{regexp.MustCompile(`\bprocession\b`), MassProcession},
		{regexp.MustCompile(`\bevening\b`), MassEvening},
	}
)

// normalizeText folds case and accents and reduces punctuation to spaces.
func normalizeText(s string) string {
	return strings.TrimSpace(nonAlnum.ReplaceAllString(normalize.FoldKey(s), " "))
}

// ParseDescription parses a day heading. Text that names no season, feast,
// date or other liturgical marker is a MalformedDescriptionError.
func ParseDescription(text string) (DayDescription, error) {
	d := DayDescription{Raw: text}
	body := strings.TrimSpace(text)
	if body == "" {
		return d, errors.NewMalformed(text, "empty description")
	}

	if m := cycleTag.FindStringSubmatchIndex(body); m != nil {
		tag := body[m[2]:m[3]]
		prefixed := m[0] != m[2]
		// A bare trailing I or II is more often a regnal number ("John Paul II").
		if prefixed || (tag != "I" && tag != "II") {
			d.CycleTag = tag
			body = strings.TrimRight(body[:m[0]], " ,;:-–—(")
		}
	}

	if m := numericDate.FindStringSubmatch(body); m != nil {
		d.MonthDay = monthDay(atoi(m[1]), atoi(m[2]))
	}

	norm := normalizeText(body)
	if norm == "" {
		return d, errors.NewMalformed(text, "no words")
	}
	if d.MonthDay == "" {
		if m := namedDate.FindStringSubmatch(norm); m != nil {
			d.MonthDay = monthDay(monthNames[m[1]], atoi(m[2]))
		}
	}

	for _, mp := range massPatterns {
		if mp.re.MatchString(norm) {
			d.MassType = mp.mass
			break
		}
	}

	grammar := true
	switch {
	case sundayGrammar.MatchString(norm):
		m := sundayGrammar.FindStringSubmatch(norm)
		d.Week = parseOrdinal(m[1])
		d.DayOfWeek = Sunday
		d.Season = seasonOf(m[2])
	case weekdayGrammar.MatchString(norm):
		m := weekdayGrammar.FindStringSubmatch(norm)
		d.DayOfWeek = weekdayNames[m[1]]
		if m[2] != "" {
			d.Week = parseOrdinal(m[2])
		} else {
			d.Week = atoi(m[3])
		}
		d.Season = seasonOf(m[4])
	case tableGrammar.MatchString(norm):
		m := tableGrammar.FindStringSubmatch(norm)
		d.Season = seasonOf(m[1])
		d.Week = atoi(m[2])
		d.DayOfWeek = weekdayNames[m[3]]
	default:
		grammar = false
	}
	if grammar {
		return d, nil
	}

	padded := " " + norm + " "
	for _, f := range feasts {
		if strings.Contains(padded, " "+f.phrase+" ") {
			d.FeastKeyword = f.phrase
			d.IsSpecialFeast = true
			d.Season = f.season
			return d, nil
		}
	}

	for _, w := range seasonWords {
		if strings.Contains(padded, " "+w.phrase+" ") {
			d.Season = w.season
			break
		}
	}
	marked := false
	for _, tok := range strings.Fields(norm) {
		if keywordMarkers[tok] {
			marked = true
			break
		}
	}
	if d.Season == "" && d.MonthDay == "" && !marked {
		return d, errors.NewMalformed(text, "no season, feast or date")
	}
	d.FeastKeyword = norm
	return d, nil
}

// ExpandCycles turns a cycle tag into the cycle letters it covers. "ABC"
// expands to all three Sunday cycles; partial tags such as "AB" are rejected.
func ExpandCycles(tag string) ([]string, error) {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case "":
		return []string{""}, nil
	case "A", "B", "C", "I", "II":
		return []string{strings.ToUpper(strings.TrimSpace(tag))}, nil
	case "ABC":
		return []string{"A", "B", "C"}, nil
	default:
		return nil, errors.NewMalformed(tag, "partial cycle tag")
	}
}

func seasonOf(phrase string) Season {
	s, _ := ParseSeason(phrase)
	return s
}

func parseOrdinal(s string) int {
	s = strings.TrimSpace(s)
	digits := strings.TrimRight(s, "stndrh")
	if n, err := strconv.Atoi(digits); err == nil {
		return n
	}
	base := 0
	switch {
	case strings.HasPrefix(s, "twenty "):
		base, s = 20, strings.TrimPrefix(s, "twenty ")
	case strings.HasPrefix(s, "thirty "):
		base, s = 30, strings.TrimPrefix(s, "thirty ")
	}
	return base + ordinalWords[s]
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func monthDay(month, day int) string {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	return fmt.Sprintf("%02d-%02d", month, day)
}

func isNumberish(tok string) bool {
	if _, ok := ordinalWords[tok]; ok {
		return true
	}
	return strings.TrimLeft(tok, "0123456789") != tok
}
