package calendar

import (
	"context"
	"strings"

	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
	"github.com/FocuswithJustin/JuniperLectionary/internal/logging"
)

// Step names the matching rule that produced a Match.
type Step string

const (
	StepIdentifier Step = "identifier"
	StepDate       Step = "date"
	StepExact      Step = "exact"
	StepSeasonWeek Step = "season_week"
	StepKeyword    Step = "keyword"
)

// Fallback reports whether the step is one of the heuristic ones.
func (s Step) Fallback() bool {
	return s == StepSeasonWeek || s == StepKeyword
}

// Match is a resolved catalogue entry.
type Match struct {
	Entry Entry `json:"entry"`
	Step  Step  `json:"step"`
	Score int   `json:"score,omitempty"`
}

// Matcher resolves day descriptions against a catalogue. It holds no mutable
// state and is safe for concurrent use.
type Matcher struct {
	catalogue *Catalogue
	dates     DateIndex
}

// NewMatcher returns a Matcher whose date step uses the catalogue's own
// fixed-date entries.
func NewMatcher(c *Catalogue) *Matcher {
	return &Matcher{catalogue: c, dates: c}
}

// WithDateIndex returns a copy of m using idx for the date step.
func (m *Matcher) WithDateIndex(idx DateIndex) *Matcher {
	return &Matcher{catalogue: m.catalogue, dates: idx}
}

// Catalogue returns the catalogue the matcher searches.
func (m *Matcher) Catalogue() *Catalogue {
	return m.catalogue
}

// Match tries, in order: the feast identifier table, the month-day, season +
// week + day-of-week + cycle, the same without cycle, and keyword scoring.
// The first step that finds an entry wins. No match is a NoMatchError.
func (m *Matcher) Match(ctx context.Context, d DayDescription) (Match, error) {
	res, ok := m.match(d)
	if !ok {
		return Match{}, &errors.NoMatchError{Description: d.Raw}
	}

	switch res.Step {
	case StepKeyword:
		logging.FallbackMatch(ctx, d.Raw, res.Entry.ID, res.Score, "cycle", d.Cycle)
	case StepSeasonWeek:
		logging.FallbackMatch(ctx, d.Raw, res.Entry.ID, 0, "step", string(res.Step), "cycle", d.Cycle)
	default:
		logging.MatchResult(ctx, d.Raw, res.Entry.ID, string(res.Step))
	}
	return res, nil
}

func (m *Matcher) match(d DayDescription) (Match, bool) {
	entries := m.catalogue.entries

	if fragment, ok := FeastFragment(d.FeastKeyword); ok {
		for _, e := range entries {
			if strings.Contains(e.ID, fragment) && cycleCompatible(e, d) {
				return Match{Entry: e, Step: StepIdentifier}, true
			}
		}
	}

	if d.MonthDay != "" && m.dates != nil {
		if e, ok := m.dates.OnDate(d.MonthDay); ok {
			return Match{Entry: e, Step: StepDate}, true
		}
	}

	if d.Season != "" && d.Week > 0 {
		// Entries naming the weekday win over entries that leave it out.
		for _, loose := range []bool{false, true} {
			if d.Cycle == "" {
				break
			}
			for _, e := range entries {
				if seasonWeekDay(e, d, loose) && strings.EqualFold(e.Cycle, d.Cycle) {
					return Match{Entry: e, Step: StepExact}, true
				}
			}
		}
		for _, loose := range []bool{false, true} {
			for _, e := range entries {
				if seasonWeekDay(e, d, loose) {
					return Match{Entry: e, Step: StepSeasonWeek}, true
				}
			}
		}
	}

	return m.score(d)
}

// seasonWeekDay compares season, week and weekday. With loose set, an entry
// without a weekday accepts any.
func seasonWeekDay(e Entry, d DayDescription, loose bool) bool {
	if !d.Season.EqualFold(e.Season) || e.Week != d.Week {
		return false
	}
	return d.DayOfWeek == 0 || e.DayOfWeek == d.DayOfWeek || (loose && e.DayOfWeek == 0)
}

// cycleCompatible lets an identifier match skip entries bound to another
// cycle ("palm_sunday_b" for a cycle A row).
func cycleCompatible(e Entry, d DayDescription) bool {
	return e.Cycle == "" || d.Cycle == "" || strings.EqualFold(e.Cycle, d.Cycle)
}

// score ranks entries by keyword overlap: one point per keyword in the id,
// two per keyword in the name. Ties keep catalogue order.
func (m *Matcher) score(d DayDescription) (Match, bool) {
	keywords := d.Keywords()
	if len(keywords) == 0 {
		return Match{}, false
	}

	var best Match
	found := false
	for _, e := range m.catalogue.entries {
		if e.ID == "" || e.Name == "" {
			continue
		}
		idTokens := tokenSet(e.ID)
		nameTokens := tokenSet(e.Name)

		s := 0
		for _, k := range keywords {
			if idTokens[k] {
				s++
			}
			if nameTokens[k] {
				s += 2
			}
		}
		if s > 0 && (!found || s > best.Score) {
			best = Match{Entry: e, Step: StepKeyword, Score: s}
			found = true
		}
	}
	return best, found
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(normalizeText(s)) {
		set[tok] = true
	}
	return set
}
