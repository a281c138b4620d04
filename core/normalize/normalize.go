// Package normalize turns raw lectionary citation cells into canonical
// reading options.
//
// A cell may name several alternatives ("Rom 5:12-19 or 5:12, 17-19"),
// per-cycle blocks ("A: ... B: ... C: ..."), annotations such as "opt:",
// "cf." and "(cited in ...)", or a sentinel meaning there is no reading. The
// Normalizer strips and records those, cleans punctuation, and hands each
// candidate to a Parser. It never fabricates an option: a candidate that does
// not parse is dropped and reported in Outcome.Failures.
package normalize

import (
	"regexp"
	"strings"

	"github.com/FocuswithJustin/JuniperLectionary/core/citation"
	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
	"github.com/FocuswithJustin/JuniperLectionary/core/verse"
	"github.com/FocuswithJustin/JuniperLectionary/core/versification"
)

// Parser produces a canonical code and verse entities for cleaned text.
type Parser interface {
	Parse(text string) (citation.Result, error)
}

// Options toggles the behaviours that differ between source tables.
type Options struct {
	// KeepPlus hands "+" to the parser as a sequence joiner instead of
	// rewriting it to a comma.
	KeepPlus bool `mapstructure:"keep_plus" yaml:"keep_plus" json:"keep_plus"`

	// CompleteBook prefixes a bare "ch:v" alternative with the book of the
	// first alternative.
	CompleteBook bool `mapstructure:"complete_book" yaml:"complete_book" json:"complete_book"`

	// HandleCf records "cf." as a qualifier. The token is stripped either way.
	HandleCf bool `mapstructure:"handle_cf" yaml:"handle_cf" json:"handle_cf"`

	// HandleOptional records "opt:" as a qualifier. The token is stripped either way.
	HandleOptional bool `mapstructure:"handle_optional" yaml:"handle_optional" json:"handle_optional"`

	// EmptyForNoReference returns an empty list for the no-reference
	// sentinel in every slot.
	EmptyForNoReference bool `mapstructure:"empty_for_no_reference" yaml:"empty_for_no_reference" json:"empty_for_no_reference"`

	// ValidateVerses enumerates parsed entities against the boundary table
	// and rejects citations that fall outside it.
	ValidateVerses bool `mapstructure:"validate_verses" yaml:"validate_verses" json:"validate_verses"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		CompleteBook:   true,
		HandleCf:       true,
		HandleOptional: true,
		ValidateVerses: true,
	}
}

// Outcome is the result of normalizing one cell.
type Outcome struct {
	Options  []ReadingOption
	Failures []*errors.ParseFailure
}

// Normalizer is safe for concurrent use.
type Normalizer struct {
	parser Parser
	table  *versification.Table
	opts   Options
}

// New returns a Normalizer using the citation grammar over table.
func New(table *versification.Table, opts Options) *Normalizer {
	return NewWithParser(citation.NewParser(table), table, opts)
}

// NewWithParser returns a Normalizer with a custom parser. table may be nil,
// which disables verse validation.
func NewWithParser(p Parser, table *versification.Table, opts Options) *Normalizer {
	return &Normalizer{parser: p, table: table, opts: opts}
}

// Options returns the normalizer's configuration.
func (n *Normalizer) Options() Options {
	return n.opts
}

var (
	noReferenceMarkers = map[string]bool{
		"(no bibl. ref.)":         true,
		"no bibl. ref.":           true,
		"(no bibl ref)":           true,
		"no bibl ref":             true,
		"(no biblical reference)": true,
		"no biblical reference":   true,
	}

	cycleMarker   = regexp.MustCompile(`(?:^|[^A-Za-z0-9])([ABC])\s*:`)
	gospelTitle   = regexp.MustCompile(`^(.*?\S)\s*[–—]\s*([^\s\d–—].*)$`)
	sourceVariant = regexp.MustCompile(`(?i)\(\s*(?:diff|new)\s*\)`)
	orSplit       = regexp.MustCompile(`(?i)(?:^|\s+)or(?:\s+|$)`)

	optPrefix  = regexp.MustCompile(`(?i)^\(?\s*opt(?:ional)?\s*[:.]\s*\)?\s*`)
	cfPrefix   = regexp.MustCompile(`(?i)^\(?\s*cf(?:\.\s*|\s+)`)
	citedIn    = regexp.MustCompile(`(?i)\(\s*cited in\s+([^)]*?)\s*\)`)
	shortForm  = regexp.MustCompile(`(?i)\(?\s*\bshort(?:er)?\s+form\b\s*[:.]?\s*\)?`)
	bareRef    = regexp.MustCompile(`^\d+\s*:`)
	bookPrefix = regexp.MustCompile(`^((?:[1-4]\s?|I{1,3}\s)?[A-Za-z][A-Za-z.]*(?:\s+of\s+[A-Za-z]+)?)\s*\d`)

	andJoin     = regexp.MustCompile(`(?i)(\d[a-z]?)\s+and\s+(\d)`)
	spaceDash   = regexp.MustCompile(`\s*-\s*`)
	spaceComma  = regexp.MustCompile(`\s*,[\s,]*`)
	spaceColon  = regexp.MustCompile(`\s*:\s*`)
	spaceSemi   = regexp.MustCompile(`\s*;[\s;]*`)
	spacePlus   = regexp.MustCompile(`\s*\+\s*`)
	spaces      = regexp.MustCompile(`\s+`)
	emptyParens = regexp.MustCompile(`\(\s*\)`)
)

// Normalize converts one raw cell for slot into reading options. cycle
// selects the block of a per-cycle cell ("A", "B" or "C").
func (n *Normalizer) Normalize(raw string, slot Slot, cycle string) Outcome {
	text := strings.TrimSpace(raw)
	folded := strings.ToLower(text)

	if text == "" || folded == "x" {
		return Outcome{}
	}
	if noReferenceMarkers[spaces.ReplaceAllString(folded, " ")] {
		if slot.explicitPlaceholder() && !n.opts.EmptyForNoReference {
			return Outcome{Options: []ReadingOption{{Note: NoteNoReference}}}
		}
		return Outcome{}
	}

	if blocks, ok := cycleBlocks(text); ok {
		block, found := blocks[strings.ToUpper(strings.TrimSpace(cycle))]
		if !found {
			return Outcome{}
		}
		return n.Normalize(block, slot, cycle)
	}

	var title string
	if slot == Gospel {
		if m := gospelTitle.FindStringSubmatch(text); m != nil {
			text = m[1]
			title = strings.TrimSpace(m[2])
		}
	}

	text = sourceVariant.ReplaceAllString(text, " ")

	candidates := splitOptions(text)
	alternative := len(candidates) > 1

	var out Outcome
	var firstBook string
	for i, c := range candidates {
		q := qualifiers{title: title}

		if loc := optPrefix.FindStringIndex(c); loc != nil {
			c = c[loc[1]:]
			q.optional = n.opts.HandleOptional
		}
		if loc := cfPrefix.FindStringIndex(c); loc != nil {
			c = c[loc[1]:]
			q.cf = n.opts.HandleCf
		}
		if m := citedIn.FindStringSubmatch(c); m != nil {
			q.citedIn = "cited in " + strings.TrimSpace(m[1])
			c = citedIn.ReplaceAllString(c, " ")
		}
		if shortForm.MatchString(c) {
			q.short = true
			c = shortForm.ReplaceAllString(c, " ")
		}
		c = strings.TrimSpace(emptyParens.ReplaceAllString(c, " "))

		if i == 0 {
			if m := bookPrefix.FindStringSubmatch(c); m != nil {
				firstBook = strings.TrimSpace(m[1])
			}
		} else if n.opts.CompleteBook && firstBook != "" && bareRef.MatchString(c) {
			c = firstBook + " " + c
		}

		cleaned := n.clean(c)
		if cleaned == "" {
			continue
		}

		res, err := n.parse(cleaned)
		if err != nil {
			out.Failures = append(out.Failures, &errors.ParseFailure{Citation: cleaned, Raw: raw, Err: err})
			continue
		}

		out.Options = append(out.Options, ReadingOption{
			CanonicalCode: res.Code,
			StandardText:  res.Standard,
			Note:          q.note(alternative),
			Cleaned:       cleaned,
		})
	}
	return out
}

// Clean applies the punctuation rules to one candidate without parsing it.
func (n *Normalizer) Clean(s string) string {
	return n.clean(s)
}

func (n *Normalizer) clean(s string) string {
	s = dashReplacer.Replace(s)
	s = asciiOnly(FoldAccents(s))
	s = andJoin.ReplaceAllString(s, "$1, $2")
	if n.opts.KeepPlus {
		s = spacePlus.ReplaceAllString(s, " + ")
	} else {
		s = strings.ReplaceAll(s, "+", ",")
	}
	s = spaceDash.ReplaceAllString(s, "-")
	s = spaceComma.ReplaceAllString(s, ", ")
	s = spaceColon.ReplaceAllString(s, ":")
	s = spaceSemi.ReplaceAllString(s, "; ")
	s = spaces.ReplaceAllString(s, " ")
	return strings.Trim(s, " ,;.+()")
}

func (n *Normalizer) parse(cleaned string) (citation.Result, error) {
	res, err := n.parser.Parse(cleaned)
	if err != nil {
		return citation.Result{}, err
	}
	if res.Code == "" {
		return citation.Result{}, errors.NewParse("citation", "", "no canonical code")
	}
	if n.opts.ValidateVerses && n.table != nil {
		ids, err := verse.Enumerate(res.Entity(), n.table)
		if err != nil {
			return citation.Result{}, err
		}
		if len(ids) == 0 {
			return citation.Result{}, errors.NewParse("citation", "", "covers no verses")
		}
	}
	return res, nil
}

// splitOptions splits text on "or" outside parentheses, so the word inside
// "(cited in Matt 3:3 or Luke 3:4)" does not start a new option.
func splitOptions(text string) []string {
	var out []string
	add := func(c string) {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}

	start := 0
	for _, loc := range orSplit.FindAllStringIndex(text, -1) {
		if parenDepth(text[:loc[0]]) > 0 {
			continue
		}
		add(text[start:loc[0]])
		start = loc[1]
	}
	add(text[start:])
	return out
}

func parenDepth(s string) int {
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}
	}
	return depth
}

// cycleBlocks splits "A: ... B: ... C: ..." into its blocks. It reports
// false unless all three markers are present.
func cycleBlocks(text string) (map[string]string, bool) {
	matches := cycleMarker.FindAllStringSubmatchIndex(text, -1)
	if len(matches) < 3 {
		return nil, false
	}

	blocks := make(map[string]string, 3)
	for i, m := range matches {
		letter := text[m[2]:m[3]]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][2]
		}
		if _, dup := blocks[letter]; dup {
			continue
		}
		blocks[letter] = strings.Trim(text[m[1]:end], " \t;,/|")
	}

	for _, letter := range []string{"A", "B", "C"} {
		if _, ok := blocks[letter]; !ok {
			return nil, false
		}
	}
	return blocks, true
}
