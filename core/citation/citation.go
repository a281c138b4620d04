// Package citation parses human-readable scripture citations such as
// "Rom 5:12, 17-19" or "Isa 9:1-6; 11:1" into verse entities, an OSIS-style
// canonical code and a normalised standard text.
//
// The grammar covers the forms lectionary tables use:
//
//	Book ch:v            single verse, optional partial letter ("Ps 23:3b")
//	Book ch:v-v          verse range within a chapter
//	Book ch:v-ch:v       range across chapters
//	Book ch, Book ch-ch  whole chapters
//	Book                 whole book
//
// Segments are joined by "," or "+", passages by ";". A segment without a
// colon continues the current chapter once a chapter:verse has been seen.
package citation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
	"github.com/FocuswithJustin/JuniperLectionary/core/verse"
	"github.com/FocuswithJustin/JuniperLectionary/core/versification"
)

// Result is a parsed citation.
type Result struct {
	// Code is the canonical cross-reference code, e.g. "Rom.5.12,Rom.5.17-Rom.5.19".
	Code string `json:"code"`

	// Standard is the human-readable form, e.g. "Rom 5:12, 17-19".
	Standard string `json:"standard"`

	// Entities holds one entity per segment, in citation order.
	Entities []verse.Entity `json:"-"`
}

// Entity returns the entities of the citation as one Sequence.
func (r Result) Entity() verse.Entity {
	return verse.Sequence{Items: r.Entities}
}

//nolint:govet // participle grammar tags are not standard struct tags
type citationGrammar struct {
	Passages []*passageGrammar `@@ ( ";" @@ )*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type passageGrammar struct {
	Booked *bookedGrammar    `  @@`
	Bare   []*segmentGrammar `| @@ ( ( "," | "+" ) @@ )*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type bookedGrammar struct {
	Name     string            `@Book`
	Segments []*segmentGrammar `( @@ ( ( "," | "+" ) @@ )* )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type segmentGrammar struct {
	Start *pointGrammar `@@`
	End   *pointGrammar `( "-" @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type pointGrammar struct {
	First  int    `@Int`
	Second *int   `( ( ":" | "." ) @Int )?`
	Part   string `@Part?`
}

// citationLexer tokenises citations. Book must precede Int so a numbered
// book ("1 Cor", "II Kgs") lexes as one token; a lone lowercase letter is a
// partial-verse suffix.
var citationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Book", Pattern: `(?:[1-4] ?|I{1,3} )?[A-Z][A-Za-z]*(?: of [A-Z][A-Za-z]*)?\.?`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Part", Pattern: `[a-z]`},
	{Name: "Punct", Pattern: `[:,;+.\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var citationParser = participle.MustBuild[citationGrammar](
	participle.Lexer(citationLexer),
	participle.Elide("Whitespace"),
)

// Parser turns cleaned citation text into a Result. The zero value uses
// standard abbreviations; NewParser takes abbreviations from a table.
type Parser struct {
	table *versification.Table
}

// NewParser returns a parser whose standard text uses the abbreviations of t.
// t may be nil.
func NewParser(t *versification.Table) *Parser {
	return &Parser{table: t}
}

// Parse parses one cleaned citation.
func (p *Parser) Parse(text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, errors.NewParse("citation", "", "empty citation")
	}

	parsed, err := citationParser.ParseString("", text)
	if err != nil {
		return Result{}, &errors.ParseError{Format: "citation", Message: fmt.Sprintf("%q", text), Err: err}
	}

	b := &builder{p: p}
	for i, passage := range parsed.Passages {
		if err := b.passage(i, passage); err != nil {
			return Result{}, err
		}
	}

	return Result{
		Code:     strings.Join(b.codes, ","),
		Standard: b.std.String(),
		Entities: b.entities,
	}, nil
}

func (p *Parser) abbrev(osis string) string {
	if p != nil && p.table != nil {
		if b, ok := p.table.Book(osis); ok {
			return b.Abbrev
		}
	}
	return versification.StandardAbbrev(osis)
}

// chapterLimit returns the highest chapter a range in book may reach.
func (p *Parser) chapterLimit(osis string) int {
	if p != nil && p.table != nil {
		if n := p.table.ChapterCount(osis); n > 0 {
			return n
		}
	}
	return maxChapters
}

// builder walks the parse tree tracking the current book and chapter.
type builder struct {
	p *Parser

	book      string
	chapter   int
	verseMode bool
	shown     int // chapter last written to std

	codes    []string
	entities []verse.Entity
	std      strings.Builder
}

func (b *builder) passage(i int, pg *passageGrammar) error {
	if i > 0 {
		b.std.WriteString("; ")
	}

	segments := pg.Bare
	if pg.Booked != nil {
		osis, ok := versification.ResolveBook(pg.Booked.Name)
		if !ok {
			return errors.NewValidation("book", fmt.Sprintf("unknown book %q", pg.Booked.Name))
		}
		b.book = osis
		b.chapter = 0
		b.verseMode = false
		b.shown = 0
		b.std.WriteString(b.p.abbrev(osis))

		segments = pg.Booked.Segments
		if len(segments) == 0 {
			b.codes = append(b.codes, osis)
			b.entities = append(b.entities, verse.Book{Book: osis})
			return nil
		}
		b.std.WriteByte(' ')
	} else if b.book == "" {
		return errors.NewValidation("book", "citation does not name a book")
	}

	for j, seg := range segments {
		if j > 0 {
			b.std.WriteString(", ")
		}
		if err := b.segment(seg); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) segment(seg *segmentGrammar) error {
	start := seg.Start

	var from verse.ID
	switch {
	case start.Second != nil:
		from = verse.ID{Book: b.book, Chapter: start.First, Verse: *start.Second, Partial: start.Part}
	case b.verseMode:
		from = verse.ID{Book: b.book, Chapter: b.chapter, Verse: start.First, Partial: start.Part}
	default:
		return b.chapterSegment(seg)
	}

	b.verseMode = true
	b.chapter = from.Chapter
	b.writePoint(from)

	if seg.End == nil {
		b.codes = append(b.codes, from.String())
		b.entities = append(b.entities, verse.Single{ID: from})
		return nil
	}

	to := verse.ID{Book: b.book, Chapter: from.Chapter, Verse: seg.End.First, Partial: seg.End.Part}
	if seg.End.Second != nil {
		to.Chapter = seg.End.First
		to.Verse = *seg.End.Second
	}
	b.std.WriteByte('-')
	b.writePoint(to)
	b.chapter = to.Chapter

	b.codes = append(b.codes, from.String()+"-"+to.String())
	b.entities = append(b.entities, verse.Range{Start: from, End: to})
	return nil
}

// maxChapters bounds a chapter range when no table is available; no book
// has more chapters than the Psalter.
const maxChapters = 150

// chapterSegment handles a segment whose start has no verse.
func (b *builder) chapterSegment(seg *segmentGrammar) error {
	first := seg.Start.First
	b.std.WriteString(strconv.Itoa(first))

	switch {
	case seg.End == nil:
		b.chapter = first
		b.codes = append(b.codes, b.book+"."+strconv.Itoa(first))
		b.entities = append(b.entities, verse.Chapter{Book: b.book, Chapter: first})

	case seg.End.Second != nil:
		// "Ps 23-24:3" runs from the top of the first chapter.
		from := verse.ID{Book: b.book, Chapter: first, Verse: 1}
		to := verse.ID{Book: b.book, Chapter: seg.End.First, Verse: *seg.End.Second, Partial: seg.End.Part}
		b.std.WriteByte('-')
		b.shown = 0
		b.writePoint(to)
		b.verseMode = true
		b.chapter = to.Chapter
		b.codes = append(b.codes, from.String()+"-"+to.String())
		b.entities = append(b.entities, verse.Range{Start: from, End: to})

	default:
		last := seg.End.First
		if last < first {
			return errors.NewValidation("chapter", fmt.Sprintf("%s %d-%d runs backwards", b.book, first, last))
		}
		if limit := b.p.chapterLimit(b.book); last > limit {
			return errors.NewValidation("chapter", fmt.Sprintf("%s %d exceeds %d chapters", b.book, last, limit))
		}
		b.std.WriteString("-" + strconv.Itoa(last))
		b.chapter = last
		b.codes = append(b.codes, b.book+"."+strconv.Itoa(first)+"-"+b.book+"."+strconv.Itoa(last))
		items := make([]verse.Entity, 0, last-first+1)
		for ch := first; ch <= last; ch++ {
			items = append(items, verse.Chapter{Book: b.book, Chapter: ch})
		}
		b.entities = append(b.entities, verse.Sequence{Items: items})
	}
	return nil
}

// writePoint writes "ch:v" when the chapter differs from the last one shown,
// otherwise just "v".
func (b *builder) writePoint(id verse.ID) {
	if id.Chapter != b.shown {
		b.std.WriteString(strconv.Itoa(id.Chapter))
		b.std.WriteByte(':')
		b.shown = id.Chapter
	}
	b.std.WriteString(strconv.Itoa(id.Verse))
	b.std.WriteString(id.Partial)
}
