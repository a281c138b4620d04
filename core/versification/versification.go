// Package versification provides the boundary tables the verse enumerator and
// comparator walk: for one translation, the ordered list of books and the
// verse count of every chapter.
//
// A Table is immutable after construction and safe to share between
// goroutines. It is always passed explicitly; there is no package-level
// default table.
package versification

import (
	"strings"

	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
)

// TranslationID identifies a boundary table.
type TranslationID string

// Supported translations.
const (
	NAB     TranslationID = "NAB"
	KJV     TranslationID = "KJV"
	NRSV    TranslationID = "NRSV"
	Vulgate TranslationID = "Vulgate"
)

// Book is one entry of a Table.
type Book struct {
	OSIS     string
	Name     string
	Abbrev   string
	Chapters []int // verse count per chapter, chapter 1 at index 0
}

// Table is the boundary table of one translation.
type Table struct {
	id    TranslationID
	books []Book
	index map[string]int
}

// New returns the boundary table for a translation.
func New(id TranslationID) (*Table, error) {
	switch TranslationID(strings.ToUpper(string(id))) {
	case NAB, "":
		return newNABTable(), nil
	case KJV:
		return build(KJV, append(append([]string{}, protestantOrder...), newTestamentOrder...), kjvVerses, nil, nil), nil
	case NRSV:
		// NRSV chapter layout follows KJV for the protocanonical books.
		return build(NRSV, append(append([]string{}, protestantOrder...), newTestamentOrder...), kjvVerses, nil, nil), nil
	case "VULGATE":
		return build(Vulgate, append(append([]string{}, vulgateOrder...), newTestamentOrder...), vulgateVerses, nil, nil), nil
	default:
		return nil, errors.NewUnsupported("translation", string(id))
	}
}

// MustNew is like New but panics on an unknown translation.
func MustNew(id TranslationID) *Table {
	t, err := New(id)
	if err != nil {
		panic(err)
	}
	return t
}

// NewTable builds a table from explicit books, in canonical order.
func NewTable(id TranslationID, books []Book) *Table {
	t := &Table{
		id:    id,
		books: make([]Book, len(books)),
		index: make(map[string]int, len(books)),
	}
	for i, b := range books {
		b.Chapters = append([]int(nil), b.Chapters...)
		if b.Abbrev == "" {
			b.Abbrev = StandardAbbrev(b.OSIS)
		}
		t.books[i] = b
		t.index[b.OSIS] = i
	}
	return t
}

// newNABTable lays the KJV counts out in Catholic order, takes the
// deuterocanon and Daniel from the Vulgate table, and applies NAB overrides.
func newNABTable() *Table {
	counts := make(map[string][]int, len(vulgateVerses))
	for osis, c := range kjvVerses {
		counts[osis] = c
	}
	for _, osis := range []string{"Tob", "Jdt", "1Macc", "2Macc", "Wis", "Sir", "Bar", "Dan"} {
		counts[osis] = vulgateVerses[osis]
	}
	return build(NAB, append(append([]string{}, catholicOrder...), newTestamentOrder...), counts, nabChapters, nabOverrides)
}

func build(id TranslationID, order []string, counts map[string][]int, replace map[string][]int, overrides map[string]map[int]int) *Table {
	books := make([]Book, 0, len(order))
	for _, osis := range order {
		chapters := counts[osis]
		if r, ok := replace[osis]; ok {
			chapters = r
		}
		chapters = append([]int(nil), chapters...)
		for ch, n := range overrides[osis] {
			if ch >= 1 && ch <= len(chapters) {
				chapters[ch-1] = n
			}
		}
		info := infoByOSIS[osis]
		books = append(books, Book{
			OSIS:     osis,
			Name:     info.Name,
			Abbrev:   info.Abbrev,
			Chapters: chapters,
		})
	}
	return NewTable(id, books)
}

// ID returns the translation of the table.
func (t *Table) ID() TranslationID {
	return t.id
}

// Len returns the number of books in the table.
func (t *Table) Len() int {
	return len(t.books)
}

// Books returns the book ids in canonical order.
func (t *Table) Books() []string {
	ids := make([]string, len(t.books))
	for i, b := range t.books {
		ids[i] = b.OSIS
	}
	return ids
}

// Book returns the table entry for an OSIS id.
func (t *Table) Book(osis string) (Book, bool) {
	idx, ok := t.index[osis]
	if !ok {
		return Book{}, false
	}
	return t.books[idx], true
}

// BookIndex returns the canonical position of the book, or -1.
func (t *Table) BookIndex(osis string) int {
	if idx, ok := t.index[osis]; ok {
		return idx
	}
	return -1
}

// ChapterCount returns the number of chapters in a book (0 if unknown).
func (t *Table) ChapterCount(osis string) int {
	idx, ok := t.index[osis]
	if !ok {
		return 0
	}
	return len(t.books[idx].Chapters)
}

// VerseCount returns the number of verses of a chapter (0 if unknown).
func (t *Table) VerseCount(osis string, chapter int) int {
	idx, ok := t.index[osis]
	if !ok {
		return 0
	}
	chapters := t.books[idx].Chapters
	if chapter < 1 || chapter > len(chapters) {
		return 0
	}
	return chapters[chapter-1]
}

// NextBook returns the book following osis in canonical order.
func (t *Table) NextBook(osis string) (string, bool) {
	idx, ok := t.index[osis]
	if !ok || idx+1 >= len(t.books) {
		return "", false
	}
	return t.books[idx+1].OSIS, true
}

// Contains reports whether book/chapter/verse exists in the table.
// A verse of 0 checks the chapter only.
func (t *Table) Contains(osis string, chapter, verse int) bool {
	n := t.VerseCount(osis, chapter)
	if n == 0 {
		return false
	}
	return verse >= 0 && verse <= n
}
