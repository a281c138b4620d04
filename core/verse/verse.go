// Package verse provides verse identifiers, the parse entities a citation
// resolves to, and the two algorithms that work on them against a boundary
// table: range enumeration and canonical ordering.
package verse

import (
	"strconv"
	"strings"
)

// ID identifies one verse, optionally a lettered sub-verse.
type ID struct {
	// Book is the OSIS book id (e.g., "Rom", "1Cor").
	Book string `json:"book"`

	// Chapter is the chapter number (1-indexed).
	Chapter int `json:"chapter"`

	// Verse is the verse number (1-indexed).
	Verse int `json:"verse"`

	// Partial is the sub-verse letter ("a", "b"), empty for the whole verse.
	Partial string `json:"partial,omitempty"`
}

// String returns the OSIS form of the identifier, e.g. "Ps.23.3b".
func (id ID) String() string {
	var sb strings.Builder
	sb.WriteString(id.Book)
	sb.WriteByte('.')
	sb.WriteString(strconv.Itoa(id.Chapter))
	sb.WriteByte('.')
	sb.WriteString(strconv.Itoa(id.Verse))
	sb.WriteString(id.Partial)
	return sb.String()
}

// Whole returns the identifier without its partial letter.
func (id ID) Whole() ID {
	id.Partial = ""
	return id
}

// Entity is one parsed citation element. The concrete types are Single,
// Range, Chapter, Book and Sequence.
type Entity interface {
	isEntity()
}

// Single is one verse.
type Single struct {
	ID ID
}

// Range spans Start to End inclusive, possibly across chapters and books.
type Range struct {
	Start ID
	End   ID
}

// Chapter is a whole chapter.
type Chapter struct {
	Book    string
	Chapter int
}

// Book is a whole book.
type Book struct {
	Book string
}

// Sequence is an ordered list of entities.
type Sequence struct {
	Items []Entity
}

func (Single) isEntity()   {}
func (Range) isEntity()    {}
func (Chapter) isEntity()  {}
func (Book) isEntity()     {}
func (Sequence) isEntity() {}

// Set is an insertion-ordered set of verse identifiers. The partial letter is
// part of the identity: "Ps.23.3" and "Ps.23.3b" are distinct members.
type Set struct {
	ids  []ID
	seen map[ID]struct{}
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{seen: make(map[ID]struct{})}
}

// Add inserts id and reports whether it was new.
func (s *Set) Add(id ID) bool {
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// Has reports whether id is a member.
func (s *Set) Has(id ID) bool {
	_, ok := s.seen[id]
	return ok
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.ids)
}

// IDs returns the members in insertion order.
func (s *Set) IDs() []ID {
	return append([]ID(nil), s.ids...)
}
