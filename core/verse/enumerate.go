package verse

import (
	"fmt"

	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
	"github.com/FocuswithJustin/JuniperLectionary/core/versification"
)

// Enumerate expands an entity into the verse identifiers it denotes.
// The result has no duplicates; its order is emission order, not canonical
// order (use Sort for that).
func Enumerate(e Entity, t *versification.Table) ([]ID, error) {
	set := NewSet()
	if err := EnumerateInto(set, e, t); err != nil {
		return nil, err
	}
	return set.IDs(), nil
}

// EnumerateInto adds the verses of e to an existing set.
func EnumerateInto(set *Set, e Entity, t *versification.Table) error {
	switch v := e.(type) {
	case Single:
		if err := checkVerse(v.ID, t); err != nil {
			return err
		}
		set.Add(v.ID)
		return nil

	case Range:
		return walkRange(set, v, t)

	case Chapter:
		n := t.VerseCount(v.Book, v.Chapter)
		if n == 0 {
			return errors.NewValidation("chapter", fmt.Sprintf("%s %d not in %s", v.Book, v.Chapter, t.ID()))
		}
		for verse := 1; verse <= n; verse++ {
			set.Add(ID{Book: v.Book, Chapter: v.Chapter, Verse: verse})
		}
		return nil

	case Book:
		chapters := t.ChapterCount(v.Book)
		if chapters == 0 {
			return errors.NewValidation("book", fmt.Sprintf("%s not in %s", v.Book, t.ID()))
		}
		for ch := 1; ch <= chapters; ch++ {
			if err := EnumerateInto(set, Chapter{Book: v.Book, Chapter: ch}, t); err != nil {
				return err
			}
		}
		return nil

	case Sequence:
		for _, item := range v.Items {
			if err := EnumerateInto(set, item, t); err != nil {
				return err
			}
		}
		return nil

	default:
		return errors.NewValidation("entity", fmt.Sprintf("unsupported entity %T", e))
	}
}

// walkRange steps verse by verse from r.Start to r.End. It fails with a
// BoundaryOverrunError when it runs off the table or passes r.End without
// landing on it, so a malformed range can never loop.
func walkRange(set *Set, r Range, t *versification.Table) error {
	if err := checkVerse(r.Start, t); err != nil {
		return err
	}
	if t.BookIndex(r.End.Book) < 0 {
		return errors.NewValidation("book", fmt.Sprintf("%s not in %s", r.End.Book, t.ID()))
	}

	overrun := &errors.BoundaryOverrunError{
		Translation: string(t.ID()),
		Start:       r.Start.String(),
		End:         r.End.Whole().String(),
	}
	end := r.End.Whole()

	cur := r.Start
	for {
		set.Add(cur)
		if cur.Whole() == end {
			return nil
		}

		cur.Partial = ""
		cur.Verse++
		if cur.Verse > t.VerseCount(cur.Book, cur.Chapter) {
			cur.Chapter++
			cur.Verse = 1
			if cur.Chapter > t.ChapterCount(cur.Book) {
				next, ok := t.NextBook(cur.Book)
				if !ok {
					return overrun
				}
				cur = ID{Book: next, Chapter: 1, Verse: 1}
			}
		}

		if Compare(cur, end, t) > 0 {
			return overrun
		}
	}
}

func checkVerse(id ID, t *versification.Table) error {
	if t.BookIndex(id.Book) < 0 {
		return errors.NewValidation("book", fmt.Sprintf("%s not in %s", id.Book, t.ID()))
	}
	n := t.VerseCount(id.Book, id.Chapter)
	if n == 0 {
		return errors.NewValidation("chapter", fmt.Sprintf("%s %d not in %s", id.Book, id.Chapter, t.ID()))
	}
	if id.Verse < 1 || id.Verse > n {
		return errors.NewValidation("verse", fmt.Sprintf("%s not in %s", id.Whole(), t.ID()))
	}
	return nil
}
