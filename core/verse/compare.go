package verse

import (
	"cmp"
	"slices"

	"github.com/FocuswithJustin/JuniperLectionary/core/versification"
)

// Compare orders verse identifiers by book position in t, then chapter, then
// verse. Books missing from t sort after every known book and tie with each
// other. Partial letters are ignored.
func Compare(a, b ID, t *versification.Table) int {
	if c := cmp.Compare(bookRank(a.Book, t), bookRank(b.Book, t)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Chapter, b.Chapter); c != 0 {
		return c
	}
	return cmp.Compare(a.Verse, b.Verse)
}

// Sort orders ids canonically. The sort is stable, so identifiers that differ
// only by partial letter keep their encounter order.
func Sort(ids []ID, t *versification.Table) {
	slices.SortStableFunc(ids, func(a, b ID) int {
		return Compare(a, b, t)
	})
}

// IsCanonical reports whether ids is non-decreasing under Compare.
func IsCanonical(ids []ID, t *versification.Table) bool {
	for i := 1; i < len(ids); i++ {
		if Compare(ids[i-1], ids[i], t) > 0 {
			return false
		}
	}
	return true
}

func bookRank(book string, t *versification.Table) int {
	if idx := t.BookIndex(book); idx >= 0 {
		return idx
	}
	return t.Len()
}
