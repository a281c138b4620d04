package versification

import "strings"

// bookInfo describes a book independently of any translation's layout.
type bookInfo struct {
	OSIS    string
	Name    string
	Abbrev  string // standard display abbreviation
	Aliases []string
}

// bookInfos lists every book known to the tables, in Catholic canonical order.
var bookInfos = []bookInfo{
	// Old Testament
	{"Gen", "Genesis", "Gen", []string{"gn", "genesis"}},
	{"Exod", "Exodus", "Exod", []string{"ex", "exo", "exodus"}},
	{"Lev", "Leviticus", "Lev", []string{"lv", "leviticus"}},
	{"Num", "Numbers", "Num", []string{"nm", "nb", "numbers"}},
	{"Deut", "Deuteronomy", "Deut", []string{"dt", "deuteronomy"}},
	{"Josh", "Joshua", "Josh", []string{"jos", "joshua"}},
	{"Judg", "Judges", "Judg", []string{"jgs", "jdg", "judges"}},
	{"Ruth", "Ruth", "Ruth", []string{"ru", "rt"}},
	{"1Sam", "1 Samuel", "1 Sam", []string{"1sm", "1samuel"}},
	{"2Sam", "2 Samuel", "2 Sam", []string{"2sm", "2samuel"}},
	{"1Kgs", "1 Kings", "1 Kgs", []string{"1kg", "1ki", "1kings"}},
	{"2Kgs", "2 Kings", "2 Kgs", []string{"2kg", "2ki", "2kings"}},
	{"1Chr", "1 Chronicles", "1 Chr", []string{"1ch", "1chron", "1chronicles"}},
	{"2Chr", "2 Chronicles", "2 Chr", []string{"2ch", "2chron", "2chronicles"}},
	{"Ezra", "Ezra", "Ezra", []string{"ezr"}},
	{"Neh", "Nehemiah", "Neh", []string{"ne", "nehemiah"}},
	{"Tob", "Tobit", "Tob", []string{"tb", "tobit"}},
	{"Jdt", "Judith", "Jdt", []string{"jth", "judith"}},
	{"Esth", "Esther", "Esth", []string{"est", "esther"}},
	{"1Macc", "1 Maccabees", "1 Macc", []string{"1mc", "1mac", "1maccabees"}},
	{"2Macc", "2 Maccabees", "2 Macc", []string{"2mc", "2mac", "2maccabees"}},
	{"Job", "Job", "Job", []string{"jb"}},
	{"Ps", "Psalms", "Ps", []string{"pss", "psa", "psalm", "psalms"}},
	{"Prov", "Proverbs", "Prov", []string{"prv", "pr", "proverbs"}},
	{"Eccl", "Ecclesiastes", "Eccl", []string{"eccles", "ecc", "qoh", "ecclesiastes"}},
	{"Song", "Song of Songs", "Song", []string{"sg", "sos", "songofsongs", "songofsolomon", "cant"}},
	{"Wis", "Wisdom", "Wis", []string{"ws", "wisdom"}},
	{"Sir", "Sirach", "Sir", []string{"sirach", "ecclus", "ecclesiasticus"}},
	{"Isa", "Isaiah", "Isa", []string{"is", "isaiah"}},
	{"Jer", "Jeremiah", "Jer", []string{"jr", "jeremiah"}},
	{"Lam", "Lamentations", "Lam", []string{"lm", "lamentations"}},
	{"Bar", "Baruch", "Bar", []string{"ba", "baruch"}},
	{"Ezek", "Ezekiel", "Ezek", []string{"ez", "eze", "ezekiel"}},
	{"Dan", "Daniel", "Dan", []string{"dn", "daniel"}},
	{"Hos", "Hosea", "Hos", []string{"ho", "hosea"}},
	{"Joel", "Joel", "Joel", []string{"jl"}},
	{"Amos", "Amos", "Amos", []string{"am"}},
	{"Obad", "Obadiah", "Obad", []string{"ob", "obadiah"}},
	{"Jonah", "Jonah", "Jonah", []string{"jon", "jnh"}},
	{"Mic", "Micah", "Mic", []string{"mi", "micah"}},
	{"Nah", "Nahum", "Nah", []string{"na", "nahum"}},
	{"Hab", "Habakkuk", "Hab", []string{"hb", "habakkuk"}},
	{"Zeph", "Zephaniah", "Zeph", []string{"zep", "zephaniah"}},
	{"Hag", "Haggai", "Hag", []string{"hg", "haggai"}},
	{"Zech", "Zechariah", "Zech", []string{"zec", "zechariah"}},
	{"Mal", "Malachi", "Mal", []string{"ml", "malachi"}},
	// New Testament
	{"Matt", "Matthew", "Matt", []string{"mt", "mat", "matthew"}},
	{"Mark", "Mark", "Mark", []string{"mk", "mrk"}},
	{"Luke", "Luke", "Luke", []string{"lk", "luk"}},
	{"John", "John", "John", []string{"jn", "jhn"}},
	{"Acts", "Acts", "Acts", []string{"ac"}},
	{"Rom", "Romans", "Rom", []string{"rm", "romans"}},
	{"1Cor", "1 Corinthians", "1 Cor", []string{"1co", "1corinthians"}},
	{"2Cor", "2 Corinthians", "2 Cor", []string{"2co", "2corinthians"}},
	{"Gal", "Galatians", "Gal", []string{"ga", "galatians"}},
	{"Eph", "Ephesians", "Eph", []string{"ephesians"}},
	{"Phil", "Philippians", "Phil", []string{"php", "philippians"}},
	{"Col", "Colossians", "Col", []string{"colossians"}},
	{"1Thess", "1 Thessalonians", "1 Thess", []string{"1thes", "1th", "1thessalonians"}},
	{"2Thess", "2 Thessalonians", "2 Thess", []string{"2thes", "2th", "2thessalonians"}},
	{"1Tim", "1 Timothy", "1 Tim", []string{"1tm", "1timothy"}},
	{"2Tim", "2 Timothy", "2 Tim", []string{"2tm", "2timothy"}},
	{"Titus", "Titus", "Titus", []string{"ti", "tit"}},
	{"Phlm", "Philemon", "Phlm", []string{"phm", "philem", "philemon"}},
	{"Heb", "Hebrews", "Heb", []string{"hebrews"}},
	{"Jas", "James", "Jas", []string{"jm", "james"}},
	{"1Pet", "1 Peter", "1 Pet", []string{"1pt", "1peter"}},
	{"2Pet", "2 Peter", "2 Pet", []string{"2pt", "2peter"}},
	{"1John", "1 John", "1 John", []string{"1jn", "1jo"}},
	{"2John", "2 John", "2 John", []string{"2jn", "2jo"}},
	{"3John", "3 John", "3 John", []string{"3jn", "3jo"}},
	{"Jude", "Jude", "Jude", []string{"jud"}},
	{"Rev", "Revelation", "Rev", []string{"rv", "revelation", "apoc"}},
}

// Canonical orders, as OSIS ids.
var (
	protestantOrder = []string{
		"Gen", "Exod", "Lev", "Num", "Deut", "Josh", "Judg", "Ruth", "1Sam", "2Sam",
		"1Kgs", "2Kgs", "1Chr", "2Chr", "Ezra", "Neh", "Esth", "Job", "Ps", "Prov",
		"Eccl", "Song", "Isa", "Jer", "Lam", "Ezek", "Dan", "Hos", "Joel", "Amos",
		"Obad", "Jonah", "Mic", "Nah", "Hab", "Zeph", "Hag", "Zech", "Mal",
	}

	catholicOrder = []string{
		"Gen", "Exod", "Lev", "Num", "Deut", "Josh", "Judg", "Ruth", "1Sam", "2Sam",
		"1Kgs", "2Kgs", "1Chr", "2Chr", "Ezra", "Neh", "Tob", "Jdt", "Esth", "1Macc",
		"2Macc", "Job", "Ps", "Prov", "Eccl", "Song", "Wis", "Sir", "Isa", "Jer",
		"Lam", "Bar", "Ezek", "Dan", "Hos", "Joel", "Amos", "Obad", "Jonah", "Mic",
		"Nah", "Hab", "Zeph", "Hag", "Zech", "Mal",
	}

	vulgateOrder = []string{
		"Gen", "Exod", "Lev", "Num", "Deut", "Josh", "Judg", "Ruth", "1Sam", "2Sam",
		"1Kgs", "2Kgs", "1Chr", "2Chr", "Ezra", "Neh", "Tob", "Jdt", "Esth", "Job",
		"Ps", "Prov", "Eccl", "Song", "Wis", "Sir", "Isa", "Jer", "Lam", "Bar",
		"Ezek", "Dan", "Hos", "Joel", "Amos", "Obad", "Jonah", "Mic", "Nah", "Hab",
		"Zeph", "Hag", "Zech", "Mal", "1Macc", "2Macc",
	}

	newTestamentOrder = []string{
		"Matt", "Mark", "Luke", "John", "Acts", "Rom", "1Cor", "2Cor", "Gal", "Eph",
		"Phil", "Col", "1Thess", "2Thess", "1Tim", "2Tim", "Titus", "Phlm", "Heb", "Jas",
		"1Pet", "2Pet", "1John", "2John", "3John", "Jude", "Rev",
	}
)

var (
	infoByOSIS = make(map[string]*bookInfo, len(bookInfos))
	aliasIndex = make(map[string]string, len(bookInfos)*4)
)

func init() {
	for i := range bookInfos {
		b := &bookInfos[i]
		infoByOSIS[b.OSIS] = b
		aliasIndex[compactName(b.OSIS)] = b.OSIS
		aliasIndex[compactName(b.Abbrev)] = b.OSIS
		aliasIndex[compactName(b.Name)] = b.OSIS
		for _, a := range b.Aliases {
			aliasIndex[a] = b.OSIS
		}
	}
}

// ResolveBook maps a book name or abbreviation ("1 Cor", "Mt.", "Psalms",
// "II Kings") to its OSIS id.
func ResolveBook(name string) (string, bool) {
	osis, ok := aliasIndex[compactName(name)]
	return osis, ok
}

// StandardAbbrev returns the display abbreviation of an OSIS book id, or the
// id itself when the book is unknown.
func StandardAbbrev(osis string) string {
	if b, ok := infoByOSIS[osis]; ok {
		return b.Abbrev
	}
	return osis
}

// compactName lowercases a book name, drops periods and spaces, and turns a
// leading Roman ordinal ("II Kings") into a digit.
func compactName(name string) string {
	fields := strings.Fields(strings.ToLower(strings.ReplaceAll(name, ".", " ")))
	if len(fields) > 1 {
		switch fields[0] {
		case "i":
			fields[0] = "1"
		case "ii":
			fields[0] = "2"
		case "iii":
			fields[0] = "3"
		}
	}
	return strings.Join(fields, "")
}
