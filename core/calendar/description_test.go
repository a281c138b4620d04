package calendar

import (
	"testing"

	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
)

func TestParseDescription(t *testing.T) {
	tests := []struct {
		name string
		text string
		want DayDescription
	}{
		{
			name: "ordinal sunday with cycle",
			text: "3rd Sunday of Lent A",
			want: DayDescription{Season: Lent, Week: 3, DayOfWeek: Sunday, CycleTag: "A"},
		},
		{
			name: "spelled ordinal with year prefix",
			text: "First Sunday of Advent, Year B",
			want: DayDescription{Season: Advent, Week: 1, DayOfWeek: Sunday, CycleTag: "B"},
		},
		{
			name: "parenthesised cycle",
			text: "Twenty-first Sunday in Ordinary Time (ABC)",
			want: DayDescription{Season: OrdinaryTime, Week: 21, DayOfWeek: Sunday, CycleTag: "ABC"},
		},
		{
			name: "weekday of week",
			text: "Monday of the First Week of Advent",
			want: DayDescription{Season: Advent, Week: 1, DayOfWeek: Monday},
		},
		{
			name: "weekday with numbered week and weekday cycle",
			text: "Tuesday of Week 7 in Ordinary Time, Year II",
			want: DayDescription{Season: OrdinaryTime, Week: 7, DayOfWeek: Tuesday, CycleTag: "II"},
		},
		{
			name: "table heading",
			text: "Easter Week 2 Friday",
			want: DayDescription{Season: Easter, Week: 2, DayOfWeek: Friday},
		},
		{
			name: "named date and feast",
			text: "December 8 - Immaculate Conception",
			want: DayDescription{
				Season: Advent, MonthDay: "12-08",
				FeastKeyword: "immaculate conception", IsSpecialFeast: true,
			},
		},
		{
			name: "numeric date",
			text: "12/25",
			want: DayDescription{MonthDay: "12-25", FeastKeyword: "12 25"},
		},
		{
			name: "longest feast phrase wins",
			text: "Palm Sunday of the Passion of the Lord A",
			want: DayDescription{
				Season: HolyWeek, CycleTag: "A",
				FeastKeyword: "palm sunday of the passion of the lord", IsSpecialFeast: true,
			},
		},
		{
			name: "mass type",
			text: "Christmas: Mass at Dawn",
			want: DayDescription{
				Season: Christmas, MassType: MassDawn,
				FeastKeyword: "christmas", IsSpecialFeast: true,
			},
		},
		{
			name: "regnal number is not a cycle",
			text: "Saint John Paul II",
			want: DayDescription{FeastKeyword: "saint john paul ii"},
		},
		{
			name: "accents folded",
			text: "Saint Thérèse of the Child Jesus",
			want: DayDescription{FeastKeyword: "saint therese of the child jesus"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDescription(tt.text)
			if err != nil {
				t.Fatalf("ParseDescription(%q) error: %v", tt.text, err)
			}
			tt.want.Raw = tt.text
			if got != tt.want {
				t.Errorf("ParseDescription(%q) =\n  %+v\nwant\n  %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseDescriptionMalformed(t *testing.T) {
	for _, text := range []string{"", "   ", "Lorem ipsum dolor", "---"} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseDescription(text)
			if err == nil {
				t.Fatalf("ParseDescription(%q) expected error", text)
			}
			if !errors.Is(err, errors.ErrMalformedDescription) {
				t.Errorf("error %v is not ErrMalformedDescription", err)
			}
		})
	}
}

func TestExpandCycles(t *testing.T) {
	tests := []struct {
		tag     string
		want    []string
		wantErr bool
	}{
		{tag: "", want: []string{""}},
		{tag: "A", want: []string{"A"}},
		{tag: "ii", want: []string{"II"}},
		{tag: "ABC", want: []string{"A", "B", "C"}},
		{tag: "AB", wantErr: true},
		{tag: "BC", wantErr: true},
		{tag: "D", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("tag="+tt.tag, func(t *testing.T) {
			got, err := ExpandCycles(tt.tag)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrMalformedDescription) {
					t.Fatalf("ExpandCycles(%q) error = %v, want malformed", tt.tag, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExpandCycles(%q) error: %v", tt.tag, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ExpandCycles(%q) = %v, want %v", tt.tag, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ExpandCycles(%q)[%d] = %q, want %q", tt.tag, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestKeywords(t *testing.T) {
	d := DayDescription{Raw: "Saint Agnes, Virgin and Martyr (21st of January)"}
	got := d.Keywords()
	want := []string{"saint", "agnes", "virgin", "martyr", "january"}
	if len(got) != len(want) {
		t.Fatalf("Keywords() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keywords()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseSeason(t *testing.T) {
	tests := []struct {
		in   string
		want Season
		ok   bool
	}{
		{"Advent", Advent, true},
		{"ORDINARY_TIME", OrdinaryTime, true},
		{"holy week", HolyWeek, true},
		{"Eastertide", Easter, true},
		{"Pentecost", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSeason(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseSeason(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}

	if !Lent.EqualFold("lent") || !OrdinaryTime.EqualFold("Ordinary Time") || Lent.EqualFold("ADVENT") {
		t.Error("Season.EqualFold mismatch")
	}
}

func TestDescriptionTitleAndSlug(t *testing.T) {
	tests := []struct {
		text, title, slug string
	}{
		{"First Sunday of Advent, Year B", "First Sunday of Advent", "first_sunday_of_advent"},
		{"Twenty-first Sunday in Ordinary Time (ABC)", "Twenty-first Sunday in Ordinary Time", "twenty_first_sunday_in_ordinary_time"},
		{"Saint John Paul II", "Saint John Paul II", "saint_john_paul_ii"},
		{"  Ash Wednesday ", "Ash Wednesday", "ash_wednesday"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			d := mustParse(t, tt.text)
			if got := d.Title(); got != tt.title {
				t.Errorf("Title() = %q, want %q", got, tt.title)
			}
			if got := d.Slug(); got != tt.slug {
				t.Errorf("Slug() = %q, want %q", got, tt.slug)
			}
		})
	}
}
