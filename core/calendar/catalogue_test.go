package calendar

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
)

func loadFixture(t *testing.T) *Catalogue {
	t.Helper()
	c, err := LoadCatalogueFile(filepath.Join("testdata", "catalogue.yaml"))
	if err != nil {
		t.Fatalf("LoadCatalogueFile() error: %v", err)
	}
	return c
}

func TestLoadCatalogueFile(t *testing.T) {
	c := loadFixture(t)

	if c.Len() != 14 {
		t.Fatalf("Len() = %d, want 14", c.Len())
	}
	entries := c.Entries()
	if entries[0].ID != "advent_1_sunday_a" || entries[len(entries)-1].ID != "votive_holy_spirit" {
		t.Errorf("catalogue order not preserved: first %q, last %q", entries[0].ID, entries[len(entries)-1].ID)
	}

	e, ok := c.Get("agnes")
	if !ok {
		t.Fatal("Get(agnes) not found")
	}
	if e.Group != GroupProperOfSaints {
		t.Errorf("agnes group = %q, want %q", e.Group, GroupProperOfSaints)
	}
	if e.Date != "01-21" || e.Rank != "MEMORIAL" {
		t.Errorf("agnes = %+v", e)
	}

	first, _ := c.Get("advent_1_sunday_a")
	if first.Group != GroupTemporal || first.DayOfWeek != Sunday || first.Week != 1 {
		t.Errorf("advent_1_sunday_a = %+v", first)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) should report false")
	}
}

func TestCatalogueOnDate(t *testing.T) {
	c := loadFixture(t)

	e, ok := c.OnDate("12-08")
	if !ok || e.ID != "immaculate_conception" {
		t.Errorf("OnDate(12-08) = %q, %v", e.ID, ok)
	}
	if _, ok := c.OnDate("07-04"); ok {
		t.Error("OnDate(07-04) should report false")
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	c := loadFixture(t)
	entries := c.Entries()
	entries[0].ID = "changed"
	if got := c.Entries()[0].ID; got != "advent_1_sunday_a" {
		t.Errorf("Entries() aliased catalogue storage: %q", got)
	}
}

func TestLoadCatalogueMapping(t *testing.T) {
	doc := `
entries:
  - id: christ_king_a
    name: Our Lord Jesus Christ, King of the Universe
    season: ORDINARY_TIME
    week: 34
    day_of_week: 7
    cycle: A
  - id: mass_for_the_dead
    name: Masses for the Dead
    group: dead
`
	c, err := LoadCatalogue(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadCatalogue() error: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	e, _ := c.Get("mass_for_the_dead")
	if e.Group != GroupDead || !e.Group.Auxiliary() {
		t.Errorf("mass_for_the_dead group = %q", e.Group)
	}
}

func TestLoadCatalogueJSON(t *testing.T) {
	doc := `[{"id": "pentecost", "name": "Pentecost Sunday", "season": "EASTER"}]`
	c, err := LoadCatalogue(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadCatalogue() error: %v", err)
	}
	if e, ok := c.Get("pentecost"); !ok || e.Season != "EASTER" {
		t.Errorf("Get(pentecost) = %+v, %v", e, ok)
	}
}

func TestLoadCatalogueEmpty(t *testing.T) {
	c, err := LoadCatalogue(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadCatalogue() error: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestLoadCatalogueErrors(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		target error
	}{
		{"duplicate id", "- id: a\n  name: A\n- id: a\n  name: B\n", errors.ErrInvalidInput},
		{"missing id", "- name: Nameless\n", errors.ErrInvalidInput},
		{"unknown group", "- id: a\n  group: martyrology\n", errors.ErrInvalidInput},
		{"bad yaml", "- id: [unclosed\n", nil},
		{"wrong shape", "- id: a\n  week: many\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalogue(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("error %v is not %v", err, tt.target)
			}
			if tt.target == nil {
				var pe *errors.ParseError
				if !errors.As(err, &pe) {
					t.Errorf("error %T is not a ParseError", err)
				}
			}
		})
	}
}

func TestLoadCatalogueFileMissing(t *testing.T) {
	_, err := LoadCatalogueFile(filepath.Join(t.TempDir(), "none.yaml"))
	var ioe *errors.IOError
	if !errors.As(err, &ioe) {
		t.Fatalf("error %T is not an IOError", err)
	}
}

func TestParseGroup(t *testing.T) {
	tests := []struct {
		in   string
		want Group
	}{
		{"", GroupTemporal},
		{"Temporal", GroupTemporal},
		{"proper-of-saints", GroupProperOfSaints},
		{"sanctoral", GroupProperOfSaints},
		{"RITUAL", GroupRitual},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGroup(tt.in)
			if err != nil || got != tt.want {
				t.Errorf("ParseGroup(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
	if GroupTemporal.Auxiliary() || !GroupCommons.Auxiliary() {
		t.Error("Auxiliary() mismatch")
	}
}
