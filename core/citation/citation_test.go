package citation

import (
	"errors"
	"testing"

	lerrors "github.com/FocuswithJustin/JuniperLectionary/core/errors"
	"github.com/FocuswithJustin/JuniperLectionary/core/verse"
	"github.com/FocuswithJustin/JuniperLectionary/core/versification"
)

func TestParse(t *testing.T) {
	p := NewParser(versification.MustNew(versification.NAB))

	tests := []struct {
		input        string
		wantCode     string
		wantStandard string
		wantEntities int
	}{
		{"Rom 5:12-19", "Rom.5.12-Rom.5.19", "Rom 5:12-19", 1},
		{"Rom 5:12, 17-19", "Rom.5.12,Rom.5.17-Rom.5.19", "Rom 5:12, 17-19", 2},
		{"Matt 1:18-2:3", "Matt.1.18-Matt.2.3", "Matt 1:18-2:3", 1},
		{"Isa 9:1-6; 11:1", "Isa.9.1-Isa.9.6,Isa.11.1", "Isa 9:1-6; 11:1", 2},
		{"Ps 23:1-3a, 3b-4, 5, 6", "Ps.23.1-Ps.23.3a,Ps.23.3b-Ps.23.4,Ps.23.5,Ps.23.6", "Ps 23:1-3a, 3b-4, 5, 6", 4},
		{"1 Cor 13:4-13", "1Cor.13.4-1Cor.13.13", "1 Cor 13:4-13", 1},
		{"Mt 4:1-11", "Matt.4.1-Matt.4.11", "Matt 4:1-11", 1},
		{"Ps 23", "Ps.23", "Ps 23", 1},
		{"Gen 1-2", "Gen.1-Gen.2", "Gen 1-2", 1},
		{"Jude", "Jude", "Jude", 1},
		{"Gen 1:1 + 2:4", "Gen.1.1,Gen.2.4", "Gen 1:1, 2:4", 2},
		{"Acts 2:1-11; 1 Cor 12:3b-7", "Acts.2.1-Acts.2.11,1Cor.12.3b-1Cor.12.7", "Acts 2:1-11; 1 Cor 12:3b-7", 2},
		{"Song of Songs 2:8-14", "Song.2.8-Song.2.14", "Song 2:8-14", 1},
		{"Gen.1.1", "Gen.1.1", "Gen 1:1", 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := p.Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Standard != tt.wantStandard {
				t.Errorf("Standard = %q, want %q", got.Standard, tt.wantStandard)
			}
			if len(got.Entities) != tt.wantEntities {
				t.Errorf("len(Entities) = %d, want %d", len(got.Entities), tt.wantEntities)
			}
		})
	}
}

func TestParseEntities(t *testing.T) {
	var p Parser
	got, err := p.Parse("Ps 23:3b-5, 24")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	r, ok := got.Entities[0].(verse.Range)
	if !ok {
		t.Fatalf("Entities[0] = %T, want verse.Range", got.Entities[0])
	}
	want := verse.ID{Book: "Ps", Chapter: 23, Verse: 3, Partial: "b"}
	if r.Start != want {
		t.Errorf("Start = %v, want %v", r.Start, want)
	}

	s, ok := got.Entities[1].(verse.Single)
	if !ok {
		t.Fatalf("Entities[1] = %T, want verse.Single", got.Entities[1])
	}
	if s.ID.Chapter != 23 || s.ID.Verse != 24 {
		t.Errorf("Single = %v, want Ps.23.24", s.ID)
	}
}

func TestParseChapterRangeEnumerates(t *testing.T) {
	table := versification.MustNew(versification.NAB)
	p := NewParser(table)

	got, err := p.Parse("Ruth 1-2")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	ids, err := verse.Enumerate(got.Entity(), table)
	if err != nil {
		t.Fatalf("Enumerate() error: %v", err)
	}
	want := table.VerseCount("Ruth", 1) + table.VerseCount("Ruth", 2)
	if len(ids) != want {
		t.Errorf("len = %d, want %d", len(ids), want)
	}
}

func TestParseErrors(t *testing.T) {
	p := NewParser(nil)

	tests := []struct {
		input  string
		target error
	}{
		{"", lerrors.ErrInvalidInput},
		{"Foo 1:1", lerrors.ErrInvalidInput},
		{"5:12", lerrors.ErrInvalidInput},
		{"Ps 5-3", lerrors.ErrInvalidInput},
		{"Ps 5-4", lerrors.ErrInvalidInput},
		{"Ps 1-999999999", lerrors.ErrInvalidInput},
	}
	for _, tt := range tests {
		_, err := p.Parse(tt.input)
		if !errors.Is(err, tt.target) {
			t.Errorf("Parse(%q) error = %v, want %v", tt.input, err, tt.target)
		}
	}

	for _, input := range []string{"Rom 5:", "Rom 5:12-", "and so on", "Rom ;;"} {
		if _, err := p.Parse(input); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", input)
		}
	}
}

func TestParseChapterRangeLimit(t *testing.T) {
	p := NewParser(versification.MustNew(versification.NAB))

	tests := []struct {
		input   string
		wantErr bool
	}{
		{"Ps 148-150", false},
		{"Ps 149-151", true},
		{"Obad 1-2", true},
		{"Ps 5-5", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := p.Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, lerrors.ErrInvalidInput) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidInput", tt.input, err)
			}
		})
	}
}
