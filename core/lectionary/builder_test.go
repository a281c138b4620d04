package lectionary

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/FocuswithJustin/JuniperLectionary/core/calendar"
	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
	"github.com/FocuswithJustin/JuniperLectionary/core/normalize"
	"github.com/FocuswithJustin/JuniperLectionary/core/versification"
)

var testEntries = []calendar.Entry{
	{ID: "advent_1_sunday_a", Name: "First Sunday of Advent", Season: "ADVENT", Week: 1, DayOfWeek: 7, Rank: "SUNDAY", Cycle: "A"},
	{ID: "advent_1_sunday_b", Name: "First Sunday of Advent", Season: "ADVENT", Week: 1, DayOfWeek: 7, Rank: "SUNDAY", Cycle: "B"},
	{ID: "ash_wednesday", Name: "Ash Wednesday", Season: "LENT", Rank: "WEEKDAY"},
	{ID: "agnes", Name: "Saint Agnes, Virgin and Martyr", Rank: "MEMORIAL", Date: "01-21", Group: calendar.GroupProperOfSaints},
}

func newBuilder(t *testing.T, entries []calendar.Entry) *Builder {
	t.Helper()
	c, err := calendar.NewCatalogue(entries)
	if err != nil {
		t.Fatalf("NewCatalogue() error: %v", err)
	}
	n := normalize.New(versification.MustNew(versification.NAB), normalize.DefaultOptions())
	return NewBuilder(n, calendar.NewMatcher(c))
}

func adventRow() Row {
	return Row{
		Index:         1,
		Description:   "First Sunday of Advent A",
		FirstReading:  "Isa 2:1-5",
		Psalm:         "Ps 23:1-6",
		SecondReading: "Rom 13:11-14",
		Acclamation:   "Ps 23:1",
		Gospel:        "Matt 24:37-44",
	}
}

func TestBuildRowMatched(t *testing.T) {
	b := newBuilder(t, testEntries)

	records, stats, err := b.BuildRow(context.Background(), adventRow())
	if err != nil {
		t.Fatalf("BuildRow() error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	r := records[0]
	if r.Identifier != "advent_1_sunday_a" || r.Step != calendar.StepExact || r.Cycle != "A" {
		t.Errorf("record = %s via %s cycle %q", r.Identifier, r.Step, r.Cycle)
	}
	if r.Group != calendar.GroupTemporal || r.Rank != "SUNDAY" || r.Week != 1 || r.DayOfWeek != calendar.Sunday {
		t.Errorf("record fields = %+v", r)
	}
	if got := r.Readings.FirstReading; len(got) != 1 || got[0].CanonicalCode != "Isa.2.1-Isa.2.5" {
		t.Errorf("FirstReading = %+v", got)
	}
	if got := r.Readings.Gospel; len(got) != 1 || got[0].StandardText != "Matt 24:37-44" {
		t.Errorf("Gospel = %+v", got)
	}
	if r.Readings.Len() != 5 {
		t.Errorf("Readings.Len() = %d, want 5", r.Readings.Len())
	}
	want := Stats{Rows: 1, Records: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestBuildRowExpandsCycles(t *testing.T) {
	b := newBuilder(t, testEntries)
	row := Row{Description: "Ash Wednesday", Cycle: "ABC", Gospel: "Matt 6:1-6, 16-18"}

	records, stats, err := b.BuildRow(context.Background(), row)
	if err != nil {
		t.Fatalf("BuildRow() error: %v", err)
	}
	if len(records) != 3 || stats.Records != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	for i, cycle := range []string{"A", "B", "C"} {
		if records[i].Cycle != cycle || records[i].Identifier != "ash_wednesday" {
			t.Errorf("records[%d] = %s cycle %q, want cycle %q", i, records[i].Identifier, records[i].Cycle, cycle)
		}
		if records[i].Step != calendar.StepIdentifier {
			t.Errorf("records[%d].Step = %s", i, records[i].Step)
		}
	}
}

func TestBuildRowSkipped(t *testing.T) {
	b := newBuilder(t, testEntries)

	tests := []struct {
		name   string
		row    Row
		target error
	}{
		{"malformed description", Row{Description: "Lorem ipsum"}, errors.ErrMalformedDescription},
		{"partial cycle tag", Row{Description: "Third Sunday of Lent AB"}, errors.ErrMalformedDescription},
		{"partial cycle column", Row{Description: "Ash Wednesday", Cycle: "BC"}, errors.ErrMalformedDescription},
		{"unknown group", Row{Description: "Ash Wednesday", Group: "martyrology"}, errors.ErrInvalidInput},
		{"unmatched auxiliary", Row{Description: "Common of Pastors", Group: calendar.GroupCommons}, errors.ErrNoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, stats, err := b.BuildRow(context.Background(), tt.row)
			if !errors.Is(err, tt.target) {
				t.Fatalf("BuildRow() error = %v, want %v", err, tt.target)
			}
			if len(records) != 0 {
				t.Errorf("len(records) = %d, want 0", len(records))
			}
			if stats.Skipped != 1 {
				t.Errorf("stats.Skipped = %d, want 1", stats.Skipped)
			}
		})
	}
}

func TestBuildRowUnmatchedTemporal(t *testing.T) {
	b := newBuilder(t, []calendar.Entry{{ID: "agnes", Name: "Saint Agnes"}})

	records, stats, err := b.BuildRow(context.Background(), Row{Description: "Second Sunday of Easter A", Gospel: "John 20:19-31"})
	if err != nil {
		t.Fatalf("BuildRow() error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	r := records[0]
	want := Record{
		Identifier: "second_sunday_of_easter_a",
		Name:       "Second Sunday of Easter",
		Season:     "EASTER",
		Week:       2,
		DayOfWeek:  calendar.Sunday,
		Rank:       "SUNDAY",
		Cycle:      "A",
		Group:      calendar.GroupTemporal,
	}
	if len(r.Readings.Gospel) != 1 {
		t.Errorf("Gospel = %+v", r.Readings.Gospel)
	}
	r.Readings = ReadingSet{}
	if !sameFields(r, want) {
		t.Errorf("record =\n  %+v\nwant\n  %+v", r, want)
	}
	if stats.Unmatched != 1 || stats.Records != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func sameFields(a, b Record) bool {
	return a.Identifier == b.Identifier && a.Name == b.Name && a.Season == b.Season &&
		a.Week == b.Week && a.DayOfWeek == b.DayOfWeek && a.Date == b.Date &&
		a.Rank == b.Rank && a.MassType == b.MassType && a.Cycle == b.Cycle &&
		a.Group == b.Group && a.Row == b.Row && a.Step == b.Step
}

func TestBuildRowGroupFromEntry(t *testing.T) {
	b := newBuilder(t, testEntries)

	records, stats, err := b.BuildRow(context.Background(), Row{Description: "Saint Agnes"})
	if err != nil {
		t.Fatalf("BuildRow() error: %v", err)
	}
	if len(records) != 1 || records[0].Group != calendar.GroupProperOfSaints || records[0].Date != "01-21" {
		t.Fatalf("records = %+v", records)
	}
	if stats.Fallbacks != 1 {
		t.Errorf("stats.Fallbacks = %d, want 1", stats.Fallbacks)
	}
}

func TestBuildRowParseFailure(t *testing.T) {
	b := newBuilder(t, testEntries)
	row := adventRow()
	row.SecondReading = "Rom 5:30 or Rom 13:11-14"

	records, stats, err := b.BuildRow(context.Background(), row)
	if err != nil {
		t.Fatalf("BuildRow() error: %v", err)
	}
	if stats.ParseFailures != 1 {
		t.Errorf("stats.ParseFailures = %d, want 1", stats.ParseFailures)
	}
	if got := records[0].Readings.SecondReading; len(got) != 1 || got[0].CanonicalCode != "Rom.13.11-Rom.13.14" {
		t.Errorf("SecondReading = %+v", got)
	}
}

func batchRows() []Row {
	rows := []Row{
		adventRow(),
		{Index: 2, Description: "Ash Wednesday", Cycle: "ABC", Gospel: "Matt 6:1-6, 16-18"},
		{Index: 3, Description: "Lorem ipsum"},
		{Index: 4, Description: "Saint Agnes", Gospel: "Matt 13:44-46"},
		{Index: 5, Description: "First Sunday of Advent B", Gospel: "Mark 13:33-37"},
	}
	for i := 6; i <= 20; i++ {
		rows = append(rows, Row{Index: i, Description: fmt.Sprintf("Monday of Week %d in Ordinary Time", i), Gospel: "Mark 2:18-22"})
	}
	return rows
}

func TestBuildAllDeterministic(t *testing.T) {
	b := newBuilder(t, testEntries)
	rows := batchRows()

	serial, err := b.BuildAll(context.Background(), rows, 1)
	if err != nil {
		t.Fatalf("BuildAll(1) error: %v", err)
	}
	parallel, err := b.BuildAll(context.Background(), rows, 8)
	if err != nil {
		t.Fatalf("BuildAll(8) error: %v", err)
	}

	if len(serial.Records) != len(parallel.Records) {
		t.Fatalf("record counts differ: %d vs %d", len(serial.Records), len(parallel.Records))
	}
	for i := range serial.Records {
		s, p := serial.Records[i], parallel.Records[i]
		if s.Identifier != p.Identifier || s.Cycle != p.Cycle || s.Row != p.Row {
			t.Errorf("record %d differs: %s/%s vs %s/%s", i, s.Identifier, s.Cycle, p.Identifier, p.Cycle)
		}
	}
	if serial.Stats != parallel.Stats {
		t.Errorf("stats differ: %+v vs %+v", serial.Stats, parallel.Stats)
	}
	if serial.RunID == "" || serial.RunID == parallel.RunID {
		t.Errorf("run ids = %q, %q", serial.RunID, parallel.RunID)
	}

	first := serial.Records[0]
	if first.Identifier != "advent_1_sunday_a" || first.Row != 1 {
		t.Errorf("first record = %s row %d", first.Identifier, first.Row)
	}
	for i := 1; i < len(serial.Records); i++ {
		if serial.Records[i].Row < serial.Records[i-1].Row {
			t.Fatalf("records out of row order at %d", i)
		}
	}
	if serial.Stats.Rows != len(rows) || serial.Stats.Skipped != 1 {
		t.Errorf("stats = %+v", serial.Stats)
	}
}

func TestBuildAllProgress(t *testing.T) {
	var calls, last atomic.Int32
	b := newBuilder(t, testEntries).OnProgress(func(done, total int) {
		calls.Add(1)
		last.Store(int32(done))
		if total != 20 {
			t.Errorf("total = %d, want 20", total)
		}
	})
	if _, err := b.BuildAll(context.Background(), batchRows(), 4); err != nil {
		t.Fatalf("BuildAll() error: %v", err)
	}
	if calls.Load() != 20 || last.Load() != 20 {
		t.Errorf("progress calls = %d, last = %d", calls.Load(), last.Load())
	}
}

func TestBuildAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newBuilder(t, testEntries).BuildAll(ctx, batchRows(), 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("BuildAll() error = %v, want context.Canceled", err)
	}
}

func TestBuildAllEmpty(t *testing.T) {
	batch, err := newBuilder(t, testEntries).BuildAll(context.Background(), nil, 4)
	if err != nil {
		t.Fatalf("BuildAll() error: %v", err)
	}
	if len(batch.Records) != 0 || batch.Stats.Rows != 0 {
		t.Errorf("batch = %+v", batch)
	}
}
