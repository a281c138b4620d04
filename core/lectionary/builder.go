package lectionary

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/JuniperLectionary/core/calendar"
	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
	"github.com/FocuswithJustin/JuniperLectionary/core/normalize"
	"github.com/FocuswithJustin/JuniperLectionary/internal/logging"
	"github.com/FocuswithJustin/JuniperLectionary/internal/pool"
)

// Stats counts what a build produced.
type Stats struct {
	Rows          int `json:"rows"`
	Records       int `json:"records"`
	Skipped       int `json:"skipped"`
	ParseFailures int `json:"parseFailures"`
	Fallbacks     int `json:"fallbacks"`
	Unmatched     int `json:"unmatched"`
}

func (s *Stats) add(o Stats) {
	s.Rows += o.Rows
	s.Records += o.Records
	s.Skipped += o.Skipped
	s.ParseFailures += o.ParseFailures
	s.Fallbacks += o.Fallbacks
	s.Unmatched += o.Unmatched
}

// Batch is the result of BuildAll.
type Batch struct {
	RunID   string   `json:"runId"`
	Records []Record `json:"records"`
	Stats   Stats    `json:"stats"`
}

// Lectionary assembles the batch records into the output document.
func (b *Batch) Lectionary() *Lectionary {
	return Assemble(b.Records)
}

// Builder turns rows into records. It is safe for concurrent use.
type Builder struct {
	normalizer *normalize.Normalizer
	matcher    *calendar.Matcher
	progress   func(done, total int)
}

// NewBuilder returns a Builder using n for citations and m for headings.
func NewBuilder(n *normalize.Normalizer, m *calendar.Matcher) *Builder {
	return &Builder{normalizer: n, matcher: m}
}

// OnProgress returns a copy of b that calls fn after each row of a batch.
// fn is called from a single goroutine.
func (b *Builder) OnProgress(fn func(done, total int)) *Builder {
	c := *b
	c.progress = fn
	return &c
}

// BuildRow assembles the records of one row, one per cycle the row applies
// to. A non-nil error means the row was skipped; the returned Stats are
// valid either way.
func (b *Builder) BuildRow(ctx context.Context, row Row) ([]Record, Stats, error) {
	stats := Stats{Rows: 1}

	skip := func(err error, reason string) ([]Record, Stats, error) {
		stats.Skipped++
		logging.RowSkipped(ctx, row.Index, row.Description, reason, "error", err.Error(), "source", row.Source)
		return nil, stats, err
	}

	group, err := calendar.ParseGroup(string(row.Group))
	if err != nil {
		return skip(err, "unknown group")
	}

	d, err := calendar.ParseDescription(row.Description)
	if err != nil {
		return skip(err, "malformed description")
	}

	tag := d.CycleTag
	if row.Cycle != "" {
		tag = row.Cycle
	}
	cycles, err := calendar.ExpandCycles(tag)
	if err != nil {
		return skip(err, "unsupported cycle tag")
	}

	var (
		records []Record
		lastErr error
	)
	for _, cycle := range cycles {
		dc := d.ForCycle(cycle)

		var readings ReadingSet
		for _, slot := range normalize.Slots() {
			out := b.normalizer.Normalize(row.Cell(slot), slot, cycle)
			for _, f := range out.Failures {
				stats.ParseFailures++
				logging.ParseFailure(ctx, slot.String(), f.Citation, f, "row", row.Index, "cycle", cycle)
			}
			readings.Set(slot, out.Options)
		}

		m, err := b.matcher.Match(ctx, dc)
		switch {
		case err == nil:
			if m.Step.Fallback() {
				stats.Fallbacks++
			}
			rec := fromEntry(m, dc, group, row.Group != "")
			rec.Readings = readings
			rec.Row = row.Index
			records = append(records, rec)
		case errors.Is(err, errors.ErrNoMatch):
			stats.Unmatched++
			if group.Auxiliary() {
				lastErr = err
				logging.RowSkipped(ctx, row.Index, row.Description, "no catalogue match",
					"group", string(group), "cycle", cycle)
				continue
			}
			logging.WarnContext(ctx, "no_match", "row", row.Index, "description", row.Description, "cycle", cycle)
			rec := fromDescription(dc, group)
			rec.Readings = readings
			rec.Row = row.Index
			records = append(records, rec)
		default:
			return skip(err, "match failed")
		}
	}

	if len(records) == 0 && lastErr != nil {
		stats.Skipped++
		return nil, stats, lastErr
	}
	stats.Records = len(records)
	return records, stats, nil
}

// fromEntry builds a record from a catalogue match. The entry's fields win;
// the description fills what the entry leaves out.
func fromEntry(m calendar.Match, d calendar.DayDescription, group calendar.Group, explicitGroup bool) Record {
	e := m.Entry
	if !explicitGroup && e.Group != "" {
		group = e.Group
	}
	return Record{
		Identifier: e.ID,
		Name:       cmp.Or(e.Name, d.Title()),
		Season:     cmp.Or(e.Season, string(d.Season)),
		Week:       cmp.Or(e.Week, d.Week),
		DayOfWeek:  cmp.Or(e.DayOfWeek, d.DayOfWeek),
		Date:       cmp.Or(e.Date, d.MonthDay),
		Rank:       e.Rank,
		MassType:   d.MassType,
		Cycle:      d.Cycle,
		Group:      group,
		Step:       m.Step,
	}
}

// fromDescription builds a record from the heading alone.
func fromDescription(d calendar.DayDescription, group calendar.Group) Record {
	id := d.Slug()
	if d.Cycle != "" {
		id += "_" + strings.ToLower(d.Cycle)
	}
	return Record{
		Identifier: id,
		Name:       d.Title(),
		Season:     string(d.Season),
		Week:       d.Week,
		DayOfWeek:  d.DayOfWeek,
		Date:       d.MonthDay,
		Rank:       localRank(d),
		MassType:   d.MassType,
		Cycle:      d.Cycle,
		Group:      group,
	}
}

func localRank(d calendar.DayDescription) string {
	switch {
	case d.DayOfWeek == calendar.Sunday:
		return "SUNDAY"
	case d.DayOfWeek > 0:
		return "WEEKDAY"
	case d.IsSpecialFeast:
		return "FEAST"
	}
	return ""
}

type job struct {
	pos int
	row Row
}

type outcome struct {
	pos     int
	records []Record
	stats   Stats
}

// BuildAll builds every row on a pool of workers. Records come back ordered
// by row position, then cycle, then identifier, whatever the worker count.
// Only context cancellation makes it fail.
func (b *Builder) BuildAll(ctx context.Context, rows []Row, workers int) (*Batch, error) {
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)

	p := pool.New[job, outcome](workers, len(rows))
	p.Start(ctx, func(ctx context.Context, j job) outcome {
		records, stats, _ := b.BuildRow(ctx, j.row)
		return outcome{pos: j.pos, records: records, stats: stats}
	})

	go func() {
		defer p.Close()
		for i, row := range rows {
			if !p.Submit(ctx, job{pos: i, row: row}) {
				return
			}
		}
	}()

	total := len(rows)
	step := max(total/10, 1)
	outcomes := make([]outcome, 0, total)
	for out := range p.Results() {
		outcomes = append(outcomes, out)
		done := len(outcomes)
		if b.progress != nil {
			b.progress(done, total)
		}
		if done%step == 0 || done == total {
			logging.BatchProgress(ctx, done, total)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(outcomes, func(x, y outcome) int { return cmp.Compare(x.pos, y.pos) })

	batch := &Batch{RunID: runID, Records: []Record{}}
	for _, out := range outcomes {
		slices.SortStableFunc(out.records, func(x, y Record) int {
			return cmp.Or(cmp.Compare(x.Cycle, y.Cycle), cmp.Compare(x.Identifier, y.Identifier))
		})
		batch.Records = append(batch.Records, out.records...)
		batch.Stats.add(out.stats)
	}
	return batch, nil
}
