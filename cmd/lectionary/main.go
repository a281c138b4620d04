// Command lectionary normalizes lectionary tables into a canonical JSON
// document. It can also parse single citations, match day headings against
// a catalogue, inspect stored runs and serve the engine over HTTP.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"

	"github.com/FocuswithJustin/JuniperLectionary/core/calendar"
	"github.com/FocuswithJustin/JuniperLectionary/core/citation"
	lerrors "github.com/FocuswithJustin/JuniperLectionary/core/errors"
	"github.com/FocuswithJustin/JuniperLectionary/core/lectionary"
	"github.com/FocuswithJustin/JuniperLectionary/core/normalize"
	"github.com/FocuswithJustin/JuniperLectionary/core/verse"
	"github.com/FocuswithJustin/JuniperLectionary/core/versification"
	"github.com/FocuswithJustin/JuniperLectionary/internal/api"
	"github.com/FocuswithJustin/JuniperLectionary/internal/config"
	"github.com/FocuswithJustin/JuniperLectionary/internal/input"
	"github.com/FocuswithJustin/JuniperLectionary/internal/logging"
	"github.com/FocuswithJustin/JuniperLectionary/internal/output"
	"github.com/FocuswithJustin/JuniperLectionary/internal/store"
)

const version = "0.1.0"

// Replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Globals are the flags shared by every command.
type Globals struct {
	Config      string `help:"Config file (default: ./lectionary.yaml, then ~/.config/lectionary/lectionary.yaml)" type:"path"`
	Translation string `help:"Versification table: NAB, KJV, NRSV or Vulgate"`
	Catalogue   string `help:"Liturgical-day catalogue (YAML or JSON)" type:"path"`
	LogLevel    string `name:"log-level" help:"Log level: debug, info, warn, error"`
	LogFormat   string `name:"log-format" help:"Log format: text or json"`
}

// CLI defines the command-line interface.
type CLI struct {
	Globals

	Normalize NormalizeCmd `cmd:"" help:"Normalize one citation cell into reading options"`
	Verses    VersesCmd    `cmd:"" help:"List the verses a citation covers"`
	Match     MatchCmd     `cmd:"" help:"Match a day heading against the catalogue"`
	Build     BuildCmd     `cmd:"" help:"Build the lectionary document from input tables"`
	Verify    VerifyCmd    `cmd:"" help:"Check a written document against its digest"`
	Runs      RunsCmd      `cmd:"" help:"List or show batch runs stored in a database"`
	Serve     ServeCmd     `cmd:"" help:"Start the HTTP API server"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// engine is the configured pipeline shared by the commands.
type engine struct {
	cfg        config.Config
	table      *versification.Table
	normalizer *normalize.Normalizer
	matcher    *calendar.Matcher
}

// load reads configuration, applies flag overrides and builds the engine.
func (g *Globals) load() (*engine, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.Translation != "" {
		cfg.Translation = g.Translation
	}
	if g.Catalogue != "" {
		cfg.Catalogue = g.Catalogue
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Log.Format = g.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logging.Setup(stderr, cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, lerrors.NewValidation("log", err.Error())
	}

	table, err := cfg.Table()
	if err != nil {
		return nil, err
	}

	var cat *calendar.Catalogue
	if cfg.Catalogue != "" {
		if cat, err = calendar.LoadCatalogueFile(cfg.Catalogue); err != nil {
			return nil, err
		}
	} else {
		cat, _ = calendar.NewCatalogue(nil)
		logging.Debug("no catalogue configured")
	}

	return &engine{
		cfg:        cfg,
		table:      table,
		normalizer: normalize.New(table, cfg.Normalize),
		matcher:    calendar.NewMatcher(cat),
	}, nil
}

func (e *engine) openStore(ctx context.Context, path string) (*store.Store, error) {
	if path == "" {
		path = e.cfg.Store.Path
	}
	if path == "" {
		return nil, nil
	}
	return store.Open(ctx, path)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// NormalizeCmd normalizes one citation cell.
type NormalizeCmd struct {
	Text  string `arg:"" help:"Raw citation cell"`
	Slot  string `default:"firstReading" help:"Reading slot: firstReading, psalm, secondReading, acclamation, gospel"`
	Cycle string `help:"Cycle block to select from a per-cycle cell (A, B or C)"`
}

func (c *NormalizeCmd) Run(g *Globals) error {
	e, err := g.load()
	if err != nil {
		return err
	}
	slot, err := normalize.ParseSlot(c.Slot)
	if err != nil {
		return err
	}

	out := e.normalizer.Normalize(c.Text, slot, c.Cycle)
	for _, f := range out.Failures {
		logging.ParseFailure(context.Background(), slot.String(), f.Citation, f)
	}
	if out.Options == nil {
		out.Options = []normalize.ReadingOption{}
	}
	return printJSON(out.Options)
}

// VersesCmd enumerates the verses of a citation in canonical order.
type VersesCmd struct {
	Text  string `arg:"" help:"Citation, e.g. \"Rom 5:12-19\""`
	Count bool   `help:"Print only the number of verses"`
}

func (c *VersesCmd) Run(g *Globals) error {
	e, err := g.load()
	if err != nil {
		return err
	}

	parsed, err := citation.NewParser(e.table).Parse(e.normalizer.Clean(c.Text))
	if err != nil {
		return err
	}
	ids, err := verse.Enumerate(parsed.Entity(), e.table)
	if err != nil {
		return err
	}
	verse.Sort(ids, e.table)

	if c.Count {
		_, err := fmt.Fprintln(stdout, len(ids))
		return err
	}
	for _, id := range ids {
		if _, err := fmt.Fprintln(stdout, id); err != nil {
			return err
		}
	}
	return nil
}

// MatchCmd resolves a day heading.
type MatchCmd struct {
	Description string `arg:"" help:"Day heading, e.g. \"3rd Sunday of Lent A\""`
	Cycle       string `help:"Cycle overriding the heading's tag"`
}

type cycleMatch struct {
	Cycle string          `json:"cycle,omitempty"`
	Match *calendar.Match `json:"match"`
}

func (c *MatchCmd) Run(g *Globals) error {
	e, err := g.load()
	if err != nil {
		return err
	}

	d, err := calendar.ParseDescription(c.Description)
	if err != nil {
		return err
	}
	tag := d.CycleTag
	if c.Cycle != "" {
		tag = c.Cycle
	}
	cycles, err := calendar.ExpandCycles(tag)
	if err != nil {
		return err
	}

	matches := make([]cycleMatch, 0, len(cycles))
	for _, cycle := range cycles {
		m, err := e.matcher.Match(context.Background(), d.ForCycle(cycle))
		switch {
		case err == nil:
			matches = append(matches, cycleMatch{Cycle: cycle, Match: &m})
		case lerrors.Is(err, lerrors.ErrNoMatch):
			matches = append(matches, cycleMatch{Cycle: cycle})
		default:
			return err
		}
	}
	return printJSON(matches)
}

// BuildCmd runs the full pipeline over input tables.
type BuildCmd struct {
	Inputs   []string `arg:"" help:"Input tables (.xhtml, .tsv, .yaml; optionally .xz)" type:"existingfile"`
	Group    string   `help:"Catalogue group for rows whose table names none"`
	Out      string   `short:"o" help:"Output path (default from config)"`
	DB       string   `name:"db" help:"Record the batch in this SQLite database"`
	Compress bool     `help:"Write xz-compressed output"`
	Digest   bool     `help:"Write a BLAKE3 digest sidecar"`
	Indent   bool     `help:"Pretty-print the JSON"`
	Workers  int      `default:"-1" help:"Worker count (0 = one per CPU, -1 = from config)"`
}

func (c *BuildCmd) Run(g *Globals) error {
	e, err := g.load()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	var group calendar.Group
	if c.Group != "" {
		if group, err = calendar.ParseGroup(c.Group); err != nil {
			return err
		}
	}

	var rows []lectionary.Row
	for _, path := range c.Inputs {
		r, err := input.ReadFile(path, input.Options{Group: group})
		if err != nil {
			return err
		}
		logging.Info("input_read", "path", path, "rows", len(r))
		rows = append(rows, r...)
	}

	workers := e.cfg.Workers
	if c.Workers >= 0 {
		workers = c.Workers
	}
	batch, err := lectionary.NewBuilder(e.normalizer, e.matcher).BuildAll(ctx, rows, workers)
	if err != nil {
		return err
	}

	path := c.Out
	if path == "" {
		path = e.cfg.Output.Path
	}
	res, err := output.WriteFile(path, batch.Lectionary(), output.Options{
		Compress: c.Compress || e.cfg.Output.Compress,
		Digest:   c.Digest || e.cfg.Output.Digest,
		Indent:   c.Indent,
	})
	if err != nil {
		return err
	}

	st, err := e.openStore(ctx, c.DB)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
		if err := st.SaveBatch(ctx, batch); err != nil {
			return err
		}
	}

	s := batch.Stats
	fmt.Fprintf(stdout, "run %s: %d rows, %d records (%d skipped, %d parse failures, %d fallbacks, %d unmatched)\n",
		batch.RunID, s.Rows, s.Records, s.Skipped, s.ParseFailures, s.Fallbacks, s.Unmatched)
	fmt.Fprintf(stdout, "wrote %s (%s)\n", res.Path, humanize.Bytes(uint64(res.Bytes)))
	if res.DigestPath != "" {
		fmt.Fprintf(stdout, "digest %s\n", res.Digest)
	}
	return nil
}

// VerifyCmd checks a document against its digest sidecar.
type VerifyCmd struct {
	Path string `arg:"" help:"Document written by build --digest" type:"existingfile"`
}

func (c *VerifyCmd) Run(g *Globals) error {
	if err := output.Verify(c.Path); err != nil {
		return err
	}
	l, err := output.ReadFile(c.Path)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s: OK (%d records)\n", c.Path, l.Len())
	return err
}

// RunsCmd inspects a run database.
type RunsCmd struct {
	RunID  string `arg:"" optional:"" help:"Print the records of this run"`
	DB     string `name:"db" help:"SQLite database (default from config)"`
	Digest string `help:"List the runs containing a record with this digest"`
}

func (c *RunsCmd) Run(g *Globals) error {
	e, err := g.load()
	if err != nil {
		return err
	}
	ctx := context.Background()

	st, err := e.openStore(ctx, c.DB)
	if err != nil {
		return err
	}
	if st == nil {
		return lerrors.NewValidation("db", "no database given (use --db or store.path)")
	}
	defer st.Close()

	switch {
	case c.Digest != "":
		ids, err := st.FindByDigest(ctx, c.Digest)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(stdout, id)
		}
		return nil
	case c.RunID != "":
		records, err := st.Records(ctx, c.RunID)
		if err != nil {
			return err
		}
		return printJSON(records)
	}

	runs, err := st.Runs(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tROWS\tRECORDS\tSKIPPED\tUNMATCHED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n",
			r.ID, humanize.Time(r.CreatedAt), r.Stats.Rows, r.Stats.Records, r.Stats.Skipped, r.Stats.Unmatched)
	}
	return tw.Flush()
}

// ServeCmd starts the HTTP API.
type ServeCmd struct {
	Port    int    `short:"p" help:"Port to listen on (default from config)"`
	DB      string `name:"db" help:"Record finished jobs in this SQLite database"`
	Workers int    `default:"-1" help:"Workers per job (0 = one per CPU, -1 = from config)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	e, err := g.load()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	cfg := api.Config{
		Port:           e.cfg.Server.Port,
		AllowedOrigins: e.cfg.Server.AllowedOrigins,
		Auth:           api.AuthConfig{Enabled: e.cfg.Server.APIKey != "", APIKey: e.cfg.Server.APIKey},
		Workers:        e.cfg.Workers,
	}
	if c.Port != 0 {
		cfg.Port = c.Port
	}
	if c.Workers >= 0 {
		cfg.Workers = c.Workers
	}

	api.Version = version
	srv := api.New(cfg, e.table, e.normalizer, e.matcher)

	st, err := e.openStore(ctx, c.DB)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
		srv.WithStore(st)
	}

	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	info := store.GetInfo()
	_, err := fmt.Fprintf(stdout, "lectionary version %s (sqlite: %s, %s)\n", version, info.Package, info.DriverType)
	return err
}

func newParser(cli *CLI) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("lectionary"),
		kong.Description("Juniper Lectionary - liturgical reading normalization"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	parser.FatalIfErrorf(ctx.Run(&cli.Globals))
}
