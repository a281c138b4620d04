package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
)

const (
	fixtureCatalogue = "../../core/calendar/testdata/catalogue.yaml"
	fixtureRows      = "../../internal/input/testdata/rows.yaml"
)

// runCLI parses and runs args, returning what the command printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	oldOut, oldErr := stdout, stderr
	stdout, stderr = &out, io.Discard
	t.Cleanup(func() { stdout, stderr = oldOut, oldErr })

	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		t.Fatalf("newParser() error: %v", err)
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return "", err
	}
	err = ctx.Run(&cli.Globals)
	return out.String(), err
}

func TestNormalizeCmd(t *testing.T) {
	out, err := runCLI(t, "normalize", "A: Matt 4:1-11 B: Mark 1:12-15 C: Luke 4:1-13", "--slot", "gospel", "--cycle", "C")
	if err != nil {
		t.Fatalf("normalize error: %v", err)
	}

	var options []map[string]any
	if err := json.Unmarshal([]byte(out), &options); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(options) != 1 || options[0]["referenceCanonical"] != "Luke.4.1-Luke.4.13" {
		t.Errorf("options = %v", options)
	}
}

func TestNormalizeCmdBadSlot(t *testing.T) {
	_, err := runCLI(t, "normalize", "Ps 23", "--slot", "homily")
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestVersesCmd(t *testing.T) {
	out, err := runCLI(t, "verses", "Rom 5:12-14")
	if err != nil {
		t.Fatalf("verses error: %v", err)
	}
	if got, want := strings.Fields(out), []string{"Rom.5.12", "Rom.5.13", "Rom.5.14"}; strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("verses = %v, want %v", got, want)
	}

	out, err = runCLI(t, "verses", "--count", "Rom 5:12-14")
	if err != nil || strings.TrimSpace(out) != "3" {
		t.Errorf("verses --count = %q, %v", out, err)
	}
}

func TestMatchCmd(t *testing.T) {
	out, err := runCLI(t, "--catalogue", fixtureCatalogue, "match", "Palm Sunday of the Passion of the Lord B")
	if err != nil {
		t.Fatalf("match error: %v", err)
	}
	var matches []cycleMatch
	if err := json.Unmarshal([]byte(out), &matches); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(matches) != 1 || matches[0].Match == nil || matches[0].Match.Entry.ID != "palm_sunday_b" {
		t.Errorf("matches = %+v", matches)
	}
}

func TestMatchCmdMalformed(t *testing.T) {
	_, err := runCLI(t, "match", "---")
	if !errors.Is(err, errors.ErrMalformedDescription) {
		t.Errorf("error = %v, want ErrMalformedDescription", err)
	}
}

func TestBuildVerifyRuns(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "lectionary.json")
	dbPath := filepath.Join(dir, "runs.db")

	out, err := runCLI(t, "--catalogue", fixtureCatalogue, "build", fixtureRows,
		"--out", outPath, "--digest", "--db", dbPath, "--workers", "2")
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	if !strings.Contains(out, "4 records") {
		t.Errorf("build output = %q, want 4 records", out)
	}
	if _, err := os.Stat(outPath + ".b3"); err != nil {
		t.Errorf("digest sidecar missing: %v", err)
	}

	out, err = runCLI(t, "verify", outPath)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if !strings.Contains(out, "OK (4 records)") {
		t.Errorf("verify output = %q", out)
	}

	out, err = runCLI(t, "runs", "--db", dbPath)
	if err != nil {
		t.Fatalf("runs error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "ID") {
		t.Fatalf("runs output = %q", out)
	}

	runID := strings.Fields(lines[1])[0]
	out, err = runCLI(t, "runs", "--db", dbPath, runID)
	if err != nil {
		t.Fatalf("runs <id> error: %v", err)
	}
	if !strings.Contains(out, `"ash_wednesday"`) || !strings.Contains(out, `"agnes"`) {
		t.Errorf("runs <id> output missing records: %s", out)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "lectionary.json")

	if _, err := runCLI(t, "build", fixtureRows, "--out", outPath, "--digest"); err != nil {
		t.Fatalf("build error: %v", err)
	}
	if err := os.WriteFile(outPath, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "verify", outPath); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("verify error = %v, want ErrInvalidInput", err)
	}
}

func TestRunsWithoutDB(t *testing.T) {
	if _, err := runCLI(t, "runs"); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestUnknownTranslation(t *testing.T) {
	if _, err := runCLI(t, "--translation", "Klingon", "verses", "Rom 5:12"); !errors.Is(err, errors.ErrUnsupported) {
		t.Errorf("error = %v, want ErrUnsupported", err)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.HasPrefix(out, "lectionary version "+version) {
		t.Errorf("version output = %q", out)
	}
}

func TestBadLogSettings(t *testing.T) {
	for _, args := range [][]string{
		{"--log-level", "loud", "verses", "Rom 5:12"},
		{"--log-format", "yaml", "verses", "Rom 5:12"},
	} {
		if _, err := runCLI(t, args...); err == nil {
			t.Errorf("%v succeeded, want error", args)
		}
	}
}
