package output

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	lerrors "github.com/FocuswithJustin/JuniperLectionary/core/errors"
	"github.com/FocuswithJustin/JuniperLectionary/core/lectionary"
	"github.com/FocuswithJustin/JuniperLectionary/core/normalize"
)

func sampleLectionary() *lectionary.Lectionary {
	r := lectionary.Record{Identifier: "advent_1_sunday_a", Name: "First Sunday of Advent", Cycle: "A", Week: 1}
	r.Readings.Set(normalize.Gospel, []normalize.ReadingOption{
		{CanonicalCode: "Matt.24.37-Matt.24.44", StandardText: "Matt 24:37-44"},
	})
	return lectionary.Assemble([]lectionary.Record{r})
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	digest, n, err := Encode(&buf, sampleLectionary(), false)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if int(n) != buf.Len() {
		t.Errorf("n = %d, buffer has %d", n, buf.Len())
	}
	sum := blake3.Sum256(buf.Bytes())
	if digest != hex.EncodeToString(sum[:]) {
		t.Errorf("digest = %s, want %x", digest, sum)
	}
	if !strings.Contains(buf.String(), `"A":[{"identifier":"advent_1_sunday_a"`) {
		t.Errorf("json = %s", buf.String())
	}
}

func TestWriteFile(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantPath string
	}{
		{"plain", Options{Digest: true}, "lectionary.json"},
		{"indented", Options{Indent: true}, "lectionary.json"},
		{"compressed", Options{Compress: true, Digest: true}, "lectionary.json.xz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			res, err := WriteFile(filepath.Join(dir, "out", "lectionary.json"), sampleLectionary(), tt.opts)
			if err != nil {
				t.Fatalf("WriteFile() error: %v", err)
			}
			if filepath.Base(res.Path) != tt.wantPath {
				t.Errorf("Path = %q, want base %q", res.Path, tt.wantPath)
			}

			info, err := os.Stat(res.Path)
			if err != nil {
				t.Fatal(err)
			}
			if info.Size() != res.Bytes {
				t.Errorf("Bytes = %d, file has %d", res.Bytes, info.Size())
			}

			if tt.opts.Digest {
				if err := Verify(res.Path); err != nil {
					t.Errorf("Verify() error: %v", err)
				}
			} else if _, err := os.Stat(res.Path + DigestSuffix); !os.IsNotExist(err) {
				t.Errorf("digest sidecar written without Digest option")
			}

			back, err := ReadFile(res.Path)
			if err != nil {
				t.Fatalf("ReadFile() error: %v", err)
			}
			if len(back.Sunday.A) != 1 || back.Sunday.A[0].Identifier != "advent_1_sunday_a" {
				t.Errorf("round trip Sunday.A = %+v", back.Sunday.A)
			}
			if got := back.Sunday.A[0].Readings.Gospel; len(got) != 1 || got[0].StandardText != "Matt 24:37-44" {
				t.Errorf("round trip gospel = %+v", got)
			}
		})
	}
}

func TestVerifyMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lectionary.json")
	if _, err := WriteFile(path, sampleLectionary(), Options{Digest: true}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Verify(path); !lerrors.Is(err, lerrors.ErrInvalidInput) {
		t.Errorf("Verify() error = %v, want mismatch", err)
	}
}

func TestWriteFileErrors(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		orig := osCreate
		defer func() { osCreate = orig }()
		osCreate = func(string) (*os.File, error) { return nil, errors.New("disk full") }

		_, err := WriteFile(filepath.Join(t.TempDir(), "x.json"), sampleLectionary(), Options{})
		var ioe *lerrors.IOError
		if !lerrors.As(err, &ioe) {
			t.Errorf("error %T is not an IOError", err)
		}
	})

	t.Run("compress", func(t *testing.T) {
		orig := xzNewWriter
		defer func() { xzNewWriter = orig }()
		xzNewWriter = func(io.Writer) (*xz.Writer, error) { return nil, errors.New("no xz") }

		_, err := WriteFile(filepath.Join(t.TempDir(), "x.json"), sampleLectionary(), Options{Compress: true})
		if err == nil || !strings.Contains(err.Error(), "no xz") {
			t.Errorf("error = %v", err)
		}
	})
}

func TestReadFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := ReadFile(path)
	var pe *lerrors.ParseError
	if !lerrors.As(err, &pe) || pe.Path != path {
		t.Errorf("error = %v, want ParseError for %s", err, path)
	}
}
