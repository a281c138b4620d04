// Package output writes the lectionary document as JSON, optionally
// xz-compressed, with a BLAKE3 digest sidecar.
package output

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
	"github.com/FocuswithJustin/JuniperLectionary/core/lectionary"
)

// DigestSuffix is appended to the output path for the digest sidecar.
const DigestSuffix = ".b3"

var (
	// injectable for tests
	xzNewWriter = xz.NewWriter
	osCreate    = os.Create
)

// Options control WriteFile.
type Options struct {
	// Compress writes xz. A ".xz" suffix is added to the path if missing.
	Compress bool

	// Digest writes "<blake3 hex>  <file name>" to path + DigestSuffix.
	Digest bool

	// Indent pretty-prints the JSON.
	Indent bool
}

// Result describes a written document.
type Result struct {
	Path       string `json:"path"`
	DigestPath string `json:"digestPath,omitempty"`
	Digest     string `json:"digest"`
	Bytes      int64  `json:"bytes"`
}

// Encode writes l as JSON to w and returns the BLAKE3 digest of the bytes
// written.
func Encode(w io.Writer, l *lectionary.Lectionary, indent bool) (string, int64, error) {
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(l, "", "  ")
	} else {
		data, err = json.Marshal(l)
	}
	if err != nil {
		return "", 0, errors.Wrap(err, "encoding lectionary")
	}
	data = append(data, '\n')

	h := blake3.New()
	n, err := io.MultiWriter(w, h).Write(data)
	if err != nil {
		return "", int64(n), errors.Wrap(err, "writing lectionary")
	}
	return hex.EncodeToString(h.Sum(nil)), int64(n), nil
}

// WriteFile writes l to path. The digest covers the file as stored, so it
// is of the compressed bytes when Compress is set.
func WriteFile(path string, l *lectionary.Lectionary, opts Options) (*Result, error) {
	if opts.Compress && !strings.HasSuffix(path, ".xz") {
		path += ".xz"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.NewIO("mkdir", dir, err)
		}
	}

	f, err := osCreate(path)
	if err != nil {
		return nil, errors.NewIO("create", path, err)
	}
	defer f.Close()

	h := blake3.New()
	counter := &countingWriter{w: io.MultiWriter(f, h)}

	var w io.Writer = counter
	var xw *xz.Writer
	if opts.Compress {
		xw, err = xzNewWriter(counter)
		if err != nil {
			return nil, errors.NewIO("compress", path, err)
		}
		w = xw
	}

	if _, _, err := Encode(w, l, opts.Indent); err != nil {
		return nil, errors.NewIO("write", path, err)
	}
	if xw != nil {
		if err := xw.Close(); err != nil {
			return nil, errors.NewIO("compress", path, err)
		}
	}
	if err := f.Close(); err != nil {
		return nil, errors.NewIO("close", path, err)
	}

	res := &Result{
		Path:   path,
		Digest: hex.EncodeToString(h.Sum(nil)),
		Bytes:  counter.n,
	}
	if opts.Digest {
		res.DigestPath = path + DigestSuffix
		line := res.Digest + "  " + filepath.Base(path) + "\n"
		if err := os.WriteFile(res.DigestPath, []byte(line), 0o644); err != nil {
			return nil, errors.NewIO("write", res.DigestPath, err)
		}
	}
	return res, nil
}

// ReadFile reads a document written by WriteFile, decompressing ".xz" files.
func ReadFile(path string) (*lectionary.Lectionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, errors.NewIO("decompress", path, err)
		}
		r = xr
	}

	l := lectionary.New()
	if err := json.NewDecoder(r).Decode(l); err != nil {
		return nil, &errors.ParseError{Format: "JSON", Path: path, Message: err.Error(), Err: err}
	}
	return l, nil
}

// Verify recomputes the digest of path and compares it with its sidecar.
func Verify(path string) error {
	line, err := os.ReadFile(path + DigestSuffix)
	if err != nil {
		return errors.NewIO("read", path+DigestSuffix, err)
	}
	fields := strings.Fields(string(line))
	if len(fields) == 0 {
		return errors.NewParse("digest", path+DigestSuffix, "empty digest file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewIO("read", path, err)
	}
	sum := blake3.Sum256(data)
	if got := hex.EncodeToString(sum[:]); got != fields[0] {
		return errors.NewValidation("digest", "mismatch: file "+got+", sidecar "+fields[0])
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
