package parse

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/stopnorway/stopnorway/internal/netex"
)

const bufferSize = 16 * 1024

// Source is one NeTEx document belonging to an operator.
type Source struct {
	Operator netex.Operator
	Path     string
	Size     int64
}

func (s Source) String() string {
	return fmt.Sprintf("%s: %s", s.Operator, filepath.Base(s.Path))
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open returns a buffered reader over the document, gunzipping ".gz" files.
func (s Source) Open() (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	buffered := bufio.NewReaderSize(f, bufferSize)
	if !strings.HasSuffix(strings.ToLower(s.Path), ".gz") {
		return &readCloser{Reader: buffered, closers: []io.Closer{f}}, nil
	}
	zr, err := gzip.NewReader(buffered)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("gunzip %s: %w", s.Path, err)
	}
	return &readCloser{Reader: bufio.NewReaderSize(zr, bufferSize), closers: []io.Closer{zr, f}}, nil
}

// SharedDataName is the operator's shared data document name, without extension.
func SharedDataName(op netex.Operator) string {
	return fmt.Sprintf("_%s_shared_data", op)
}

// Sources lists each operator's documents in dir: its shared data file first, then every
// file starting with "OP_", sorted by name.
func Sources(dir string, operators []netex.Operator) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []Source
	for _, op := range operators {
		shared := SharedDataName(op)
		var own []Source
		for _, e := range entries {
			if e.IsDir() || !isXML(e.Name()) {
				continue
			}
			info, err := e.Info()
			if err != nil {
				return nil, err
			}
			src := Source{Operator: op, Path: filepath.Join(dir, e.Name()), Size: info.Size()}
			switch {
			case stripXML(e.Name()) == shared:
				out = append(out, src)
			case strings.HasPrefix(e.Name(), string(op)+"_"):
				own = append(own, src)
			}
		}
		slices.SortFunc(own, func(a, b Source) int { return strings.Compare(a.Path, b.Path) })
		out = append(out, own...)
	}
	return out, nil
}

func isXML(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".xml") || strings.HasSuffix(n, ".xml.gz")
}

func stripXML(name string) string {
	return strings.TrimSuffix(strings.TrimSuffix(name, ".gz"), ".xml")
}
