package flat

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// LineNoKey is the record key holding the source line number.
const LineNoKey = "lineNo"

// DefaultMaxSize is the size above which Records skips a file.
const DefaultMaxSize int64 = 1_000_000_000

// Record maps header names to the values of one line.
type Record map[string]string

func (r Record) LineNo() int64 {
	n, _ := strconv.ParseInt(r[LineNoKey], 10, 64)
	return n
}

type options struct {
	maxSize      int64
	partitioning Partitioning
	log          *slog.Logger
}

type Option func(*options)

func WithMaxSize(n int64) Option {
	return func(o *options) { o.maxSize = n }
}

func WithPartitioning(p Partitioning) Option {
	return func(o *options) { o.partitioning = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// Headers splits the first line of path on commas, trimming names and dropping blanks.
func Headers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sc := newScanner(f)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("headers of %s: %w", path, err)
		}
		return nil, fmt.Errorf("headers of %s: no header line", path)
	}
	var out []string
	for _, name := range strings.Split(sc.Text(), ",") {
		if name = strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}

// Records reads every data line of path into a record keyed by the header names, plus
// LineNoKey. Values beyond the headers are ignored and missing ones are left out. Files
// larger than the max size are skipped and yield a nil slice.
func Records(ctx context.Context, path string, opts ...Option) ([]Record, error) {
	o := options{
		maxSize:      DefaultMaxSize,
		partitioning: DefaultPartitioning(),
		log:          slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if o.maxSize > 0 && fi.Size() > o.maxSize {
		o.log.Info("flat.skip", "path", path, "bytes", fi.Size(), "max_bytes", o.maxSize)
		return nil, nil
	}
	o.log.Info("flat.read", "path", path, "bytes", fi.Size())

	headers, err := Headers(path)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	out := []Record{}
	err = ForEachPartition(ctx, path, Shape{Header: 1}, o.partitioning, func(_ Partition, line Line) error {
		rec := record(headers, line)
		mu.Lock()
		out = append(out, rec)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b Record) int { return cmp.Compare(a.LineNo(), b.LineNo()) })
	return out, nil
}

func record(headers []string, line Line) Record {
	values := strings.Split(line.Text, ",")
	rec := make(Record, len(headers)+1)
	for i, h := range headers {
		if i < len(values) {
			rec[h] = values[i]
		}
	}
	rec[LineNoKey] = strconv.FormatInt(line.No, 10)
	return rec
}

// Files lists the .txt files directly in dir.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".txt") {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}
