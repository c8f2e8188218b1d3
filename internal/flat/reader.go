package flat

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
)

const maxLine = 4 * 1024 * 1024

// Line is one line of a file with its 1-based line number in the whole file.
type Line struct {
	Partition int
	No        int64
	Text      string
}

// LineFunc receives lines. It is called concurrently for different partitions and
// sequentially within one.
type LineFunc func(Partition, Line) error

// ForEachPartition aligns the partitions of path to line starts, counts the lines of
// each so line numbers are global, and then feeds every line outside the shape's
// decoration to fn exactly once.
func ForEachPartition(ctx context.Context, path string, shape Shape, p Partitioning, fn LineFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return err
	}

	parts, err := align(f, Partitions(fi.Size(), p))
	if err != nil {
		return fmt.Errorf("align %s: %w", path, err)
	}

	counts := make([]int64, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(parts))
	for i, part := range parts {
		g.Go(func() error {
			n, err := countLines(gctx, io.NewSectionReader(f, part.Start, part.Size()))
			counts[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	firstLine := make([]int64, len(parts))
	var total int64
	for i, n := range counts {
		firstLine[i] = total + 1
		total += n
	}
	lastData := total - int64(shape.Footer)

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(len(parts))
	for i, part := range parts {
		g.Go(func() error {
			return scan(gctx, io.NewSectionReader(f, part.Start, part.Size()), func(offset int64, text string) error {
				no := firstLine[i] + offset
				if no <= int64(shape.Header) || no > lastData {
					return nil
				}
				return fn(part, Line{Partition: part.No, No: no, Text: text})
			})
		})
	}
	return g.Wait()
}

// align moves every partition start except the first forward to just after the next
// newline, so that each line belongs to the partition in which it starts. Partitions
// left empty are dropped and the rest renumbered.
func align(f io.ReaderAt, parts []Partition) ([]Partition, error) {
	if len(parts) <= 1 {
		return parts, nil
	}
	size := parts[len(parts)-1].End
	starts := make([]int64, len(parts))
	for i := 1; i < len(parts); i++ {
		s, err := nextLineStart(f, parts[i].Start, size)
		if err != nil {
			return nil, err
		}
		starts[i] = max(s, starts[i-1])
	}

	var out []Partition
	for i := range parts {
		end := size
		if i+1 < len(parts) {
			end = starts[i+1]
		}
		if end > starts[i] {
			out = append(out, Partition{Start: starts[i], End: end})
		}
	}
	if len(out) == 0 {
		out = append(out, Partition{})
	}
	for i := range out {
		out[i].No, out[i].Count = i, len(out)
	}
	return out, nil
}

// nextLineStart returns the offset of the first line that starts at or after pos.
func nextLineStart(f io.ReaderAt, pos, size int64) (int64, error) {
	if pos <= 0 {
		return 0, nil
	}
	buf := make([]byte, 8192)
	at := pos - 1
	for at < size {
		n, err := f.ReadAt(buf, at)
		if i := bytes.IndexByte(buf[:n], '\n'); i >= 0 {
			return at + int64(i) + 1, nil
		}
		at += int64(n)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
	}
	return size, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	return sc
}

func countLines(ctx context.Context, r io.Reader) (int64, error) {
	var n int64
	err := scan(ctx, r, func(int64, string) error {
		n++
		return nil
	})
	return n, err
}

func scan(ctx context.Context, r io.Reader, fn func(offset int64, text string) error) error {
	sc := newScanner(r)
	var offset int64
	for sc.Scan() {
		if offset%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := fn(offset, strings.TrimSuffix(sc.Text(), "\r")); err != nil {
			return err
		}
		offset++
	}
	return sc.Err()
}
