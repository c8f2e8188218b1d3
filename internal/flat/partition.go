// Package flat reads large line-oriented comma separated files by splitting them into
// byte ranges that are scanned concurrently.
package flat

import (
	"runtime"
)

// Shape counts the decoration lines around the data: Header lines at the start and
// Footer lines at the end are skipped.
type Shape struct {
	Header int
	Footer int
}

// Partitioning asks for Count partitions. Files smaller than Tail bytes are read as a
// single partition.
type Partitioning struct {
	Count int
	Tail  int64
}

// DefaultPartitioning uses one partition per CPU and reads files under 64KiB whole.
func DefaultPartitioning() Partitioning {
	return Partitioning{Count: runtime.NumCPU(), Tail: 8 * 8192}
}

// Partition is a byte range [Start, End) of a file.
type Partition struct {
	No    int
	Count int
	Start int64
	End   int64
}

func (p Partition) Size() int64 { return p.End - p.Start }

func (p Partition) First() bool { return p.No == 0 }

func (p Partition) Last() bool { return p.No == p.Count-1 }

// Partitions splits size bytes into contiguous ranges covering all of them. The ranges
// are not yet aligned to lines.
func Partitions(size int64, p Partitioning) []Partition {
	count := max(p.Count, 1)
	if size <= 0 {
		return []Partition{{No: 0, Count: 1}}
	}
	if size < p.Tail || int64(count) > size {
		count = 1
	}
	out := make([]Partition, 0, count)
	chunk := size / int64(count)
	var start int64
	for i := range count {
		end := start + chunk
		if i == count-1 {
			end = size
		}
		out = append(out, Partition{No: i, Count: count, Start: start, End: end})
		start = end
	}
	return out
}
