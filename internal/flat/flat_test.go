package flat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func collect(t *testing.T, path string, shape Shape, p Partitioning) map[int64]string {
	t.Helper()
	var mu sync.Mutex
	seen := map[int64]string{}
	err := ForEachPartition(context.Background(), path, shape, p, func(_ Partition, l Line) error {
		mu.Lock()
		defer mu.Unlock()
		if prev, ok := seen[l.No]; ok {
			return fmt.Errorf("line %d seen twice: %q and %q", l.No, prev, l.Text)
		}
		seen[l.No] = l.Text
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachPartition error: %v", err)
	}
	return seen
}

func TestPartitions(t *testing.T) {
	cases := []struct {
		name string
		size int64
		p    Partitioning
		want []Partition
	}{
		{"even", 100, Partitioning{Count: 4}, []Partition{
			{No: 0, Count: 4, Start: 0, End: 25},
			{No: 1, Count: 4, Start: 25, End: 50},
			{No: 2, Count: 4, Start: 50, End: 75},
			{No: 3, Count: 4, Start: 75, End: 100},
		}},
		{"remainder goes last", 10, Partitioning{Count: 3}, []Partition{
			{No: 0, Count: 3, Start: 0, End: 3},
			{No: 1, Count: 3, Start: 3, End: 6},
			{No: 2, Count: 3, Start: 6, End: 10},
		}},
		{"below tail", 100, Partitioning{Count: 4, Tail: 1000}, []Partition{{No: 0, Count: 1, Start: 0, End: 100}}},
		{"more partitions than bytes", 2, Partitioning{Count: 8}, []Partition{{No: 0, Count: 1, Start: 0, End: 2}}},
		{"empty", 0, Partitioning{Count: 8}, []Partition{{No: 0, Count: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, Partitions(tc.size, tc.p)); diff != "" {
				t.Fatalf("partitions (-want +got):\n%s", diff)
			}
		})
	}
}

func TestForEachPartition_EveryLineOnce(t *testing.T) {
	var b strings.Builder
	want := map[int64]string{}
	for i := 1; i <= 997; i++ {
		line := fmt.Sprintf("%d,%s", i, strings.Repeat("x", i%37))
		b.WriteString(line + "\n")
		if i > 1 && i <= 995 {
			want[int64(i)] = line
		}
	}
	path := writeFile(t, b.String())

	for _, count := range []int{1, 2, 7, 64} {
		t.Run(fmt.Sprintf("%d partitions", count), func(t *testing.T) {
			got := collect(t, path, Shape{Header: 1, Footer: 2}, Partitioning{Count: count})
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("lines (-want +got):\n%s", diff)
			}
		})
	}
}

func TestForEachPartition_Boundaries(t *testing.T) {
	cases := []struct {
		name    string
		content string
		count   int
		want    map[int64]string
	}{
		{"split on newline", "a\nb\nc\n", 3, map[int64]string{1: "a", 2: "b", 3: "c"}},
		{"no trailing newline", "a\nb\nc", 3, map[int64]string{1: "a", 2: "b", 3: "c"}},
		{"line spans partitions", strings.Repeat("z", 50) + "\nq\n", 10, map[int64]string{1: strings.Repeat("z", 50), 2: "q"}},
		{"crlf", "a\r\nb\r\n", 2, map[int64]string{1: "a", 2: "b"}},
		{"empty file", "", 4, map[int64]string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := collect(t, writeFile(t, tc.content), Shape{}, Partitioning{Count: tc.count})
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("lines (-want +got):\n%s", diff)
			}
		})
	}
}

func TestForEachPartition_CallbackError(t *testing.T) {
	path := writeFile(t, "a\nb\nc\nd\n")
	boom := fmt.Errorf("boom")
	err := ForEachPartition(context.Background(), path, Shape{}, Partitioning{Count: 2}, func(_ Partition, l Line) error {
		if l.Text == "c" {
			return boom
		}
		return nil
	})
	if err != boom {
		t.Fatalf("expected callback error, got %v", err)
	}
}

func TestHeaders(t *testing.T) {
	path := writeFile(t, "\uFEFFstop_id, stop_name ,,stop_lat\n1,A,,59.9\n")
	got, err := Headers(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"stop_id", "stop_name", "stop_lat"}, got); diff != "" {
		t.Fatalf("headers (-want +got):\n%s", diff)
	}

	if _, err := Headers(writeFile(t, "")); err == nil {
		t.Fatalf("expected error for a file without header")
	}
}

func TestRecords(t *testing.T) {
	path := writeFile(t, "stop_id,stop_name,stop_lat\nNSR:1,Jernbanetorget,59.911\nNSR:2,Stortinget\nNSR:3,Nationaltheatret,59.915,extra\n")
	got, err := Records(context.Background(), path, WithPartitioning(Partitioning{Count: 3}))
	if err != nil {
		t.Fatalf("Records error: %v", err)
	}
	want := []Record{
		{"stop_id": "NSR:1", "stop_name": "Jernbanetorget", "stop_lat": "59.911", LineNoKey: "2"},
		{"stop_id": "NSR:2", "stop_name": "Stortinget", LineNoKey: "3"},
		{"stop_id": "NSR:3", "stop_name": "Nationaltheatret", "stop_lat": "59.915", LineNoKey: "4"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("records (-want +got):\n%s", diff)
	}
	if got[2].LineNo() != 4 {
		t.Fatalf("LineNo = %d", got[2].LineNo())
	}
}

func TestRecords_SkipsLargeFiles(t *testing.T) {
	path := writeFile(t, "a,b\n1,2\n")
	got, err := Records(context.Background(), path, WithMaxSize(4))
	if err != nil || got != nil {
		t.Fatalf("expected skip, got %v %v", got, err)
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"stops.txt", "trips.TXT", "readme.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.txt"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := Files(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "stops.txt"), filepath.Join(dir, "trips.TXT")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("files (-want +got):\n%s", diff)
	}
}
