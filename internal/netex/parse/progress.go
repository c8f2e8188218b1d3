package parse

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stopnorway/stopnorway/internal/netex"
)

const (
	kilo = 1024
	mega = kilo * kilo
)

// Progress tracks a parse run and logs throughput.
type Progress struct {
	sources   int
	length    int64
	operators int
	start     time.Time
	interval  time.Duration
	now       func() time.Time
	log       *slog.Logger

	sourcesDone atomic.Int64
	bytes       atomic.Int64
	entities    atomic.Int64

	mu      sync.Mutex
	seen    map[netex.Operator]struct{}
	lastLog time.Time
}

// Snapshot is a point-in-time view of a Progress.
type Snapshot struct {
	Percent        int     `json:"percent"`
	Sources        int     `json:"sources"`
	SourcesTotal   int     `json:"sources_total"`
	MB             int64   `json:"mb"`
	MBTotal        int64   `json:"mb_total"`
	MBPerSec       float64 `json:"mb_per_sec"`
	KEntities      int64   `json:"k_entities"`
	EntitiesPerSec float64 `json:"entities_per_sec"`
	Operators      int     `json:"operators"`
	OperatorsTotal int     `json:"operators_total"`
	Done           bool    `json:"done"`
}

func NewProgress(sources []Source, log *slog.Logger, now func() time.Time, interval time.Duration) *Progress {
	ops := map[netex.Operator]struct{}{}
	var length int64
	for _, s := range sources {
		length += s.Size
		ops[s.Operator] = struct{}{}
	}
	return &Progress{
		sources:   len(sources),
		length:    length,
		operators: len(ops),
		start:     now(),
		interval:  interval,
		now:       now,
		log:       log,
		seen:      map[netex.Operator]struct{}{},
	}
}

// Recorded notes a finished source and logs when the interval has passed or the run is
// complete.
func (p *Progress) Recorded(src Source, entities int) {
	p.sourcesDone.Add(1)
	p.bytes.Add(src.Size)
	p.entities.Add(int64(entities))

	p.mu.Lock()
	p.seen[src.Operator] = struct{}{}
	now := p.now()
	due := now.Sub(p.lastLog) >= p.interval
	if due {
		p.lastLog = now
	}
	p.mu.Unlock()

	snap := p.Snapshot()
	if due || snap.Done {
		p.logSnapshot(snap)
	}
}

func (p *Progress) Snapshot() Snapshot {
	p.mu.Lock()
	ops := len(p.seen)
	p.mu.Unlock()

	bytes := p.bytes.Load()
	entities := p.entities.Load()
	done := int(p.sourcesDone.Load())

	secs := p.now().Sub(p.start).Seconds()
	if secs <= 0 {
		secs = 1
	}
	percent := 100
	if p.length > 0 {
		percent = int(100 * bytes / p.length)
	}
	return Snapshot{
		Percent:        percent,
		Sources:        done,
		SourcesTotal:   p.sources,
		MB:             bytes / mega,
		MBTotal:        p.length / mega,
		MBPerSec:       float64(bytes) / mega / secs,
		KEntities:      entities / kilo,
		EntitiesPerSec: float64(entities) / secs,
		Operators:      ops,
		OperatorsTotal: p.operators,
		Done:           done == p.sources,
	}
}

func (p *Progress) logSnapshot(s Snapshot) {
	p.log.Info("parse.progress",
		"percent", s.Percent,
		"sources", s.Sources,
		"sources_total", s.SourcesTotal,
		"mb", s.MB,
		"mb_total", s.MBTotal,
		"mb_per_sec", s.MBPerSec,
		"k_entities", s.KEntities,
		"entities_per_sec", s.EntitiesPerSec,
		"operators", s.Operators,
		"operators_total", s.OperatorsTotal,
	)
}
