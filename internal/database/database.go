package database

import (
	"log/slog"
	"slices"
	"time"

	"github.com/google/btree"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/geo"
	"github.com/stopnorway/stopnorway/internal/netex"
)

type cellEntry struct {
	cell  geo.Cell
	specs []*JourneySpecification
}

func cellLess(a, b cellEntry) bool { return a.cell.Compare(b.cell) < 0 }

// Database is an immutable, query-ready view over a set of entities.
type Database struct {
	box       geo.Box
	scale     geo.Scale
	timeScale time.Duration
	log       *slog.Logger

	entities *netex.Set
	specs    map[netex.ID]*JourneySpecification
	ordered  []*JourneySpecification
	journeys map[netex.ID][]*Journey
	total    int
	cells    *btree.BTreeG[cellEntry]
}

type Option func(*Database)

// WithBox bounds the indexed area. Legs entirely outside it are not indexed.
func WithBox(b geo.Box) Option {
	return func(d *Database) { d.box = b }
}

func WithScale(s geo.Scale) Option {
	return func(d *Database) { d.scale = s }
}

func WithTimeScale(ts time.Duration) Option {
	return func(d *Database) {
		if ts > 0 {
			d.timeScale = ts
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Database) {
		if l != nil {
			d.log = l
		}
	}
}

// New resolves the entities of set and indexes them.
func New(set *netex.Set, opts ...Option) *Database {
	d := &Database{
		box:       geo.NorwayBox,
		scale:     geo.DefaultScale,
		timeScale: time.Hour,
		log:       slog.New(slog.DiscardHandler),
		entities:  set,
		specs:     map[netex.ID]*JourneySpecification{},
		journeys:  map[netex.ID][]*Journey{},
		cells:     btree.NewG[cellEntry](32, cellLess),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.entities == nil {
		d.entities = netex.NewSet()
	}

	start := time.Now()
	d.buildSpecifications()
	d.buildJourneys()
	d.buildIndex()
	d.log.Info("database.built",
		"entities", d.entities.Len(),
		"specifications", len(d.ordered),
		"journeys", d.total,
		"cells", d.cells.Len(),
		"scale", d.scale.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return d
}

func (d *Database) buildSpecifications() {
	missingLinks := 0
	for _, jp := range netex.All[*netex.JourneyPattern](d.entities, netex.KindJourneyPattern) {
		jp.SortSequences()

		var route *netex.Route
		var line *netex.Line
		if r, ok := netex.Lookup[*netex.Route](d.entities, jp.RouteRef); ok {
			route = r
			line, _ = netex.Lookup[*netex.Line](d.entities, r.LineRef)
		}

		stops := make([]StopPoint, 0, len(jp.PointsInSequence))
		for _, sp := range jp.PointsInSequence {
			ssp, _ := netex.Lookup[*netex.ScheduledStopPoint](d.entities, sp.ScheduledStopPointRef)
			stops = append(stops, StopPoint{InPattern: sp, Stop: ssp})
		}

		legs := make([]*ServiceLeg, 0, len(jp.LinksInSequence))
		for _, sl := range jp.LinksInSequence {
			link, ok := netex.Lookup[*netex.ServiceLink](d.entities, sl.ServiceLinkRef)
			if !ok {
				missingLinks++
				d.log.Warn("database.missing_link", "journey_pattern", jp.ID.String(), "service_link", sl.ServiceLinkRef.String())
				continue
			}
			from, _ := netex.Lookup[*netex.ScheduledStopPoint](d.entities, link.FromPointRef)
			to, _ := netex.Lookup[*netex.ScheduledStopPoint](d.entities, link.ToPointRef)
			legs = append(legs, newServiceLeg(link, sl.Order, from, to))
		}

		spec := newJourneySpecification(jp, route, line, stops, legs)
		d.specs[spec.ID] = spec
		d.ordered = append(d.ordered, spec)
	}
	slices.SortFunc(d.ordered, func(a, b *JourneySpecification) int { return a.ID.Compare(b.ID) })
	if missingLinks > 0 {
		d.log.Warn("database.missing_links", "count", missingLinks)
	}
}

func (d *Database) buildJourneys() {
	orphans := 0
	for _, sj := range netex.All[*netex.ServiceJourney](d.entities, netex.KindServiceJourney) {
		spec, ok := d.specs[sj.JourneyPatternRef]
		if !ok {
			orphans++
			continue
		}
		d.journeys[spec.ID] = append(d.journeys[spec.ID], newJourney(sj, spec))
		d.total++
	}
	for _, js := range d.journeys {
		slices.SortFunc(js, (*Journey).Compare)
	}
	if orphans > 0 {
		d.log.Warn("database.orphan_journeys", "count", orphans)
	}
}

func (d *Database) buildIndex() {
	for _, spec := range d.ordered {
		for _, c := range spec.Cells(d.scale) {
			if !c.Box(d.scale).Overlaps(d.box) {
				continue
			}
			entry, _ := d.cells.Get(cellEntry{cell: c})
			entry.cell = c
			entry.specs = append(entry.specs, spec)
			d.cells.ReplaceOrInsert(entry)
		}
	}
}

func (d *Database) Box() geo.Box                 { return d.box }
func (d *Database) Scale() geo.Scale             { return d.scale }
func (d *Database) TemporalScale() time.Duration { return d.timeScale }
func (d *Database) Entities() *netex.Set         { return d.entities }
func (d *Database) Size() int                    { return d.entities.Len() }
func (d *Database) CellCount() int               { return d.cells.Len() }
func (d *Database) JourneyCount() int            { return d.total }
func (d *Database) SpecificationCount() int      { return len(d.ordered) }
func (d *Database) Counts() map[netex.Kind]int   { return d.entities.Counts() }

func (d *Database) Entity(id netex.ID) (netex.Entity, bool) { return d.entities.Get(id) }

// EntitiesOf returns the top-level entities of one kind in parse order.
func (d *Database) EntitiesOf(k netex.Kind) []netex.Entity { return d.entities.OfKind(k) }

func (d *Database) ScheduledStopPoint(id netex.ID) (*netex.ScheduledStopPoint, bool) {
	return netex.Lookup[*netex.ScheduledStopPoint](d.entities, id)
}

func (d *Database) ServiceLink(id netex.ID) (*netex.ServiceLink, bool) {
	return netex.Lookup[*netex.ServiceLink](d.entities, id)
}

func (d *Database) JourneySpecification(id netex.ID) (*JourneySpecification, bool) {
	s, ok := d.specs[id]
	return s, ok
}

// AllJourneySpecifications returns every specification ordered by id.
func (d *Database) AllJourneySpecifications() []*JourneySpecification {
	return slices.Clone(d.ordered)
}

// JourneySpecifications returns the distinct specifications overlapping any of boxes,
// ordered by id.
func (d *Database) JourneySpecifications(boxes ...geo.Box) []*JourneySpecification {
	seen := map[netex.ID]bool{}
	var out []*JourneySpecification
	for _, b := range boxes {
		d.scanCells(b, func(e cellEntry) {
			for _, spec := range e.specs {
				if !seen[spec.ID] && spec.Overlaps(boxes) {
					seen[spec.ID] = true
					out = append(out, spec)
				}
			}
		})
	}
	slices.SortFunc(out, func(a, b *JourneySpecification) int { return a.ID.Compare(b.ID) })
	return out
}

// scanCells visits the indexed cells of b, one latitude row at a time.
func (d *Database) scanCells(b geo.Box, fn func(cellEntry)) {
	lo, hi := d.scale.CellOf(b.Min()), d.scale.CellOf(b.Max())
	for lat := lo.Lat; lat <= hi.Lat; lat++ {
		from := cellEntry{cell: geo.Cell{Lat: lat, Lon: lo.Lon}}
		to := cellEntry{cell: geo.Cell{Lat: lat, Lon: hi.Lon + 1}}
		d.cells.AscendRange(from, to, func(e cellEntry) bool {
			fn(e)
			return true
		})
	}
}

// Journeys returns the journeys of every specification overlapping boxes, ordered by start.
func (d *Database) Journeys(boxes ...geo.Box) []*Journey {
	var out []*Journey
	for _, spec := range d.JourneySpecifications(boxes...) {
		out = append(out, d.journeys[spec.ID]...)
	}
	slices.SortFunc(out, (*Journey).Compare)
	return out
}

// JourneysDuring is Journeys restricted to those under way during ts.
func (d *Database) JourneysDuring(ts geo.Timespan, boxes ...geo.Box) []*Journey {
	return slices.DeleteFunc(d.Journeys(boxes...), func(j *Journey) bool { return !j.During(ts) })
}

// JourneysOf returns the journeys following one specification.
func (d *Database) JourneysOf(spec netex.ID) []*Journey {
	return slices.Clone(d.journeys[spec])
}

// ServiceLegs returns the distinct legs overlapping any of boxes, ordered by link id.
func (d *Database) ServiceLegs(boxes ...geo.Box) []*ServiceLeg {
	seen := map[netex.ID]bool{}
	var out []*ServiceLeg
	for _, spec := range d.JourneySpecifications(boxes...) {
		for _, leg := range spec.Legs {
			if !seen[leg.ID] && leg.Overlaps(boxes) {
				seen[leg.ID] = true
				out = append(out, leg)
			}
		}
	}
	slices.SortFunc(out, func(a, b *ServiceLeg) int { return a.ID.Compare(b.ID) })
	return out
}

// Stats summarizes the database. Operators and Source are left for the caller.
func (d *Database) Stats() domain.DatabaseStats {
	entities := map[string]int{}
	for k, n := range d.entities.Counts() {
		entities[string(k)] = n
	}
	return domain.DatabaseStats{
		Entities:       entities,
		Specifications: len(d.ordered),
		Journeys:       d.total,
		Cells:          d.cells.Len(),
		Box:            d.box.String(),
		Scale:          d.scale.String(),
		TimeScale:      d.timeScale.String(),
	}
}
