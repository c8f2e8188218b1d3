package domain

import (
	"time"

	"github.com/stopnorway/stopnorway/internal/geo"
)

// Config represents the stopnorway configuration loaded from stopnorway.yaml.
type Config struct {
	// Archive is the aggregated NeTEx zip. Unzipped data and the serial database land
	// next to it.
	Archive     string
	Operators   []string
	Box         BoxConfig
	Scale       geo.Scale
	TimeScale   time.Duration
	Parallelism int
	Paths       PathsConfig
	Output      OutputConfig
}

type BoxConfig struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

type PathsConfig struct {
	DataDir   string
	RunsDir   string
	SuitesDir string
	PlacesDir string
}

type OutputConfig struct {
	Format string
	Color  string
}

// DefaultConfig provides sane defaults if stopnorway.yaml is partially missing.
func DefaultConfig() Config {
	return Config{
		Archive: "data/rb_norway-aggregated-netex.zip",
		Box: BoxConfig{
			MinLat: geo.NorwayBox.Min().Lat(),
			MinLon: geo.NorwayBox.Min().Lon(),
			MaxLat: geo.NorwayBox.Max().Lat(),
			MaxLon: geo.NorwayBox.Max().Lon(),
		},
		Scale:     geo.DefaultScale,
		TimeScale: time.Hour,
		Paths: PathsConfig{
			DataDir:   "data",
			RunsDir:   "runs",
			SuitesDir: "suites",
			PlacesDir: "places",
		},
		Output: OutputConfig{
			Format: "pretty",
			Color:  "auto",
		},
	}
}

func (b BoxConfig) Box() geo.Box {
	return geo.NewBox(geo.Pt(b.MinLat, b.MinLon), geo.Pt(b.MaxLat, b.MaxLon))
}

// IsDefault reports whether the database parameters match the defaults, which is when the
// built database may be shared through its serial form.
func (c Config) IsDefault() bool {
	d := DefaultConfig()
	return c.Box.Box() == d.Box.Box() && c.Scale == d.Scale && c.TimeScale == d.TimeScale
}
