package workspacefinder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/geo"
)

// ConfigFile names the workspace configuration.
const ConfigFile = "stopnorway.yaml"

// LoadConfig loads stopnorway.yaml from the workspace root and applies it over
// domain.DefaultConfig. Relative archive and paths are resolved against root.
func LoadConfig(root string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	path := filepath.Join(root, ConfigFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y yamlConfig
	if err := yaml.Unmarshal(b, &y); err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}
	if err := y.StopNorway.apply(&cfg); err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err),
		}
	}

	cfg.Archive = resolve(root, cfg.Archive)
	cfg.Paths.DataDir = resolve(root, cfg.Paths.DataDir)
	cfg.Paths.RunsDir = resolve(root, cfg.Paths.RunsDir)
	cfg.Paths.SuitesDir = resolve(root, cfg.Paths.SuitesDir)
	cfg.Paths.PlacesDir = resolve(root, cfg.Paths.PlacesDir)
	return cfg, nil
}

func resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

type yamlConfig struct {
	StopNorway yamlStopNorway `yaml:"stopnorway"`
}

type yamlStopNorway struct {
	Archive   string   `yaml:"archive"`
	Operators []string `yaml:"operators"`

	Box *struct {
		MinLat float64 `yaml:"min_lat"`
		MinLon float64 `yaml:"min_lon"`
		MaxLat float64 `yaml:"max_lat"`
		MaxLon float64 `yaml:"max_lon"`
	} `yaml:"box"`

	Scale *struct {
		Lat int `yaml:"lat"`
		Lon int `yaml:"lon"`
	} `yaml:"scale"`

	TimeScale   string `yaml:"time_scale"`
	Parallelism *int   `yaml:"parallelism"`

	Paths struct {
		DataDir   string `yaml:"data_dir"`
		RunsDir   string `yaml:"runs_dir"`
		SuitesDir string `yaml:"suites_dir"`
		PlacesDir string `yaml:"places_dir"`
	} `yaml:"paths"`

	Output struct {
		Format string `yaml:"format"`
		Color  string `yaml:"color"`
	} `yaml:"output"`
}

func (y yamlStopNorway) apply(cfg *domain.Config) error {
	if y.Archive != "" {
		cfg.Archive = y.Archive
	}
	if len(y.Operators) > 0 {
		cfg.Operators = y.Operators
	}
	if y.Box != nil {
		if y.Box.MinLat >= y.Box.MaxLat || y.Box.MinLon >= y.Box.MaxLon {
			return fmt.Errorf("box min must be below max")
		}
		if _, err := geo.NewPoint(y.Box.MinLat, y.Box.MinLon); err != nil {
			return fmt.Errorf("box min: %w", err)
		}
		if _, err := geo.NewPoint(y.Box.MaxLat, y.Box.MaxLon); err != nil {
			return fmt.Errorf("box max: %w", err)
		}
		cfg.Box = domain.BoxConfig{MinLat: y.Box.MinLat, MinLon: y.Box.MinLon, MaxLat: y.Box.MaxLat, MaxLon: y.Box.MaxLon}
	}
	if y.Scale != nil {
		s, err := geo.NewScale(y.Scale.Lat, y.Scale.Lon)
		if err != nil {
			return err
		}
		cfg.Scale = s
	}
	if y.TimeScale != "" {
		d, err := time.ParseDuration(y.TimeScale)
		if err != nil {
			return fmt.Errorf("time_scale: %v", err)
		}
		if d <= 0 || d > 24*time.Hour {
			return fmt.Errorf("time_scale %s out of range", d)
		}
		cfg.TimeScale = d
	}
	if y.Parallelism != nil {
		if *y.Parallelism < 0 {
			return fmt.Errorf("parallelism must not be negative")
		}
		cfg.Parallelism = *y.Parallelism
	}
	if y.Paths.DataDir != "" {
		cfg.Paths.DataDir = y.Paths.DataDir
	}
	if y.Paths.RunsDir != "" {
		cfg.Paths.RunsDir = y.Paths.RunsDir
	}
	if y.Paths.SuitesDir != "" {
		cfg.Paths.SuitesDir = y.Paths.SuitesDir
	}
	if y.Paths.PlacesDir != "" {
		cfg.Paths.PlacesDir = y.Paths.PlacesDir
	}
	switch f := strings.ToLower(y.Output.Format); f {
	case "":
	case "pretty", "json":
		cfg.Output.Format = f
	default:
		return fmt.Errorf("unknown output format %q", y.Output.Format)
	}
	switch c := strings.ToLower(y.Output.Color); c {
	case "":
	case "auto", "always", "never":
		cfg.Output.Color = c
	default:
		return fmt.Errorf("unknown color mode %q", y.Output.Color)
	}
	return nil
}
