package workspacefinder

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/geo"
)

func writeConfig(t *testing.T, root, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, ConfigFile), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "stopnorway:\n  operators: [RUT]\n")

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	want := domain.DefaultConfig()
	want.Operators = []string{"RUT"}
	want.Archive = filepath.Join(root, "data", "rb_norway-aggregated-netex.zip")
	want.Paths.DataDir = filepath.Join(root, "data")
	want.Paths.RunsDir = filepath.Join(root, "runs")
	want.Paths.SuitesDir = filepath.Join(root, "suites")
	want.Paths.PlacesDir = filepath.Join(root, "places")
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}
	if !cfg.IsDefault() {
		t.Fatalf("operators alone must not make the config custom")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `stopnorway:
  archive: /srv/netex.zip
  box: {min_lat: 59, min_lon: 10, max_lat: 60, max_lon: 11}
  scale: {lat: 10, lon: 5}
  time_scale: 15m
  parallelism: 2
  paths:
    runs_dir: /tmp/runs
  output:
    format: JSON
    color: never
`)

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Archive != "/srv/netex.zip" || cfg.Paths.RunsDir != "/tmp/runs" {
		t.Fatalf("absolute paths must be kept: %+v", cfg)
	}
	if cfg.Scale != (geo.Scale{Lat: 10, Lon: 5}) || cfg.TimeScale != 15*time.Minute || cfg.Parallelism != 2 {
		t.Fatalf("unexpected numbers: %+v", cfg)
	}
	if cfg.Box.MaxLat != 60 || cfg.Output.Format != "json" || cfg.Output.Color != "never" {
		t.Fatalf("unexpected box/output: %+v", cfg)
	}
	if cfg.IsDefault() {
		t.Fatalf("custom box and scale must not be default")
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		kind    domain.ErrorKind
	}{
		{"syntax", "stopnorway: [", domain.KindInvalidConfig},
		{"scale", "stopnorway:\n  scale: {lat: 0, lon: 5}\n", domain.KindInvalidConfig},
		{"box", "stopnorway:\n  box: {min_lat: 60, min_lon: 10, max_lat: 59, max_lon: 11}\n", domain.KindInvalidConfig},
		{"box out of range", "stopnorway:\n  box: {min_lat: 57, min_lon: 4, max_lat: 95, max_lon: 32}\n", domain.KindInvalidConfig},
		{"time scale", "stopnorway:\n  time_scale: soon\n", domain.KindInvalidConfig},
		{"negative time scale", "stopnorway:\n  time_scale: -1h\n", domain.KindInvalidConfig},
		{"parallelism", "stopnorway:\n  parallelism: -1\n", domain.KindInvalidConfig},
		{"format", "stopnorway:\n  output: {format: xml}\n", domain.KindInvalidConfig},
		{"color", "stopnorway:\n  output: {color: pink}\n", domain.KindInvalidConfig},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			writeConfig(t, root, tc.content)
			if _, err := LoadConfig(root); !domain.IsKind(err, tc.kind) {
				t.Fatalf("expected %s, got %v", tc.kind, err)
			}
		})
	}

	if _, err := LoadConfig(t.TempDir()); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found for missing file, got %v", err)
	}
}
