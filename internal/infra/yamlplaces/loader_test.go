package yamlplaces

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/stopnorway/stopnorway/internal/domain"
)

func writePlaces(t *testing.T, dir, name, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadPlaces_MergesLocalOverrides(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "places")
	writePlaces(t, dir, "oslo.yaml", "vars:\n  jernbanetorget: \"59.9111,10.7528\"\n  home: \"59.93,10.76\"\n")
	writePlaces(t, dir, "places.local.yaml", "vars:\n  home: \"59.95,10.78\"\n")

	set, err := NewLoader(root).LoadPlaces("oslo")
	if err != nil {
		t.Fatalf("LoadPlaces error: %v", err)
	}
	want := domain.PlaceSet{Name: "oslo", Vars: domain.Vars{"jernbanetorget": "59.9111,10.7528", "home": "59.95,10.78"}}
	if diff := cmp.Diff(want, set); diff != "" {
		t.Fatalf("places (-want +got):\n%s", diff)
	}
}

func TestLoadPlaces_ByPathWithoutLocal(t *testing.T) {
	p := writePlaces(t, t.TempDir(), "bergen.yml", "vars:\n  bryggen: \"60.397,5.324\"\n")

	set, err := NewLoader("/nowhere").LoadPlaces(p)
	if err != nil {
		t.Fatalf("LoadPlaces error: %v", err)
	}
	if set.Name != "bergen" || set.Vars["bryggen"] != "60.397,5.324" {
		t.Fatalf("unexpected place set %+v", set)
	}
}

func TestLoadPlaces_Errors(t *testing.T) {
	root := t.TempDir()
	if _, err := NewLoader(root).LoadPlaces("missing"); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}

	dir := filepath.Join(root, "places")
	writePlaces(t, dir, "bad.yaml", "vars: [\n")
	if _, err := NewLoader(root).LoadPlaces("bad"); !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}

	writePlaces(t, dir, "ok.yaml", "vars: {}\n")
	writePlaces(t, dir, "places.local.yaml", "vars: [\n")
	if _, err := NewLoader(root).LoadPlaces("ok"); !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config from the local file, got %v", err)
	}
}
