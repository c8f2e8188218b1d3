package workspacefinder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stopnorway/stopnorway/internal/domain"
)

func noEnv(string) string { return "" }

func TestFindRoot_FindsWorkspaceFromNestedDir(t *testing.T) {
	tmp := t.TempDir()
	root := filepath.Join(tmp, "ws")
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, root, "stopnorway:\n  operators: [RUT]\n")

	got, err := NewFinder(WithEnv(EnvVar, noEnv)).FindRoot(nested)
	if err != nil {
		t.Fatalf("FindRoot returned error: %v", err)
	}
	if got != root {
		t.Fatalf("expected root=%s, got=%s", root, got)
	}
}

func TestFindRoot_NotFoundBelowCeiling(t *testing.T) {
	tmp := t.TempDir()
	start := filepath.Join(tmp, "a", "b")
	_ = os.MkdirAll(start, 0o755)
	// A config above the ceiling is never reached.
	writeConfig(t, tmp, "")

	f := NewFinder(WithEnv(EnvVar, noEnv), WithCeilings(tmp))
	_, err := f.FindRoot(start)
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected KindNotFound, got: %v", err)
	}
}

func TestFindRoot_IgnoresConfigDirectory(t *testing.T) {
	tmp := t.TempDir()
	start := filepath.Join(tmp, "ws")
	if err := os.MkdirAll(filepath.Join(start, ConfigFile), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	_, err := NewFinder(WithEnv(EnvVar, noEnv), WithCeilings(tmp)).FindRoot(start)
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected KindNotFound, got: %v", err)
	}
}

func TestFindRoot_FromFileAndEmpty(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "")
	file := filepath.Join(root, "points.txt")
	_ = os.WriteFile(file, nil, 0o644)

	f := NewFinder(WithEnv(EnvVar, noEnv))
	got, err := f.FindRoot(file)
	if err != nil || got != root {
		t.Fatalf("FindRoot(file) = %s, %v", got, err)
	}

	if _, err := f.FindRoot(""); !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}

func TestFindRoot_EnvOverride(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "")
	elsewhere := t.TempDir()

	env := func(name string) string {
		if name == "SN_TEST_ROOT" {
			return root
		}
		return ""
	}
	got, err := NewFinder(WithEnv("SN_TEST_ROOT", env)).FindRoot(elsewhere)
	if err != nil || got != root {
		t.Fatalf("FindRoot with env = %s, %v", got, err)
	}

	bad := func(string) string { return elsewhere }
	if _, err := NewFinder(WithEnv("SN_TEST_ROOT", bad)).FindRoot(root); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found for env without config, got %v", err)
	}
}

func TestFindRoot_CustomConfigFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "alt.yaml"), nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := NewFinder(WithEnv("", nil), WithConfigFile("alt.yaml")).FindRoot(root)
	if err != nil || got != root {
		t.Fatalf("FindRoot = %s, %v", got, err)
	}
}
