package tui

import (
	"log/slog"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/ports"
)

type Deps struct {
	Store         ports.ArtifactStore
	WorkspaceRoot string

	// Initial opens this saved run instead of the run list.
	Initial string

	Logger *slog.Logger
	Debug  bool
}

// runSource loads saved runs for the browser.
type runSource interface {
	ListQueries() ([]domain.QueryRef, error)
	LoadQuery(id string) (domain.QueryRun, error)
}
