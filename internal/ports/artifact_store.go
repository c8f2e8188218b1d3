package ports

import "github.com/stopnorway/stopnorway/internal/domain"

// ArtifactStore persists query runs so results can be compared later.
type ArtifactStore interface {
	SaveQuery(run domain.QueryRun) (id string, err error)
	ListQueries() ([]domain.QueryRef, error)
	LoadQuery(id string) (domain.QueryRun, error)
}
