package ports

import "github.com/stopnorway/stopnorway/internal/domain"

type WorkspaceInitializer interface {
	Init(spec domain.WorkspaceSpec, force bool) error
}
