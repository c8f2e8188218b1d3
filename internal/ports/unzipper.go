package ports

import (
	"context"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/netex"
)

// Unzipper extracts the per-operator NeTEx files of an archive into a directory.
type Unzipper interface {
	// TargetPath is the directory an archive unzips into.
	TargetPath(zipFile string) string
	Unzip(ctx context.Context, zipFile string, operators []netex.Operator) (dir string, stats domain.UnzipStats, err error)
}
