package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/infra/dbstore"
	"github.com/stopnorway/stopnorway/internal/infra/entitystore"
	"github.com/stopnorway/stopnorway/internal/infra/importer"
	"github.com/stopnorway/stopnorway/internal/infra/logger"
	"github.com/stopnorway/stopnorway/internal/infra/runstore"
	"github.com/stopnorway/stopnorway/internal/infra/workspacefinder"
	"github.com/stopnorway/stopnorway/internal/infra/yamlplaces"
	"github.com/stopnorway/stopnorway/internal/infra/yamlsuite"
	"github.com/stopnorway/stopnorway/internal/netex"
	"github.com/stopnorway/stopnorway/internal/netex/parse"
	"github.com/stopnorway/stopnorway/internal/ports"
	"github.com/stopnorway/stopnorway/internal/usecase"
)

var _ ports.EntityParser = (*parse.Parser)(nil)

type workspaceCtx struct {
	root     string
	cfg      domain.Config
	settings usecase.DatabaseSettings
	log      *slog.Logger

	unzipper ports.Unzipper
	parser   *parse.Parser
	entities ports.EntityStoreOpener
	dbs      *usecase.Databases
	store    *runstore.JSONStore
	suites   *yamlsuite.Loader
	places   *yamlplaces.Loader
}

func loadWorkspace(opts *rootOptions) (*workspaceCtx, error) {
	root, err := resolveWorkspaceRoot(opts.workspace)
	if err != nil {
		return nil, err
	}

	cfg, err := workspacefinder.LoadConfig(root)
	if err != nil {
		return nil, err
	}
	settings, err := usecase.SettingsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.L().With("workspace", root)
	uz := importer.New(importer.WithLogger(log))
	parser := parse.New(
		parse.WithParallelism(cfg.Parallelism),
		parse.WithLogger(log),
		parse.WithInterner(netex.NewInterner()),
	)
	entities := entitystore.Opener(entitystore.WithLogger(log))
	dbs := usecase.NewDatabases(settings, uz, parser, dbstore.New(dbstore.WithLogger(log)),
		usecase.WithEntityStore(entities),
		usecase.WithDatabasesLogger(log),
	)

	return &workspaceCtx{
		root:     root,
		cfg:      cfg,
		settings: settings,
		log:      log,
		unzipper: uz,
		parser:   parser,
		entities: entities,
		dbs:      dbs,
		store:    runstore.NewJSONStore(root, cfg, runstore.WithIndex(true)),
		suites:   yamlsuite.NewLoader(yamlsuite.WithSuitesDir(cfg.Paths.SuitesDir)),
		places:   yamlplaces.NewLoader(root, yamlplaces.WithPlacesDir(cfg.Paths.PlacesDir)),
	}, nil
}

func resolveWorkspaceRoot(workspaceFlag string) (string, error) {
	w := strings.TrimSpace(workspaceFlag)
	if w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path: %w", err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	root, err := workspacefinder.NewFinder().FindRoot(wd)
	if err != nil {
		return "", fmt.Errorf("workspace not found from %q (tip: run `stopnorway init`): %w", wd, err)
	}
	return root, nil
}

// parseOperators reads --operator values. Unknown codespaces are accepted; the archive
// decides whether they have data.
func parseOperators(in []string) ([]netex.Operator, error) {
	ops, err := netex.ParseOperators(in)
	if err != nil {
		return nil, &domain.OpError{Op: "cli.operators", Kind: domain.KindInvalidConfig, Err: err}
	}
	return ops, nil
}
