package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/gops/agent"
	"github.com/spf13/cobra"

	"github.com/stopnorway/stopnorway/internal/infra/logger"
	"github.com/stopnorway/stopnorway/internal/infra/workspacefinder"
)

// Execute runs the command line and returns the process exit code. Ctrl-C cancels the
// running command.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return exitCode(ctx, newRootCmd)
}

func exitCode(ctx context.Context, build func(*rootOptions) *cobra.Command) int {
	opts := &rootOptions{}
	err := build(opts).ExecuteContext(ctx)
	_ = opts.close()
	if err != nil {
		return 1
	}
	return 0
}

type rootOptions struct {
	debug     bool
	workspace string
	gops      bool

	cleanups []func() error
}

// setup starts logging under the workspace, or the working directory when there is
// none, and the gops agent when asked for.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	logRoot := o.workspace
	if strings.TrimSpace(logRoot) == "" {
		wd, err := os.Getwd()
		if err != nil {
			wd = "."
		}
		logRoot, _ = filepath.Abs(wd)
		if root, ferr := workspacefinder.NewFinder().FindRoot(logRoot); ferr == nil && root != "" {
			logRoot = root
		}
	}

	console := slog.LevelWarn
	if o.debug {
		console = slog.LevelInfo
	}
	cleanup, _ := logger.Setup(logger.Config{
		Root:         logRoot,
		Debug:        o.debug,
		Console:      cmd.ErrOrStderr(),
		ConsoleLevel: console,
	})
	if cleanup != nil {
		o.cleanups = append(o.cleanups, cleanup)
	}

	if o.gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			return err
		}
		logger.L().Info("gops.listening")
		o.cleanups = append(o.cleanups, func() error {
			agent.Close()
			return nil
		})
	}
	return nil
}

// close runs cleanups in reverse order. It is safe to call twice.
func (o *rootOptions) close() error {
	var errs []error
	for i := len(o.cleanups) - 1; i >= 0; i-- {
		errs = append(errs, o.cleanups[i]())
	}
	o.cleanups = nil
	return errors.Join(errs...)
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "stopnorway",
		Short:        "Import Norwegian NeTEx timetables and query journeys by place and time",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return opts.close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrowse(cmd, opts, "")
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable verbose logging to .stopnorway/logs/stopnorway.log")
	cmd.PersistentFlags().StringVarP(&opts.workspace, "workspace", "w", "", "workspace root (autodetected if omitted)")
	cmd.PersistentFlags().BoolVar(&opts.gops, "gops", false, "start the gops diagnostics agent")

	cmd.AddCommand(
		initCmd(opts),
		importCmd(opts),
		buildCmd(opts),
		statsCmd(opts),
		queryCmd(opts),
		lookupCmd(opts),
		flatCmd(opts),
		runCmd(opts),
		validateCmd(opts),
		suitesCmd(opts),
		browseCmd(opts),
		versionCmd(),
	)
	return cmd
}
