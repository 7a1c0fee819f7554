package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atomicstack/stacknav/internal/app"
	"github.com/atomicstack/stacknav/internal/config"
	"github.com/atomicstack/stacknav/internal/logging"
	"github.com/atomicstack/stacknav/internal/store"
)

// runner carries the resolved configuration from the root command's
// pre-run hook into whichever subcommand executes.
type runner struct {
	loader  *config.Loader
	cfg     config.Config
	onStart func(config.Config)
	runTUI  func(context.Context, app.Config) error
}

// New builds the stacknav command tree. onStart, when set, is called with
// the resolved configuration before any command runs.
func New(environ []string, onStart func(config.Config)) *cobra.Command {
	return newCommand(environ, onStart, app.Run)
}

func newCommand(environ []string, onStart func(config.Config), runTUI func(context.Context, app.Config) error) *cobra.Command {
	r := &runner{onStart: onStart, runTUI: runTUI}
	cmd := &cobra.Command{
		Use:   "stacknav",
		Short: "Browse stacks of saved snippets in the terminal.",
		Long: `stacknav keeps named stacks of text entries and lets you browse them
in a two-panel terminal view. Without a subcommand it opens the browser.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: r.preRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runTUI(cmd.Context(), r.cfg.App)
		},
	}
	r.loader = config.NewLoader(cmd.PersistentFlags(), environ)

	addStacks(cmd, r)
	addEntries(cmd, r)
	addSeed(cmd, r)
	return cmd
}

func (r *runner) preRun(cmd *cobra.Command, args []string) error {
	cfg, err := r.loader.Resolve(commandArgs(cmd, args))
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	r.cfg = cfg
	logging.Configure(cfg.Logging.FilePath)
	logging.SetTraceEnabled(cfg.Logging.Trace)
	if r.onStart != nil {
		r.onStart(cfg)
	}
	return nil
}

func (r *runner) openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, r.cfg.App.Backend, r.cfg.App.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", r.cfg.App.Backend, err)
	}
	return st, nil
}

// withStore opens the configured store for the duration of fn.
func (r *runner) withStore(cmd *cobra.Command, fn func(context.Context, store.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(ctx, st)
}

// commandArgs is the subcommand path plus positional args, for tracing.
func commandArgs(cmd *cobra.Command, args []string) []string {
	path := strings.Fields(cmd.CommandPath())
	out := append([]string(nil), path[1:]...)
	return append(out, args...)
}
