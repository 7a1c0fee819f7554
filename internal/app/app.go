package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/stacknav/internal/backend"
	"github.com/atomicstack/stacknav/internal/logging"
	"github.com/atomicstack/stacknav/internal/logging/events"
	"github.com/atomicstack/stacknav/internal/store"
	"github.com/atomicstack/stacknav/internal/ui"
	uistate "github.com/atomicstack/stacknav/internal/ui/state"
)

// Config describes user-provided application options.
type Config struct {
	Backend    store.Kind
	DBPath     string
	Stack      string
	Width      int
	Height     int
	ShowFooter bool
	Poll       time.Duration
}

// Source is the short store description shown in the status panel.
func (c Config) Source() string {
	if c.Backend == store.KindMemory {
		return string(c.Backend)
	}
	return fmt.Sprintf("%s:%s", c.Backend, c.DBPath)
}

// Run bootstraps and executes the Bubble Tea program.
func Run(ctx context.Context, cfg Config) error {
	st, err := store.Open(ctx, cfg.Backend, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}
	defer st.Close()

	model, watcher, err := NewModel(ctx, st, cfg)
	if err != nil {
		return err
	}
	if watcher != nil {
		defer watcher.Stop()
	}
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		err = nil
	}
	events.App.Exit(err)
	return err
}

// NewModel loads the stacks, opens the initial stack if one was asked for
// and starts the revision watcher. A failed initial stack is shown in the
// status panel rather than aborting start-up.
func NewModel(ctx context.Context, st store.Store, cfg Config) (*ui.Model, *backend.Watcher, error) {
	baseline, err := st.Revision(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read store revision: %w", err)
	}
	nav := uistate.NewNavigator(st)
	if err := nav.LoadStacks(ctx); err != nil {
		return nil, nil, err
	}

	var watcher *backend.Watcher
	if cfg.Poll > 0 {
		watcher = backend.NewWatcher(st, cfg.Poll, baseline)
	}
	model := ui.NewModel(ctx, nav, ui.Options{
		Width:      cfg.Width,
		Height:     cfg.Height,
		ShowFooter: cfg.ShowFooter,
		Watcher:    watcher,
		Source:     cfg.Source(),
	})
	if cfg.Stack != "" {
		if err := OpenInitialStack(ctx, nav, cfg.Stack); err != nil {
			logging.Error(err)
			model.SetError(err)
		}
	}
	return model, watcher, nil
}

// OpenInitialStack enters the stack that best matches query.
func OpenInitialStack(ctx context.Context, nav *uistate.Navigator, query string) error {
	idx, err := MatchStack(nav.Stacks(), query)
	if err != nil {
		return err
	}
	return nav.EnterStack(ctx, idx)
}
