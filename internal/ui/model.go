package ui

import (
	"context"
	"reflect"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/stacknav/internal/backend"
	"github.com/atomicstack/stacknav/internal/theme"
	uistate "github.com/atomicstack/stacknav/internal/ui/state"
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Options configures a Model.
type Options struct {
	// Width and Height pin the layout; zero follows the terminal.
	Width  int
	Height int
	// ShowFooter renders the key help row in the status panel.
	ShowFooter bool
	// Watcher, when set, feeds store revision changes into the model.
	Watcher *backend.Watcher
	// Source names the open store in the status panel.
	Source string
}

// Model implements the Bubble Tea model for the stack browser.
type Model struct {
	ctx context.Context
	nav *uistate.Navigator

	stackView uistate.Viewport
	entryView uistate.Viewport

	errMsg     string
	infoMsg    string
	infoExpire time.Time
	stale      bool

	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	showFooter  bool
	source      string

	backend        *backend.Watcher
	backendLastErr string

	keys KeyMap
	help help.Model

	handlers map[reflect.Type]msgHandler
}

// NewModel wraps a navigator whose stacks have already been loaded.
func NewModel(ctx context.Context, nav *uistate.Navigator, opts Options) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	m := &Model{
		ctx:        ctx,
		nav:        nav,
		showFooter: opts.ShowFooter,
		source:     opts.Source,
		backend:    opts.Watcher,
		keys:       DefaultKeyMap(),
		help:       help.New(),
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	m.applyLayout()
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	if m.backend != nil {
		return waitForBackendEvent(m.backend)
	}
	return nil
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	return m, nil
}

// SetError shows err in the status panel until the next successful input.
func (m *Model) SetError(err error) {
	if err == nil {
		m.errMsg = ""
		return
	}
	m.errMsg = err.Error()
}

// Navigator exposes the underlying state machine.
func (m *Model) Navigator() *uistate.Navigator {
	return m.nav
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(backendEventMsg{}):   m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = time.Now().Add(5 * time.Second)
}

func (m *Model) forceClearInfo() {
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.infoMsg = ""
		m.infoExpire = time.Time{}
	}
	return m.infoMsg
}
