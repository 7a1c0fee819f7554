package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/atomicstack/stacknav/internal/backend"
	"github.com/atomicstack/stacknav/internal/logging"
	"github.com/atomicstack/stacknav/internal/store"
	"github.com/atomicstack/stacknav/internal/testutil"
	uistate "github.com/atomicstack/stacknav/internal/ui/state"
)

func newHarness(t *testing.T, r store.Reader, opts Options) *Harness {
	t.Helper()
	logging.Configure(filepath.Join(t.TempDir(), "ui.log"))
	t.Cleanup(func() { logging.Configure("") })
	nav := uistate.NewNavigator(r)
	if err := nav.LoadStacks(context.Background()); err != nil {
		t.Fatalf("load stacks: %v", err)
	}
	return NewHarness(NewModel(context.Background(), nav, opts))
}

func TestDownEnterOpensSecondStack(t *testing.T) {
	h := newHarness(t, testutil.SeededMemory(t), Options{Width: 120, Height: 30})
	h.Press("j", "enter")

	nav := h.Model().Navigator()
	if nav.Mode() != uistate.BrowsingEntries {
		t.Fatalf("expected BrowsingEntries, got %s", nav.Mode())
	}
	st, _ := nav.CurrentStack()
	if st.Name != "Stack 2" {
		t.Fatalf("expected Stack 2 in scope, got %q", st.Name)
	}
	view := h.View()
	if !strings.Contains(view, "Entries: Stack 2 (5)") {
		t.Fatalf("expected entries title in view, got:\n%s", view)
	}
	if !strings.Contains(view, "Duis aute irure dolor.") {
		t.Fatalf("expected entry text in view, got:\n%s", view)
	}
}

func TestViewListsStacks(t *testing.T) {
	h := newHarness(t, testutil.SeededMemory(t), Options{Width: 100, Height: 24})
	view := h.View()
	for _, want := range []string{"Stacks (4)", "Stack 1 (1)", "Stack 4 (0)", "press enter to open"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view, got:\n%s", want, view)
		}
	}
}

func TestEscapeWhileBrowsingStacksQuits(t *testing.T) {
	h := newHarness(t, testutil.SeededMemory(t), Options{})
	h.Press("esc")
	if !h.Quit() {
		t.Fatalf("expected quit on escape at the stack list")
	}
}

func TestEscapeFromEntriesReturnsToStacks(t *testing.T) {
	h := newHarness(t, testutil.SeededMemory(t), Options{})
	h.Press("down", "down", "enter", "down", "esc")
	if h.Quit() {
		t.Fatalf("expected escape from entries not to quit")
	}
	nav := h.Model().Navigator()
	if nav.Mode() != uistate.BrowsingStacks {
		t.Fatalf("expected BrowsingStacks, got %s", nav.Mode())
	}
	if got := nav.View().StackSelected; got != 2 {
		t.Fatalf("expected stack cursor restored to 2, got %d", got)
	}
}

func TestQuitKeys(t *testing.T) {
	for _, name := range []string{"q", "ctrl+c"} {
		h := newHarness(t, testutil.SeededMemory(t), Options{})
		h.Press("enter", name)
		if !h.Quit() {
			t.Fatalf("expected %s to quit", name)
		}
	}
}

func TestEnterFailureShowsError(t *testing.T) {
	r := testutil.NewStubReader("Stack 1")
	r.FailEntries(1, testutil.ErrUnavailable)
	h := newHarness(t, r, Options{Width: 120, Height: 24})
	h.Press("enter")

	m := h.Model()
	if m.Navigator().Mode() != uistate.BrowsingStacks {
		t.Fatalf("expected to stay on stacks after failure")
	}
	if !strings.Contains(m.errMsg, testutil.ErrUnavailable.Error()) {
		t.Fatalf("expected provider error in status, got %q", m.errMsg)
	}
	if !strings.Contains(h.View(), "Error: ") {
		t.Fatalf("expected error line in view")
	}

	r.FailEntries(1, nil)
	h.Press("enter")
	if m.errMsg != "" {
		t.Fatalf("expected error cleared after successful enter, got %q", m.errMsg)
	}
}

func TestStoreChangeMarksStaleUntilReload(t *testing.T) {
	h := newHarness(t, testutil.SeededMemory(t), Options{Width: 100, Height: 24})
	h.Send(backendEventMsg{event: backend.Event{Kind: backend.KindChanged, Previous: 1, Revision: 2}})
	if !strings.Contains(h.View(), staleStoreNotice) {
		t.Fatalf("expected stale notice in view")
	}
	h.Press("r")
	m := h.Model()
	if m.stale {
		t.Fatalf("expected reload to clear stale flag")
	}
	if got := m.currentInfo(); got != "reloaded 4 stacks" {
		t.Fatalf("unexpected info %q", got)
	}
}

func TestReloadInEntriesRefreshesScope(t *testing.T) {
	r := testutil.NewStubReader("a")
	r.SetEntries(1, "one")
	h := newHarness(t, r, Options{})
	h.Press("enter")
	r.SetEntries(1, "one", "two", "three")
	h.Press("r")

	v := h.Model().Navigator().View()
	if v.Mode != uistate.BrowsingEntries || len(v.Entries) != 3 {
		t.Fatalf("expected 3 entries after reload, got mode=%s n=%d", v.Mode, len(v.Entries))
	}
	if r.StackCalls() != 2 {
		t.Fatalf("expected stacks reloaded with the entries, got %d stack loads", r.StackCalls())
	}
	if got := h.Model().currentInfo(); got != "reloaded 1 stacks, 3 entries" {
		t.Fatalf("unexpected info %q", got)
	}
}

func TestReloadInsideStackRefreshesStackList(t *testing.T) {
	mem := testutil.SeededMemory(t)
	h := newHarness(t, mem, Options{Width: 120, Height: 30})
	h.Press("enter")

	ctx := context.Background()
	if _, err := mem.AddEntry(ctx, 1, "added elsewhere"); err != nil {
		t.Fatalf("add entry: %v", err)
	}
	if _, err := mem.CreateStack(ctx, "Stack 5"); err != nil {
		t.Fatalf("create stack: %v", err)
	}
	h.Send(backendEventMsg{event: backend.Event{Kind: backend.KindChanged, Previous: 1, Revision: 2}})
	h.Press("r", "esc")

	view := h.View()
	for _, want := range []string{"Stacks (5)", "Stack 1 (2)", "Stack 5 (0)"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q after reload, got:\n%s", want, view)
		}
	}
	if h.Model().stale || strings.Contains(view, staleStoreNotice) {
		t.Fatalf("expected stale notice cleared once both lists are current")
	}
	if h.Quit() {
		t.Fatalf("esc inside a stack should not quit")
	}
}

func TestReloadFailureKeepsStaleNotice(t *testing.T) {
	r := testutil.NewStubReader("a")
	h := newHarness(t, r, Options{Width: 100, Height: 24})
	h.Press("enter")
	h.Send(backendEventMsg{event: backend.Event{Kind: backend.KindChanged, Previous: 1, Revision: 2}})
	r.FailStacks(testutil.ErrUnavailable)
	h.Press("r")
	if !h.Model().stale {
		t.Fatalf("expected stale flag kept after failed reload")
	}
}

func TestBackKeysOnlyQuitOnEscape(t *testing.T) {
	for _, name := range []string{"h", "left"} {
		h := newHarness(t, testutil.SeededMemory(t), Options{})
		h.Press(name)
		if h.Quit() {
			t.Fatalf("%s on the stack list should not quit", name)
		}
	}
	h := newHarness(t, testutil.SeededMemory(t), Options{})
	h.Press("esc")
	if !h.Quit() {
		t.Fatalf("esc on the stack list should quit")
	}
}

func TestReloadFailureKeepsLists(t *testing.T) {
	r := testutil.NewStubReader("a", "b")
	h := newHarness(t, r, Options{})
	r.FailStacks(testutil.ErrUnavailable)
	h.Press("r")
	m := h.Model()
	if m.errMsg == "" {
		t.Fatalf("expected error after failed reload")
	}
	if len(m.Navigator().Stacks()) != 2 {
		t.Fatalf("expected previous stacks kept")
	}
}

func TestBackendErrorShown(t *testing.T) {
	h := newHarness(t, testutil.SeededMemory(t), Options{Width: 100, Height: 24})
	h.Send(backendEventMsg{event: backend.Event{Kind: backend.KindError, Err: errors.New("db locked")}})
	if !strings.Contains(h.View(), "Store: db locked") {
		t.Fatalf("expected store error in view, got:\n%s", h.View())
	}
	h.Send(backendDoneMsg{})
	if h.Model().backend != nil {
		t.Fatalf("expected watcher detached")
	}
}

func TestWindowSizeDrivesPaging(t *testing.T) {
	r := testutil.NewStubReader("a")
	r.FillEntries(1, 20)
	h := newHarness(t, r, Options{ShowFooter: true})
	h.Send(tea.WindowSizeMsg{Width: 100, Height: 12})
	h.Press("enter", "pgdown")

	// 12 rows minus a 4-row status panel and 3 rows of panel chrome.
	if got := h.Model().Navigator().View().EntrySelected; got != 5 {
		t.Fatalf("expected page of 5 rows, cursor at 5, got %d", got)
	}
}

func TestViewFitsTerminal(t *testing.T) {
	h := newHarness(t, testutil.SeededMemory(t), Options{Width: 60, Height: 20, ShowFooter: true})
	h.Press("j", "enter")
	view := h.View()
	lines := strings.Split(view, "\n")
	if len(lines) != 20 {
		t.Fatalf("expected 20 rows, got %d:\n%s", len(lines), view)
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w > 60 {
			t.Fatalf("line %d is %d cells wide: %q", i, w, line)
		}
	}
}

func TestHelpToggleExpandsFooter(t *testing.T) {
	h := newHarness(t, testutil.SeededMemory(t), Options{Width: 120, Height: 30, ShowFooter: true})
	if strings.Contains(h.View(), "page down") {
		t.Fatalf("expected short help by default")
	}
	h.Press("?")
	if !strings.Contains(h.View(), "page down") {
		t.Fatalf("expected full help after toggle, got:\n%s", h.View())
	}
}

func TestEntryRowsAreFlattened(t *testing.T) {
	r := testutil.NewStubReader("a")
	r.SetEntries(1, "\x1b[31mred\x1b[0m\tline\nnext")
	h := newHarness(t, r, Options{Width: 120, Height: 24})
	h.Press("enter")
	if !strings.Contains(h.View(), "▌ red line next") {
		t.Fatalf("expected entry drawn on one row, got:\n%s", h.View())
	}
}
