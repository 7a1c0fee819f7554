package state

import (
	"context"
	"fmt"

	"github.com/atomicstack/stacknav/internal/logging/events"
	"github.com/atomicstack/stacknav/internal/store"
)

// Navigator owns the browse mode, one cursor per list and the loaded
// collections. It is driven from a single goroutine.
type Navigator struct {
	reader   store.Reader
	mode     Mode
	stacks   []store.Stack
	entries  []store.Entry
	stackCur Cursor
	entryCur Cursor
	// scope is the stack index that was entered; -1 while browsing stacks.
	scope    int
	pageSize int
}

// NewNavigator starts in BrowsingStacks with nothing loaded or selected.
func NewNavigator(reader store.Reader) *Navigator {
	return &Navigator{
		reader: reader,
		mode:   BrowsingStacks,
		scope:  -1,
	}
}

// Mode reports the current focus scope.
func (n *Navigator) Mode() Mode {
	return n.mode
}

// SetPageSize sets the row count used by page up/down.
func (n *Navigator) SetPageSize(size int) {
	n.pageSize = size
}

// Stacks returns a copy of the loaded stacks.
func (n *Navigator) Stacks() []store.Stack {
	out := make([]store.Stack, len(n.stacks))
	copy(out, n.stacks)
	return out
}

// CurrentStack returns the stack in scope while browsing entries.
func (n *Navigator) CurrentStack() (store.Stack, bool) {
	if n.mode != BrowsingEntries || n.scope < 0 || n.scope >= len(n.stacks) {
		return store.Stack{}, false
	}
	return n.stacks[n.scope], true
}

// SelectedStack returns the highlighted stack while browsing stacks.
func (n *Navigator) SelectedStack() (store.Stack, bool) {
	idx, ok := n.stackCur.Selected()
	if !ok || idx >= len(n.stacks) {
		return store.Stack{}, false
	}
	return n.stacks[idx], true
}

// SelectedEntry returns the highlighted entry while browsing entries.
func (n *Navigator) SelectedEntry() (store.Entry, bool) {
	idx, ok := n.entryCur.Selected()
	if !ok || idx >= len(n.entries) {
		return store.Entry{}, false
	}
	return n.entries[idx], true
}

// LoadStacks replaces the stack collection and returns to stack browsing
// with the first stack selected. On failure nothing changes.
func (n *Navigator) LoadStacks(ctx context.Context) error {
	stacks, err := n.reader.ListStacks(ctx)
	if err != nil {
		events.Nav.LoadError("stacks", 0, err)
		return &LoadError{Op: "list stacks", Err: err}
	}
	n.stacks = stacks
	n.mode = BrowsingStacks
	n.entries = nil
	n.entryCur.Reset()
	n.scope = -1
	n.stackCur.Reset()
	if len(stacks) > 0 {
		_ = n.stackCur.Select(0, len(stacks))
	}
	events.Nav.Load("stacks", 0, len(stacks))
	return nil
}

// EnterStack opens the stack at index, exactly as pressing Enter on it.
func (n *Navigator) EnterStack(ctx context.Context, index int) error {
	if index < 0 || index >= len(n.stacks) {
		return fmt.Errorf("%w: stack index %d of %d", ErrInvalidSelection, index, len(n.stacks))
	}
	return n.enter(ctx, index)
}

// RefreshEntries re-reads the entries of the stack in scope, keeping the
// entry cursor where it was when still in bounds.
func (n *Navigator) RefreshEntries(ctx context.Context) error {
	st, ok := n.CurrentStack()
	if !ok {
		return nil
	}
	entries, err := n.fetchEntries(ctx, st)
	if err != nil {
		return err
	}
	n.entries = entries
	if _, set := n.entryCur.Selected(); set {
		n.entryCur.Clamp(len(entries))
	} else if len(entries) > 0 {
		_ = n.entryCur.Select(0, len(entries))
	}
	return nil
}

// Reload re-reads the stacks and, while browsing entries, the entries of the
// stack in scope. Selections follow their stack and entry ids when those still
// exist and are clamped otherwise. If the stack in scope is gone the navigator
// returns to the stack list. On failure nothing changes.
func (n *Navigator) Reload(ctx context.Context) error {
	stacks, err := n.reader.ListStacks(ctx)
	if err != nil {
		events.Nav.LoadError("stacks", 0, err)
		return &LoadError{Op: "list stacks", Err: err}
	}
	events.Nav.Load("stacks", 0, len(stacks))

	if n.mode == BrowsingEntries {
		current, ok := n.CurrentStack()
		if idx := stackIndex(stacks, current.ID); ok && idx >= 0 {
			entries, err := n.fetchEntries(ctx, stacks[idx])
			if err != nil {
				return err
			}
			selected := int64(-1)
			if e, ok := n.SelectedEntry(); ok {
				selected = e.ID
			}
			n.stacks = stacks
			n.scope = idx
			n.entries = entries
			follow(&n.entryCur, len(entries), entryIndex(entries, selected))
			return nil
		}
		// the stack in scope was deleted elsewhere
		prev := max(n.scope, 0)
		n.stacks = stacks
		n.entries = nil
		n.entryCur.Reset()
		n.scope = -1
		n.mode = BrowsingStacks
		n.stackCur.Reset()
		if len(stacks) > 0 {
			_ = n.stackCur.Select(min(prev, len(stacks)-1), len(stacks))
		}
		events.Nav.Escape(current.ID)
		return nil
	}

	selected := int64(-1)
	if st, ok := n.SelectedStack(); ok {
		selected = st.ID
	}
	n.stacks = stacks
	follow(&n.stackCur, len(stacks), stackIndex(stacks, selected))
	return nil
}

// follow selects idx when it is non-negative, otherwise keeps the old index
// within bounds, defaulting to the first row.
func follow(c *Cursor, count, idx int) {
	switch {
	case count == 0:
		c.Reset()
	case idx >= 0:
		_ = c.Select(idx, count)
	default:
		if _, set := c.Selected(); set {
			c.Clamp(count)
		} else {
			_ = c.Select(0, count)
		}
	}
}

func stackIndex(stacks []store.Stack, id int64) int {
	for i, s := range stacks {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func entryIndex(entries []store.Entry, id int64) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// HandleKey applies one input to the state machine. The error is non-nil
// only when entering a stack failed to load, in which case nothing changed.
func (n *Navigator) HandleKey(ctx context.Context, key Key) (RenderHint, error) {
	switch n.mode {
	case BrowsingStacks:
		return n.handleStacksKey(ctx, key)
	case BrowsingEntries:
		return n.handleEntriesKey(key), nil
	default:
		return NoChange, nil
	}
}

func (n *Navigator) handleStacksKey(ctx context.Context, key Key) (RenderHint, error) {
	if key == KeyEnter {
		idx, ok := n.stackCur.Selected()
		if !ok || idx >= len(n.stacks) {
			return NoChange, nil
		}
		if err := n.enter(ctx, idx); err != nil {
			return NoChange, err
		}
		return Render, nil
	}
	moved := n.move(&n.stackCur, len(n.stacks), key)
	if moved {
		events.Nav.Cursor("stacks", n.stackCur.Index())
	}
	return hint(moved), nil
}

func (n *Navigator) handleEntriesKey(key Key) RenderHint {
	if key == KeyEscape {
		n.leave()
		return Render
	}
	moved := n.move(&n.entryCur, len(n.entries), key)
	if moved {
		events.Nav.Cursor("entries", n.entryCur.Index())
	}
	return hint(moved)
}

func (n *Navigator) move(c *Cursor, count int, key Key) bool {
	switch key {
	case KeyDown:
		return c.MoveDown(count)
	case KeyUp:
		return c.MoveUp(count)
	case KeyHome:
		return c.MoveHome(count)
	case KeyEnd:
		return c.MoveEnd(count)
	case KeyPageUp:
		return c.MovePageUp(count, n.pageSize)
	case KeyPageDown:
		return c.MovePageDown(count, n.pageSize)
	default:
		return false
	}
}

func (n *Navigator) enter(ctx context.Context, index int) error {
	st := n.stacks[index]
	entries, err := n.fetchEntries(ctx, st)
	if err != nil {
		return err
	}
	n.scope = index
	n.stackCur.Reset()
	n.entries = entries
	n.entryCur.Reset()
	if len(entries) > 0 {
		_ = n.entryCur.Select(0, len(entries))
	}
	n.mode = BrowsingEntries
	events.Nav.Enter(st.ID, st.Name, len(entries))
	return nil
}

func (n *Navigator) leave() {
	var stackID int64
	if n.scope >= 0 && n.scope < len(n.stacks) {
		stackID = n.stacks[n.scope].ID
		_ = n.stackCur.Select(n.scope, len(n.stacks))
	}
	n.entries = nil
	n.entryCur.Reset()
	n.scope = -1
	n.mode = BrowsingStacks
	events.Nav.Escape(stackID)
}

func (n *Navigator) fetchEntries(ctx context.Context, st store.Stack) ([]store.Entry, error) {
	entries, err := n.reader.ListEntries(ctx, st.ID)
	if err != nil {
		events.Nav.LoadError("entries", st.ID, err)
		return nil, &LoadError{Op: "list entries", StackID: st.ID, Err: err}
	}
	for _, e := range entries {
		if e.StackID != st.ID {
			err := fmt.Errorf("%w: entry %d has stack %d", ErrForeignEntry, e.ID, e.StackID)
			events.Nav.LoadError("entries", st.ID, err)
			return nil, &LoadError{Op: "list entries", StackID: st.ID, Err: err}
		}
	}
	events.Nav.Load("entries", st.ID, len(entries))
	return entries, nil
}
