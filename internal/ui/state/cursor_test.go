package state

import (
	"errors"
	"testing"
)

func selectedAt(t *testing.T, c *Cursor, n, idx int) {
	t.Helper()
	if err := c.Select(idx, n); err != nil {
		t.Fatalf("select %d of %d: %v", idx, n, err)
	}
}

func TestCursorZeroValueUnset(t *testing.T) {
	var c Cursor
	if _, ok := c.Selected(); ok {
		t.Fatalf("expected zero cursor to be unset")
	}
	if c.Index() != -1 {
		t.Fatalf("expected index -1, got %d", c.Index())
	}
}

func TestMoveDownStopsAtLastItem(t *testing.T) {
	var c Cursor
	selectedAt(t, &c, 3, 0)
	if !c.MoveDown(3) {
		t.Fatalf("expected movement from 0")
	}
	if !c.MoveDown(3) {
		t.Fatalf("expected movement from 1")
	}
	if c.MoveDown(3) {
		t.Fatalf("expected no movement at last item")
	}
	if c.Index() != 2 {
		t.Fatalf("expected cursor 2, got %d", c.Index())
	}
}

func TestMoveDownFromUnset(t *testing.T) {
	var c Cursor
	if !c.MoveDown(5) {
		t.Fatalf("expected unset cursor to move")
	}
	if c.Index() != 1 {
		t.Fatalf("expected cursor 1, got %d", c.Index())
	}

	var single Cursor
	single.MoveDown(1)
	if single.Index() != 0 {
		t.Fatalf("expected single item list to land on 0, got %d", single.Index())
	}
}

func TestMoveDownEmptyList(t *testing.T) {
	var c Cursor
	if c.MoveDown(0) {
		t.Fatalf("expected no movement on empty list")
	}
	if _, ok := c.Selected(); ok {
		t.Fatalf("expected cursor to stay unset")
	}
}

func TestMoveUpStopsAtZero(t *testing.T) {
	var c Cursor
	selectedAt(t, &c, 3, 1)
	if !c.MoveUp(3) {
		t.Fatalf("expected movement from 1")
	}
	if c.MoveUp(3) {
		t.Fatalf("expected no movement at row 0")
	}
	if c.Index() != 0 {
		t.Fatalf("expected cursor 0, got %d", c.Index())
	}
}

func TestMoveUpFromUnsetIsNoop(t *testing.T) {
	var c Cursor
	if c.MoveUp(4) {
		t.Fatalf("expected no movement without a selection")
	}
	if _, ok := c.Selected(); ok {
		t.Fatalf("expected cursor to stay unset")
	}
}

func TestSelectRejectsOutOfRange(t *testing.T) {
	var c Cursor
	selectedAt(t, &c, 3, 1)
	for _, idx := range []int{-1, 3, 10} {
		err := c.Select(idx, 3)
		if !errors.Is(err, ErrInvalidSelection) {
			t.Fatalf("expected ErrInvalidSelection for %d, got %v", idx, err)
		}
	}
	if c.Index() != 1 {
		t.Fatalf("expected cursor unchanged at 1, got %d", c.Index())
	}
	if err := c.Select(0, 0); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection on empty list, got %v", err)
	}
}

func TestMoveHomeEnd(t *testing.T) {
	var c Cursor
	if !c.MoveEnd(4) {
		t.Fatalf("expected movement to end")
	}
	if c.Index() != 3 {
		t.Fatalf("expected cursor 3, got %d", c.Index())
	}
	if c.MoveEnd(4) {
		t.Fatalf("expected no movement when already at end")
	}
	if !c.MoveHome(4) {
		t.Fatalf("expected movement home")
	}
	if c.Index() != 0 {
		t.Fatalf("expected cursor 0, got %d", c.Index())
	}
	if c.MoveHome(0) || c.MoveEnd(0) {
		t.Fatalf("expected no movement on empty list")
	}
}

func TestCursorPaging(t *testing.T) {
	var c Cursor
	selectedAt(t, &c, 5, 0)
	if !c.MovePageDown(5, 2) {
		t.Fatalf("expected movement on first page down")
	}
	if c.Index() != 2 {
		t.Fatalf("expected cursor 2, got %d", c.Index())
	}
	c.MovePageDown(5, 2)
	if c.Index() != 4 {
		t.Fatalf("expected cursor 4, got %d", c.Index())
	}
	if c.MovePageDown(5, 2) {
		t.Fatalf("expected no movement past the end")
	}
	c.MovePageUp(5, 3)
	if c.Index() != 1 {
		t.Fatalf("expected cursor 1, got %d", c.Index())
	}
	c.MovePageUp(5, 3)
	if c.Index() != 0 {
		t.Fatalf("expected cursor clamped to 0, got %d", c.Index())
	}
}

func TestCursorPagingWithoutPageSize(t *testing.T) {
	var c Cursor
	selectedAt(t, &c, 4, 1)
	c.MovePageDown(4, 0)
	if c.Index() != 3 {
		t.Fatalf("expected full-list page to reach 3, got %d", c.Index())
	}
}

func TestCursorClamp(t *testing.T) {
	var c Cursor
	selectedAt(t, &c, 5, 4)
	if !c.Clamp(2) {
		t.Fatalf("expected clamp to report change")
	}
	if c.Index() != 1 {
		t.Fatalf("expected cursor 1, got %d", c.Index())
	}
	if c.Clamp(3) {
		t.Fatalf("expected in-range cursor untouched")
	}
	if !c.Clamp(0) {
		t.Fatalf("expected clamp on empty list to clear")
	}
	if _, ok := c.Selected(); ok {
		t.Fatalf("expected cursor cleared")
	}
}
