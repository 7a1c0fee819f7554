package state

import (
	"errors"
	"fmt"
)

// ErrInvalidSelection reports a selection request outside the list bounds.
var ErrInvalidSelection = errors.New("invalid selection")

// Cursor tracks a single selected index over a list whose length is supplied
// on every call. The zero value has no selection.
type Cursor struct {
	index int
	set   bool
}

// Selected returns the selected index, or false when nothing is selected.
func (c *Cursor) Selected() (int, bool) {
	if !c.set {
		return 0, false
	}
	return c.index, true
}

// Index returns the selected index or -1.
func (c *Cursor) Index() int {
	if !c.set {
		return -1
	}
	return c.index
}

// Select force-sets the selection. idx must be within [0, n).
func (c *Cursor) Select(idx, n int) error {
	if idx < 0 || idx >= n {
		return fmt.Errorf("%w: index %d for %d items", ErrInvalidSelection, idx, n)
	}
	c.index = idx
	c.set = true
	return nil
}

// Reset clears the selection.
func (c *Cursor) Reset() {
	c.index = 0
	c.set = false
}

// MoveDown advances one row, stopping at the last item. An unset cursor is
// treated as sitting on row 0.
func (c *Cursor) MoveDown(n int) bool {
	if n <= 0 {
		return false
	}
	return c.moveTo(c.index+1, n)
}

// MoveUp steps back one row. It is a no-op at row 0 or without a selection.
func (c *Cursor) MoveUp(n int) bool {
	if n <= 0 || !c.set || c.index == 0 {
		return false
	}
	return c.moveTo(c.index-1, n)
}

// MoveHome moves the cursor to the first item.
func (c *Cursor) MoveHome(n int) bool {
	if n <= 0 {
		return false
	}
	return c.moveTo(0, n)
}

// MoveEnd moves the cursor to the last item.
func (c *Cursor) MoveEnd(n int) bool {
	if n <= 0 {
		return false
	}
	return c.moveTo(n-1, n)
}

// MovePageUp moves the cursor up by the given page size.
func (c *Cursor) MovePageUp(n, page int) bool {
	return c.moveBy(-pageSize(n, page), n)
}

// MovePageDown moves the cursor down by the given page size.
func (c *Cursor) MovePageDown(n, page int) bool {
	return c.moveBy(pageSize(n, page), n)
}

// Clamp re-bounds the selection after the list changed length. An empty
// list clears the selection.
func (c *Cursor) Clamp(n int) bool {
	if !c.set {
		return false
	}
	if n <= 0 {
		c.Reset()
		return true
	}
	if c.index >= n {
		c.index = n - 1
		return true
	}
	return false
}

func (c *Cursor) moveBy(delta, n int) bool {
	if n <= 0 {
		return false
	}
	cur := 0
	if c.set {
		cur = c.index
	}
	return c.moveTo(cur+delta, n)
}

func (c *Cursor) moveTo(idx, n int) bool {
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	old, wasSet := c.index, c.set
	c.index = idx
	c.set = true
	return !wasSet || old != idx
}

func pageSize(total, maxVisible int) int {
	if total <= 0 {
		return 0
	}
	size := maxVisible
	if size <= 0 || size > total {
		size = total
	}
	return size
}
