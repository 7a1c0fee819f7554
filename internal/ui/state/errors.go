package state

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad matches every *LoadError.
	ErrLoad = errors.New("load failed")
	// ErrForeignEntry is returned when a provider hands back an entry owned
	// by a stack other than the one requested.
	ErrForeignEntry = errors.New("entry belongs to another stack")
)

// LoadError wraps a storage provider failure. The navigator state is left
// exactly as it was before the failed call.
type LoadError struct {
	Op      string
	StackID int64
	Err     error
}

func (e *LoadError) Error() string {
	if e.StackID != 0 {
		return fmt.Sprintf("%s (stack %d): %v", e.Op, e.StackID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrLoad, e.Err}
}
