package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyName    = errors.New("stack name must not be empty")
	ErrEmptyContent = errors.New("entry content must not be empty")
	ErrClosed       = errors.New("store is closed")
	ErrUnknownKind  = errors.New("unknown backend")
)

// Stack is a named collection of entries.
type Stack struct {
	ID      int64     `json:"id"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
	Count   int       `json:"count"`
}

// Entry is a single text item owned by a stack. StackID is a lookup key.
type Entry struct {
	ID      int64     `json:"id"`
	StackID int64     `json:"stack_id"`
	Content string    `json:"content"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// Reader is the read contract consumed by the navigator.
type Reader interface {
	ListStacks(ctx context.Context) ([]Stack, error)
	ListEntries(ctx context.Context, stackID int64) ([]Entry, error)
}

// Writer mutates stacks and entries.
type Writer interface {
	CreateStack(ctx context.Context, name string) (Stack, error)
	RenameStack(ctx context.Context, id int64, name string) error
	DeleteStack(ctx context.Context, id int64) error
	AddEntry(ctx context.Context, stackID int64, content string) (Entry, error)
	UpdateEntry(ctx context.Context, stackID, entryID int64, content string) error
	DeleteEntry(ctx context.Context, stackID, entryID int64) error
	GetEntry(ctx context.Context, stackID, entryID int64) (Entry, error)
}

// Store is a complete storage provider.
type Store interface {
	Reader
	Writer
	// Revision increases on every successful write. Watchers compare it to
	// detect changes made by other processes.
	Revision(ctx context.Context) (int64, error)
	Close() error
}

// Kind identifies a storage backend.
type Kind string

const (
	KindSQLite Kind = "sqlite"
	KindDiskv  Kind = "diskv"
	KindMemory Kind = "memory"
)

// Kinds lists the supported backends.
func Kinds() []Kind {
	return []Kind{KindSQLite, KindDiskv, KindMemory}
}

// ParseKind validates a backend name.
func ParseKind(value string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownKind, value)
}

func cleanName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrEmptyName
	}
	return trimmed, nil
}

func cleanContent(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}
	return strings.TrimRight(content, "\r\n"), nil
}

// now is the write timestamp; tests swap it for a fixed clock.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func stackNotFound(id int64) error {
	return fmt.Errorf("stack %d: %w", id, ErrNotFound)
}

func entryNotFound(stackID, entryID int64) error {
	return fmt.Errorf("entry %d in stack %d: %w", entryID, stackID, ErrNotFound)
}
