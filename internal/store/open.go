package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/atomicstack/stacknav/internal/logging/events"
)

// Open returns the provider for kind rooted at path. The memory backend
// ignores path and starts pre-seeded with demo data.
func Open(ctx context.Context, kind Kind, path string) (Store, error) {
	st, err := open(ctx, kind, path)
	if err != nil {
		events.Store.Error("open", err)
		return nil, err
	}
	events.Store.Open(string(kind), path)
	return st, nil
}

func open(ctx context.Context, kind Kind, path string) (Store, error) {
	switch kind {
	case KindSQLite:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("sqlite backend requires a database path")
		}
		return OpenSQLite(ctx, path)
	case KindDiskv:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("diskv backend requires a directory")
		}
		return OpenDiskv(path), nil
	case KindMemory:
		m := NewMemory()
		if err := Seed(ctx, m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
}
