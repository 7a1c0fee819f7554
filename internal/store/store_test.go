package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func providers(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	sq, err := OpenSQLite(ctx, filepath.Join(dir, "stacks.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sq.Close() })
	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sq,
		"diskv":  OpenDiskv(filepath.Join(dir, "diskv")),
	}
}

func TestStackLifecycle(t *testing.T) {
	ctx := context.Background()
	for name, st := range providers(t) {
		t.Run(name, func(t *testing.T) {
			a, err := st.CreateStack(ctx, "  Alpha  ")
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if a.Name != "Alpha" {
				t.Fatalf("expected trimmed name, got %q", a.Name)
			}
			b, err := st.CreateStack(ctx, "Beta")
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if b.ID <= a.ID {
				t.Fatalf("expected increasing ids, got %d then %d", a.ID, b.ID)
			}
			if _, err := st.CreateStack(ctx, "   "); !errors.Is(err, ErrEmptyName) {
				t.Fatalf("expected ErrEmptyName, got %v", err)
			}
			if err := st.RenameStack(ctx, b.ID, "Gamma"); err != nil {
				t.Fatalf("rename: %v", err)
			}
			stacks, err := st.ListStacks(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(stacks) != 2 || stacks[0].Name != "Alpha" || stacks[1].Name != "Gamma" {
				t.Fatalf("unexpected stacks %#v", stacks)
			}
			if err := st.DeleteStack(ctx, a.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := st.DeleteStack(ctx, a.ID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
			}
			stacks, _ = st.ListStacks(ctx)
			if len(stacks) != 1 || stacks[0].ID != b.ID {
				t.Fatalf("expected only %d left, got %#v", b.ID, stacks)
			}
		})
	}
}

func TestEntryLifecycle(t *testing.T) {
	ctx := context.Background()
	for name, st := range providers(t) {
		t.Run(name, func(t *testing.T) {
			s, err := st.CreateStack(ctx, "Clips")
			if err != nil {
				t.Fatalf("create stack: %v", err)
			}
			first, err := st.AddEntry(ctx, s.ID, "first\n")
			if err != nil {
				t.Fatalf("add: %v", err)
			}
			if first.StackID != s.ID || first.Content != "first" {
				t.Fatalf("unexpected entry %#v", first)
			}
			second, err := st.AddEntry(ctx, s.ID, "second")
			if err != nil {
				t.Fatalf("add: %v", err)
			}
			if _, err := st.AddEntry(ctx, s.ID, " \n"); !errors.Is(err, ErrEmptyContent) {
				t.Fatalf("expected ErrEmptyContent, got %v", err)
			}
			if _, err := st.AddEntry(ctx, s.ID+100, "orphan"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound for missing stack, got %v", err)
			}
			if err := st.UpdateEntry(ctx, s.ID, second.ID, "second v2"); err != nil {
				t.Fatalf("update: %v", err)
			}
			got, err := st.GetEntry(ctx, s.ID, second.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.Content != "second v2" {
				t.Fatalf("expected updated content, got %q", got.Content)
			}
			entries, err := st.ListEntries(ctx, s.ID)
			if err != nil {
				t.Fatalf("list entries: %v", err)
			}
			if len(entries) != 2 || entries[0].ID != first.ID || entries[1].ID != second.ID {
				t.Fatalf("unexpected entries %#v", entries)
			}
			stacks, _ := st.ListStacks(ctx)
			if len(stacks) != 1 || stacks[0].Count != 2 {
				t.Fatalf("expected count 2, got %#v", stacks)
			}
			if err := st.DeleteEntry(ctx, s.ID, first.ID); err != nil {
				t.Fatalf("delete entry: %v", err)
			}
			if _, err := st.GetEntry(ctx, s.ID, first.ID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}
			if err := st.DeleteStack(ctx, s.ID); err != nil {
				t.Fatalf("delete stack: %v", err)
			}
			if _, err := st.ListEntries(ctx, s.ID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound listing deleted stack, got %v", err)
			}
		})
	}
}

func TestRevisionAdvancesOnWrite(t *testing.T) {
	ctx := context.Background()
	for name, st := range providers(t) {
		t.Run(name, func(t *testing.T) {
			before, err := st.Revision(ctx)
			if err != nil {
				t.Fatalf("revision: %v", err)
			}
			s, _ := st.CreateStack(ctx, "One")
			mid, _ := st.Revision(ctx)
			if mid <= before {
				t.Fatalf("expected revision to advance after create, %d -> %d", before, mid)
			}
			if _, err := st.ListStacks(ctx); err != nil {
				t.Fatalf("list: %v", err)
			}
			same, _ := st.Revision(ctx)
			if same != mid {
				t.Fatalf("expected reads to leave revision alone, %d -> %d", mid, same)
			}
			_ = st.DeleteStack(ctx, s.ID)
			after, _ := st.Revision(ctx)
			if after <= mid {
				t.Fatalf("expected revision to advance after delete, %d -> %d", mid, after)
			}
		})
	}
}

func TestSeedMatchesDemoData(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, KindMemory, "")
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	stacks, err := st.ListStacks(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stacks) != 4 {
		t.Fatalf("expected 4 seeded stacks, got %d", len(stacks))
	}
	if stacks[0].Name != "Stack 1" || stacks[1].Name != "Stack 2" {
		t.Fatalf("unexpected seeded names %#v", stacks)
	}
	if stacks[3].Count != 0 {
		t.Fatalf("expected last seeded stack to be empty, got %d", stacks[3].Count)
	}
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "stacks.db")
	first, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s, _ := first.CreateStack(ctx, "Keep")
	if _, err := first.AddEntry(ctx, s.ID, "kept"); err != nil {
		t.Fatalf("add: %v", err)
	}
	_ = first.Close()

	second, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	entries, err := second.ListEntries(ctx, s.ID)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Content != "kept" {
		t.Fatalf("unexpected entries after reopen %#v", entries)
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind(" SQLite "); err != nil || k != KindSQLite {
		t.Fatalf("expected sqlite, got %q (%v)", k, err)
	}
	if _, err := ParseKind("postgres"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestClosedMemoryRejectsReads(t *testing.T) {
	m := NewMemory()
	_ = m.Close()
	if _, err := m.ListStacks(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

// stepClock makes every write one minute later than the previous one.
func stepClock(t *testing.T) {
	t.Helper()
	orig := now
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now = func() time.Time {
		ts = ts.Add(time.Minute)
		return ts
	}
	t.Cleanup(func() { now = orig })
}

func TestUpdateEntryTouchesStack(t *testing.T) {
	stepClock(t)
	ctx := context.Background()
	for name, st := range providers(t) {
		t.Run(name, func(t *testing.T) {
			s, err := st.CreateStack(ctx, "Clips")
			if err != nil {
				t.Fatalf("create stack: %v", err)
			}
			e, err := st.AddEntry(ctx, s.ID, "draft")
			if err != nil {
				t.Fatalf("add: %v", err)
			}
			if err := st.UpdateEntry(ctx, s.ID, e.ID, "final"); err != nil {
				t.Fatalf("update: %v", err)
			}
			got, err := st.GetEntry(ctx, s.ID, e.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !got.Updated.After(e.Updated) {
				t.Fatalf("expected entry timestamp to advance, %s -> %s", e.Updated, got.Updated)
			}
			stacks, err := st.ListStacks(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(stacks) != 1 || !stacks[0].Updated.Equal(got.Updated) {
				t.Fatalf("expected stack updated at %s, got %#v", got.Updated, stacks)
			}
		})
	}
}

// TestRevisionSeenAcrossHandles opens two handles on the same location, the
// way the browser and a CLI invocation share one store.
func TestRevisionSeenAcrossHandles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	openPair := map[string]func(t *testing.T) (Store, Store){
		"sqlite": func(t *testing.T) (Store, Store) {
			path := filepath.Join(dir, "shared.db")
			a, err := OpenSQLite(ctx, path)
			if err != nil {
				t.Fatalf("open a: %v", err)
			}
			b, err := OpenSQLite(ctx, path)
			if err != nil {
				t.Fatalf("open b: %v", err)
			}
			t.Cleanup(func() {
				_ = a.Close()
				_ = b.Close()
			})
			return a, b
		},
		"diskv": func(t *testing.T) (Store, Store) {
			path := filepath.Join(dir, "shared.d")
			return OpenDiskv(path), OpenDiskv(path)
		},
	}
	for name, open := range openPair {
		t.Run(name, func(t *testing.T) {
			a, b := open(t)
			s, err := a.CreateStack(ctx, "Shared")
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			before, err := a.Revision(ctx)
			if err != nil {
				t.Fatalf("revision: %v", err)
			}
			if _, err := b.AddEntry(ctx, s.ID, "from b"); err != nil {
				t.Fatalf("add via b: %v", err)
			}
			if err := b.RenameStack(ctx, s.ID, "Renamed"); err != nil {
				t.Fatalf("rename via b: %v", err)
			}
			after, err := a.Revision(ctx)
			if err != nil {
				t.Fatalf("revision: %v", err)
			}
			if after <= before {
				t.Fatalf("expected a to see b's writes, revision %d -> %d", before, after)
			}
			stacks, err := a.ListStacks(ctx)
			if err != nil {
				t.Fatalf("list via a: %v", err)
			}
			if len(stacks) != 1 || stacks[0].Name != "Renamed" || stacks[0].Count != 1 {
				t.Fatalf("expected a to read b's writes, got %#v", stacks)
			}
		})
	}
}
