package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/atomicstack/stacknav/internal/store"
)

// ErrUnavailable is the failure StubReader returns when told to fail.
var ErrUnavailable = errors.New("store unavailable")

// StubReader is an in-process store.Reader whose results and failures are
// set directly by tests.
type StubReader struct {
	mu          sync.Mutex
	stacks      []store.Stack
	entries     map[int64][]store.Entry
	stacksErr   error
	entriesErr  map[int64]error
	entryCalls  []int64
	stacksCalls int
}

// NewStubReader returns a reader holding one stack per name with ids 1..n.
func NewStubReader(names ...string) *StubReader {
	r := &StubReader{
		entries:    make(map[int64][]store.Entry),
		entriesErr: make(map[int64]error),
	}
	for i, name := range names {
		r.stacks = append(r.stacks, store.Stack{ID: int64(i + 1), Name: name})
	}
	return r
}

// AddStack appends a stack with the next free id and returns that id.
func (r *StubReader) AddStack(name string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var id int64 = 1
	for _, s := range r.stacks {
		if s.ID >= id {
			id = s.ID + 1
		}
	}
	r.stacks = append(r.stacks, store.Stack{ID: id, Name: name, Count: len(r.entries[id])})
	return id
}

// RemoveStack drops the stack with id and its entries.
func (r *StubReader) RemoveStack(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.stacks[:0]
	for _, s := range r.stacks {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	r.stacks = kept
	delete(r.entries, id)
}

// SetEntries replaces the entries of stackID with one entry per content.
func (r *StubReader) SetEntries(stackID int64, contents ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]store.Entry, len(contents))
	for i, c := range contents {
		list[i] = store.Entry{ID: stackID*1000 + int64(i+1), StackID: stackID, Content: c}
	}
	r.entries[stackID] = list
	r.recount()
}

// SetRawEntries stores entries as given, without fixing their StackID.
func (r *StubReader) SetRawEntries(stackID int64, entries []store.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[stackID] = entries
	r.recount()
}

// FillEntries gives stackID n generated entries.
func (r *StubReader) FillEntries(stackID int64, n int) {
	contents := make([]string, n)
	for i := range contents {
		contents[i] = fmt.Sprintf("entry %d", i+1)
	}
	r.SetEntries(stackID, contents...)
}

// FailStacks makes ListStacks return err until cleared with nil.
func (r *StubReader) FailStacks(err error) {
	r.mu.Lock()
	r.stacksErr = err
	r.mu.Unlock()
}

// FailEntries makes ListEntries for stackID return err until cleared.
func (r *StubReader) FailEntries(stackID int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.entriesErr, stackID)
		return
	}
	r.entriesErr[stackID] = err
}

// EntryCalls lists the stack ids passed to ListEntries, in order.
func (r *StubReader) EntryCalls() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, len(r.entryCalls))
	copy(out, r.entryCalls)
	return out
}

// StackCalls counts ListStacks invocations.
func (r *StubReader) StackCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stacksCalls
}

func (r *StubReader) ListStacks(ctx context.Context) ([]store.Stack, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stacksCalls++
	if r.stacksErr != nil {
		return nil, r.stacksErr
	}
	out := make([]store.Stack, len(r.stacks))
	copy(out, r.stacks)
	return out, nil
}

func (r *StubReader) ListEntries(ctx context.Context, stackID int64) ([]store.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entryCalls = append(r.entryCalls, stackID)
	if err := r.entriesErr[stackID]; err != nil {
		return nil, err
	}
	list := r.entries[stackID]
	out := make([]store.Entry, len(list))
	copy(out, list)
	return out, nil
}

func (r *StubReader) recount() {
	for i := range r.stacks {
		r.stacks[i].Count = len(r.entries[r.stacks[i].ID])
	}
}

// SeededMemory returns a memory store holding the demo stacks.
func SeededMemory(t testing.TB) *store.Memory {
	t.Helper()
	m := store.NewMemory()
	if err := store.Seed(context.Background(), m); err != nil {
		t.Fatalf("seed memory store: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}
