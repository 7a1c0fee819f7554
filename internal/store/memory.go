package store

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process provider. It backs the demo mode and tests.
type Memory struct {
	mu        sync.Mutex
	stacks    map[int64]Stack
	entries   map[int64][]Entry
	nextStack int64
	nextEntry int64
	revision  int64
	closed    bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		stacks:    make(map[int64]Stack),
		entries:   make(map[int64][]Entry),
		nextStack: 1,
		nextEntry: 1,
	}
}

func (m *Memory) ListStacks(ctx context.Context) ([]Stack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	out := make([]Stack, 0, len(m.stacks))
	for _, s := range m.stacks {
		s.Count = len(m.entries[s.ID])
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListEntries(ctx context.Context, stackID int64) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	if _, ok := m.stacks[stackID]; !ok {
		return nil, stackNotFound(stackID)
	}
	src := m.entries[stackID]
	out := make([]Entry, len(src))
	copy(out, src)
	return out, nil
}

func (m *Memory) CreateStack(ctx context.Context, name string) (Stack, error) {
	name, err := cleanName(name)
	if err != nil {
		return Stack{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return Stack{}, err
	}
	ts := now()
	s := Stack{ID: m.nextStack, Name: name, Created: ts, Updated: ts}
	m.nextStack++
	m.stacks[s.ID] = s
	m.revision++
	return s, nil
}

func (m *Memory) RenameStack(ctx context.Context, id int64, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return err
	}
	s, ok := m.stacks[id]
	if !ok {
		return stackNotFound(id)
	}
	s.Name = name
	s.Updated = now()
	m.stacks[id] = s
	m.revision++
	return nil
}

func (m *Memory) DeleteStack(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return err
	}
	if _, ok := m.stacks[id]; !ok {
		return stackNotFound(id)
	}
	delete(m.stacks, id)
	delete(m.entries, id)
	m.revision++
	return nil
}

func (m *Memory) AddEntry(ctx context.Context, stackID int64, content string) (Entry, error) {
	content, err := cleanContent(content)
	if err != nil {
		return Entry{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return Entry{}, err
	}
	s, ok := m.stacks[stackID]
	if !ok {
		return Entry{}, stackNotFound(stackID)
	}
	ts := now()
	e := Entry{ID: m.nextEntry, StackID: stackID, Content: content, Created: ts, Updated: ts}
	m.nextEntry++
	m.entries[stackID] = append(m.entries[stackID], e)
	s.Updated = ts
	m.stacks[stackID] = s
	m.revision++
	return e, nil
}

func (m *Memory) UpdateEntry(ctx context.Context, stackID, entryID int64, content string) error {
	content, err := cleanContent(content)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return err
	}
	idx := m.indexOf(stackID, entryID)
	if idx < 0 {
		return entryNotFound(stackID, entryID)
	}
	ts := now()
	e := &m.entries[stackID][idx]
	e.Content = content
	e.Updated = ts
	if st, ok := m.stacks[stackID]; ok {
		st.Updated = ts
		m.stacks[stackID] = st
	}
	m.revision++
	return nil
}

func (m *Memory) DeleteEntry(ctx context.Context, stackID, entryID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return err
	}
	idx := m.indexOf(stackID, entryID)
	if idx < 0 {
		return entryNotFound(stackID, entryID)
	}
	list := m.entries[stackID]
	m.entries[stackID] = append(list[:idx:idx], list[idx+1:]...)
	m.revision++
	return nil
}

func (m *Memory) GetEntry(ctx context.Context, stackID, entryID int64) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return Entry{}, err
	}
	idx := m.indexOf(stackID, entryID)
	if idx < 0 {
		return Entry{}, entryNotFound(stackID, entryID)
	}
	return m.entries[stackID][idx], nil
}

func (m *Memory) Revision(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return 0, err
	}
	return m.revision, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *Memory) check(ctx context.Context) error {
	if m.closed {
		return ErrClosed
	}
	return ctx.Err()
}

func (m *Memory) indexOf(stackID, entryID int64) int {
	for i, e := range m.entries[stackID] {
		if e.ID == entryID {
			return i
		}
	}
	return -1
}
