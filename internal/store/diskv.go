package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"
)

const (
	diskvStackPrefix = "stack/"
	diskvEntryPrefix = "entry/"
	diskvRevisionKey = "meta/revision"
	diskvNextStack   = "meta/next-stack"
	diskvNextEntry   = "meta/next-entry"
)

// Diskv keeps one JSON file per stack and per entry under a base directory:
//
//	<base>/stack/<id>
//	<base>/entry/<stack-id>/<entry-id>
//	<base>/meta/{revision,next-stack,next-entry}
type Diskv struct {
	mu sync.Mutex
	d  *diskv.Diskv
}

// OpenDiskv returns a store rooted at basePath. Reads always go to disk so
// writes from other processes, the revision counter included, are seen.
func OpenDiskv(basePath string) *Diskv {
	return &Diskv{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPath,
		InverseTransform:  pathToKey,
		CacheSizeMax:      0,
	})}
}

func keyToPath(key string) *diskv.PathKey {
	parts := strings.Split(key, "/")
	last := len(parts) - 1
	return &diskv.PathKey{Path: parts[:last], FileName: parts[last]}
}

func pathToKey(pk *diskv.PathKey) string {
	if len(pk.Path) == 0 {
		return pk.FileName
	}
	return strings.Join(pk.Path, "/") + "/" + pk.FileName
}

func stackKey(id int64) string {
	return diskvStackPrefix + strconv.FormatInt(id, 10)
}

func entryKey(stackID, entryID int64) string {
	return entryDir(stackID) + strconv.FormatInt(entryID, 10)
}

func entryDir(stackID int64) string {
	return diskvEntryPrefix + strconv.FormatInt(stackID, 10) + "/"
}

func (s *Diskv) ListStacks(ctx context.Context) ([]Stack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys, err := s.keys(ctx, diskvStackPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]Stack, 0, len(keys))
	for _, key := range keys {
		var st Stack
		if err := s.readJSON(key, &st); err != nil {
			return nil, err
		}
		entries, err := s.keys(ctx, entryDir(st.ID))
		if err != nil {
			return nil, err
		}
		st.Count = len(entries)
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Diskv) ListEntries(ctx context.Context, stackID int64) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.d.Has(stackKey(stackID)) {
		return nil, stackNotFound(stackID)
	}
	keys, err := s.keys(ctx, entryDir(stackID))
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(keys))
	for _, key := range keys {
		var e Entry
		if err := s.readJSON(key, &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Diskv) CreateStack(ctx context.Context, name string) (Stack, error) {
	name, err := cleanName(name)
	if err != nil {
		return Stack{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return Stack{}, err
	}
	id, err := s.next(diskvNextStack)
	if err != nil {
		return Stack{}, err
	}
	ts := now()
	st := Stack{ID: id, Name: name, Created: ts, Updated: ts}
	if err := s.writeJSON(stackKey(id), st); err != nil {
		return Stack{}, fmt.Errorf("create stack: %w", err)
	}
	return st, s.bump()
}

func (s *Diskv) RenameStack(ctx context.Context, id int64, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	var st Stack
	if err := s.readStack(id, &st); err != nil {
		return err
	}
	st.Name = name
	st.Updated = now()
	if err := s.writeJSON(stackKey(id), st); err != nil {
		return fmt.Errorf("rename stack: %w", err)
	}
	return s.bump()
}

func (s *Diskv) DeleteStack(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.d.Has(stackKey(id)) {
		return stackNotFound(id)
	}
	keys, err := s.keys(ctx, entryDir(id))
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.d.Erase(key); err != nil {
			return fmt.Errorf("delete entry %s: %w", key, err)
		}
	}
	if err := s.d.Erase(stackKey(id)); err != nil {
		return fmt.Errorf("delete stack: %w", err)
	}
	return s.bump()
}

func (s *Diskv) AddEntry(ctx context.Context, stackID int64, content string) (Entry, error) {
	content, err := cleanContent(content)
	if err != nil {
		return Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	var st Stack
	if err := s.readStack(stackID, &st); err != nil {
		return Entry{}, err
	}
	id, err := s.next(diskvNextEntry)
	if err != nil {
		return Entry{}, err
	}
	ts := now()
	e := Entry{ID: id, StackID: stackID, Content: content, Created: ts, Updated: ts}
	if err := s.writeJSON(entryKey(stackID, id), e); err != nil {
		return Entry{}, fmt.Errorf("add entry: %w", err)
	}
	st.Updated = ts
	if err := s.writeJSON(stackKey(stackID), st); err != nil {
		return Entry{}, fmt.Errorf("touch stack: %w", err)
	}
	return e, s.bump()
}

func (s *Diskv) UpdateEntry(ctx context.Context, stackID, entryID int64, content string) error {
	content, err := cleanContent(content)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	var e Entry
	if err := s.readEntry(stackID, entryID, &e); err != nil {
		return err
	}
	var st Stack
	if err := s.readStack(stackID, &st); err != nil {
		return err
	}
	ts := now()
	e.Content = content
	e.Updated = ts
	if err := s.writeJSON(entryKey(stackID, entryID), e); err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	st.Updated = ts
	if err := s.writeJSON(stackKey(stackID), st); err != nil {
		return fmt.Errorf("touch stack: %w", err)
	}
	return s.bump()
}

func (s *Diskv) DeleteEntry(ctx context.Context, stackID, entryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	key := entryKey(stackID, entryID)
	if !s.d.Has(key) {
		return entryNotFound(stackID, entryID)
	}
	if err := s.d.Erase(key); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return s.bump()
}

func (s *Diskv) GetEntry(ctx context.Context, stackID, entryID int64) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	var e Entry
	if err := s.readEntry(stackID, entryID, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *Diskv) Revision(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.counter(diskvRevisionKey)
}

func (s *Diskv) Close() error {
	return nil
}

func (s *Diskv) keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for key := range s.d.Keys(ctx.Done()) {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, ctx.Err()
}

func (s *Diskv) readStack(id int64, st *Stack) error {
	key := stackKey(id)
	if !s.d.Has(key) {
		return stackNotFound(id)
	}
	return s.readJSON(key, st)
}

func (s *Diskv) readEntry(stackID, entryID int64, e *Entry) error {
	key := entryKey(stackID, entryID)
	if !s.d.Has(key) {
		return entryNotFound(stackID, entryID)
	}
	return s.readJSON(key, e)
}

func (s *Diskv) readJSON(key string, v any) error {
	data, err := s.read(key)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// read bypasses the diskv cache.
func (s *Diskv) read(key string) ([]byte, error) {
	rc, err := s.d.ReadStream(key, true)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *Diskv) writeJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.d.Write(key, data)
}

func (s *Diskv) counter(key string) (int64, error) {
	if !s.d.Has(key) {
		return 0, nil
	}
	data, err := s.read(key)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", key, err)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

// next allocates the following identifier from a counter key.
func (s *Diskv) next(key string) (int64, error) {
	n, err := s.counter(key)
	if err != nil {
		return 0, err
	}
	n++
	if err := s.d.Write(key, []byte(strconv.FormatInt(n, 10))); err != nil {
		return 0, fmt.Errorf("write %s: %w", key, err)
	}
	return n, nil
}

func (s *Diskv) bump() error {
	_, err := s.next(diskvRevisionKey)
	return err
}
