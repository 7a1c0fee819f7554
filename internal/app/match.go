package app

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/atomicstack/stacknav/internal/store"
)

// ErrNoMatch is returned when no stack name matches a query.
var ErrNoMatch = errors.New("no stack matches")

// MatchStack returns the index of the stack that best matches query. An
// exact name (ignoring case) wins; otherwise the closest fuzzy match does.
func MatchStack(stacks []store.Stack, query string) (int, error) {
	query = strings.TrimSpace(query)
	for i, s := range stacks {
		if strings.EqualFold(s.Name, query) {
			return i, nil
		}
	}
	ranked := FilterStacks(stacks, query)
	if len(ranked) == 0 {
		return -1, fmt.Errorf("%w %q", ErrNoMatch, query)
	}
	for i, s := range stacks {
		if s.ID == ranked[0].ID {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w %q", ErrNoMatch, query)
}

// FilterStacks keeps the stacks whose names fuzzily contain query, closest
// first. An empty query keeps everything in store order.
func FilterStacks(stacks []store.Stack, query string) []store.Stack {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]store.Stack, len(stacks))
		copy(out, stacks)
		return out
	}
	names := make([]string, len(stacks))
	for i, s := range stacks {
		names[i] = s.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)
	out := make([]store.Stack, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, stacks[r.OriginalIndex])
	}
	return out
}
