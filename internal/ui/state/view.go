package state

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const (
	// MaxEntryLength is the number of runes of entry content shown in lists.
	MaxEntryLength = 100
	// TruncationMarker is appended to entry content cut at MaxEntryLength.
	TruncationMarker = "…"
)

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// View is the read-only projection handed to the renderer.
type View struct {
	Mode          Mode
	Stacks        []string
	StackCounts   []int
	StackSelected int
	Entries       []string
	EntrySelected int
	StacksActive  bool
	EntriesActive bool
	// Scope names the stack whose entries are listed.
	Scope string
}

// View builds the projection of the current state without mutating it.
func (n *Navigator) View() View {
	v := View{
		Mode:          n.mode,
		Stacks:        make([]string, len(n.stacks)),
		StackCounts:   make([]int, len(n.stacks)),
		StackSelected: -1,
		EntrySelected: -1,
		StacksActive:  n.mode == BrowsingStacks,
		EntriesActive: n.mode == BrowsingEntries,
	}
	for i, s := range n.stacks {
		v.Stacks[i] = s.Name
		v.StackCounts[i] = s.Count
	}
	if n.mode == BrowsingStacks {
		v.StackSelected = n.stackCur.Index()
	}
	if n.mode == BrowsingEntries {
		if st, ok := n.CurrentStack(); ok {
			v.Scope = st.Name
		}
		v.Entries = make([]string, len(n.entries))
		for i, e := range n.entries {
			v.Entries[i] = EntryDisplay(e.Content)
		}
		v.EntrySelected = n.entryCur.Index()
	}
	return v
}

// EntryDisplay is the list form of entry content: anything past
// MaxEntryLength runes is replaced by TruncationMarker, shorter content is
// returned as is.
func EntryDisplay(content string) string {
	runes := []rune(content)
	if len(runes) <= MaxEntryLength {
		return content
	}
	return string(runes[:MaxEntryLength]) + TruncationMarker
}

// FlattenRow makes text safe to draw on one terminal row: escape sequences
// are dropped and line breaks and tabs become spaces.
func FlattenRow(text string) string {
	return lineBreaks.Replace(ansi.Strip(text))
}
