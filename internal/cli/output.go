package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/atomicstack/stacknav/internal/app"
	"github.com/atomicstack/stacknav/internal/format/table"
	"github.com/atomicstack/stacknav/internal/store"
	uistate "github.com/atomicstack/stacknav/internal/ui/state"
)

// OutputOptions selects between table and JSON output.
type OutputOptions struct {
	JSON bool
}

func addOutputArg(cmd *cobra.Command, o *OutputOptions) {
	cmd.Flags().BoolVar(&o.JSON, "json", false, "Output as JSON.")
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStacks(w io.Writer, stacks []store.Stack, o OutputOptions) error {
	if o.JSON {
		if stacks == nil {
			stacks = []store.Stack{}
		}
		return writeJSON(w, stacks)
	}
	rows := make([][]string, len(stacks))
	for i, s := range stacks {
		rows[i] = []string{
			strconv.FormatInt(s.ID, 10),
			s.Name,
			strconv.Itoa(s.Count),
			formatTime(s.Updated),
		}
	}
	return table.Write(w, []string{"ID", "NAME", "ENTRIES", "UPDATED"}, rows,
		[]table.Alignment{table.AlignRight, table.AlignLeft, table.AlignRight, table.AlignLeft})
}

func writeEntries(w io.Writer, entries []store.Entry, o OutputOptions) error {
	if o.JSON {
		if entries == nil {
			entries = []store.Entry{}
		}
		return writeJSON(w, entries)
	}
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			strconv.FormatInt(e.ID, 10),
			uistate.FlattenRow(uistate.EntryDisplay(e.Content)),
		}
	}
	return table.Write(w, []string{"ID", "CONTENT"}, rows,
		[]table.Alignment{table.AlignRight, table.AlignLeft})
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func parseID(kind, value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, value)
	}
	return id, nil
}

// resolveStack accepts a numeric id or a (fuzzy) stack name.
func resolveStack(stacks []store.Stack, ref string) (store.Stack, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, s := range stacks {
			if s.ID == id {
				return s, nil
			}
		}
		return store.Stack{}, fmt.Errorf("stack %d: %w", id, store.ErrNotFound)
	}
	idx, err := app.MatchStack(stacks, ref)
	if err != nil {
		return store.Stack{}, err
	}
	return stacks[idx], nil
}
