package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atomicstack/stacknav/internal/logging/events"
	"github.com/atomicstack/stacknav/internal/store"
)

func addEntries(topLevel *cobra.Command, r *runner) {
	oo := &OutputOptions{}

	cmd := &cobra.Command{
		Use:     "entries STACK",
		Aliases: []string{"entry"},
		Short:   "List the entries of a stack",
		Long:    "STACK is a stack id or a name; names are matched fuzzily.",
		Example: `
stacknav entries 2
stacknav entries "stack 3" --json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withStore(cmd, func(ctx context.Context, st store.Store) error {
				target, err := lookupStack(ctx, st, args[0])
				if err != nil {
					return err
				}
				entries, err := st.ListEntries(ctx, target.ID)
				if err != nil {
					return err
				}
				return writeEntries(cmd.OutOrStdout(), entries, *oo)
			})
		},
	}
	addOutputArg(cmd, oo)

	addEntryAdd(cmd, r)
	addEntryEdit(cmd, r)
	addEntryShow(cmd, r)
	addEntryRemove(cmd, r)
	topLevel.AddCommand(cmd)
}

// entryText joins args, or reads stdin when the only arg is "-".
func entryText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

func addEntryAdd(parent *cobra.Command, r *runner) {
	cmd := &cobra.Command{
		Use:   "add STACK TEXT...",
		Short: "Add an entry to a stack (TEXT of - reads stdin)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := entryText(cmd, args[1:])
			if err != nil {
				return err
			}
			return r.withStore(cmd, func(ctx context.Context, st store.Store) error {
				target, err := lookupStack(ctx, st, args[0])
				if err != nil {
					return err
				}
				entry, err := st.AddEntry(ctx, target.ID, content)
				if err != nil {
					return err
				}
				events.Store.Write("entry.add", entry.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "added entry %d to %q\n", entry.ID, target.Name)
				return nil
			})
		},
	}
	parent.AddCommand(cmd)
}

func addEntryEdit(parent *cobra.Command, r *runner) {
	cmd := &cobra.Command{
		Use:   "edit STACK ENTRY TEXT...",
		Short: "Replace the content of an entry (TEXT of - reads stdin)",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := parseID("entry", args[1])
			if err != nil {
				return err
			}
			content, err := entryText(cmd, args[2:])
			if err != nil {
				return err
			}
			return r.withStore(cmd, func(ctx context.Context, st store.Store) error {
				target, err := lookupStack(ctx, st, args[0])
				if err != nil {
					return err
				}
				if err := st.UpdateEntry(ctx, target.ID, entryID, content); err != nil {
					return err
				}
				events.Store.Write("entry.update", entryID)
				fmt.Fprintf(cmd.OutOrStdout(), "updated entry %d\n", entryID)
				return nil
			})
		},
	}
	parent.AddCommand(cmd)
}

func addEntryShow(parent *cobra.Command, r *runner) {
	cmd := &cobra.Command{
		Use:   "show STACK ENTRY",
		Short: "Print the full content of an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := parseID("entry", args[1])
			if err != nil {
				return err
			}
			return r.withStore(cmd, func(ctx context.Context, st store.Store) error {
				target, err := lookupStack(ctx, st, args[0])
				if err != nil {
					return err
				}
				entry, err := st.GetEntry(ctx, target.ID, entryID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), entry.Content)
				return nil
			})
		},
	}
	parent.AddCommand(cmd)
}

func addEntryRemove(parent *cobra.Command, r *runner) {
	cmd := &cobra.Command{
		Use:     "rm STACK ENTRY",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete an entry",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := parseID("entry", args[1])
			if err != nil {
				return err
			}
			return r.withStore(cmd, func(ctx context.Context, st store.Store) error {
				target, err := lookupStack(ctx, st, args[0])
				if err != nil {
					return err
				}
				if err := st.DeleteEntry(ctx, target.ID, entryID); err != nil {
					return err
				}
				events.Store.Write("entry.delete", entryID)
				fmt.Fprintf(cmd.OutOrStdout(), "deleted entry %d\n", entryID)
				return nil
			})
		},
	}
	parent.AddCommand(cmd)
}
