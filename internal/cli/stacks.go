package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atomicstack/stacknav/internal/app"
	"github.com/atomicstack/stacknav/internal/logging/events"
	"github.com/atomicstack/stacknav/internal/store"
)

func addStacks(topLevel *cobra.Command, r *runner) {
	oo := &OutputOptions{}
	var match string

	cmd := &cobra.Command{
		Use:     "stacks",
		Aliases: []string{"stack", "ls"},
		Short:   "List stacks",
		Example: `
stacknav stacks
stacknav stacks --match wrk --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withStore(cmd, func(ctx context.Context, st store.Store) error {
				stacks, err := st.ListStacks(ctx)
				if err != nil {
					return err
				}
				if match != "" {
					stacks = app.FilterStacks(stacks, match)
				}
				return writeStacks(cmd.OutOrStdout(), stacks, *oo)
			})
		},
	}
	cmd.Flags().StringVarP(&match, "match", "m", "", "only list stacks whose names fuzzily match")
	addOutputArg(cmd, oo)

	addStackAdd(cmd, r)
	addStackRename(cmd, r)
	addStackRemove(cmd, r)
	topLevel.AddCommand(cmd)
}

func addStackAdd(parent *cobra.Command, r *runner) {
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a stack",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return r.withStore(cmd, func(ctx context.Context, st store.Store) error {
				created, err := st.CreateStack(ctx, name)
				if err != nil {
					return err
				}
				events.Store.Write("stack.create", created.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "created stack %d %q\n", created.ID, created.Name)
				return nil
			})
		},
	}
	parent.AddCommand(cmd)
}

func addStackRename(parent *cobra.Command, r *runner) {
	cmd := &cobra.Command{
		Use:   "rename STACK NAME",
		Short: "Rename a stack",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args[1:], " ")
			return r.withStore(cmd, func(ctx context.Context, st store.Store) error {
				target, err := lookupStack(ctx, st, args[0])
				if err != nil {
					return err
				}
				if err := st.RenameStack(ctx, target.ID, name); err != nil {
					return err
				}
				events.Store.Write("stack.rename", target.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "renamed stack %d to %q\n", target.ID, strings.TrimSpace(name))
				return nil
			})
		},
	}
	parent.AddCommand(cmd)
}

func addStackRemove(parent *cobra.Command, r *runner) {
	cmd := &cobra.Command{
		Use:     "rm STACK",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a stack and all of its entries",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withStore(cmd, func(ctx context.Context, st store.Store) error {
				target, err := lookupStack(ctx, st, args[0])
				if err != nil {
					return err
				}
				if err := st.DeleteStack(ctx, target.ID); err != nil {
					return err
				}
				events.Store.Write("stack.delete", target.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "deleted stack %d %q (%d entries)\n", target.ID, target.Name, target.Count)
				return nil
			})
		},
	}
	parent.AddCommand(cmd)
}

func addSeed(topLevel *cobra.Command, r *runner) {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add the demo stacks to the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withStore(cmd, func(ctx context.Context, st store.Store) error {
				if err := store.Seed(ctx, st); err != nil {
					return err
				}
				events.Store.Write("seed", 0)
				stacks, err := st.ListStacks(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "store now holds %d stacks\n", len(stacks))
				return nil
			})
		},
	}
	topLevel.AddCommand(cmd)
}

func lookupStack(ctx context.Context, st store.Reader, ref string) (store.Stack, error) {
	stacks, err := st.ListStacks(ctx)
	if err != nil {
		return store.Stack{}, err
	}
	return resolveStack(stacks, ref)
}
