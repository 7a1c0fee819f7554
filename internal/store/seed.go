package store

import (
	"context"
	"fmt"
)

var seedStacks = []struct {
	name    string
	entries []string
}{
	{"Stack 1", []string{
		"Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
	}},
	{"Stack 2", []string{
		"Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
		"Lorem ipsum dolor sit amet, consectetur adipiscing elit. Nulla id imperdiet dolor. Proin a dolor sit amet erat viverra condimentum. Praesent maximus efficitur ante, a cursus dui suscipit id.",
		"Quisque et mattis ex. Phasellus dignissim dignissim congue. Nam nec maximus elit, vitae rutrum leo. Nullam ultrices lobortis leo, in ultricies justo viverra vulputate. Nulla non accumsan lectus. Mauris ac sapien auctor, posuere orci nec, maximus quam.",
		"Duis aute irure dolor.",
		"Excepteur sint occaecat cupidatat non proident.",
	}},
	{"Stack 3", []string{
		"git log --oneline --graph --decorate",
		"kubectl get pods -A",
		"ssh -L 5432:localhost:5432 db-host",
	}},
	{"Stack 4", nil},
}

// Seed writes the demo stacks and entries through w.
func Seed(ctx context.Context, w Writer) error {
	for _, s := range seedStacks {
		st, err := w.CreateStack(ctx, s.name)
		if err != nil {
			return fmt.Errorf("seed stack %q: %w", s.name, err)
		}
		for _, content := range s.entries {
			if _, err := w.AddEntry(ctx, st.ID, content); err != nil {
				return fmt.Errorf("seed entry in %q: %w", s.name, err)
			}
		}
	}
	return nil
}
