package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	lfio "github.com/lanefold/lanefold/pkg/io"
)

// discoverCommand creates the discover command for registering families.
func (c *CLI) discoverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover [genealogy.json]",
		Short: "Discover families in a genealogy graph",
		Long: `Discover families in a genealogy graph.

The discover command loads a genealogy JSON file, finds connected components
that are complex enough to need layout optimization, and registers each as a
family in the configured store. Families whose structure is already registered
are left untouched; superseded registrations that overlap a changed component
are pruned.

Discovery is idempotent: running it twice over the same data changes nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiscover(cmd.Context(), args[0])
		},
	}
	return cmd
}

func (c *CLI) runDiscover(ctx context.Context, input string) error {
	g, rep, err := lfio.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load genealogy %s: %w", input, err)
	}
	reportSkipped(c, rep)

	eng, err := c.newEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	prog := newProgress(c.Logger)
	families, err := eng.Runner.Discovery.Discover(ctx, g)
	if err != nil {
		return fmt.Errorf("discover families: %w", err)
	}
	prog.done(fmt.Sprintf("Discovered %d new families", len(families)))

	printSuccess("Discovery complete")
	printStats(g.NodeCount(), g.LinkCount(), len(families))
	for _, f := range families {
		printDetail("%s  %d nodes, %d links", shortHash(f.Hash), f.NodeCount, f.LinkCount)
	}
	printNewline()
	printNextStep("Optimize", "lanefold optimize "+input)
	return nil
}
