package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	lfio "github.com/lanefold/lanefold/pkg/io"
	"github.com/lanefold/lanefold/pkg/lineage"
	"github.com/lanefold/lanefold/pkg/lineage/chain"
)

// chainsCommand creates the chains debug command.
func (c *CLI) chainsCommand() *cobra.Command {
	var referenceYear int

	cmd := &cobra.Command{
		Use:   "chains [genealogy.json]",
		Short: "Show the chain decomposition of a genealogy",
		Long: `Show the chain decomposition of a genealogy.

Chains are maximal successor sequences: runs of organizations that continue
each other and prefer to share a lane. This debug command prints every chain
with its member organizations and time span, plus the cross-chain relations
the cost function will see.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runChains(cmd.Context(), args[0], referenceYear)
		},
	}

	cmd.Flags().IntVar(&referenceYear, "reference-year", 0, "end year for organizations without a dissolution (default: current year)")

	return cmd
}

func (c *CLI) runChains(_ context.Context, input string, referenceYear int) error {
	g, rep, err := lfio.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load genealogy %s: %w", input, err)
	}
	reportSkipped(c, rep)

	if referenceYear == 0 {
		referenceYear = time.Now().Year()
	}

	chains := chain.Build(g, referenceYear)
	rels := chain.Relations(g, chains)

	printInfo("%d chains, %d cross-chain relations", len(chains), len(rels))
	printNewline()
	for _, ch := range chains {
		fmt.Printf("%s  %d-%d\n", StyleTitle.Render(ch.ID), ch.Start, ch.End)
		for _, h := range ch.Nodes {
			n := g.Node(h)
			start, end := g.Span(h, referenceYear)
			name := n.Name
			if name == "" {
				name = n.ID
			}
			printDetail("%s  %d-%d", name, start, end)
		}
	}
	if len(rels) > 0 {
		printNewline()
		for _, r := range rels {
			fmt.Printf("  %s %s %s  %d  %s\n", r.Parent, iconArrow, r.Child, r.Year, StyleDim.Render(string(r.Type)))
		}
	}
	return nil
}

// exportCommand creates the export command for DOT output.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output        string
		referenceYear int
	)

	cmd := &cobra.Command{
		Use:   "export [genealogy.json]",
		Short: "Export a genealogy as a Graphviz DOT graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(args[0], output, referenceYear)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVar(&referenceYear, "reference-year", 0, "end year for organizations without a dissolution (default: current year)")

	return cmd
}

func (c *CLI) runExport(input, output string, referenceYear int) error {
	g, rep, err := lfio.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load genealogy %s: %w", input, err)
	}
	reportSkipped(c, rep)

	if referenceYear == 0 {
		referenceYear = time.Now().Year()
	}
	dot := lineage.ToDOT(g, referenceYear)

	if output == "" {
		fmt.Print(dot)
		return nil
	}
	if err := writeFile(output, dot); err != nil {
		return err
	}
	printSuccess("DOT graph written")
	printFile(output)
	return nil
}
