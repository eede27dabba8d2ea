package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	lfio "github.com/lanefold/lanefold/pkg/io"
	"github.com/lanefold/lanefold/pkg/lineage"
)

// optimizeCommand creates the optimize command for computing family layouts.
func (c *CLI) optimizeCommand() *cobra.Command {
	var (
		familyHash string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "optimize [genealogy.json]",
		Short: "Optimize lane layouts for discovered families",
		Long: `Optimize lane layouts for discovered families.

The optimize command loads a genealogy JSON file, registers any new families,
and runs the genetic lane search for every family whose layout is missing or
has been marked stale. Results are persisted in the configured store.

With --family only that family is optimized, and the search logs its progress
per improvement. Without it, families are processed concurrently.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runOptimize(cmd.Context(), args[0], familyHash, workers)
		},
	}

	cmd.Flags().StringVarP(&familyHash, "family", "f", "", "optimize a single family by hash")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent family optimizations (default 4)")

	return cmd
}

func (c *CLI) runOptimize(ctx context.Context, input, familyHash string, workers int) error {
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
	eng.Runner.Workers = workers

	if familyHash != "" {
		return c.optimizeOne(ctx, eng, g, familyHash)
	}

	prog := newProgress(c.Logger)
	report, err := eng.Runner.Run(ctx, g)
	if err != nil {
		return fmt.Errorf("optimize families: %w", err)
	}
	prog.done(fmt.Sprintf("Optimized %d families", report.Optimized))

	if report.Failed > 0 {
		printWarning("%d families failed; see the log above", report.Failed)
	}
	printSuccess("Optimization complete")
	printKeyValue("discovered", fmt.Sprint(report.Discovered))
	printKeyValue("optimized", fmt.Sprint(report.Optimized))
	printKeyValue("failed", fmt.Sprint(report.Failed))
	printNewline()
	printNextStep("Inspect", "lanefold families")
	return nil
}

func (c *CLI) optimizeOne(ctx context.Context, eng *engine, g *lineage.Graph, familyHash string) error {
	eng.Runner.Progress = newSearchLogger(c.Logger).onProgress

	prog := newProgress(c.Logger)
	rec, err := eng.Runner.Optimize(ctx, g, familyHash)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Best: score %.2f in %d lanes", rec.Score, rec.LaneCount))

	if rec.Stale {
		printWarning("layout was invalidated while optimizing; it stays queued for recomputation")
	}
	printSuccess("Optimized family %s", shortHash(familyHash))
	printKeyValue("chains", fmt.Sprint(len(rec.Chains)))
	printKeyValue("lanes", fmt.Sprint(rec.LaneCount))
	printKeyValue("score", fmt.Sprintf("%.2f", rec.Score))
	printKeyValue("generations", fmt.Sprint(rec.Generations))
	return nil
}
