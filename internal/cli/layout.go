package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	lfio "github.com/lanefold/lanefold/pkg/io"
)

// layoutCommand creates the layout command for reading computed layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "layout [genealogy.json] [family-hash]",
		Short: "Print the lane layout for a family, computing it if needed",
		Long: `Print the lane layout for a family, computing it if needed.

The layout command reads the persisted layout for a family and prints it as
JSON. When the layout is missing or stale, the genetic search runs first and
the fresh result is persisted and printed. This is the read path downstream
renderers use.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], args[1], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write layout JSON to a file instead of stdout")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, familyHash, output string) error {
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

	spinner := newSpinnerWithContext(ctx, "Loading layout...")
	spinner.Start()
	rec, err := eng.Runner.Layout(ctx, g, familyHash)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create %s: %w", output, err)
		}
		defer f.Close()
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		printSuccess("Layout written")
		printFile(output)
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
