package cli

import (
	"context"
	"fmt"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/lanefold/lanefold/pkg/store"
)

// familiesCommand creates the families command for inspecting registrations.
func (c *CLI) familiesCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "families",
		Short: "List registered families and their layout status",
		Long: `List registered families and their layout status.

Each row shows the family hash, its size and whether the persisted layout is
fresh, stale, or still missing. With --interactive an arrow-key picker opens
and prints the details of the selected family.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFamilies(cmd.Context(), interactive)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick a family interactively")

	return cmd
}

func (c *CLI) runFamilies(ctx context.Context, interactive bool) error {
	eng, err := c.newEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	rows, err := familyRows(ctx, eng.Store)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		printInfo("no families registered")
		printNextStep("Discover", "lanefold discover genealogy.json")
		return nil
	}

	if interactive {
		model := NewFamilyListModel(rows)
		final, err := tea.NewProgram(model).Run()
		if err != nil {
			return fmt.Errorf("run picker: %w", err)
		}
		selected := final.(FamilyListModel).Selected
		if selected == nil {
			return nil
		}
		return c.printFamily(ctx, eng.Store, selected.Hash)
	}

	for _, r := range rows {
		status := r.Status
		switch status {
		case "fresh":
			status = StyleSuccess.Render(status)
		case "stale":
			status = styleStale.Render(status)
		default:
			status = StyleDim.Render(status)
		}
		score := ""
		if r.Status != "missing" {
			score = fmt.Sprintf("  score %.2f, %d lanes", r.Score, r.Lanes)
		}
		fmt.Printf("%s  %3d nodes  %3d links  %s%s\n", shortHash(r.Hash), r.Nodes, r.Links, status, score)
	}
	return nil
}

func (c *CLI) printFamily(ctx context.Context, st store.Store, hash string) error {
	fam, err := st.GetFamily(ctx, hash)
	if err != nil {
		return err
	}
	printNewline()
	printKeyValue("family", fam.Hash)
	printKeyValue("nodes", fmt.Sprint(fam.NodeCount))
	printKeyValue("links", fmt.Sprint(fam.LinkCount))
	printKeyValue("discovered", fam.Discovered.Format("2006-01-02 15:04"))

	l, err := st.GetLayout(ctx, hash)
	if err == store.ErrNotFound {
		printKeyValue("layout", "missing")
		return nil
	}
	if err != nil {
		return err
	}
	printKeyValue("chains", fmt.Sprint(len(l.Chains)))
	printKeyValue("lanes", fmt.Sprint(l.LaneCount))
	printKeyValue("score", fmt.Sprintf("%.2f", l.Score))
	printKeyValue("updated", l.Updated.Format("2006-01-02 15:04"))
	if l.Stale {
		printWarning("layout is stale and queued for recomputation")
	}
	return nil
}

// familyRows joins family and layout records into display rows.
func familyRows(ctx context.Context, st store.Store) ([]FamilyRow, error) {
	families, err := st.ListFamilies(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(families, func(i, j int) bool { return families[i].Hash < families[j].Hash })

	rows := make([]FamilyRow, 0, len(families))
	for _, f := range families {
		row := FamilyRow{Hash: f.Hash, Nodes: f.NodeCount, Links: f.LinkCount, Status: "missing"}
		l, err := st.GetLayout(ctx, f.Hash)
		switch {
		case err == store.ErrNotFound:
		case err != nil:
			return nil, err
		case l.Stale:
			row.Status = "stale"
			row.Score = l.Score
			row.Lanes = l.LaneCount
		default:
			row.Status = "fresh"
			row.Score = l.Score
			row.Lanes = l.LaneCount
		}
		rows = append(rows, row)
	}
	return rows, nil
}
