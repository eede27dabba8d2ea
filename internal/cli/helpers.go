package cli

import (
	"fmt"
	"os"

	"github.com/lanefold/lanefold/pkg/lineage"
)

// shortHash truncates a family hash for display.
func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// writeFile writes content to path, wrapping the error with the path.
func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// reportSkipped warns about records dropped while loading a genealogy.
func reportSkipped(c *CLI, rep lineage.Report) {
	if rep.SkippedNodes == 0 && rep.SkippedLinks == 0 {
		return
	}
	printWarning("skipped %d nodes and %d links with invalid data", rep.SkippedNodes, rep.SkippedLinks)
	for _, p := range rep.Problems {
		c.Logger.Debug("skipped record", "err", p)
	}
}
