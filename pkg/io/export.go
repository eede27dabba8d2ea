package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lanefold/lanefold/pkg/lineage"
)

// WriteJSON encodes a lineage graph as JSON and writes it to w.
// The output can be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(g *lineage.Graph, w io.Writer) error {
	doc := document{
		Nodes: make([]lineage.Node, g.NodeCount()),
		Links: make([]lineage.Link, g.LinkCount()),
	}
	for h := 0; h < g.NodeCount(); h++ {
		doc.Nodes[h] = g.Node(lineage.NodeHandle(h))
	}
	for h := 0; h < g.LinkCount(); h++ {
		doc.Links[h] = g.Link(lineage.LinkHandle(h))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a lineage graph to a JSON file at path.
func ExportJSON(g *lineage.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}
