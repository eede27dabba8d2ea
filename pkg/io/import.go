package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/lanefold/lanefold/pkg/lineage"
)

type document struct {
	Nodes []lineage.Node `json:"nodes"`
	Links []lineage.Link `json:"links"`
}

// ReadJSON decodes a JSON genealogy from r into a lineage graph.
//
// Malformed node and link records are skipped and counted in the returned
// report; only malformed JSON itself is an error. Links without an ID are
// assigned a fresh one so later change notifications can reference them.
//
// The returned graph is independent of r. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*lineage.Graph, lineage.Report, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, lineage.Report{}, fmt.Errorf("decode: %w", err)
	}
	for i := range doc.Links {
		if doc.Links[i].ID == "" {
			doc.Links[i].ID = uuid.NewString()
		}
	}
	g, rep := lineage.FromRecords(doc.Nodes, doc.Links)
	return g, rep, nil
}

// ImportJSON reads a JSON file at path and returns the decoded graph.
// The error wraps the underlying cause with the file path for context.
func ImportJSON(path string) (*lineage.Graph, lineage.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, lineage.Report{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
