package chain

import (
	"testing"

	"github.com/lanefold/lanefold/pkg/lineage"
)

const refYear = 2000

func mustGraph(t *testing.T, nodes []lineage.Node, links []lineage.Link) *lineage.Graph {
	t.Helper()
	g, rep := lineage.FromRecords(nodes, links)
	if rep.SkippedNodes > 0 || rep.SkippedLinks > 0 {
		t.Fatalf("graph build skipped %d nodes, %d links: %v", rep.SkippedNodes, rep.SkippedLinks, rep.Problems)
	}
	return g
}

// chainIDs maps each chain to the node IDs it contains, keyed by chain ID.
func chainIDs(g *lineage.Graph, chains []*Chain) map[string][]string {
	out := make(map[string][]string, len(chains))
	for _, c := range chains {
		ids := make([]string, len(c.Nodes))
		for i, h := range c.Nodes {
			ids[i] = g.Node(h).ID
		}
		out[c.ID] = ids
	}
	return out
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name  string
		nodes []lineage.Node
		links []lineage.Link
		want  map[string][]string
	}{
		{
			name: "SimpleSuccession",
			nodes: []lineage.Node{
				{ID: "a", Founded: 1900, Dissolved: 1930},
				{ID: "b", Founded: 1931, Dissolved: 1960},
				{ID: "c", Founded: 1961},
			},
			links: []lineage.Link{
				{ID: "l1", Parent: "a", Child: "b", Year: 1931, Type: lineage.LinkSpiritualSuccession},
				{ID: "l2", Parent: "b", Child: "c", Year: 1961, Type: lineage.LinkSpiritualSuccession},
			},
			want: map[string][]string{"a": {"a", "b", "c"}},
		},
		{
			name: "OverlapBreaksChain",
			nodes: []lineage.Node{
				{ID: "a", Founded: 1900, Dissolved: 1935},
				{ID: "b", Founded: 1931},
			},
			links: []lineage.Link{
				{ID: "l1", Parent: "a", Child: "b", Year: 1931, Type: lineage.LinkLegalTransfer},
			},
			want: map[string][]string{"a": {"a"}, "b": {"b"}},
		},
		{
			name: "TouchingSpansContinue",
			nodes: []lineage.Node{
				// a ends 1930, b starts 1931: exactly back to back.
				{ID: "a", Founded: 1900, Dissolved: 1930},
				{ID: "b", Founded: 1931},
			},
			links: []lineage.Link{
				{ID: "l1", Parent: "a", Child: "b", Year: 1931, Type: lineage.LinkLegalTransfer},
			},
			want: map[string][]string{"a": {"a", "b"}},
		},
		{
			name: "SingleLegalTransferWinsSplit",
			nodes: []lineage.Node{
				{ID: "a", Founded: 1900, Dissolved: 1930},
				{ID: "b", Founded: 1931},
				{ID: "c", Founded: 1931},
			},
			links: []lineage.Link{
				{ID: "l1", Parent: "a", Child: "b", Year: 1931, Type: lineage.LinkLegalTransfer},
				{ID: "l2", Parent: "a", Child: "c", Year: 1931, Type: lineage.LinkSplit},
			},
			want: map[string][]string{"a": {"a", "b"}, "c": {"c"}},
		},
		{
			name: "TwoLegalTransfersBreak",
			nodes: []lineage.Node{
				{ID: "a", Founded: 1900, Dissolved: 1930},
				{ID: "b", Founded: 1931},
				{ID: "c", Founded: 1931},
			},
			links: []lineage.Link{
				{ID: "l1", Parent: "a", Child: "b", Year: 1931, Type: lineage.LinkLegalTransfer},
				{ID: "l2", Parent: "a", Child: "c", Year: 1931, Type: lineage.LinkLegalTransfer},
			},
			want: map[string][]string{"a": {"a"}, "b": {"b"}, "c": {"c"}},
		},
		{
			name: "HandoffBeatsMidLifeBranch",
			nodes: []lineage.Node{
				// b forked off mid-life in 1920 and overlaps a; c starts
				// after a ends and is the real continuation.
				{ID: "a", Founded: 1900, Dissolved: 1930},
				{ID: "b", Founded: 1920},
				{ID: "c", Founded: 1931},
			},
			links: []lineage.Link{
				{ID: "l1", Parent: "a", Child: "b", Year: 1920, Type: lineage.LinkSplit},
				{ID: "l2", Parent: "a", Child: "c", Year: 1931, Type: lineage.LinkSpiritualSuccession},
			},
			want: map[string][]string{"a": {"a", "c"}, "b": {"b"}},
		},
		{
			name: "TwoClearHandoffsBreak",
			nodes: []lineage.Node{
				{ID: "a", Founded: 1900, Dissolved: 1930},
				{ID: "b", Founded: 1931},
				{ID: "c", Founded: 1932},
			},
			links: []lineage.Link{
				{ID: "l1", Parent: "a", Child: "b", Year: 1931, Type: lineage.LinkSplit},
				{ID: "l2", Parent: "a", Child: "c", Year: 1932, Type: lineage.LinkSplit},
			},
			want: map[string][]string{"a": {"a"}, "b": {"b"}, "c": {"c"}},
		},
		{
			name: "MergeChildAmbiguousOnIncomingSide",
			nodes: []lineage.Node{
				// c has two non-overlapping incoming hand-offs, so it cannot
				// decide which chain to continue.
				{ID: "a", Founded: 1900, Dissolved: 1930},
				{ID: "b", Founded: 1905, Dissolved: 1930},
				{ID: "c", Founded: 1931},
			},
			links: []lineage.Link{
				{ID: "l1", Parent: "a", Child: "c", Year: 1931, Type: lineage.LinkMerge},
				{ID: "l2", Parent: "b", Child: "c", Year: 1931, Type: lineage.LinkMerge},
			},
			want: map[string][]string{"a": {"a"}, "b": {"b"}, "c": {"c"}},
		},
		{
			name: "MergeWithLegalTransferContinues",
			nodes: []lineage.Node{
				{ID: "a", Founded: 1900, Dissolved: 1930},
				{ID: "b", Founded: 1905, Dissolved: 1930},
				{ID: "c", Founded: 1931},
			},
			links: []lineage.Link{
				{ID: "l1", Parent: "a", Child: "c", Year: 1931, Type: lineage.LinkLegalTransfer},
				{ID: "l2", Parent: "b", Child: "c", Year: 1931, Type: lineage.LinkMerge},
			},
			want: map[string][]string{"a": {"a", "c"}, "b": {"b"}},
		},
		{
			name:  "IsolatedNodes",
			nodes: []lineage.Node{{ID: "a", Founded: 1900}, {ID: "b", Founded: 1950}},
			want:  map[string][]string{"a": {"a"}, "b": {"b"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGraph(t, tt.nodes, tt.links)
			chains := Build(g, refYear)

			got := chainIDs(g, chains)
			if len(got) != len(tt.want) {
				t.Fatalf("Build() produced %d chains %v, want %d", len(got), got, len(tt.want))
			}
			for id, members := range tt.want {
				gm, ok := got[id]
				if !ok {
					t.Errorf("missing chain %q in %v", id, got)
					continue
				}
				if len(gm) != len(members) {
					t.Errorf("chain %q = %v, want %v", id, gm, members)
					continue
				}
				for i := range members {
					if gm[i] != members[i] {
						t.Errorf("chain %q = %v, want %v", id, gm, members)
						break
					}
				}
			}

			// Every node appears in exactly one chain.
			seen := map[string]int{}
			for _, members := range got {
				for _, id := range members {
					seen[id]++
				}
			}
			if len(seen) != g.NodeCount() {
				t.Errorf("chains cover %d nodes, want %d", len(seen), g.NodeCount())
			}
			for id, n := range seen {
				if n != 1 {
					t.Errorf("node %q appears in %d chains", id, n)
				}
			}
		})
	}
}

func TestBuildSpans(t *testing.T) {
	g := mustGraph(t,
		[]lineage.Node{
			{ID: "a", Founded: 1900, Dissolved: 1930},
			{ID: "b", Founded: 1931},
		},
		[]lineage.Link{
			{ID: "l1", Parent: "a", Child: "b", Year: 1931, Type: lineage.LinkLegalTransfer},
		},
	)
	chains := Build(g, refYear)
	if len(chains) != 1 {
		t.Fatalf("Build() produced %d chains, want 1", len(chains))
	}
	c := chains[0]
	if c.Start != 1900 {
		t.Errorf("Start = %d, want 1900", c.Start)
	}
	if c.End != refYear {
		t.Errorf("End = %d, want %d", c.End, refYear)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestRelations(t *testing.T) {
	g := mustGraph(t,
		[]lineage.Node{
			{ID: "a", Founded: 1900, Dissolved: 1930},
			{ID: "b", Founded: 1931, Dissolved: 1960},
			{ID: "c", Founded: 1931},
		},
		[]lineage.Link{
			{ID: "l1", Parent: "a", Child: "b", Year: 1931, Type: lineage.LinkLegalTransfer},
			{ID: "l2", Parent: "a", Child: "c", Year: 1931, Type: lineage.LinkSplit},
		},
	)
	chains := Build(g, refYear)
	rels := Relations(g, chains)

	// l1 is intra-chain (a continues into b) and must not appear.
	if len(rels) != 1 {
		t.Fatalf("Relations() = %v, want one relation", rels)
	}
	r := rels[0]
	if r.Parent != "a" || r.Child != "c" {
		t.Errorf("relation = %s->%s, want a->c", r.Parent, r.Child)
	}
	if r.Year != 1931 || r.Type != lineage.LinkSplit || r.LinkID != "l2" {
		t.Errorf("relation detail = %+v", r)
	}
}

func TestIndex(t *testing.T) {
	rels := []Relation{
		{Parent: "a", Child: "b", Year: 1931},
		{Parent: "a", Child: "c", Year: 1932},
		{Parent: "b", Child: "c", Year: 1950},
	}
	idx := Index(rels)

	if got := len(idx.Children["a"]); got != 2 {
		t.Errorf("Children[a] has %d relations, want 2", got)
	}
	if got := len(idx.Parents["c"]); got != 2 {
		t.Errorf("Parents[c] has %d relations, want 2", got)
	}
	if got := len(idx.Parents["a"]); got != 0 {
		t.Errorf("Parents[a] has %d relations, want 0", got)
	}
}
