package lineage

import (
	"bytes"
	"fmt"
	"strings"
)

var linkStyle = map[LinkType]string{
	LinkLegalTransfer:       "style=solid",
	LinkSpiritualSuccession: "style=dashed",
	LinkMerge:               "style=solid, arrowhead=diamond",
	LinkSplit:               "style=solid, arrowhead=vee",
}

// ToDOT converts a lineage graph to Graphviz DOT format for quick visual
// inspection. Node labels carry the display name and the lifespan; link
// styles distinguish the succession type.
func ToDOT(g *Graph, referenceYear int) string {
	var buf bytes.Buffer
	buf.WriteString("digraph lineage {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for h := 0; h < g.NodeCount(); h++ {
		n := g.Node(NodeHandle(h))
		start, end := g.Span(NodeHandle(h), referenceYear)
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.ID, nodeLabel(n, start, end))
	}

	buf.WriteString("\n")
	for h := 0; h < g.LinkCount(); h++ {
		l := g.Link(LinkHandle(h))
		fmt.Fprintf(&buf, "  %q -> %q [label=%q, %s];\n", l.Parent, l.Child, fmt.Sprint(l.Year), linkStyle[l.Type])
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(n Node, start, end int) string {
	name := n.Name
	if name == "" {
		name = n.ID
	}
	span := fmt.Sprintf("%d-%d", start, end)
	if n.Dissolved == 0 {
		span = fmt.Sprintf("%d-%d?", start, end)
	}
	return strings.Join([]string{name, span}, "\n")
}
