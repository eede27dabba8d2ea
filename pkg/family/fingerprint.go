package family

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/lanefold/lanefold/pkg/lineage"
)

// Fingerprint builds the canonical, order-independent structural summary of
// a component: one line per node (id and time span) and one line per link
// (id, endpoints, year, type), each group sorted. Two components with the
// same membership, spans and link attributes always produce the same
// fingerprint regardless of traversal order.
func Fingerprint(g *lineage.Graph, nodes []lineage.NodeHandle, links []lineage.LinkHandle, referenceYear int) string {
	nodeLines := make([]string, 0, len(nodes))
	for _, h := range nodes {
		start, end := g.Span(h, referenceYear)
		nodeLines = append(nodeLines, fmt.Sprintf("n:%s:%d-%d", g.Node(h).ID, start, end))
	}
	linkLines := make([]string, 0, len(links))
	for _, h := range links {
		l := g.Link(h)
		linkLines = append(linkLines, fmt.Sprintf("l:%s:%s>%s@%d:%s", l.ID, l.Parent, l.Child, l.Year, l.Type))
	}
	slices.Sort(nodeLines)
	slices.Sort(linkLines)
	return strings.Join(append(nodeLines, linkLines...), "\n")
}

// Hash derives the stable identity key from a fingerprint: the full SHA-256
// hex digest, matching the sharding scheme of the file store.
func Hash(fingerprint string) string {
	sum := sha256.Sum256([]byte(fingerprint))
	return hex.EncodeToString(sum[:])
}
