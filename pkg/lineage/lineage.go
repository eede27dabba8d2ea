package lineage

import "slices"

// LinkType classifies the succession event a link represents.
type LinkType string

// Succession event types.
const (
	// LinkLegalTransfer is a formal hand-off of legal identity from parent
	// to child. Legal transfers are the preferred continuation edge when a
	// node has several outgoing links in the same transition.
	LinkLegalTransfer LinkType = "legal_transfer"
	// LinkSpiritualSuccession is an informal continuation without legal
	// identity transfer.
	LinkSpiritualSuccession LinkType = "spiritual_succession"
	// LinkMerge joins the parent into a child that absorbs several parents.
	LinkMerge LinkType = "merge"
	// LinkSplit spawns the child as one of several offshoots of the parent.
	LinkSplit LinkType = "split"
)

// Valid reports whether t is one of the known link types.
func (t LinkType) Valid() bool {
	switch t {
	case LinkLegalTransfer, LinkSpiritualSuccession, LinkMerge, LinkSplit:
		return true
	}
	return false
}

// Node represents one organization occupying a horizontal time span.
//
// Founded is required. Dissolved is 0 when the dissolution year is unknown;
// use [Node.EffectiveEnd] to derive the end of the node's span.
type Node struct {
	ID        string `json:"id" bson:"id"`
	Name      string `json:"name,omitempty" bson:"name,omitempty"`
	Founded   int    `json:"founded" bson:"founded"`
	Dissolved int    `json:"dissolved,omitempty" bson:"dissolved,omitempty"`

	// ActivityYears lists years the organization is known to have been
	// active. Used to derive an effective end year for nodes without a
	// recorded dissolution.
	ActivityYears []int `json:"activity_years,omitempty" bson:"activity_years,omitempty"`
}

// EffectiveEnd returns the end year of the node's span: the dissolution year
// if recorded, otherwise the latest known activity year, otherwise
// referenceYear. The result is never before the founding year.
func (n Node) EffectiveEnd(referenceYear int) int {
	end := referenceYear
	switch {
	case n.Dissolved != 0:
		end = n.Dissolved
	case len(n.ActivityYears) > 0:
		end = slices.Max(n.ActivityYears)
	}
	if end < n.Founded {
		return n.Founded
	}
	return end
}

// Link represents a directed succession event from a parent organization to
// a child organization in a given year.
type Link struct {
	ID     string   `json:"id" bson:"id"`
	Parent string   `json:"parent" bson:"parent"`
	Child  string   `json:"child" bson:"child"`
	Year   int      `json:"year" bson:"year"`
	Type   LinkType `json:"type" bson:"type"`
}
