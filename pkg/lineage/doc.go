// Package lineage defines the core data model for organizational genealogies.
//
// A genealogy is a set of nodes (organizations with a bounded life span) and
// typed links (succession events between two organizations). Nodes and links
// are stored in a Graph arena and addressed by integer handles, so derived
// structures such as chains can reference graph elements without aliasing
// the underlying records.
//
// # Time spans
//
// Every node has a founding year and an optional dissolution year. Nodes
// without a recorded dissolution may still carry known activity years; the
// effective end of such a "zombie" node is its latest activity year, or the
// reference year of the current pass when no activity is known.
//
// # Building graphs
//
// Use [FromRecords] to build a Graph from raw records supplied by a
// persistence layer. Malformed links (unknown endpoints, self references,
// invalid types) are skipped and reported rather than aborting the build.
package lineage
