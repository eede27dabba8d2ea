// Package pkg provides the core libraries for the LaneFold genealogy layout
// engine.
//
// # Overview
//
// LaneFold arranges organizational genealogies into horizontal lanes. Nodes
// are organizations with founding and dissolution years; links record
// successions, transfers, merges, and splits between them. The engine groups
// nodes into chains of sequential succession, assigns each chain a lane, and
// searches for the assignment that keeps related chains close while keeping
// unrelated overlapping chains apart.
//
// # Package Layout
//
//   - lineage: the genealogy graph of nodes and links, plus DOT export
//   - lineage/chain: chain building and inter-chain relation extraction
//   - layout: lane assignments (individuals)
//   - layout/cost: the scoring function over lane assignments
//   - layout/genetic: the genetic search over lane assignments
//   - family: connected-component discovery, fingerprinting, invalidation
//   - store: layout persistence (memory, file, Redis, MongoDB backends)
//   - runner: concurrent per-family optimization runs
//   - config: TOML configuration and hot reload
//   - io: JSON import and export of genealogies
//   - errors: structured error codes
//   - observability: optional instrumentation hooks
//   - buildinfo: version metadata for the CLI
//
// The lanefold CLI under cmd/lanefold ties these together; internal/cli holds
// its command implementations.
package pkg
