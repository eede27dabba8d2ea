// Package family discovers connected components of the lineage graph worth
// optimizing ("families") and reacts to structural data changes.
//
// A family is a connected component with at least one link and a node count
// above a configured threshold. Families are identified by a canonical
// structural fingerprint and the SHA-256 hash derived from it, which serves
// as a stable cache key: re-discovering an unchanged graph finds the same
// hashes and changes nothing, while a component whose membership changed
// supersedes every overlapping registration.
//
// The Invalidator translates post-commit node and link mutations into
// stale markers on registered layouts, returning an explicit accumulator of
// what was invalidated instead of mutating hidden global state.
package family
