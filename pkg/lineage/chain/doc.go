// Package chain decomposes a lineage graph into linear chains.
//
// A chain is a maximal run of nodes connected by unambiguous 1:1,
// non-overlapping succession. Chains are the unit of lane assignment during
// layout: each chain occupies one horizontal time span and is placed into a
// vertical lane.
//
// [Build] performs the decomposition; [Relations] extracts the cross-chain
// links that become vertical connectors between lanes. Both are pure
// functions over an immutable graph snapshot.
package chain
