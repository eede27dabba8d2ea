// Package cost scores candidate lane assignments for lineage layouts.
//
// The cost of placing one chain at a candidate lane is the weighted sum of
// five independent terms:
//
//   - Attraction: squared distance to the mean lane of parent and child
//     chains, pulling relatives together.
//   - Cut-through: connectors to relatives more than one lane away pay for
//     every occupied lane they cross.
//   - Blocker: vertical connector segments between other chains that
//     straddle the candidate lane during this chain's active span.
//   - Y-shape: merge/split siblings placed within one lane of the candidate,
//     discouraging cramped branch fans.
//   - Overlap: chains sharing the candidate lane must keep a minimum time
//     gap (0 for direct relatives, 2 for strangers); violations pay a large
//     fixed penalty plus a magnitude term, while legal moderate proximity of
//     strangers earns a small bonus so lanes are reused rather than sprawled.
//
// A weight of zero disables its term. All evaluation is pure and
// deterministic for identical inputs; candidate lanes are passed as an
// explicit side table and never written into chain data.
package cost
