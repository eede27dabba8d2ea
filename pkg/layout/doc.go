// Package layout defines the candidate lane assignments produced and
// consumed by the layout optimizer.
//
// A lane is a vertical slot (integer index) in the rendered diagram. An
// [Individual] maps every chain of a family to a lane; lanes may be shared
// by chains whose time spans do not conflict. Scoring of individuals lives
// in the cost subpackage, the search in the genetic subpackage.
package layout
