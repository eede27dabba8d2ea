// Package io provides JSON import and export for lineage graphs.
//
// # JSON Format
//
// The format has two top-level arrays:
//
//	{
//	  "nodes": [
//	    {"id": "a", "name": "Alpha Lodge", "founded": 1901, "dissolved": 1934},
//	    {"id": "b", "name": "Beta Lodge", "founded": 1934}
//	  ],
//	  "links": [
//	    {"parent": "a", "child": "b", "year": 1934, "type": "legal_transfer"}
//	  ]
//	}
//
// Each node must have an "id" and a "founded" year. "dissolved" is omitted
// when unknown; "activity_years" may list years the organization is known to
// have been active. Each link needs "parent", "child", "year" and "type"
// (one of legal_transfer, spiritual_succession, merge, split). Links without
// an "id" get one assigned on import so invalidation hooks can address them.
//
// Malformed records are skipped and reported, not fatal: external genealogy
// datasets are messy and one bad row must not block the rest.
package io
