// Package render turns a flow snapshot into drawable geometry.
//
// [Present] produces a [Scene]: one [Box] per node and one [Curve] per edge.
// Curves leave the bottom-center of the source box and enter the top-center
// of the target box. The two control points sit at the height halfway
// between the anchors, directly below the start and directly above the end,
// which gives a vertical S-curve regardless of horizontal offset. Edges
// whose endpoints are missing from the snapshot are skipped.
//
// [WriteSVG] serializes a scene as a standalone SVG document; the terminal
// editor rasterizes the same scene with [Curve.Point].
package render
