// Package io reads and writes flow snapshots as JSON or YAML files.
//
// # JSON Format
//
// The JSON format is the same document the storage gateway persists, minus
// the timestamp:
//
//	{
//	  "nodes": [
//	    {"id": "n1", "kind": "split", "label": "Branch",
//	     "position": {"x": 0, "y": 0}, "size": {"width": 150, "height": 44}}
//	  ],
//	  "edges": [
//	    {"id": "e1", "source": "n1", "target": "n2", "role": "primary"}
//	  ]
//	}
//
// On import, "size" and "role" are optional, kinds are normalized through
// [flow.ParseKind] (so "generic-decision" reads as "decision"), and nodes
// exported by React Flow, which carry "type" and "data.label" instead of
// "kind" and "label", are accepted too.
//
// # YAML Format
//
// YAML mirrors the JSON structure with the same field names.
//
// Importing only decodes; sanitizing the result (dangling edges, fan-out
// caps) is left to [flow.Graph.Replace].
package io
