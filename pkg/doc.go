// Package pkg provides the core libraries for Flowcanvas flow diagrams.
//
// # Overview
//
// Flowcanvas edits directed flow diagrams: typed nodes (message, check,
// decision, split and so on) joined by edges, where some kinds cap how many
// outgoing edges they may have. The pkg directory is organized into three
// areas:
//
//  1. Domain - the graph, connection rules and the editing session
//  2. Presentation - layout engines, drawable scenes and file formats
//  3. Infrastructure - persistence, remote save, sessions, config and hooks
//
// # Architecture
//
// The typical data flow through Flowcanvas:
//
//	pointer / keyboard / CLI / HTTP
//	         ↓
//	    [editor] package (selection, drag, label edit, autosave)
//	         ↓
//	    [flow] package (graph mutations + connection validation)
//	         ↓
//	    [storage] package (snapshot gateway over file, sqlite, redis, postgres)
//
// Layout and drawing read a snapshot and never mutate the graph directly:
//
//	snapshot → [layout] (graphviz or layered) → positions → [flow.Graph]
//	snapshot → [render] → Scene (boxes + curves) → SVG / terminal canvas
//
// # Quick Start
//
// Build a diagram, lay it out and render it:
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/flowcanvas/pkg/editor"
//	    "github.com/matzehuels/flowcanvas/pkg/flow"
//	    "github.com/matzehuels/flowcanvas/pkg/render"
//	)
//
//	ed := editor.New()
//	in := ed.AddNode(flow.KindInput, "Start")
//	check := ed.AddNode(flow.KindDecision, "Valid?")
//	_, _ = ed.Connect(in, check)
//
//	_, _ = ed.Layout(context.Background())
//	_ = render.WriteSVG(os.Stdout, ed.Scene())
//
// # Main Packages
//
// ## Domain
//
// [flow] - The graph model: nodes, edges, the kind registry and connection
// validation. Every mutation notifies observers with a [flow.Change].
//
// [editor] - One editing session over a graph: selection, the drag state
// machine, label editing, keyboard shortcuts, layout requests and debounced
// autosave.
//
// ## Presentation
//
// [layout] - Engines that turn a snapshot into node positions. Graphviz dot
// runs in-process; the layered engine needs no cgo or wasm.
//
// [render] - Drawable geometry (boxes and S-curves) and SVG output.
//
// [io] - JSON and YAML import and export.
//
// ## Infrastructure
//
// [storage] - The persistence gateway and its key-value backends.
//
// [remote] - Named saves to a shared MongoDB collection.
//
// [session] - The per-machine session id that tags remote saves.
//
// [config] - TOML configuration with environment overrides.
//
// [observability] - Hooks for storage and layout events.
//
// [errors] - Error codes shared by the CLI and HTTP API.
//
// # Testing
//
// Run tests:
//
//	go test ./...                        # All tests
//	go test ./pkg/flow/...               # Specific package
//
// Redis, PostgreSQL and MongoDB tests skip unless the matching
// FLOWCANVAS_TEST_* address is set.
//
// [flow]: https://pkg.go.dev/github.com/matzehuels/flowcanvas/pkg/flow
// [flow.Change]: https://pkg.go.dev/github.com/matzehuels/flowcanvas/pkg/flow#Change
// [flow.Graph]: https://pkg.go.dev/github.com/matzehuels/flowcanvas/pkg/flow#Graph
// [editor]: https://pkg.go.dev/github.com/matzehuels/flowcanvas/pkg/editor
// [layout]: https://pkg.go.dev/github.com/matzehuels/flowcanvas/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/flowcanvas/pkg/render
// [io]: https://pkg.go.dev/github.com/matzehuels/flowcanvas/pkg/io
// [storage]: https://pkg.go.dev/github.com/matzehuels/flowcanvas/pkg/storage
// [remote]: https://pkg.go.dev/github.com/matzehuels/flowcanvas/pkg/remote
// [session]: https://pkg.go.dev/github.com/matzehuels/flowcanvas/pkg/session
// [config]: https://pkg.go.dev/github.com/matzehuels/flowcanvas/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/flowcanvas/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/flowcanvas/pkg/errors
package pkg
