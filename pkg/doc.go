// Package pkg provides the core libraries for fourcolor, an interactive
// engine that builds planar graphs one step at a time and keeps them
// four-colored.
//
// # Overview
//
// Every node is colored the moment it is placed or connected. When the four
// palette colors are exhausted at a node it is marked with a fifth overflow
// color and queued; the resolver then repairs the coloring by swapping two
// colors along a Kempe chain. Nodes that are fully enclosed by others are
// locked out of new connections, so the graph stays planar as drawn.
//
// # Architecture
//
// The packages depend on each other leaves first:
//
//	[errors], [config]
//	         ↓
//	    [graph] package (rotation system + outer face walk)
//	         ↓
//	    [coloring] package (palette, overflow queue, Kempe resolver)
//	         ↓
//	    [engine] package (commands, rules, snapshots)
//	         ↓
//	    [script], [render], [cache]
//
// # Quick Start
//
// Place a node, connect it to both seeds and render the result:
//
//	import (
//	    "context"
//
//	    "github.com/charmbracelet/log"
//	    "seehuhn.de/go/geom/vec"
//
//	    "github.com/matzehuels/fourcolor/pkg/config"
//	    "github.com/matzehuels/fourcolor/pkg/engine"
//	    "github.com/matzehuels/fourcolor/pkg/render/nodelink"
//	)
//
//	e, _ := engine.New(config.Default(), log.Default())
//	id, _ := e.Place(vec.Vec2{X: 300, Y: 300})
//	res := e.ConnectNew(id, []int{1, 2})
//	fmt.Println(res.Color) // blue
//
//	svg, _ := nodelink.RenderSVG(context.Background(), nodelink.ToDOT(e.Snapshot(), nodelink.Options{}))
//
// # Main Packages
//
// [graph] - Nodes, edges and the per-node rotation system. Traces the outer
// face and classifies nodes as boundary or enclosed.
//
// [coloring] - Lowest-free-color assignment, the FIFO overflow queue, Kempe
// chain resolution and the post-resolution rebalance pass.
//
// [engine] - The command surface: place, connect, move, curve, remove and
// resolve, with the protected seed zone and enclosure rules. A [engine.Snapshot]
// is the read-only view used by every renderer.
//
// [script] - TOML command scripts and their one-line interactive form,
// replayed against an engine with per-step expectations.
//
// [render/nodelink] - Graphviz DOT output at the placed positions, with
// SVG rendering. [render] converts SVG to PDF and PNG and snapshots to JSON.
//
// [cache] - Rendered artifacts keyed by DOT source, on disk for the CLI and
// in memory for the server.
//
// [observability] - Hooks for coloring, embedding and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./...               # All tests
//	go test -short ./...        # Skip graphviz rendering
//	go test -run Example ./pkg/...
//
// [errors]: https://pkg.go.dev/github.com/matzehuels/fourcolor/pkg/errors
// [config]: https://pkg.go.dev/github.com/matzehuels/fourcolor/pkg/config
// [graph]: https://pkg.go.dev/github.com/matzehuels/fourcolor/pkg/graph
// [coloring]: https://pkg.go.dev/github.com/matzehuels/fourcolor/pkg/coloring
// [engine]: https://pkg.go.dev/github.com/matzehuels/fourcolor/pkg/engine
// [engine.Snapshot]: https://pkg.go.dev/github.com/matzehuels/fourcolor/pkg/engine#Snapshot
// [script]: https://pkg.go.dev/github.com/matzehuels/fourcolor/pkg/script
// [render]: https://pkg.go.dev/github.com/matzehuels/fourcolor/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/fourcolor/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/fourcolor/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/fourcolor/pkg/observability
package pkg
