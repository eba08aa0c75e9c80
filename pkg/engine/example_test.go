package engine_test

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/fourcolor/pkg/config"
	"github.com/matzehuels/fourcolor/pkg/engine"
)

func ExampleEngine_ConnectNew() {
	e, _ := engine.New(config.Default(), log.New(io.Discard))

	// Attach a third node to both seeds from the outside
	c, _ := e.PlaceNode(vec.Vec2{X: 300, Y: 300})
	res := e.ConnectNew(c, []int{1, 2})
	fmt.Println("Connected:", res.Connected)
	fmt.Println("Color:", res.Color)

	// A node inside the triangle cannot attach to all three corners
	d, _ := e.PlaceNode(vec.Vec2{X: 100, Y: 100})
	res = e.ConnectNew(d, []int{1, 2, c})
	fmt.Println("Removed:", res.Removed)
	// Output:
	// Connected: [1 2]
	// Color: blue
	// Removed: true
}

func ExampleEngine_ResolveOverflowHead() {
	e, _ := engine.New(config.Default(), log.New(io.Discard))

	// Nothing is queued on a fresh engine
	c, ok, err := e.ResolveOverflowHead()
	fmt.Println(c, ok, err)
	// Output:
	// color(0) false <nil>
}
