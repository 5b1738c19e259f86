package graph_test

import (
	"fmt"

	"github.com/nguyenquangtin/metro/pkg/graph"
)

// a tiny in-memory module source used only to keep this example
// self-contained: a real caller would back Resolve/Transform with a
// filesystem and a JS parser (see pkg/resolve and pkg/transform).
var exampleFiles = map[string][]string{
	"/src/entry.js":  {"./util.js", "./widget.js"},
	"/src/util.js":   {},
	"/src/widget.js": {"./util.js"},
}

func exampleOptions() graph.Options {
	return graph.Options{
		Resolve: func(fromPath, name string) (string, error) {
			return "/src/" + name[2:], nil
		},
		Transform: func(path string) (graph.TransformResult, error) {
			names, ok := exampleFiles[path]
			if !ok {
				return graph.TransformResult{}, fmt.Errorf("no such module %s", path)
			}
			return graph.TransformResult{Dependencies: names, Output: path}, nil
		},
	}
}

func Example_initialTraverse() {
	g := graph.NewGraph([]string{"/src/entry.js"})

	added, _, err := graph.InitialTraverseDependencies(g, exampleOptions())
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Printf("discovered %d modules\n", len(added))
	widget, _ := g.Get("/src/widget.js")
	fmt.Printf("widget.js depends on %d module(s)\n", len(widget.Dependencies()))

	// Output:
	// discovered 3 modules
	// widget.js depends on 1 module(s)
}

func Example_incrementalRelease() {
	g := graph.NewGraph([]string{"/src/entry.js"})
	if _, _, err := graph.InitialTraverseDependencies(g, exampleOptions()); err != nil {
		fmt.Println("error:", err)
		return
	}

	// entry.js drops its import of widget.js.
	exampleFiles["/src/entry.js"] = []string{"./util.js"}
	defer func() { exampleFiles["/src/entry.js"] = []string{"./util.js", "./widget.js"} }()

	_, deleted, err := graph.TraverseDependencies([]string{"/src/entry.js"}, g, exampleOptions())
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println("released:", deleted)

	// Output:
	// released: [/src/widget.js]
}
