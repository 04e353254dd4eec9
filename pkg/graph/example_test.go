package graph_test

import (
	"fmt"
	"os"

	"github.com/matzehuels/forcelayout/pkg/graph"
)

func ExampleBuild() {
	g, err := graph.Unmarshal([]byte(`{
		"nodes": [{"id": "app"}, {"id": "db", "fx": 0, "fy": 0}],
		"links": [{"source": "app", "target": "db"}]
	}`))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	nodes, links, err := graph.Build(g)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(len(nodes), "nodes,", len(links), "link")
	fmt.Println("db fixed:", nodes[1].Fixed())
	fmt.Printf("link: %d -> %d\n", links[0].Source, links[0].Target)
	// Output:
	// 2 nodes, 1 link
	// db fixed: true
	// link: 0 -> 1
}

func ExampleCopyBack() {
	g, _ := graph.Unmarshal([]byte(`{"nodes": [{"id": "a", "color": "red"}]}`))
	nodes, _, _ := graph.Build(g)
	nodes[0].X, nodes[0].Y = 12.5, -3

	_ = graph.CopyBack(nodes, g)
	_ = graph.Write(os.Stdout, g, "")
	// Output:
	// {"nodes":[{"color":"red","id":"a","x":12.5,"y":-3}]}
}
