package router_test

import (
	"testing"

	"git.fiblab.net/sim/catchment/router"
	"git.fiblab.net/sim/catchment/router/algo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisjointSet(t *testing.T) {
	set := router.NewDisjointSet()
	for i := algo.NodeID(1); i <= 5; i++ {
		assert.True(t, set.Add(i))
	}
	assert.False(t, set.Add(3))
	set.Union(1, 2)
	set.Union(2, 3)
	set.Union(4, 5)
	assert.Equal(t, set.GetRoot(1), set.GetRoot(3))
	assert.Equal(t, set.GetRoot(4), set.GetRoot(5))
	assert.NotEqual(t, set.GetRoot(1), set.GetRoot(4))
	assert.False(t, set.Has(6))
}

func TestLargestComponent(t *testing.T) {
	// 1-2-3 与 4-5 不相连，6孤立
	src := &router.Source{
		Nodes: []algo.Node{
			algo.NewNode(1, 0, 0), algo.NewNode(2, 0.001, 0), algo.NewNode(3, 0.002, 0),
			algo.NewNode(4, 0, 1), algo.NewNode(5, 0.001, 1), algo.NewNode(6, 1, 1),
		},
		Edges: []*algo.Edge{
			algo.NewEdge(10, 1, 2, nil, 100),
			algo.NewEdge(11, 3, 2, nil, 100),
			algo.NewEdge(12, 4, 5, nil, 100),
		},
	}
	out, dropped := router.LargestComponent(src)
	assert.Equal(t, 3, dropped)
	require.Len(t, out.Nodes, 3)
	assert.Equal(t, algo.NodeID(1), out.Nodes[0].ID)
	require.Len(t, out.Edges, 2)
	assert.Equal(t, algo.EdgeID(11), out.Edges[1].ID)
	// 源数据不变
	assert.Len(t, src.Nodes, 6)
}

func TestLargestComponentTie(t *testing.T) {
	src := &router.Source{
		Nodes: []algo.Node{algo.NewNode(7, 0, 0), algo.NewNode(3, 1, 0)},
		Edges: []*algo.Edge{},
	}
	out, dropped := router.LargestComponent(src)
	assert.Equal(t, 1, dropped)
	require.Len(t, out.Nodes, 1)
	assert.Equal(t, algo.NodeID(7), out.Nodes[0].ID)

	empty, dropped := router.LargestComponent(&router.Source{})
	assert.Equal(t, 0, dropped)
	assert.Empty(t, empty.Nodes)
}

func TestBuildGraphLargestComponent(t *testing.T) {
	src := router.SimpleGridSource()
	src.Nodes = append(src.Nodes, algo.NewNode(100, 1, 1), algo.NewNode(101, 1.001, 1))
	src.Edges = append(src.Edges, algo.NewEdge(100, 100, 101, nil, 100))

	g, stats, err := router.BuildGraph(src, router.LoadOptions{Mode: algo.Walking, LargestComponentOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 9, g.NodeCount())
	assert.Equal(t, 12, g.EdgeCount())
	assert.Equal(t, 2, stats.DroppedNodes)
	assert.Equal(t, 1, stats.SkippedEdges)

	g, stats, err = router.BuildGraph(src, router.LoadOptions{Mode: algo.Walking})
	require.NoError(t, err)
	assert.Equal(t, 11, g.NodeCount())
	assert.Equal(t, 0, stats.DroppedNodes)
}
