package algo_test

import (
	"testing"

	"git.fiblab.net/sim/catchment/router/algo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortestPathGrid(t *testing.T) {
	g := newGrid(t, 3, 3, 1000, algo.Car)

	route, err := algo.ShortestPath(g, 0, 8)
	require.NoError(t, err)
	require.NotNil(t, route)
	assert.InDelta(t, 4*72.0, route.Cost, 1e-9)
	assert.Len(t, route.Nodes, 5)
	assert.Equal(t, algo.NodeID(0), route.Nodes[0])
	assert.Equal(t, algo.NodeID(8), route.Nodes[len(route.Nodes)-1])
	assert.Len(t, route.Edges, 4)

	// cost等于路径上各边cost之和
	sum := 0.0
	for _, id := range route.Edges {
		e, ok := g.GetEdge(id)
		require.True(t, ok)
		c, _ := e.Cost(algo.Car)
		sum += c
	}
	assert.InDelta(t, route.Cost, sum, 1e-9)
}

func TestShortestPathOptimal(t *testing.T) {
	// 1 -100- 2 -100- 4
	// 1 -50-  3 -300- 4
	// 1 -500- 4
	g := newLineGraph(t,
		[]algo.NodeID{1, 2, 3, 4},
		[][3]float64{{1, 2, 100}, {2, 4, 100}, {1, 3, 50}, {3, 4, 300}, {1, 4, 500}},
		algo.Walking,
	)
	route, err := algo.ShortestPath(g, 1, 4)
	require.NoError(t, err)
	require.NotNil(t, route)
	assert.Equal(t, []algo.NodeID{1, 2, 4}, route.Nodes)
	assert.Equal(t, []algo.EdgeID{0, 1}, route.Edges)
	expected, _ := algo.TravelTime(200, algo.WALKING_SPEED)
	assert.InDelta(t, expected, route.Cost, 1e-9)

	// 无向存储，反向同样可达
	back, err := algo.ShortestPath(g, 4, 1)
	require.NoError(t, err)
	assert.Equal(t, []algo.NodeID{4, 2, 1}, back.Nodes)
	assert.InDelta(t, route.Cost, back.Cost, 1e-9)
}

func TestShortestPathSameNode(t *testing.T) {
	g := newGrid(t, 2, 2, 100, algo.Car)
	route, err := algo.ShortestPath(g, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, route.Cost)
	assert.Equal(t, []algo.NodeID{3}, route.Nodes)
	assert.Empty(t, route.Edges)
}

func TestShortestPathDisconnected(t *testing.T) {
	// 两个互不连通的分量
	g := newLineGraph(t,
		[]algo.NodeID{1, 2, 3, 4},
		[][3]float64{{1, 2, 100}, {3, 4, 100}},
		algo.Car,
	)
	route, err := algo.ShortestPath(g, 1, 4)
	assert.NoError(t, err)
	assert.Nil(t, route)
}

func TestShortestPathUnknownNode(t *testing.T) {
	g := newGrid(t, 3, 3, 1000, algo.Car)
	_, err := algo.ShortestPath(g, 0, 999)
	assert.ErrorIs(t, err, algo.ErrNodeNotFound)
	_, err = algo.ShortestPath(g, 999, 0)
	assert.ErrorIs(t, err, algo.ErrNodeNotFound)
}

func TestShortestPathZeroCostEdges(t *testing.T) {
	g := newLineGraph(t,
		[]algo.NodeID{1, 2, 3},
		[][3]float64{{1, 2, 0}, {2, 3, 0}},
		algo.Cycling,
	)
	route, err := algo.ShortestPath(g, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, route.Cost)
	assert.Equal(t, []algo.NodeID{1, 2, 3}, route.Nodes)
}
