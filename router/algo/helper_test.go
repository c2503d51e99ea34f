package algo_test

import (
	"testing"

	"git.fiblab.net/sim/catchment/router/algo"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

// width*height网格，节点ID=y*width+x，先连右侧再连下方
func newGrid(t *testing.T, width, height int, spacing float64, mode algo.RoutingMode) *algo.NetworkGraph {
	t.Helper()
	g := algo.NewNetworkGraph()
	deg := algo.MetersToDegrees(spacing)
	point := func(x, y int) orb.Point {
		return orb.Point{float64(x) * deg, float64(y) * deg}
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := point(x, y)
			require.NoError(t, g.AddNode(algo.NewNode(algo.NodeID(y*width+x), p.Lon(), p.Lat())))
		}
	}
	edgeID := algo.EdgeID(0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			cur := algo.NodeID(y*width + x)
			if x < width-1 {
				e := algo.NewEdge(edgeID, cur, cur+1, orb.LineString{point(x, y), point(x+1, y)}, spacing)
				require.NoError(t, g.AddEdge(e, mode))
				edgeID++
			}
			if y < height-1 {
				e := algo.NewEdge(edgeID, cur, cur+algo.NodeID(width), orb.LineString{point(x, y), point(x, y+1)}, spacing)
				require.NoError(t, g.AddEdge(e, mode))
				edgeID++
			}
		}
	}
	return g
}

// 按(source, target, length)快速建图，节点位于原点附近
func newLineGraph(t *testing.T, nodes []algo.NodeID, edges [][3]float64, mode algo.RoutingMode, opts ...algo.GraphOption) *algo.NetworkGraph {
	t.Helper()
	g := algo.NewNetworkGraph(opts...)
	for i, id := range nodes {
		require.NoError(t, g.AddNode(algo.NewNode(id, float64(i)*0.001, 0)))
	}
	for i, e := range edges {
		edge := algo.NewEdge(algo.EdgeID(i), algo.NodeID(e[0]), algo.NodeID(e[1]), nil, e[2])
		require.NoError(t, g.AddEdge(edge, mode))
	}
	return g
}
