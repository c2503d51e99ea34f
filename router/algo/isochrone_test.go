package algo_test

import (
	"math"
	"testing"

	"git.fiblab.net/sim/catchment/router/algo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsochroneGrid(t *testing.T) {
	g := newGrid(t, 3, 3, 1000, algo.Car)

	// 每条边72s，对角为288s
	r, err := algo.CalculateIsochrone(g, 0, 300)
	require.NoError(t, err)
	assert.Equal(t, algo.NodeID(0), r.StartNode)
	assert.Equal(t, 300.0, r.MaxCost)
	assert.Equal(t, 9, r.ReachableNodes)
	assert.Len(t, r.TravelCosts, 9)
	assert.Equal(t, 0.0, r.TravelCosts[0])
	assert.InDelta(t, 288.0, r.TravelCosts[8], 1e-9)
	assert.InDelta(t, 144.0, r.TravelCosts[4], 1e-9)

	r, err = algo.CalculateIsochrone(g, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 3, r.ReachableNodes)
	assert.True(t, r.Contains(1))
	assert.True(t, r.Contains(3))
	assert.False(t, r.Contains(4))
	for _, c := range r.TravelCosts {
		assert.LessOrEqual(t, c, 100.0)
	}
	assert.Equal(t, []algo.NodeID{0, 1, 3}, r.SortedNodes())
}

func TestIsochroneZeroBudget(t *testing.T) {
	g := newGrid(t, 3, 3, 1000, algo.Walking)
	r, err := algo.CalculateIsochrone(g, 4, 0)
	require.NoError(t, err)
	assert.Equal(t, map[algo.NodeID]float64{4: 0}, r.TravelCosts)
	assert.Equal(t, 1, r.ReachableNodes)
}

func TestIsochroneIsolatedNode(t *testing.T) {
	g := newLineGraph(t,
		[]algo.NodeID{1, 2, 3},
		[][3]float64{{1, 2, 100}},
		algo.Walking,
	)
	r, err := algo.CalculateIsochrone(g, 3, 1e9)
	require.NoError(t, err)
	assert.Equal(t, map[algo.NodeID]float64{3: 0}, r.TravelCosts)
	assert.Equal(t, 1, r.ReachableNodes)
}

func TestIsochroneUnbounded(t *testing.T) {
	g := newGrid(t, 4, 4, 250, algo.Cycling)
	r, err := algo.CalculateIsochrone(g, 0, math.Inf(1))
	require.NoError(t, err)
	assert.Equal(t, 16, r.ReachableNodes)
}

func TestIsochroneErrors(t *testing.T) {
	g := newGrid(t, 2, 2, 100, algo.Car)
	_, err := algo.CalculateIsochrone(g, 42, 100)
	assert.ErrorIs(t, err, algo.ErrNodeNotFound)
	_, err = algo.CalculateIsochrone(g, 0, -1)
	assert.ErrorIs(t, err, algo.ErrInvalidCost)
	_, err = algo.CalculateIsochrone(g, 0, math.NaN())
	assert.ErrorIs(t, err, algo.ErrInvalidCost)
}

func TestIsochroneMonotonic(t *testing.T) {
	g := newGrid(t, 5, 5, 500, algo.Walking)
	thresholds := []float64{0, 300, 600, 1200, 2400}
	results, err := algo.CalculateIsochrones(g, 12, thresholds)
	require.NoError(t, err)
	require.Len(t, results, len(thresholds))

	for i, r := range results {
		assert.Equal(t, thresholds[i], r.MaxCost)
		assert.Equal(t, 0.0, r.TravelCosts[12])
		for _, c := range r.TravelCosts {
			assert.LessOrEqual(t, c, r.MaxCost)
		}
		if i == 0 {
			continue
		}
		prev := results[i-1]
		assert.LessOrEqual(t, prev.ReachableNodes, r.ReachableNodes)
		for id, c := range prev.TravelCosts {
			got, ok := r.TravelCosts[id]
			assert.True(t, ok, "node %d missing at threshold %v", id, r.MaxCost)
			assert.Equal(t, c, got)
		}
	}
}

func TestIsochroneAgreesWithShortestPath(t *testing.T) {
	g := newLineGraph(t,
		[]algo.NodeID{1, 2, 3, 4, 5},
		[][3]float64{{1, 2, 120}, {2, 3, 80}, {1, 3, 260}, {3, 4, 40}, {4, 5, 400}, {2, 5, 900}},
		algo.Wheelchair,
	)
	r, err := algo.CalculateIsochrone(g, 1, math.Inf(1))
	require.NoError(t, err)
	for _, id := range g.AllNodeIDs() {
		route, err := algo.ShortestPath(g, 1, id)
		require.NoError(t, err)
		require.NotNil(t, route)
		assert.InDelta(t, route.Cost, r.TravelCosts[id], 1e-9)
	}
}

func TestCalculateIsochronesStopsOnError(t *testing.T) {
	g := newGrid(t, 2, 2, 100, algo.Car)
	_, err := algo.CalculateIsochrones(g, 0, []float64{10, -1})
	assert.ErrorIs(t, err, algo.ErrInvalidCost)

	results, err := algo.CalculateIsochrones(g, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
