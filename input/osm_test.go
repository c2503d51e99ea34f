package input

import (
	"testing"

	"git.fiblab.net/sim/catchment/router/algo"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWay(id osm.WayID, nodes []osm.NodeID, tags ...osm.Tag) *osm.Way {
	w := &osm.Way{ID: id, Tags: osm.Tags(tags)}
	for _, n := range nodes {
		w.Nodes = append(w.Nodes, osm.WayNode{ID: n})
	}
	return w
}

func TestSplitWays(t *testing.T) {
	//        4
	//        |
	// 1 - 2 - 3 - 5
	//        |
	//        6
	coords := map[osm.NodeID]orb.Point{
		1: {0, 0}, 2: {0.001, 0}, 3: {0.002, 0}, 5: {0.003, 0},
		4: {0.002, 0.001}, 6: {0.002, -0.001},
	}
	ways := []*osm.Way{
		newWay(100, []osm.NodeID{1, 2, 3, 5},
			osm.Tag{Key: "highway", Value: "residential"},
			osm.Tag{Key: "maxspeed", Value: "30"},
			osm.Tag{Key: "surface", Value: "asphalt"},
		),
		newWay(200, []osm.NodeID{4, 3, 6},
			osm.Tag{Key: "highway", Value: "footway"},
			osm.Tag{Key: "oneway", Value: "yes"},
		),
	}
	src := SplitWays(ways, coords)

	// 节点2不是路口，不单独成点
	ids := make([]algo.NodeID, 0)
	for _, n := range src.Nodes {
		ids = append(ids, n.ID)
	}
	assert.ElementsMatch(t, []algo.NodeID{1, 3, 5, 4, 6}, ids)
	require.Len(t, src.Edges, 4)

	e := src.Edges[0]
	assert.Equal(t, algo.NodeID(1), e.Source)
	assert.Equal(t, algo.NodeID(3), e.Target)
	assert.Len(t, e.Geometry, 3)
	assert.InDelta(t, 2*algo.Haversine(orb.Point{0, 0}, orb.Point{0.001, 0}), e.Length, 1e-6)
	require.NotNil(t, e.MaxSpeed)
	assert.Equal(t, 30.0, *e.MaxSpeed)
	assert.Equal(t, "asphalt", e.Surface)
	assert.Equal(t, "residential", e.Highway)
	assert.False(t, e.Oneway)

	e = src.Edges[1]
	assert.Equal(t, algo.NodeID(3), e.Source)
	assert.Equal(t, algo.NodeID(5), e.Target)

	e = src.Edges[2]
	assert.Equal(t, algo.NodeID(4), e.Source)
	assert.Equal(t, algo.NodeID(3), e.Target)
	assert.True(t, e.Oneway)
	assert.Nil(t, e.MaxSpeed)
	assert.Equal(t, "footway", e.Highway)
	assert.Equal(t, algo.EdgeID(3), src.Edges[3].ID)
}

func TestSplitWaysReverseAndMissingCoords(t *testing.T) {
	coords := map[osm.NodeID]orb.Point{1: {0, 0}, 2: {0.001, 0}}
	ways := []*osm.Way{
		newWay(1, []osm.NodeID{1, 2}, osm.Tag{Key: "highway", Value: "primary"}, osm.Tag{Key: "oneway", Value: "-1"}),
		// 缺少坐标的way被忽略
		newWay(2, []osm.NodeID{7, 8}, osm.Tag{Key: "highway", Value: "primary"}),
	}
	src := SplitWays(ways, coords)
	require.Len(t, src.Edges, 1)
	assert.Equal(t, algo.NodeID(2), src.Edges[0].Source)
	assert.Equal(t, algo.NodeID(1), src.Edges[0].Target)
	assert.True(t, src.Edges[0].Oneway)
	assert.Len(t, src.Nodes, 2)
}

func TestIsRoutableHighway(t *testing.T) {
	assert.True(t, IsRoutableHighway(osm.Tags{{Key: "highway", Value: "residential"}}))
	assert.True(t, IsRoutableHighway(osm.Tags{{Key: "highway", Value: "steps"}}))
	assert.False(t, IsRoutableHighway(osm.Tags{{Key: "highway", Value: "bus_stop"}}))
	assert.False(t, IsRoutableHighway(osm.Tags{{Key: "building", Value: "yes"}}))
	assert.False(t, IsRoutableHighway(osm.Tags{{Key: "highway", Value: "pedestrian"}, {Key: "area", Value: "yes"}}))
}

func TestParseMaxSpeed(t *testing.T) {
	cases := map[string]*float64{
		"":          nil,
		"none":      nil,
		"signals":   nil,
		"0":         nil,
		"50":        speedPtr(50),
		"50 km/h":   speedPtr(50),
		" 80kmh":    speedPtr(80),
		"30 mph":    speedPtr(30 * MPH_TO_KMH),
		"12.5":      speedPtr(12.5),
		"walk":      nil,
		"RU:urban":  nil,
		"20 MPH":    speedPtr(20 * MPH_TO_KMH),
		"-10":       nil,
		"60;80":     nil,
		"100 km/h ": speedPtr(100),
	}
	for in, expected := range cases {
		got := parseMaxSpeed(in)
		if expected == nil {
			assert.Nil(t, got, "input %q", in)
			continue
		}
		require.NotNil(t, got, "input %q", in)
		assert.InDelta(t, *expected, *got, 1e-9, "input %q", in)
	}
}

func TestParseOneway(t *testing.T) {
	oneway, reverse := parseOneway(osm.Tags{{Key: "oneway", Value: "yes"}})
	assert.True(t, oneway)
	assert.False(t, reverse)
	oneway, reverse = parseOneway(osm.Tags{{Key: "oneway", Value: "-1"}})
	assert.True(t, oneway)
	assert.True(t, reverse)
	oneway, _ = parseOneway(osm.Tags{{Key: "highway", Value: "motorway"}})
	assert.True(t, oneway)
	oneway, _ = parseOneway(osm.Tags{{Key: "junction", Value: "roundabout"}})
	assert.True(t, oneway)
	oneway, _ = parseOneway(osm.Tags{{Key: "highway", Value: "residential"}, {Key: "oneway", Value: "no"}})
	assert.False(t, oneway)
}

func speedPtr(v float64) *float64 {
	return &v
}
