package router

import (
	"fmt"

	"git.fiblab.net/sim/catchment/router/algo"
	"github.com/paulmach/orb"
)

// 生成width*height的网格路网，节点ID=y*width+x，相邻节点间距spacing/m
// 坐标以(0,0)为原点按赤道附近的经纬度换算
func NewGridSource(width, height int, spacing float64) (*Source, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", width, height)
	}
	if !(spacing > 0) {
		return nil, fmt.Errorf("invalid grid spacing %v", spacing)
	}
	deg := algo.MetersToDegrees(spacing)
	point := func(x, y int) orb.Point {
		return orb.Point{float64(x) * deg, float64(y) * deg}
	}
	src := &Source{
		Nodes: make([]algo.Node, 0, width*height),
		Edges: make([]*algo.Edge, 0, 2*width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := point(x, y)
			src.Nodes = append(src.Nodes, algo.NewNode(algo.NodeID(y*width+x), p.Lon(), p.Lat()))
		}
	}
	edgeID := algo.EdgeID(0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			cur := algo.NodeID(y*width + x)
			// 右侧
			if x < width-1 {
				src.Edges = append(src.Edges, algo.NewEdge(
					edgeID, cur, cur+1,
					orb.LineString{point(x, y), point(x+1, y)},
					spacing,
				))
				edgeID++
			}
			// 下方
			if y < height-1 {
				src.Edges = append(src.Edges, algo.NewEdge(
					edgeID, cur, cur+algo.NodeID(width),
					orb.LineString{point(x, y), point(x, y+1)},
					spacing,
				))
				edgeID++
			}
		}
	}
	return src, nil
}

// 3*3网格，间距1km
func SimpleGridSource() *Source {
	src, _ := NewGridSource(3, 3, 1000)
	return src
}
