package input

import (
	"fmt"

	"git.fiblab.net/sim/catchment/router"
	"git.fiblab.net/sim/catchment/router/algo"
	"github.com/paulmach/orb"
)

// JSON文件与Mongo共用的节点格式
type NodeDoc struct {
	ID        uint64   `json:"id" bson:"id"`
	Lon       float64  `json:"lon" bson:"lon"`
	Lat       float64  `json:"lat" bson:"lat"`
	Elevation *float64 `json:"elevation,omitempty" bson:"elevation,omitempty"`
}

// JSON文件与Mongo共用的边格式
// Length缺省时按几何形状计算
type EdgeDoc struct {
	ID       uint64             `json:"id" bson:"id"`
	Source   uint64             `json:"source" bson:"source"`
	Target   uint64             `json:"target" bson:"target"`
	Length   *float64           `json:"length,omitempty" bson:"length,omitempty"`
	Geometry [][2]float64       `json:"geometry,omitempty" bson:"geometry,omitempty"`
	Costs    map[string]float64 `json:"costs,omitempty" bson:"costs,omitempty"`
	MaxSpeed *float64           `json:"max_speed,omitempty" bson:"max_speed,omitempty"`
	Oneway   bool               `json:"oneway,omitempty" bson:"oneway,omitempty"`
	Surface  string             `json:"surface,omitempty" bson:"surface,omitempty"`
	Highway  string             `json:"highway,omitempty" bson:"highway,omitempty"`
}

func (d NodeDoc) toNode() algo.Node {
	n := algo.NewNode(algo.NodeID(d.ID), d.Lon, d.Lat)
	if d.Elevation != nil {
		n = n.WithElevation(*d.Elevation)
	}
	return n
}

func (d EdgeDoc) toEdge(nodes map[algo.NodeID]orb.Point) (*algo.Edge, error) {
	var line orb.LineString
	if len(d.Geometry) > 0 {
		line = make(orb.LineString, len(d.Geometry))
		for i, c := range d.Geometry {
			line[i] = orb.Point{c[0], c[1]}
		}
	} else {
		// 无几何形状时用起终点连线
		s, sok := nodes[algo.NodeID(d.Source)]
		t, tok := nodes[algo.NodeID(d.Target)]
		if sok && tok {
			line = orb.LineString{s, t}
		}
	}
	length := LineLength(line)
	if d.Length != nil {
		length = *d.Length
	}
	e := algo.NewEdge(algo.EdgeID(d.ID), algo.NodeID(d.Source), algo.NodeID(d.Target), line, length)
	for k, v := range d.Costs {
		mode, err := algo.ParseRoutingMode(k)
		if err != nil {
			return nil, fmt.Errorf("edge(id=%d) costs: %w", d.ID, err)
		}
		e.Costs[mode] = v
	}
	e.MaxSpeed = d.MaxSpeed
	e.Oneway = d.Oneway
	e.Surface = d.Surface
	e.Highway = d.Highway
	return e, nil
}

func docsToSource(nodeDocs []NodeDoc, edgeDocs []EdgeDoc) (*router.Source, error) {
	src := &router.Source{
		Nodes: make([]algo.Node, 0, len(nodeDocs)),
		Edges: make([]*algo.Edge, 0, len(edgeDocs)),
	}
	points := make(map[algo.NodeID]orb.Point, len(nodeDocs))
	for _, d := range nodeDocs {
		n := d.toNode()
		src.Nodes = append(src.Nodes, n)
		points[n.ID] = n.Location
	}
	for _, d := range edgeDocs {
		e, err := d.toEdge(points)
		if err != nil {
			return nil, err
		}
		src.Edges = append(src.Edges, e)
	}
	return src, nil
}

// 折线长度/m
func LineLength(line orb.LineString) float64 {
	length := 0.0
	for i := 1; i < len(line); i++ {
		length += algo.Haversine(line[i-1], line[i])
	}
	return length
}

// 数据源转换为文档，用于写入Mongo
func SourceToDocs(src *router.Source) ([]NodeDoc, []EdgeDoc) {
	nodes := make([]NodeDoc, 0, len(src.Nodes))
	for _, n := range src.Nodes {
		nodes = append(nodes, NodeDoc{
			ID:        uint64(n.ID),
			Lon:       n.Location.Lon(),
			Lat:       n.Location.Lat(),
			Elevation: n.Elevation,
		})
	}
	edges := make([]EdgeDoc, 0, len(src.Edges))
	for _, e := range src.Edges {
		length := e.Length
		doc := EdgeDoc{
			ID:       uint64(e.ID),
			Source:   uint64(e.Source),
			Target:   uint64(e.Target),
			Length:   &length,
			MaxSpeed: e.MaxSpeed,
			Oneway:   e.Oneway,
			Surface:  e.Surface,
			Highway:  e.Highway,
		}
		for _, p := range e.Geometry {
			doc.Geometry = append(doc.Geometry, [2]float64{p.Lon(), p.Lat()})
		}
		if len(e.Costs) > 0 {
			doc.Costs = make(map[string]float64, len(e.Costs))
			for mode, c := range e.Costs {
				doc.Costs[mode.String()] = c
			}
		}
		edges = append(edges, doc)
	}
	return nodes, edges
}
