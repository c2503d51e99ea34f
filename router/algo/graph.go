package algo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// 邻接表中的一条出弧
type Arc struct {
	// 终点在图中的下标
	To   int
	Edge EdgeID
	Cost float64
}

type GraphOption func(*NetworkGraph)

// 开启后oneway边仅允许source->target方向通行
func WithOnewayRestrictions(enabled bool) GraphOption {
	return func(g *NetworkGraph) {
		g.oneway = enabled
	}
}

// 路网图
// 1. 点、边按加入顺序存放，id->下标的映射用于O(1)查找
// 2. 每条边对应邻接表中的一条弧记录(edge id, cost)，默认双向可通行
// 3. 构建完成后只读，搜索期间不做任何修改
type NetworkGraph struct {
	nodes []Node
	edges []*Edge
	// 邻接表，node index -> 出弧
	adj [][]Arc
	// 每条边对应的弧记录数
	arcs int

	nodeIndex map[NodeID]int
	edgeIndex map[EdgeID]int

	oneway bool
}

func NewNetworkGraph(opts ...GraphOption) *NetworkGraph {
	g := &NetworkGraph{
		nodes:     make([]Node, 0),
		edges:     make([]*Edge, 0),
		adj:       make([][]Arc, 0),
		nodeIndex: make(map[NodeID]int),
		edgeIndex: make(map[EdgeID]int),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *NetworkGraph) OnewayRestricted() bool {
	return g.oneway
}

func (g *NetworkGraph) AddNode(node Node) error {
	if _, ok := g.nodeIndex[node.ID]; ok {
		return fmt.Errorf("node(id=%d): %w", node.ID, ErrDuplicateNode)
	}
	g.nodeIndex[node.ID] = len(g.nodes)
	g.nodes = append(g.nodes, node)
	g.adj = append(g.adj, make([]Arc, 0))
	return nil
}

// 加入边，如无mode对应的cost缓存则先计算（优先采用边的限速）
func (g *NetworkGraph) AddEdge(edge *Edge, mode RoutingMode) error {
	if _, ok := g.edgeIndex[edge.ID]; ok {
		return fmt.Errorf("edge(id=%d): %w", edge.ID, ErrDuplicateEdge)
	}
	from, ok := g.nodeIndex[edge.Source]
	if !ok {
		return fmt.Errorf("source node %d of edge(id=%d): %w", edge.Source, edge.ID, ErrNodeNotFound)
	}
	to, ok := g.nodeIndex[edge.Target]
	if !ok {
		return fmt.Errorf("target node %d of edge(id=%d): %w", edge.Target, edge.ID, ErrNodeNotFound)
	}
	cost, ok := edge.Cost(mode)
	if !ok {
		var err error
		if cost, err = edge.CalculateCost(mode, edge.MaxSpeed); err != nil {
			return err
		}
	} else if cost < 0 || math.IsNaN(cost) {
		return fmt.Errorf("edge(id=%d) cached %v cost %v: %w", edge.ID, mode, cost, ErrInvalidCost)
	}
	g.edgeIndex[edge.ID] = len(g.edges)
	g.edges = append(g.edges, edge)
	g.adj[from] = append(g.adj[from], Arc{To: to, Edge: edge.ID, Cost: cost})
	if !(g.oneway && edge.Oneway) && from != to {
		g.adj[to] = append(g.adj[to], Arc{To: from, Edge: edge.ID, Cost: cost})
	}
	g.arcs++
	return nil
}

func (g *NetworkGraph) GetNode(id NodeID) (Node, bool) {
	i, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

func (g *NetworkGraph) GetEdge(id EdgeID) (*Edge, bool) {
	i, ok := g.edgeIndex[id]
	if !ok {
		return nil, false
	}
	return g.edges[i], true
}

// 节点在邻接表中的下标
func (g *NetworkGraph) GetNodeIndex(id NodeID) (int, bool) {
	i, ok := g.nodeIndex[id]
	return i, ok
}

func (g *NetworkGraph) NodeByIndex(i int) Node {
	return g.nodes[i]
}

// 出弧，调用方不得修改返回的切片
func (g *NetworkGraph) Arcs(i int) []Arc {
	return g.adj[i]
}

// 线性扫描求最近节点，距离相同时取先加入的节点
func (g *NetworkGraph) FindNearestNode(p orb.Point) (NodeID, bool) {
	if len(g.nodes) == 0 {
		return 0, false
	}
	best := 0
	bestDistance := math.Inf(1)
	for i, n := range g.nodes {
		if d := Haversine(p, n.Location); d < bestDistance {
			best = i
			bestDistance = d
		}
	}
	return g.nodes[best].ID, true
}

// 检查图结构一致性，返回发现的第一个问题
func (g *NetworkGraph) Validate() error {
	for _, e := range g.edges {
		if _, ok := g.nodeIndex[e.Source]; !ok {
			return fmt.Errorf("%w: edge %d references non-existent source node %d", ErrInconsistentGraph, e.ID, e.Source)
		}
		if _, ok := g.nodeIndex[e.Target]; !ok {
			return fmt.Errorf("%w: edge %d references non-existent target node %d", ErrInconsistentGraph, e.ID, e.Target)
		}
	}
	if len(g.nodes) != len(g.nodeIndex) || len(g.adj) != len(g.nodeIndex) {
		return fmt.Errorf("%w: graph node count %d doesn't match node map %d", ErrInconsistentGraph, len(g.adj), len(g.nodeIndex))
	}
	if g.arcs != len(g.edgeIndex) || len(g.edges) != len(g.edgeIndex) {
		return fmt.Errorf("%w: graph edge count %d doesn't match edge map %d", ErrInconsistentGraph, g.arcs, len(g.edgeIndex))
	}
	return nil
}

func (g *NetworkGraph) NodeCount() int {
	return len(g.nodes)
}

func (g *NetworkGraph) EdgeCount() int {
	return len(g.edges)
}

// 按加入顺序返回所有节点ID
func (g *NetworkGraph) AllNodeIDs() []NodeID {
	ids := make([]NodeID, len(g.nodes))
	for i, n := range g.nodes {
		ids[i] = n.ID
	}
	return ids
}

// 按加入顺序遍历所有边，fn返回false时停止
func (g *NetworkGraph) RangeEdges(fn func(*Edge) bool) {
	for _, e := range g.edges {
		if !fn(e) {
			return
		}
	}
}

// 所有边长度之和/m
func (g *NetworkGraph) TotalLength() float64 {
	total := 0.0
	for _, e := range g.edges {
		total += e.Length
	}
	return total
}
