package router

import (
	"git.fiblab.net/sim/catchment/router/algo"
)

// 并查集
type DisjointSet struct {
	Map map[algo.NodeID]algo.NodeID
}

func NewDisjointSet() *DisjointSet {
	return &DisjointSet{Map: make(map[algo.NodeID]algo.NodeID)}
}

// 已存在时返回false
func (d *DisjointSet) Add(x algo.NodeID) bool {
	if _, ok := d.Map[x]; ok {
		return false
	}
	d.Map[x] = x
	return true
}

func (d *DisjointSet) Has(x algo.NodeID) bool {
	_, ok := d.Map[x]
	return ok
}

func (d *DisjointSet) GetRoot(x algo.NodeID) algo.NodeID {
	r := d.Map[x]
	if r == x {
		return r
	}
	d.Map[x] = d.GetRoot(r)
	return d.Map[x]
}

func (d *DisjointSet) Union(x, y algo.NodeID) {
	rx, ry := d.GetRoot(x), d.GetRoot(y)
	if rx != ry {
		d.Map[rx] = ry
	}
}

// 只保留最大的连通分量（忽略边的方向），返回新数据源与丢弃的节点数
// 分量大小相同时保留包含最早出现节点的分量
// 端点不存在的边原样保留，由建图时报错
func LargestComponent(src *Source) (*Source, int) {
	set := NewDisjointSet()
	for _, n := range src.Nodes {
		set.Add(n.ID)
	}
	for _, e := range src.Edges {
		if set.Has(e.Source) && set.Has(e.Target) {
			set.Union(e.Source, e.Target)
		}
	}
	size := make(map[algo.NodeID]int)
	first := make(map[algo.NodeID]int)
	for i, n := range src.Nodes {
		root := set.GetRoot(n.ID)
		if _, ok := first[root]; !ok {
			first[root] = i
		}
		size[root]++
	}
	var best algo.NodeID
	bestSize := -1
	for root, s := range size {
		if s > bestSize || (s == bestSize && first[root] < first[best]) {
			best, bestSize = root, s
		}
	}

	out := &Source{
		Nodes: make([]algo.Node, 0, len(src.Nodes)),
		Edges: make([]*algo.Edge, 0, len(src.Edges)),
	}
	dropped := 0
	keep := func(id algo.NodeID) bool {
		return !set.Has(id) || set.GetRoot(id) == best
	}
	for _, n := range src.Nodes {
		if set.GetRoot(n.ID) == best {
			out.Nodes = append(out.Nodes, n)
		} else {
			dropped++
		}
	}
	for _, e := range src.Edges {
		if keep(e.Source) && keep(e.Target) {
			out.Edges = append(out.Edges, e)
		}
	}
	return out, dropped
}
