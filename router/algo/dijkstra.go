package algo

import (
	"fmt"
	"math"

	"github.com/samber/lo"
)

type predecessor struct {
	node int
	edge EdgeID
}

// Dijkstra求最短路
// 返回nil, nil表示不可达；起终点不存在时返回ErrNodeNotFound
func ShortestPath(g *NetworkGraph, from, to NodeID) (*Route, error) {
	start, ok := g.GetNodeIndex(from)
	if !ok {
		return nil, fmt.Errorf("start node %d: %w", from, ErrNodeNotFound)
	}
	end, ok := g.GetNodeIndex(to)
	if !ok {
		return nil, fmt.Errorf("end node %d: %w", to, ErrNodeNotFound)
	}
	if start == end {
		return &Route{Cost: 0, Nodes: []NodeID{from}, Edges: []EdgeID{}}, nil
	}

	dist := map[int]float64{start: 0}
	cameFrom := make(map[int]predecessor)
	openSet := newFrontier()
	openSet.push(start, 0)
	for openSet.Len() > 0 {
		item := openSet.pop()
		cur := item.Value
		// 过期的队列项
		if item.Priority > dist[cur] {
			continue
		}
		if cur == end {
			return reconstructRoute(g, cameFrom, end, item.Priority), nil
		}
		for _, arc := range g.Arcs(cur) {
			tentative := item.Priority + arc.Cost
			best, seen := dist[arc.To]
			if !seen {
				best = math.Inf(1)
			}
			if tentative < best {
				dist[arc.To] = tentative
				cameFrom[arc.To] = predecessor{node: cur, edge: arc.Edge}
				openSet.push(arc.To, tentative)
			}
		}
	}
	return nil, nil
}

func reconstructRoute(g *NetworkGraph, cameFrom map[int]predecessor, cur int, cost float64) *Route {
	nodes := []NodeID{g.NodeByIndex(cur).ID}
	edges := []EdgeID{}
	for {
		p, ok := cameFrom[cur]
		if !ok {
			break
		}
		nodes = append(nodes, g.NodeByIndex(p.node).ID)
		edges = append(edges, p.edge)
		cur = p.node
	}
	return &Route{
		Cost:  cost,
		Nodes: lo.Reverse(nodes),
		Edges: lo.Reverse(edges),
	}
}
