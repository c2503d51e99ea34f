package algo

import (
	"fmt"
	"math"
	"sort"
)

// 有界Dijkstra，求从start出发cost不超过maxCost的所有节点
// cost超过maxCost的松弛结果不入队，起点以cost 0计入结果
func CalculateIsochrone(g *NetworkGraph, start NodeID, maxCost float64) (*IsochroneResult, error) {
	startIndex, ok := g.GetNodeIndex(start)
	if !ok {
		return nil, fmt.Errorf("isochrone start node %d: %w", start, ErrNodeNotFound)
	}
	if maxCost < 0 || math.IsNaN(maxCost) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCost, maxCost)
	}

	dist := map[int]float64{startIndex: 0}
	openSet := newFrontier()
	openSet.push(startIndex, 0)
	for openSet.Len() > 0 {
		item := openSet.pop()
		cur := item.Value
		if item.Priority > dist[cur] {
			continue
		}
		for _, arc := range g.Arcs(cur) {
			tentative := item.Priority + arc.Cost
			if tentative > maxCost {
				continue
			}
			if best, seen := dist[arc.To]; !seen || tentative < best {
				dist[arc.To] = tentative
				openSet.push(arc.To, tentative)
			}
		}
	}

	travelCosts := make(map[NodeID]float64, len(dist))
	for i, c := range dist {
		travelCosts[g.NodeByIndex(i).ID] = c
	}
	return &IsochroneResult{
		StartNode:      start,
		MaxCost:        maxCost,
		TravelCosts:    travelCosts,
		ReachableNodes: len(travelCosts),
	}, nil
}

// 对每个阈值独立计算一次等时圈，结果顺序与输入一致
func CalculateIsochrones(g *NetworkGraph, start NodeID, maxCosts []float64) ([]*IsochroneResult, error) {
	results := make([]*IsochroneResult, 0, len(maxCosts))
	for _, maxCost := range maxCosts {
		r, err := CalculateIsochrone(g, start, maxCost)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func (r *IsochroneResult) Contains(id NodeID) bool {
	_, ok := r.TravelCosts[id]
	return ok
}

// 按cost升序排列的可达节点，cost相同按ID升序
func (r *IsochroneResult) SortedNodes() []NodeID {
	ids := make([]NodeID, 0, len(r.TravelCosts))
	for id := range r.TravelCosts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ci, cj := r.TravelCosts[ids[i]], r.TravelCosts[ids[j]]
		if ci == cj {
			return ids[i] < ids[j]
		}
		return ci < cj
	})
	return ids
}
