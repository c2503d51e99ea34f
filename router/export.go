package router

import (
	"git.fiblab.net/sim/catchment/router/algo"
)

// 将等时圈结果展开为导出行
// 结果按输入顺序排列，每个结果内按cost升序
func IsochroneRows(g *algo.NetworkGraph, results []*algo.IsochroneResult) []IsochroneRow {
	total := 0
	for _, r := range results {
		total += r.ReachableNodes
	}
	rows := make([]IsochroneRow, 0, total)
	for _, r := range results {
		for _, id := range r.SortedNodes() {
			node, ok := g.GetNode(id)
			if !ok {
				continue
			}
			cost := r.TravelCosts[id]
			rows = append(rows, IsochroneRow{
				StartNode:         r.StartNode,
				MaxCostSeconds:    r.MaxCost,
				MaxCostMinutes:    r.MaxCost / 60,
				ReachableNode:     id,
				TravelCostSeconds: cost,
				TravelCostMinutes: cost / 60,
				Longitude:         node.Location.Lon(),
				Latitude:          node.Location.Lat(),
			})
		}
	}
	return rows
}
