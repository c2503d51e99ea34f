package router

import (
	"encoding/json"
	"time"

	"git.fiblab.net/sim/catchment/router/algo"
)

// 路网数据源，由各类loader产生，与出行方式无关
// 边的Costs缓存中已有的出行方式在建图时直接采用
type Source struct {
	Nodes []algo.Node
	Edges []*algo.Edge
}

// 建图参数
type LoadOptions struct {
	Mode algo.RoutingMode
	// 替换出行方式的默认速度 km/h，为nil时使用默认速度
	Speed *float64
	// 边有限速时采用限速计算cost
	UseMaxSpeed bool
	// 丢弃该出行方式不可通行的边
	FilterInaccessible bool
	// 禁止oneway边反向通行
	OnewayRestrictions bool
	// 丢弃最大连通分量以外的点和边
	LargestComponentOnly bool
}

type BuildStats struct {
	Mode         algo.RoutingMode
	Nodes        int
	Edges        int
	SkippedEdges int
	DroppedNodes int
	// 总长度/m
	TotalLength float64
	Duration    time.Duration
}

type Stats struct {
	Mode      algo.RoutingMode
	Nodes     int
	Edges     int
	Algorithm string
	// 图版本，每次加载重新生成
	Version  string
	LoadedAt time.Time
}

// 等时圈导出行，每个(起点, 阈值, 可达节点)一行
type IsochroneRow struct {
	StartNode         algo.NodeID `json:"start_node"`
	MaxCostSeconds    float64     `json:"max_cost_seconds"`
	MaxCostMinutes    float64     `json:"max_cost_minutes"`
	ReachableNode     algo.NodeID `json:"reachable_node"`
	TravelCostSeconds float64     `json:"travel_cost_seconds"`
	TravelCostMinutes float64     `json:"travel_cost_minutes"`
	Longitude         float64     `json:"longitude"`
	Latitude          float64     `json:"latitude"`
}

type isochroneRowJSON struct {
	StartNode         algo.NodeID `json:"start_node"`
	MaxCostSeconds    algo.Cost   `json:"max_cost_seconds"`
	MaxCostMinutes    algo.Cost   `json:"max_cost_minutes"`
	ReachableNode     algo.NodeID `json:"reachable_node"`
	TravelCostSeconds float64     `json:"travel_cost_seconds"`
	TravelCostMinutes float64     `json:"travel_cost_minutes"`
	Longitude         float64     `json:"longitude"`
	Latitude          float64     `json:"latitude"`
}

// 阈值为+Inf时编码为"inf"
func (r IsochroneRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(isochroneRowJSON{
		StartNode:         r.StartNode,
		MaxCostSeconds:    algo.Cost(r.MaxCostSeconds),
		MaxCostMinutes:    algo.Cost(r.MaxCostMinutes),
		ReachableNode:     r.ReachableNode,
		TravelCostSeconds: r.TravelCostSeconds,
		TravelCostMinutes: r.TravelCostMinutes,
		Longitude:         r.Longitude,
		Latitude:          r.Latitude,
	})
}

func (r *IsochroneRow) UnmarshalJSON(data []byte) error {
	var v isochroneRowJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = IsochroneRow{
		StartNode:         v.StartNode,
		MaxCostSeconds:    float64(v.MaxCostSeconds),
		MaxCostMinutes:    float64(v.MaxCostMinutes),
		ReachableNode:     v.ReachableNode,
		TravelCostSeconds: v.TravelCostSeconds,
		TravelCostMinutes: v.TravelCostMinutes,
		Longitude:         v.Longitude,
		Latitude:          v.Latitude,
	}
	return nil
}
