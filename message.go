package main

import (
	"git.fiblab.net/sim/catchment/router"
	"git.fiblab.net/sim/catchment/router/algo"
	"git.fiblab.net/sim/catchment/store"
)

// 位置，给定节点ID或经纬度（取最近节点）
type Position struct {
	NodeID *algo.NodeID `json:"node_id,omitempty"`
	Lon    *float64     `json:"lon,omitempty"`
	Lat    *float64     `json:"lat,omitempty"`
}

type LoadNetworkRequest struct {
	// 路网路径，格式同-map参数
	Path               string   `json:"path"`
	Mode               string   `json:"mode"`
	Speed              *float64 `json:"speed,omitempty"`
	UseMaxSpeed        bool     `json:"use_max_speed,omitempty"`
	FilterInaccessible bool     `json:"filter_inaccessible,omitempty"`
	OnewayRestrictions bool     `json:"oneway_restrictions,omitempty"`
	LargestComponent   bool     `json:"largest_component,omitempty"`
	// 加载后写入SQLite
	Save bool `json:"save,omitempty"`
}

type LoadNetworkResponse struct {
	Mode         string  `json:"mode"`
	Nodes        int     `json:"nodes"`
	Edges        int     `json:"edges"`
	SkippedEdges int     `json:"skipped_edges"`
	DroppedNodes int     `json:"dropped_nodes"`
	TotalLength  float64 `json:"total_length_m"`
	DurationMs   int64   `json:"duration_ms"`
	Version      string  `json:"version"`
}

type GetRouteRequest struct {
	Mode  string    `json:"mode"`
	Start *Position `json:"start"`
	End   *Position `json:"end"`
}

// 无法找到通路时为空响应
type GetRouteResponse struct {
	Route *algo.Route `json:"route,omitempty"`
	// 单位：分钟
	CostMinutes float64 `json:"cost_minutes,omitempty"`
}

type GetIsochroneRequest struct {
	Mode  string    `json:"mode"`
	Start *Position `json:"start"`
	// 单位：秒
	MaxCost float64 `json:"max_cost"`
}

type GetIsochroneResponse struct {
	Isochrone *algo.IsochroneResult `json:"isochrone"`
}

type GetIsochronesRequest struct {
	Mode     string      `json:"mode"`
	Starts   []*Position `json:"starts"`
	MaxCosts []float64   `json:"max_costs"`
	// 结果写入SQLite
	Save bool `json:"save,omitempty"`
}

type GetIsochronesResponse struct {
	Isochrones []*algo.IsochroneResult `json:"isochrones"`
	Rows       []router.IsochroneRow   `json:"rows"`
	ResultID   string                  `json:"result_id,omitempty"`
}

type GetStatsRequest struct {
	// 为空时返回所有已加载的出行方式
	Mode string `json:"mode,omitempty"`
}

type GraphStats struct {
	Mode      string `json:"mode"`
	Nodes     int    `json:"nodes"`
	Edges     int    `json:"edges"`
	Algorithm string `json:"algorithm"`
	Version   string `json:"version"`
	LoadedAt  string `json:"loaded_at"`
}

type GetStatsResponse struct {
	Graphs   []GraphStats         `json:"graphs"`
	Database *store.DatabaseStats `json:"database,omitempty"`
}
