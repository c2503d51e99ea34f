package algo

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

type NodeID uint64
type EdgeID uint64

// 出行方式
type RoutingMode int

const (
	Walking RoutingMode = iota
	Cycling
	Car
	Wheelchair
)

var ALL_MODES = []RoutingMode{Walking, Cycling, Car, Wheelchair}

func (m RoutingMode) String() string {
	switch m {
	case Walking:
		return "walking"
	case Cycling:
		return "cycling"
	case Car:
		return "car"
	case Wheelchair:
		return "wheelchair"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// 默认速度 km/h
func (m RoutingMode) DefaultSpeed() float64 {
	switch m {
	case Walking:
		return WALKING_SPEED
	case Cycling:
		return CYCLING_SPEED
	case Car:
		return CAR_SPEED
	case Wheelchair:
		return WHEELCHAIR_SPEED
	default:
		return 0
	}
}

func (m RoutingMode) Valid() bool {
	return m >= Walking && m <= Wheelchair
}

func ParseRoutingMode(s string) (RoutingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "walking", "walk", "foot":
		return Walking, nil
	case "cycling", "bike", "bicycle":
		return Cycling, nil
	case "car", "driving", "drive":
		return Car, nil
	case "wheelchair":
		return Wheelchair, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m RoutingMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(m.String()), nil
}

func (m *RoutingMode) UnmarshalText(text []byte) error {
	mode, err := ParseRoutingMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

type Node struct {
	ID NodeID
	// (lon, lat)
	Location  orb.Point
	Elevation *float64
}

func NewNode(id NodeID, lon, lat float64) Node {
	return Node{ID: id, Location: orb.Point{lon, lat}}
}

func (n Node) WithElevation(elevation float64) Node {
	n.Elevation = &elevation
	return n
}

type Edge struct {
	ID     EdgeID
	Source NodeID
	Target NodeID
	// 仅用于导出展示，不参与cost计算
	Geometry orb.LineString
	// 长度/m
	Length float64
	// 按出行方式缓存的cost/s
	Costs map[RoutingMode]float64
	// 限速 km/h
	MaxSpeed *float64
	Oneway   bool
	// 为空表示缺失
	Surface string
	Highway string
}

func NewEdge(id EdgeID, source, target NodeID, geometry orb.LineString, length float64) *Edge {
	return &Edge{
		ID:       id,
		Source:   source,
		Target:   target,
		Geometry: geometry,
		Length:   length,
		Costs:    make(map[RoutingMode]float64),
	}
}

func (e *Edge) Cost(mode RoutingMode) (float64, bool) {
	c, ok := e.Costs[mode]
	return c, ok
}

// 深拷贝，Costs缓存与原边互不影响
func (e *Edge) Clone() *Edge {
	c := *e
	c.Geometry = append(orb.LineString(nil), e.Geometry...)
	c.Costs = make(map[RoutingMode]float64, len(e.Costs))
	for k, v := range e.Costs {
		c.Costs[k] = v
	}
	if e.MaxSpeed != nil {
		speed := *e.MaxSpeed
		c.MaxSpeed = &speed
	}
	return &c
}

// 最短路结果
type Route struct {
	Cost  float64  `json:"cost"`
	Nodes []NodeID `json:"nodes"`
	Edges []EdgeID `json:"edges"`
}

// 等时圈结果
type IsochroneResult struct {
	StartNode      NodeID             `json:"start_node"`
	MaxCost        float64            `json:"max_cost"`
	TravelCosts    map[NodeID]float64 `json:"travel_costs"`
	ReachableNodes int                `json:"reachable_nodes"`
}
