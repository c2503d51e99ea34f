package algo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// 无上界cost在JSON中的表示
const INF_COST_TEXT = "inf"

// 允许+Inf的cost，JSON中+Inf编码为"inf"
type Cost float64

func (c Cost) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(c), 1) {
		return json.Marshal(INF_COST_TEXT)
	}
	return json.Marshal(float64(c))
}

func (c *Cost) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(data, []byte(`"`)) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != INF_COST_TEXT {
			return fmt.Errorf("invalid cost %q", s)
		}
		*c = Cost(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Cost(v)
	return nil
}

type isochroneResultJSON struct {
	StartNode      NodeID             `json:"start_node"`
	MaxCost        Cost               `json:"max_cost"`
	TravelCosts    map[NodeID]float64 `json:"travel_costs"`
	ReachableNodes int                `json:"reachable_nodes"`
}

func (r IsochroneResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(isochroneResultJSON{
		StartNode:      r.StartNode,
		MaxCost:        Cost(r.MaxCost),
		TravelCosts:    r.TravelCosts,
		ReachableNodes: r.ReachableNodes,
	})
}

func (r *IsochroneResult) UnmarshalJSON(data []byte) error {
	var v isochroneResultJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = IsochroneResult{
		StartNode:      v.StartNode,
		MaxCost:        float64(v.MaxCost),
		TravelCosts:    v.TravelCosts,
		ReachableNodes: v.ReachableNodes,
	}
	return nil
}
