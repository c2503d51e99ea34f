package input

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"

	"git.fiblab.net/sim/catchment/router"
	"git.fiblab.net/sim/catchment/router/algo"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/samber/lo"
)

const MPH_TO_KMH = 1.609344

// 参与建图的道路类型
var ROUTABLE_HIGHWAYS = []string{
	"motorway", "motorway_link", "trunk", "trunk_link",
	"primary", "primary_link", "secondary", "secondary_link",
	"tertiary", "tertiary_link", "unclassified", "residential",
	"living_street", "service", "road", "track",
	"pedestrian", "footway", "cycleway", "path", "steps", "bridleway",
}

func IsRoutableHighway(tags osm.Tags) bool {
	if tags.Find("area") == "yes" {
		return false
	}
	return lo.Contains(ROUTABLE_HIGHWAYS, tags.Find("highway"))
}

// 读取OSM PBF文件
// 1. 第一遍扫描way，统计每个节点被引用的次数
// 2. 第二遍扫描node，记录被引用节点的坐标
// 3. 在路口（被多次引用的节点）处切分way得到边
func LoadOSM(ctx context.Context, path string) (*router.Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	ways := make([]*osm.Way, 0)
	scanner := osmpbf.New(ctx, file, runtime.GOMAXPROCS(-1))
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		if way, ok := scanner.Object().(*osm.Way); ok && len(way.Nodes) >= 2 && IsRoutableHighway(way.Tags) {
			ways = append(ways, way)
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("failed to scan ways: %w", err)
	}
	scanner.Close()
	log.Infof("found %d routable ways in %s", len(ways), path)

	needed := make(map[osm.NodeID]struct{})
	for _, way := range ways {
		for _, wn := range way.Nodes {
			needed[wn.ID] = struct{}{}
		}
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	coords := make(map[osm.NodeID]orb.Point, len(needed))
	scanner = osmpbf.New(ctx, file, runtime.GOMAXPROCS(-1))
	scanner.SkipWays = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		if node, ok := scanner.Object().(*osm.Node); ok {
			if _, ok := needed[node.ID]; ok {
				coords[node.ID] = orb.Point{node.Lon, node.Lat}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("failed to scan nodes: %w", err)
	}
	scanner.Close()

	return SplitWays(ways, coords), nil
}

// 在路口处切分way，缺少坐标的节点被忽略
func SplitWays(ways []*osm.Way, coords map[osm.NodeID]orb.Point) *router.Source {
	// 节点引用次数，way端点额外计一次
	usage := make(map[osm.NodeID]int)
	for _, way := range ways {
		ids := lo.Filter(way.Nodes.NodeIDs(), func(id osm.NodeID, _ int) bool {
			_, ok := coords[id]
			return ok
		})
		if len(ids) < 2 {
			continue
		}
		for _, id := range ids {
			usage[id]++
		}
		usage[ids[0]]++
		usage[ids[len(ids)-1]]++
	}

	src := &router.Source{
		Nodes: make([]algo.Node, 0),
		Edges: make([]*algo.Edge, 0),
	}
	added := make(map[osm.NodeID]bool)
	addNode := func(id osm.NodeID) {
		if !added[id] {
			p := coords[id]
			src.Nodes = append(src.Nodes, algo.NewNode(algo.NodeID(id), p.Lon(), p.Lat()))
			added[id] = true
		}
	}
	edgeID := algo.EdgeID(0)
	for _, way := range ways {
		ids := lo.Filter(way.Nodes.NodeIDs(), func(id osm.NodeID, _ int) bool {
			_, ok := coords[id]
			return ok
		})
		if len(ids) < 2 {
			continue
		}
		oneway, reverse := parseOneway(way.Tags)
		if reverse {
			ids = lo.Reverse(ids)
		}
		maxSpeed := parseMaxSpeed(way.Tags.Find("maxspeed"))
		start := 0
		for i := 1; i < len(ids); i++ {
			if usage[ids[i]] < 2 && i != len(ids)-1 {
				continue
			}
			line := make(orb.LineString, 0, i-start+1)
			for _, id := range ids[start : i+1] {
				line = append(line, coords[id])
			}
			addNode(ids[start])
			addNode(ids[i])
			e := algo.NewEdge(edgeID, algo.NodeID(ids[start]), algo.NodeID(ids[i]), line, LineLength(line))
			e.Oneway = oneway
			e.MaxSpeed = maxSpeed
			e.Surface = way.Tags.Find("surface")
			e.Highway = way.Tags.Find("highway")
			src.Edges = append(src.Edges, e)
			edgeID++
			start = i
		}
	}
	return src
}

// 返回是否单行，以及是否与way方向相反
func parseOneway(tags osm.Tags) (oneway bool, reverse bool) {
	switch tags.Find("oneway") {
	case "yes", "true", "1":
		return true, false
	case "-1", "reverse":
		return true, true
	}
	switch tags.Find("highway") {
	case "motorway", "motorway_link":
		return true, false
	}
	if tags.Find("junction") == "roundabout" {
		return true, false
	}
	return false, false
}

// 解析maxspeed标签，单位km/h，无法解析时返回nil
func parseMaxSpeed(v string) *float64 {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return nil
	}
	factor := 1.0
	if strings.HasSuffix(v, "mph") {
		factor = MPH_TO_KMH
		v = strings.TrimSpace(strings.TrimSuffix(v, "mph"))
	} else {
		v = strings.TrimSpace(strings.TrimSuffix(v, "km/h"))
		v = strings.TrimSpace(strings.TrimSuffix(v, "kmh"))
	}
	speed, err := strconv.ParseFloat(v, 64)
	if err != nil || !(speed > 0) || math.IsInf(speed, 0) {
		return nil
	}
	speed *= factor
	return &speed
}
