package router

import (
	"fmt"
	"time"

	"git.fiblab.net/sim/catchment/router/algo"
)

// 由数据源构建指定出行方式的路网图
// 源数据中的边会被复制，Costs缓存不会写回数据源
func BuildGraph(src *Source, opts LoadOptions) (*algo.NetworkGraph, *BuildStats, error) {
	start := time.Now()
	if !opts.Mode.Valid() {
		return nil, nil, fmt.Errorf("%w: %d", algo.ErrUnknownMode, int(opts.Mode))
	}
	g := algo.NewNetworkGraph(algo.WithOnewayRestrictions(opts.OnewayRestrictions))
	stats := &BuildStats{Mode: opts.Mode}
	if opts.FilterInaccessible {
		edges := make([]*algo.Edge, 0, len(src.Edges))
		for _, edge := range src.Edges {
			if edge.IsAccessible(opts.Mode) {
				edges = append(edges, edge)
			}
		}
		stats.SkippedEdges = len(src.Edges) - len(edges)
		src = &Source{Nodes: src.Nodes, Edges: edges}
	}
	if opts.LargestComponentOnly {
		before := len(src.Edges)
		src, stats.DroppedNodes = LargestComponent(src)
		stats.SkippedEdges += before - len(src.Edges)
	}
	for _, n := range src.Nodes {
		if err := g.AddNode(n); err != nil {
			return nil, nil, err
		}
	}
	for _, edge := range src.Edges {
		e := edge.Clone()
		if _, ok := e.Cost(opts.Mode); !ok {
			speed := opts.Mode.DefaultSpeed()
			if opts.Speed != nil {
				speed = *opts.Speed
			}
			if opts.UseMaxSpeed && e.MaxSpeed != nil {
				speed = *e.MaxSpeed
			}
			if _, err := e.CalculateCost(opts.Mode, &speed); err != nil {
				return nil, nil, err
			}
		}
		if err := g.AddEdge(e, opts.Mode); err != nil {
			return nil, nil, err
		}
	}
	if err := g.Validate(); err != nil {
		return nil, nil, err
	}
	stats.Nodes = g.NodeCount()
	stats.Edges = g.EdgeCount()
	stats.TotalLength = g.TotalLength()
	stats.Duration = time.Since(start)
	return g, stats, nil
}
