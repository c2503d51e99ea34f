package router

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"git.fiblab.net/sim/catchment/router/algo"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const ALGORITHM = "dijkstra"

var (
	// 错误：该出行方式的路网未加载
	ErrModeNotLoaded = errors.New("routing mode not loaded")
)

// 已加载的路网，加载完成后只读
type modeGraph struct {
	graph    *algo.NetworkGraph
	version  string
	loadedAt time.Time
}

type Router struct {
	// 每种出行方式一张图
	// 加载时整体替换，查询只持有读锁取出指针，搜索期间不持锁
	graphs map[algo.RoutingMode]*modeGraph
	mu     *xsync.RBMutex

	cache IsochroneCache
	log   *logrus.Entry
}

type Option func(*Router)

func WithCache(cache IsochroneCache) Option {
	return func(r *Router) {
		r.cache = cache
	}
}

func New(logger *logrus.Entry, opts ...Option) *Router {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	r := &Router{
		graphs: make(map[algo.RoutingMode]*modeGraph),
		mu:     xsync.NewRBMutex(),
		log:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// 构建并替换指定出行方式的路网
func (r *Router) Load(src *Source, opts LoadOptions) (*BuildStats, error) {
	g, stats, err := BuildGraph(src, opts)
	if err != nil {
		r.log.Errorf("failed to build %v graph: %v", opts.Mode, err)
		return nil, err
	}
	mg := &modeGraph{graph: g, version: uuid.NewString(), loadedAt: time.Now()}
	r.mu.Lock()
	r.graphs[opts.Mode] = mg
	r.mu.Unlock()

	GraphNodes.WithLabelValues(opts.Mode.String()).Set(float64(stats.Nodes))
	GraphEdges.WithLabelValues(opts.Mode.String()).Set(float64(stats.Edges))
	r.log.Infof("loaded %v graph: %d nodes (%d dropped), %d edges (%d skipped), %.1f km in %v",
		opts.Mode, stats.Nodes, stats.DroppedNodes, stats.Edges, stats.SkippedEdges, stats.TotalLength/1000, stats.Duration)
	return stats, nil
}

func (r *Router) Unload(mode algo.RoutingMode) {
	r.mu.Lock()
	delete(r.graphs, mode)
	r.mu.Unlock()
	GraphNodes.DeleteLabelValues(mode.String())
	GraphEdges.DeleteLabelValues(mode.String())
}

func (r *Router) get(mode algo.RoutingMode) (*modeGraph, error) {
	token := r.mu.RLock()
	defer r.mu.RUnlock(token)
	mg, ok := r.graphs[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrModeNotLoaded, mode)
	}
	return mg, nil
}

// getter

func (r *Router) Graph(mode algo.RoutingMode) (*algo.NetworkGraph, error) {
	mg, err := r.get(mode)
	if err != nil {
		return nil, err
	}
	return mg.graph, nil
}

func (r *Router) Modes() []algo.RoutingMode {
	token := r.mu.RLock()
	modes := lo.Keys(r.graphs)
	r.mu.RUnlock(token)
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}

func (r *Router) HasNode(mode algo.RoutingMode, id algo.NodeID) bool {
	mg, err := r.get(mode)
	if err != nil {
		return false
	}
	_, ok := mg.graph.GetNodeIndex(id)
	return ok
}

func (r *Router) NearestNode(mode algo.RoutingMode, p orb.Point) (algo.NodeID, error) {
	mg, err := r.get(mode)
	if err != nil {
		return 0, err
	}
	id, ok := mg.graph.FindNearestNode(p)
	if !ok {
		return 0, fmt.Errorf("empty %v graph: %w", mode, algo.ErrNodeNotFound)
	}
	return id, nil
}

func (r *Router) Stats(mode algo.RoutingMode) (*Stats, error) {
	mg, err := r.get(mode)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Mode:      mode,
		Nodes:     mg.graph.NodeCount(),
		Edges:     mg.graph.EdgeCount(),
		Algorithm: ALGORITHM,
		Version:   mg.version,
		LoadedAt:  mg.loadedAt,
	}, nil
}

// 展开等时圈结果为导出行
func (r *Router) ExportIsochrones(mode algo.RoutingMode, results []*algo.IsochroneResult) ([]IsochroneRow, error) {
	mg, err := r.get(mode)
	if err != nil {
		return nil, err
	}
	return IsochroneRows(mg.graph, results), nil
}

// close
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for mode := range r.graphs {
		GraphNodes.DeleteLabelValues(mode.String())
		GraphEdges.DeleteLabelValues(mode.String())
	}
	r.graphs = make(map[algo.RoutingMode]*modeGraph)
}
