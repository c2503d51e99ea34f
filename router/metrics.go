package router

import (
	"time"

	"git.fiblab.net/sim/catchment/router/algo"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	QUERY_ROUTE     = "route"
	QUERY_ISOCHRONE = "isochrone"

	RESULT_OK      = "ok"
	RESULT_NO_PATH = "no_path"
	RESULT_ERROR   = "error"
)

var (
	// 查询次数
	QueryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catchment_query_total",
			Help: "Total number of routing queries",
		},
		[]string{"kind", "mode", "result"},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catchment_query_duration_seconds",
			Help:    "Routing query latency",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 18),
		},
		[]string{"kind", "mode"},
	)

	// 等时圈可达节点数
	IsochroneReachable = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catchment_isochrone_reachable_nodes",
			Help:    "Number of nodes reached by an isochrone",
			Buckets: prometheus.ExponentialBuckets(1, 4, 12),
		},
		[]string{"mode"},
	)

	GraphNodes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catchment_graph_nodes",
			Help: "Number of nodes in the loaded graph",
		},
		[]string{"mode"},
	)

	GraphEdges = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catchment_graph_edges",
			Help: "Number of edges in the loaded graph",
		},
		[]string{"mode"},
	)

	// 等时圈缓存命中情况 hit/miss/error
	CacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catchment_isochrone_cache_total",
			Help: "Isochrone cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(QueryTotal)
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(IsochroneReachable)
	prometheus.MustRegister(GraphNodes)
	prometheus.MustRegister(GraphEdges)
	prometheus.MustRegister(CacheTotal)
}

func observeQuery(kind string, mode algo.RoutingMode, start time.Time, result string) {
	QueryTotal.WithLabelValues(kind, mode.String(), result).Inc()
	QueryDuration.WithLabelValues(kind, mode.String()).Observe(time.Since(start).Seconds())
}
