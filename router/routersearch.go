package router

import (
	"context"
	"fmt"
	"time"

	"git.fiblab.net/sim/catchment/router/algo"
)

// 最短路，不可达时返回nil, nil
func (r *Router) ShortestPath(mode algo.RoutingMode, from, to algo.NodeID) (route *algo.Route, err error) {
	start := time.Now()
	// panic recover
	defer func() {
		if e := recover(); e != nil {
			route = nil
			err = fmt.Errorf("panic: ShortestPath %v with input mode=%v, from=%v, to=%v", e, mode, from, to)
			r.log.Errorln(err)
		}
		switch {
		case err != nil:
			observeQuery(QUERY_ROUTE, mode, start, RESULT_ERROR)
		case route == nil:
			observeQuery(QUERY_ROUTE, mode, start, RESULT_NO_PATH)
		default:
			observeQuery(QUERY_ROUTE, mode, start, RESULT_OK)
		}
	}()

	mg, err := r.get(mode)
	if err != nil {
		return nil, err
	}
	route, err = algo.ShortestPath(mg.graph, from, to)
	if err != nil {
		return nil, err
	}
	if route == nil {
		r.log.Debugf("routing failed, no path between %v and %v", from, to)
	}
	return route, nil
}

// 等时圈，配置了缓存时先查缓存
func (r *Router) Isochrone(ctx context.Context, mode algo.RoutingMode, startNode algo.NodeID, maxCost float64) (result *algo.IsochroneResult, err error) {
	start := time.Now()
	defer func() {
		if e := recover(); e != nil {
			result = nil
			err = fmt.Errorf("panic: Isochrone %v with input mode=%v, start=%v, maxCost=%v", e, mode, startNode, maxCost)
			r.log.Errorln(err)
		}
		if err != nil {
			observeQuery(QUERY_ISOCHRONE, mode, start, RESULT_ERROR)
		} else {
			observeQuery(QUERY_ISOCHRONE, mode, start, RESULT_OK)
			IsochroneReachable.WithLabelValues(mode.String()).Observe(float64(result.ReachableNodes))
		}
	}()

	mg, err := r.get(mode)
	if err != nil {
		return nil, err
	}
	return r.isochrone(ctx, mg, mode, startNode, maxCost)
}

// 多阈值等时圈，每个阈值独立计算
func (r *Router) Isochrones(ctx context.Context, mode algo.RoutingMode, startNode algo.NodeID, maxCosts []float64) (results []*algo.IsochroneResult, err error) {
	defer func() {
		if e := recover(); e != nil {
			results = nil
			err = fmt.Errorf("panic: Isochrones %v with input mode=%v, start=%v, maxCosts=%v", e, mode, startNode, maxCosts)
			r.log.Errorln(err)
		}
	}()

	mg, err := r.get(mode)
	if err != nil {
		return nil, err
	}
	results = make([]*algo.IsochroneResult, 0, len(maxCosts))
	for _, maxCost := range maxCosts {
		start := time.Now()
		res, err := r.isochrone(ctx, mg, mode, startNode, maxCost)
		if err != nil {
			observeQuery(QUERY_ISOCHRONE, mode, start, RESULT_ERROR)
			return nil, err
		}
		observeQuery(QUERY_ISOCHRONE, mode, start, RESULT_OK)
		IsochroneReachable.WithLabelValues(mode.String()).Observe(float64(res.ReachableNodes))
		results = append(results, res)
	}
	return results, nil
}

func (r *Router) isochrone(ctx context.Context, mg *modeGraph, mode algo.RoutingMode, startNode algo.NodeID, maxCost float64) (*algo.IsochroneResult, error) {
	r.log.Debugf("calculating isochrone from node %d with max cost %.0fs (%.1f min)", startNode, maxCost, maxCost/60)
	var key string
	if r.cache != nil {
		key = isochroneCacheKey(mode, mg.version, startNode, maxCost)
		cached, err := r.cache.Get(ctx, key)
		switch {
		case err != nil:
			CacheTotal.WithLabelValues("error").Inc()
			r.log.Warnf("isochrone cache get %s failed: %v", key, err)
		case cached != nil:
			CacheTotal.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			CacheTotal.WithLabelValues("miss").Inc()
		}
	}
	res, err := algo.CalculateIsochrone(mg.graph, startNode, maxCost)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, key, res); err != nil {
			r.log.Warnf("isochrone cache set %s failed: %v", key, err)
		}
	}
	return res, nil
}
