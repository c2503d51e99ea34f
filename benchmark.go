package main

import (
	"context"
	"flag"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"math/rand"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/catchment/router/algo"
)

var (
	benchmarkCount   = flag.Int("benchmark.count", 1000, "the random request count for benchmark")
	benchmarkMaxCost = flag.Float64("benchmark.max_cost", 600, "the isochrone max cost (seconds) for benchmark")
	benchmarkSeed    = flag.Int64("benchmark.seed", 0, "the seed for benchmark")
	benchmarkCPU     = flag.Int("benchmark.cpu", 1, "the cpu count for benchmark")
)

type benchmarkResult struct {
	Count   int
	Success int32
	Time    time.Duration
}

// 随机生成请求，起点、终点从已加载路网的节点中选取
// 偶数请求为最短路，奇数请求为等时圈
func runBenchmark(server *RoutingServer, mode algo.RoutingMode, count int, maxCost float64, seed int64, cpu int) (*benchmarkResult, error) {
	g, err := server.router.Graph(mode)
	if err != nil {
		return nil, err
	}
	ids := g.AllNodeIDs()
	if len(ids) == 0 {
		return &benchmarkResult{Count: count}, nil
	}
	// 设置随机种子
	e := rand.New(rand.NewSource(seed))
	type request struct {
		route     *connect.Request[GetRouteRequest]
		isochrone *connect.Request[GetIsochroneRequest]
	}
	reqs := make([]request, count)
	for i := 0; i < count; i++ {
		start := ids[e.Intn(len(ids))]
		if i%2 == 0 {
			end := ids[e.Intn(len(ids))]
			reqs[i].route = connect.NewRequest(&GetRouteRequest{
				Mode:  mode.String(),
				Start: &Position{NodeID: &start},
				End:   &Position{NodeID: &end},
			})
		} else {
			reqs[i].isochrone = connect.NewRequest(&GetIsochroneRequest{
				Mode:    mode.String(),
				Start:   &Position{NodeID: &start},
				MaxCost: maxCost,
			})
		}
	}
	do := func(req request) bool {
		if req.route != nil {
			res, err := server.GetRoute(context.Background(), req.route)
			if err != nil {
				server.log.Error("benchmark failed, err:", err)
				return false
			}
			return res.Msg.Route != nil
		}
		res, err := server.GetIsochrone(context.Background(), req.isochrone)
		if err != nil {
			server.log.Error("benchmark failed, err:", err)
			return false
		}
		return res.Msg.Isochrone.ReachableNodes > 0
	}

	// 开始benchmark
	start := time.Now()
	var wg sync.WaitGroup
	var success atomic.Int32
	if cpu <= 1 {
		for _, req := range reqs {
			if do(req) {
				success.Add(1)
			}
		}
	} else {
		// 设置cpu数量
		runtime.GOMAXPROCS(cpu)
		wg.Add(count)
		for _, req := range reqs {
			go func(req request) {
				defer wg.Done()
				if do(req) {
					success.Add(1)
				}
			}(req)
		}
		wg.Wait()
	}
	return &benchmarkResult{Count: count, Success: success.Load(), Time: time.Since(start)}, nil
}

func logBenchmark(res *benchmarkResult, cpu int) {
	timeCost := res.Time * time.Duration(max(cpu, 1))
	avg := time.Duration(0)
	if res.Count > 0 {
		avg = timeCost / time.Duration(res.Count)
	}
	log.Warnf("benchmark finished\ncount: %d\ntime: %v\navg: %v\nsuccess: %d", res.Count, timeCost, avg, res.Success)
}
