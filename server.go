package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/catchment/router"
	"git.fiblab.net/sim/catchment/router/algo"
	"git.fiblab.net/sim/catchment/store"
	"github.com/paulmach/orb"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const (
	ROUTING_SERVICE_NAME = "catchment.v1.RoutingService"

	LoadNetworkProcedure   = "/catchment.v1.RoutingService/LoadNetwork"
	GetRouteProcedure      = "/catchment.v1.RoutingService/GetRoute"
	GetIsochroneProcedure  = "/catchment.v1.RoutingService/GetIsochrone"
	GetIsochronesProcedure = "/catchment.v1.RoutingService/GetIsochrones"
	GetStatsProcedure      = "/catchment.v1.RoutingService/GetStats"
)

// 路网与等时圈结果的持久化
type ResultStore interface {
	SaveNetwork(ctx context.Context, g *algo.NetworkGraph) error
	SaveIsochrone(ctx context.Context, mode algo.RoutingMode, results []*algo.IsochroneResult, rows []router.IsochroneRow, duration time.Duration) (string, error)
	Stats(ctx context.Context) (*store.DatabaseStats, error)
}

type RoutingServer struct {
	router *router.Router
	loader SourceLoader
	// 可以为nil
	store ResultStore
	log   *logrus.Entry

	// 接口开启true或关闭false
	ok bool
	// 条件变量
	cond *sync.Cond
}

func NewRoutingServer(r *router.Router, loader SourceLoader, rs ResultStore, logger *logrus.Entry) *RoutingServer {
	return &RoutingServer{
		router: r,
		loader: loader,
		store:  rs,
		log:    logger,
		ok:     true, cond: sync.NewCond(&sync.Mutex{})}
}

// 注册所有接口，返回挂载路径与handler
func NewRoutingServiceHandler(s *RoutingServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	mux := http.NewServeMux()
	mux.Handle(LoadNetworkProcedure, connect.NewUnaryHandler(LoadNetworkProcedure, s.LoadNetwork, opts...))
	mux.Handle(GetRouteProcedure, connect.NewUnaryHandler(GetRouteProcedure, s.GetRoute, opts...))
	mux.Handle(GetIsochroneProcedure, connect.NewUnaryHandler(GetIsochroneProcedure, s.GetIsochrone, opts...))
	mux.Handle(GetIsochronesProcedure, connect.NewUnaryHandler(GetIsochronesProcedure, s.GetIsochrones, opts...))
	mux.Handle(GetStatsProcedure, connect.NewUnaryHandler(GetStatsProcedure, s.GetStats, opts...))
	return "/" + ROUTING_SERVICE_NAME + "/", mux
}

// 将内部错误转换为connect错误码
func toConnectError(err error) error {
	var ce *connect.Error
	switch {
	case errors.As(err, &ce):
		return err
	case errors.Is(err, router.ErrModeNotLoaded):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, algo.ErrNodeNotFound), errors.Is(err, store.ErrResultNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, algo.ErrUnknownMode),
		errors.Is(err, algo.ErrInvalidCost),
		errors.Is(err, algo.ErrInvalidLength),
		errors.Is(err, algo.ErrInvalidSpeed),
		errors.Is(err, algo.ErrDuplicateNode),
		errors.Is(err, algo.ErrDuplicateEdge),
		errors.Is(err, algo.ErrInconsistentGraph):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// 暂停-恢复机制，暂停中的请求在此等待
func (s *RoutingServer) wait() {
	s.cond.L.Lock()
	for !s.ok {
		// 暂停中
		s.cond.Wait()
	}
	s.cond.L.Unlock()
}

func parseMode(name string) (algo.RoutingMode, error) {
	mode, err := algo.ParseRoutingMode(name)
	if err != nil {
		return 0, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return mode, nil
}

// 将位置转换为图中的节点
func (s *RoutingServer) resolve(mode algo.RoutingMode, pb *Position, name string) (algo.NodeID, error) {
	switch {
	case pb == nil:
		return 0, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("no %s position data in request", name))
	case pb.NodeID != nil:
		if !s.router.HasNode(mode, *pb.NodeID) {
			if _, err := s.router.Graph(mode); err != nil {
				return 0, toConnectError(err)
			}
			return 0, connect.NewError(
				connect.CodeNotFound,
				fmt.Errorf("no %s node ID: %v: %w", name, *pb.NodeID, algo.ErrNodeNotFound),
			)
		}
		return *pb.NodeID, nil
	case pb.Lon != nil && pb.Lat != nil:
		id, err := s.router.NearestNode(mode, orb.Point{*pb.Lon, *pb.Lat})
		if err != nil {
			return 0, toConnectError(err)
		}
		return id, nil
	default:
		return 0, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("no %s position data in request", name))
	}
}

func (s *RoutingServer) LoadNetwork(
	ctx context.Context,
	req *connect.Request[LoadNetworkRequest],
) (*connect.Response[LoadNetworkResponse], error) {
	in := req.Msg
	s.wait()
	mode, err := parseMode(in.Mode)
	if err != nil {
		return nil, err
	}
	if in.Save && s.store == nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("no result store configured"))
	}
	src, err := s.loader(ctx, in.Path)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("failed to load %s: %w", in.Path, err))
	}
	stats, err := s.router.Load(src, router.LoadOptions{
		Mode:                 mode,
		Speed:                in.Speed,
		UseMaxSpeed:          in.UseMaxSpeed,
		FilterInaccessible:   in.FilterInaccessible,
		OnewayRestrictions:   in.OnewayRestrictions,
		LargestComponentOnly: in.LargestComponent,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	info, err := s.router.Stats(mode)
	if err != nil {
		return nil, toConnectError(err)
	}
	if in.Save {
		g, err := s.router.Graph(mode)
		if err != nil {
			return nil, toConnectError(err)
		}
		if err := s.store.SaveNetwork(ctx, g); err != nil {
			return nil, toConnectError(err)
		}
	}
	return connect.NewResponse(&LoadNetworkResponse{
		Mode:         mode.String(),
		Nodes:        stats.Nodes,
		Edges:        stats.Edges,
		SkippedEdges: stats.SkippedEdges,
		DroppedNodes: stats.DroppedNodes,
		TotalLength:  stats.TotalLength,
		DurationMs:   stats.Duration.Milliseconds(),
		Version:      info.Version,
	}), nil
}

func (s *RoutingServer) GetRoute(
	ctx context.Context,
	req *connect.Request[GetRouteRequest],
) (*connect.Response[GetRouteResponse], error) {
	in := req.Msg
	s.wait()
	mode, err := parseMode(in.Mode)
	if err != nil {
		return nil, err
	}
	start, err := s.resolve(mode, in.Start, "start")
	if err != nil {
		return nil, err
	}
	end, err := s.resolve(mode, in.End, "end")
	if err != nil {
		return nil, err
	}
	s.log.Debugf("Search %v route from %v to %v", mode, start, end)
	route, err := s.router.ShortestPath(mode, start, end)
	if err != nil {
		return nil, toConnectError(err)
	}
	if route == nil {
		// 无法找到通路，返回空响应
		return connect.NewResponse(&GetRouteResponse{}), nil
	}
	return connect.NewResponse(&GetRouteResponse{
		Route:       route,
		CostMinutes: route.Cost / 60,
	}), nil
}

func (s *RoutingServer) GetIsochrone(
	ctx context.Context,
	req *connect.Request[GetIsochroneRequest],
) (*connect.Response[GetIsochroneResponse], error) {
	in := req.Msg
	s.wait()
	mode, err := parseMode(in.Mode)
	if err != nil {
		return nil, err
	}
	start, err := s.resolve(mode, in.Start, "start")
	if err != nil {
		return nil, err
	}
	result, err := s.router.Isochrone(ctx, mode, start, in.MaxCost)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetIsochroneResponse{Isochrone: result}), nil
}

// 多起点、多阈值等时圈，结果按起点再按阈值排列
func (s *RoutingServer) GetIsochrones(
	ctx context.Context,
	req *connect.Request[GetIsochronesRequest],
) (*connect.Response[GetIsochronesResponse], error) {
	in := req.Msg
	s.wait()
	mode, err := parseMode(in.Mode)
	if err != nil {
		return nil, err
	}
	if len(in.Starts) == 0 || len(in.MaxCosts) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("starts and max_costs must not be empty"))
	}
	if in.Save && s.store == nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("no result store configured"))
	}
	starts := make([]algo.NodeID, 0, len(in.Starts))
	for i, pb := range in.Starts {
		id, err := s.resolve(mode, pb, fmt.Sprintf("start[%d]", i))
		if err != nil {
			return nil, err
		}
		starts = append(starts, id)
	}
	starts = lo.Uniq(starts)

	begin := time.Now()
	results := make([]*algo.IsochroneResult, 0, len(starts)*len(in.MaxCosts))
	for _, start := range starts {
		if err := ctx.Err(); err != nil {
			return nil, toConnectError(err)
		}
		rs, err := s.router.Isochrones(ctx, mode, start, in.MaxCosts)
		if err != nil {
			return nil, toConnectError(err)
		}
		results = append(results, rs...)
	}
	duration := time.Since(begin)
	rows, err := s.router.ExportIsochrones(mode, results)
	if err != nil {
		return nil, toConnectError(err)
	}
	out := &GetIsochronesResponse{Isochrones: results, Rows: rows}
	if in.Save {
		id, err := s.store.SaveIsochrone(ctx, mode, results, rows, duration)
		if err != nil {
			return nil, toConnectError(err)
		}
		out.ResultID = id
	}
	s.log.Infof("calculated %d isochrones (%d starts) for %v in %v", len(results), len(starts), mode, duration)
	return connect.NewResponse(out), nil
}

func (s *RoutingServer) GetStats(
	ctx context.Context,
	req *connect.Request[GetStatsRequest],
) (*connect.Response[GetStatsResponse], error) {
	in := req.Msg
	s.wait()
	modes := s.router.Modes()
	if in.Mode != "" {
		mode, err := parseMode(in.Mode)
		if err != nil {
			return nil, err
		}
		modes = []algo.RoutingMode{mode}
	}
	out := &GetStatsResponse{Graphs: make([]GraphStats, 0, len(modes))}
	for _, mode := range modes {
		st, err := s.router.Stats(mode)
		if err != nil {
			return nil, toConnectError(err)
		}
		out.Graphs = append(out.Graphs, GraphStats{
			Mode:      mode.String(),
			Nodes:     st.Nodes,
			Edges:     st.Edges,
			Algorithm: st.Algorithm,
			Version:   st.Version,
			LoadedAt:  st.LoadedAt.Format(time.RFC3339),
		})
	}
	if s.store != nil {
		db, err := s.store.Stats(ctx)
		if err != nil {
			return nil, toConnectError(err)
		}
		out.Database = db
	}
	return connect.NewResponse(out), nil
}

// 暂停导航服务
func (s *RoutingServer) Suspend() {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	s.ok = false
}

// 恢复导航服务
func (s *RoutingServer) Resume() {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	s.ok = true
	s.cond.Broadcast()
}

// 关闭导航服务
func (s *RoutingServer) Close() {
	s.router.Close()
}
