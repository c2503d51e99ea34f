package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/catchment/input"
	"git.fiblab.net/sim/catchment/router"
	"git.fiblab.net/sim/catchment/router/algo"
	"git.fiblab.net/sim/catchment/store"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	easy "github.com/t-tomalak/logrus-easy-formatter"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

var (
	// 配置信息
	mongoURI     = flag.String("mongo_uri", "", "mongo db uri (default $MONGO_URI)")
	mapPathStr   = flag.String("map", "", "network source, can be empty [format: grid, {fspath}.pbf|json|db or {db}.{col}]")
	modes        = flag.String("modes", "walking", "routing modes to load, comma separated [walking, cycling, car, wheelchair]")
	configPath   = flag.String("config", "", "yaml config file, overrides -modes")
	sqlitePath   = flag.String("sqlite", "", "sqlite database for networks and isochrone results (empty means disable)")
	saveNetwork  = flag.Bool("sqlite.save-network", false, "save the loaded network of the first mode to sqlite")
	mongoExport  = flag.String("mongo.export", "", "export the loaded network to mongo [format: {db}.{col}]")
	redisAddr    = flag.String("redis", "", "redis address for isochrone cache (default $REDIS_ADDR, empty means disable)")
	grpcEndpoint = flag.String("listen", "localhost:52101", "connect listening address")
	logLevel     = flag.String("log-level", "info", "log level [debug, info, warn, error, fatal, panic]")

	// 批量计算等时圈并导出
	isochroneStarts = flag.String("isochrone.starts", "", "start node ids for batch isochrones, comma separated")
	isochroneCosts  = flag.String("isochrone.costs", "300,600,900", "max costs (seconds) for batch isochrones, comma separated")
	csvPath         = flag.String("csv", "", "csv output path for batch isochrones")

	// 性能测试
	benchmark = flag.Bool("benchmark", false, "benchmark mode")
	pprofAddr = flag.String("pprof", "localhost:52102", "pprof and metrics listening address")

	LOG_LEVELS = map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"fatal": logrus.FatalLevel,
		"panic": logrus.PanicLevel,
	}

	log = logrus.WithField("module", "catchment")
)

func main() {
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	envErr := godotenv.Load()
	flag.Parse()
	if level, ok := LOG_LEVELS[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		logrus.Fatalf("invalid log level: %s", *logLevel)
	}
	if envErr != nil {
		log.Debug("no .env file found, using environment variables")
	}
	if *mongoURI == "" {
		*mongoURI = os.Getenv("MONGO_URI")
	}
	if *redisAddr == "" {
		*redisAddr = os.Getenv("REDIS_ADDR")
	}

	var config *Config
	var err error
	if *configPath != "" {
		config, err = ReadConfig(*configPath)
	} else {
		config, err = ConfigFromModes(*modes)
	}
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx := context.Background()
	routerOpts := make([]router.Option, 0)
	if *redisAddr != "" {
		client, err := store.NewRedisClient(ctx, *redisAddr)
		if err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		defer client.Close()
		routerOpts = append(routerOpts, router.WithCache(store.NewRedisCache(client, config.Cache.TTL)))
		log.Infof("isochrone cache enabled at %s (ttl=%v)", *redisAddr, config.Cache.TTL)
	}
	r := router.New(logrus.WithField("module", "router"), routerOpts...)

	var resultStore ResultStore
	if *sqlitePath != "" {
		s, err := store.NewSQLiteStore(*sqlitePath)
		if err != nil {
			log.Fatalf("failed to open sqlite store: %v", err)
		}
		defer s.Close()
		resultStore = s
	}

	loader := NewSourceLoader(*mongoURI)
	if *mapPathStr != "" {
		if err := loadNetwork(ctx, r, loader, *mapPathStr, config); err != nil {
			log.Fatalf("failed to load network: %v", err)
		}
	}
	// 启动导航服务
	server := NewRoutingServer(r, loader, resultStore, log)
	firstMode := config.Modes[0].Mode

	if *saveNetwork {
		if err := saveFirstNetwork(ctx, r, resultStore, firstMode); err != nil {
			log.Fatalf("failed to save network: %v", err)
		}
	}

	if *pprofAddr != "" {
		// 启动pprof
		startHTTPDebugger(*pprofAddr)
	}

	if *benchmark {
		// 性能测试
		log.Logger.SetLevel(logrus.WarnLevel)
		res, err := runBenchmark(server, firstMode, *benchmarkCount, *benchmarkMaxCost, *benchmarkSeed, *benchmarkCPU)
		if err != nil {
			log.Fatalf("benchmark failed: %v", err)
		}
		logBenchmark(res, *benchmarkCPU)
		return
	}

	if *isochroneStarts != "" {
		if err := runBatch(ctx, server, firstMode, *isochroneStarts, *isochroneCosts, *csvPath); err != nil {
			log.Fatalf("batch isochrones failed: %v", err)
		}
		return
	}

	// 启动tcp监听和初始化connect服务端
	mux := http.NewServeMux()
	mux.Handle(NewRoutingServiceHandler(server))

	addr := *grpcEndpoint
	// 使用HTTP/2 w.o. TLS
	s := &http.Server{
		Addr:    addr,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}

	// 优雅退出
	// 创建监听退出chan
	signalCh := make(chan os.Signal, 1)
	//监听指定信号 ctrl+c kill
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalCh
		log.Info("stopping...")
		go func() {
			<-signalCh
			os.Exit(1) // 强制结束
		}()
		// 新请求在暂停处等待
		server.Suspend()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Shutdown(shutdownCtx)
		// 退出导航服务
		server.Close()
	}()

	log.Infof("server listening at %v", s.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("failed to serve: %v", err)
	}
	time.Sleep(1 * time.Second) // 延迟等待"优雅退出"
	log.Info("catchment closes")
}

// 读取一次数据源，为每种出行方式建图
func loadNetwork(ctx context.Context, r *router.Router, loader SourceLoader, path string, config *Config) error {
	src, err := loader(ctx, path)
	if err != nil {
		return err
	}
	for _, mc := range config.Modes {
		if _, err := r.Load(src, mc.LoadOptions()); err != nil {
			return err
		}
	}
	if *mongoExport != "" {
		p, err := NewPath(*mongoExport)
		if err != nil {
			return err
		}
		if p == nil || p.IsFile() || *mongoURI == "" {
			return fmt.Errorf("invalid mongo export target %s", *mongoExport)
		}
		client, err := input.NewMongoClient(ctx, *mongoURI)
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())
		nodes, edges := input.SourceToDocs(src)
		if err := input.SaveMongo(ctx, client, p.DB, p.Coll, nodes, edges); err != nil {
			return err
		}
		log.Infof("exported %d nodes, %d edges to %s", len(nodes), len(edges), p)
	}
	return nil
}

func saveFirstNetwork(ctx context.Context, r *router.Router, rs ResultStore, mode algo.RoutingMode) error {
	if rs == nil {
		return errors.New("-sqlite is required to save the network")
	}
	g, err := r.Graph(mode)
	if err != nil {
		return err
	}
	return rs.SaveNetwork(ctx, g)
}

// 逗号分隔的数字列表
func parseList[T any](s string, parse func(string) (T, error)) ([]T, error) {
	out := make([]T, 0)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := parse(part)
		if err != nil {
			return nil, fmt.Errorf("invalid list item %q: %w", part, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// 批量计算等时圈，配置了SQLite时保存结果，指定csv时导出
func runBatch(ctx context.Context, server *RoutingServer, mode algo.RoutingMode, startsStr, costsStr, csvPath string) error {
	starts, err := parseList(startsStr, func(s string) (algo.NodeID, error) {
		v, err := strconv.ParseUint(s, 10, 64)
		return algo.NodeID(v), err
	})
	if err != nil {
		return err
	}
	costs, err := parseList(costsStr, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
	if err != nil {
		return err
	}
	req := &GetIsochronesRequest{
		Mode:     mode.String(),
		Starts:   make([]*Position, len(starts)),
		MaxCosts: costs,
		Save:     server.store != nil,
	}
	for i := range starts {
		req.Starts[i] = &Position{NodeID: &starts[i]}
	}
	res, err := server.GetIsochrones(ctx, connect.NewRequest(req))
	if err != nil {
		return err
	}
	if res.Msg.ResultID != "" {
		log.Infof("isochrone result saved as %s", res.Msg.ResultID)
	}
	if csvPath != "" {
		return store.SaveIsochroneCSV(csvPath, res.Msg.Rows)
	}
	return nil
}
