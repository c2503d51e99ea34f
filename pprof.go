package main

import (
	"net/http"
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 访问/debug/pprof/进入pprof实时分析页面，/metrics为prometheus指标
func newHTTPDebugger(addr string) *http.Server {
	pprofHandler := http.NewServeMux()
	pprofHandler.Handle("/debug/pprof/", http.HandlerFunc(pprof.Index))
	pprofHandler.Handle("/debug/pprof/cmdline", http.HandlerFunc(pprof.Cmdline))
	pprofHandler.Handle("/debug/pprof/profile", http.HandlerFunc(pprof.Profile))
	pprofHandler.Handle("/debug/pprof/symbol", http.HandlerFunc(pprof.Symbol))
	pprofHandler.Handle("/debug/pprof/trace", http.HandlerFunc(pprof.Trace))
	pprofHandler.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: addr, Handler: pprofHandler}
}

func startHTTPDebugger(addr string) *http.Server {
	server := newHTTPDebugger(addr)
	go server.ListenAndServe()
	return server
}
