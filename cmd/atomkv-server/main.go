// Command atomkv-server is the AtomKV composition root: load config,
// open the durable command log and replay it, build the engine, start
// the TCP and HTTP adapters, and shut everything down cleanly on
// signal. Structured after the teacher's cmd/server/main.go (banner,
// getenv-driven Config, gracefulShutdown), trimmed to AtomKV's single
// tenant instead of a TenantManager.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/AutoCookies/atomkv/internal/config"
	"github.com/AutoCookies/atomkv/internal/dcl"
	"github.com/AutoCookies/atomkv/internal/httpapi"
	"github.com/AutoCookies/atomkv/internal/storekv"
	"github.com/AutoCookies/atomkv/internal/tcpapi"
	"github.com/AutoCookies/atomkv/internal/telemetry"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	printBanner(cfg)

	var dclLog *dcl.Log
	opts := []storekv.Option{storekv.WithCompressionThreshold(cfg.CompressionBytes)}
	if cfg.DCLEnabled {
		l, err := dcl.Open(cfg.DCLPath)
		if err != nil {
			log.Fatalf("failed to open durable command log: %v", err)
		}
		dclLog = l
		opts = append(opts, storekv.WithAppender(l))
	}

	store := storekv.New(cfg.Capacity, opts...)

	if cfg.DCLEnabled {
		log.Printf("replaying durable command log from %s...", cfg.DCLPath)
		if err := dcl.Replay(cfg.DCLPath, store.ApplyReplay); err != nil {
			log.Fatalf("durable command log replay failed: %v", err)
		}
	}

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	store.StartSweeper(sweepCtx, cfg.SweepInterval)

	tcpSrv := tcpapi.NewServer(cfg.TCPAddr, store)
	go func() {
		log.Printf("TCP listening on %s", cfg.TCPAddr)
		if err := tcpSrv.ListenAndServe(); err != nil {
			log.Printf("TCP server stopped: %v", err)
		}
	}()

	httpSrv := httpapi.NewServer(cfg.HTTPAddr, store, cfg.HTTPReadTimeout, cfg.HTTPWriteTimeout)
	go func() {
		log.Printf("HTTP listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server stopped: %v", err)
		}
	}()

	pollCtx, stopPoll := context.WithCancel(context.Background())
	go pollMetrics(pollCtx, store, dclLog)

	log.Println("AtomKV is ready")

	gracefulShutdown(cfg, tcpSrv, httpSrv, stopSweeper, stopPoll, dclLog)
}

func pollMetrics(ctx context.Context, store *storekv.Store, l *dcl.Log) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := store.Stats()
			depth := 0
			if l != nil {
				depth = l.QueueDepth()
			}
			telemetry.Sample(st.Keys, st.Capacity, st.Hits, st.Misses, st.Evictions, depth)
		}
	}
}

func printBanner(cfg *config.Config) {
	fmt.Printf(`
========================================
   AtomKV v%s
========================================
  Single-node in-memory key-value store
========================================

Config:
  TCP:           %s
  HTTP:          %s
  Capacity:      %d keys
  DCL:           %v (%s)
  Go:            %s / %s/%s

========================================
`, version, cfg.TCPAddr, cfg.HTTPAddr, cfg.Capacity, cfg.DCLEnabled, cfg.DCLPath,
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func gracefulShutdown(cfg *config.Config, tcpSrv *tcpapi.Server, httpSrv *httpapi.Server,
	stopSweeper, stopPoll context.CancelFunc, l *dcl.Log) {

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("signal received: %v, shutting down...", sig)

	// spec.md §5: stop accepting connections -> close client sockets ->
	// stop sweeper -> drain DCL queue and close writer -> release files.
	if err := tcpSrv.Shutdown(cfg.ShutdownTimeout); err != nil {
		log.Printf("tcp shutdown error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}

	stopSweeper()
	stopPoll()

	if l != nil {
		closed := make(chan error, 1)
		go func() { closed <- l.Close() }()
		select {
		case err := <-closed:
			if err != nil {
				log.Printf("dcl close error: %v", err)
			}
		case <-time.After(cfg.ShutdownTimeout):
			log.Printf("dcl close timed out after %v", cfg.ShutdownTimeout)
		}
	}

	log.Println("shutdown complete")
}
