package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"compliancehub.org/internal/connectivity"
	"compliancehub.org/internal/obs"
	"compliancehub.org/internal/queue"
	"compliancehub.org/internal/remote"
	"compliancehub.org/internal/session"
	"compliancehub.org/internal/syncer"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	remoteURL := envOr("HUB_REMOTE_URL", "http://localhost:8900")
	dataDir := envOr("HUB_DATA_DIR", "data")
	probeEvery := envDurationOr("HUB_PROBE_INTERVAL_SECONDS", 15*time.Second)
	metricsAddr := envOr("HUB_METRICS_ADDR", "127.0.0.1:9095")

	client := remote.NewClient(remoteURL)
	if token := os.Getenv("HUB_SESSION_TOKEN"); token != "" {
		client.UseSession(remote.Session{Token: token})
	}

	q, err := queue.Open(filepath.Join(dataDir, "queue.json"))
	if err != nil {
		log.Fatalf("open queue: %v", err)
	}
	selection := session.NewSelection(filepath.Join(dataDir, "store.json"))
	if store, ok, err := selection.Load(); err != nil {
		log.Printf("store selection unreadable: %v", err)
	} else if ok {
		log.Printf("resuming at store %s (%s)", store.Name, store.ID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor := connectivity.NewMonitor(connectivity.Probe(ctx, remoteURL+"/healthz"))
	prober := connectivity.NewProber(monitor, remoteURL+"/healthz", probeEvery)

	engine := syncer.New(q, client)

	go engine.Watch(ctx, monitor)
	go prober.Run(ctx)

	// Pending writes from a previous run drain immediately if we start online.
	if monitor.Online() && q.Len() > 0 {
		if res, err := engine.Drain(ctx); err != nil {
			log.Printf("startup drain: %v", err)
		} else if res.Attempted > 0 {
			log.Printf("startup drain: %d attempted, %d failed", res.Attempted, res.Failed)
		}
	}

	metricsSrv := &http.Server{
		Addr:              metricsAddr,
		Handler:           obs.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics listen: %v", err)
		}
	}()

	log.Printf("compliance-hub agent %s ready (remote=%s queue=%d online=%v)",
		version, remoteURL, q.Len(), monitor.Online())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Println("Stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}
