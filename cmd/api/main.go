package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"

	"fieldtrack.org/internal/config"
	"fieldtrack.org/internal/httpapi"
	"fieldtrack.org/internal/obs"
	"fieldtrack.org/internal/store/pg"
	"fieldtrack.org/internal/stream"
	"fieldtrack.org/internal/track"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		obs.Logger().WithError(err).Fatal("load configuration")
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)
	log := obs.Logger()

	// Postgres when a DSN is configured, in-memory otherwise. The in-memory
	// store keeps local development and smoke runs database-free.
	var (
		store track.Store
		probe httpapi.ReadyProbe
	)
	if cfg.PGDSN != "" {
		pgStore, err := pg.Open(cfg.PGDSN)
		if err != nil {
			log.WithError(err).Fatal("open postgres")
		}
		defer pgStore.Close()
		store = pgStore
		probe = httpapi.ReadyProbe{DB: pgStore.DB()}
	} else {
		log.Warn("no FIELDTRACK_PG_DSN set, serving from the in-memory store")
		store = track.NewInMemory()
	}

	api := httpapi.New(probe, version, store, stream.New())
	api.ApplyConfig(cfg.TokenTTL, cfg.RateBurst, cfg.RatePerSec)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		// WriteTimeout stays unset: the entry event stream holds
		// connections open indefinitely.
		IdleTimeout: 60 * time.Second,
	}

	var grpcSrv *grpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.WithError(err).Fatal("listen grpc")
		}
		grpcSrv = grpc.NewServer()
		httpapi.NewHealthServer(probe).Register(grpcSrv)
		go func() {
			log.WithField("addr", cfg.GRPCAddr).Info("grpc health listening")
			if err := grpcSrv.Serve(lis); err != nil {
				log.WithError(err).Error("grpc serve")
			}
		}()
	}

	go func() {
		log.WithField("addr", cfg.Addr).WithField("version", version).Info("fieldtrack-api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	log.Info("stopped")
}
