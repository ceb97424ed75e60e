package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/inquiry-intake/internal/app"
	"github.com/joseph-ayodele/inquiry-intake/internal/async"
	"github.com/joseph-ayodele/inquiry-intake/internal/common"
	"github.com/joseph-ayodele/inquiry-intake/internal/ingest"
	svc "github.com/joseph-ayodele/inquiry-intake/internal/server"
	ingestsvc "github.com/joseph-ayodele/inquiry-intake/internal/services/ingest"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	logger := app.NewLogger(os.Stdout, slog.LevelInfo, true)
	slog.SetDefault(logger)

	if err := common.LoadDotEnv(".env"); err != nil {
		logger.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(2)
	}
	defer a.Close()

	// gRPC server
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()
	svc.RegisterIntakeServiceServer(grpcServer, svc.NewIntakeService(a.Processor, a.Ingestor, a.Exporter, logger))

	// Register gRPC health service
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(svc.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	// Prometheus metrics endpoint
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: cfg.Server.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("metrics server listening", "addr", cfg.Server.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// optional inbox watcher
	var queue *async.ProcessorQueue
	if cfg.Inbox.Dir != "" {
		inbox := ingestsvc.NewService(a.Ingestor, nil, logger)
		queue = async.NewProcessorQueue(inbox.HandleJob, logger,
			async.WithWorkers(cfg.Inbox.Workers),
			async.WithQueueSize(512),
			async.WithProcessTimeout(cfg.Pipeline.RunTimeout+time.Minute),
		)
		inbox.SetQueue(queue)
		go func() {
			err := inbox.Watch(ctx, ingest.WatchConfig{
				Roots:       []string{cfg.Inbox.Dir},
				InitialScan: true,
				SkipHidden:  true,
				Debounce:    cfg.Inbox.Debounce,
			})
			if err != nil {
				logger.Error("inbox watcher stopped", "error", err)
			}
		}()
	}

	logger.Info("intaked listening", "addr", cfg.Server.GRPCAddr)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if queue != nil {
		queue.Shutdown(shutdownCtx)
	}
	_ = metricsServer.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
}
