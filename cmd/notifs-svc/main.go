package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodorder/api/v1/tracker"
	"foodorder/internal/common"
	"foodorder/internal/wire"
	"foodorder/pkg/zlog"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	app, cleanup, err := wire.InitializeApplication()
	if err != nil {
		zlog.Error("failed to initialize application", zap.Error(err))
		os.Exit(1)
	}
	defer func() { _ = zlog.Sync() }()

	cfg := app.Config

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(common.UnaryServerInterceptor(app.Metrics)))
	tracker.RegisterDeliveryTrackerServer(grpcServer, app.GRPCHandler)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(tracker.ServiceName, healthpb.HealthCheckResponse_SERVING)

	// grpcurl and postman discover the service through reflection
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.GRPCPort))
	if err != nil {
		zlog.Error("failed to listen", zap.String("port", cfg.Server.GRPCPort), zap.Error(err))
		cleanup()
		os.Exit(1)
	}

	go func() {
		zlog.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			zlog.Error("gRPC server stopped", zap.Error(err))
		}
	}()

	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:        app.Router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		zlog.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if app.Consumer == nil {
			return
		}
		zlog.Info("consuming delivery outcomes", zap.String("topic", cfg.Kafka.OutcomeTopic))
		if err := app.Consumer.Run(consumerCtx); err != nil {
			zlog.Error("outcome consumer stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")
	healthServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zlog.Warn("HTTP server forced to shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()

	stopConsumer()
	<-consumerDone

	// stops the service loops, drains queued events, then closes the clients
	cleanup()
	zlog.Info("server gracefully stopped")
}
