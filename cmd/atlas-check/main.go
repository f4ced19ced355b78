// Command atlas-check verifies the configured notification store is
// reachable and its indexes or tables are in place.
package main

import (
	"context"
	"os"
	"time"

	"foodorder/internal/wire"
	"foodorder/pkg/zlog"

	"go.uber.org/zap"
)

func main() {
	cfg := wire.ProvideConfig()
	defer func() { _ = zlog.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report, err := wire.CheckStore(ctx, cfg)
	if err != nil {
		zlog.Error("store check failed", zap.String("driver", cfg.Store.Driver), zap.Error(err))
		cancel()
		os.Exit(1)
	}

	if report.ServerVersion != "" {
		zlog.Info("mongo reachable", zap.String("server_version", report.ServerVersion))
	}
	zlog.Info("store ready", zap.String("driver", report.Driver))
}
