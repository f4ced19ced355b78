package common

import (
	"context"
	"time"

	"foodorder/pkg/zlog"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Health checks are polled constantly; they are counted but not logged.
var quietMethods = map[string]bool{
	"/grpc.health.v1.Health/Check": true,
	"/grpc.health.v1.Health/Watch": true,
}

// RequestObserver records one finished RPC.
type RequestObserver interface {
	ObserveGRPC(method, code string, elapsed time.Duration)
}

// UnaryServerInterceptor logs every unary call with its status code and
// hands the outcome to obs (which may be nil).
func UnaryServerInterceptor(obs RequestObserver) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		elapsed := time.Since(start)
		code := status.Code(err)

		if obs != nil {
			obs.ObserveGRPC(info.FullMethod, code.String(), elapsed)
		}

		if quietMethods[info.FullMethod] {
			return resp, err
		}

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("elapsed", elapsed),
		}
		if err != nil {
			zlog.Warn("grpc request failed", append(fields, zap.Error(err))...)
		} else {
			zlog.Debug("grpc request", fields...)
		}
		return resp, err
	}
}
