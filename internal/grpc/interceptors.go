package grpc

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnaryServerInterceptor logs every call, turns panics into Internal and
// bounds calls that arrive without a deadline.
func UnaryServerInterceptor(logger *logrus.Logger, defaultTimeout time.Duration) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp any, err error) {
		start := time.Now()
		if _, ok := ctx.Deadline(); !ok && defaultTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
			defer cancel()
		}

		defer func() {
			if r := recover(); r != nil {
				logger.WithFields(logrus.Fields{
					"method": info.FullMethod,
					"panic":  r,
					"stack":  string(debug.Stack()),
				}).Error("gRPC panic")
				err = status.Error(codes.Internal, "internal server error")
			}

			entry := logger.WithFields(logrus.Fields{
				"method":   info.FullMethod,
				"code":     status.Code(err).String(),
				"duration": time.Since(start).String(),
			})
			if err != nil {
				entry.WithError(err).Warn("gRPC call")
				return
			}
			entry.Info("gRPC call")
		}()

		return handler(ctx, req)
	}
}
