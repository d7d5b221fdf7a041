package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/oggyb/vibecheck/internal/logger"
)

// GRPCServer wraps grpc.Server with the interceptors and registrars used
// by the service.
type GRPCServer struct {
	srv *grpc.Server
	log *slog.Logger
}

// NewGRPCServer builds the server and registers every registrar plus
// reflection (for grpcurl).
func NewGRPCServer(log *slog.Logger, registrars ...Registrar) *GRPCServer {
	if log == nil {
		log = logger.L()
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		recoverInterceptor(log),
		loggingInterceptor(log),
	))

	// register all services
	for _, r := range registrars {
		r.Register(srv)
	}
	reflection.Register(srv)

	return &GRPCServer{srv: srv, log: log}
}

// ListenAndServe listens on addr and serves until Stop.
func (s *GRPCServer) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(lis)
}

// Serve blocks on lis. A stopped server returns nil.
func (s *GRPCServer) Serve(lis net.Listener) error {
	s.log.Info("starting gRPC server", "addr", lis.Addr().String())
	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Stop drains in-flight calls and forces a stop when ctx ends first.
func (s *GRPCServer) Stop(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("gRPC server stopped")
	case <-ctx.Done():
		s.log.Warn("gRPC server force stop")
		s.srv.Stop()
	}
}

func loggingInterceptor(base *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		l := base.With("method", info.FullMethod)
		ctx = logger.Into(ctx, l)

		resp, err := handler(ctx, req)

		l.Debug("grpc", "code", status.Code(err).String(), "dur", time.Since(start))
		return resp, err
	}
}

func recoverInterceptor(base *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				base.Error("panic recovered",
					"method", info.FullMethod,
					"panic", r,
					"stack", string(debug.Stack()),
				)
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
