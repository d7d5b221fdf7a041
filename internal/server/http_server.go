package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/oggyb/vibecheck/internal/config"
)

// HTTPServer serves the REST API.
type HTTPServer struct {
	srv *http.Server
	log *slog.Logger
}

func NewHTTPServer(cfg config.HTTPConfig, h http.Handler, log *slog.Logger) *HTTPServer {
	return &HTTPServer{
		srv: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           h,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		log: log,
	}
}

// Serve blocks on lis. A shut down server returns nil.
func (s *HTTPServer) Serve(lis net.Listener) error {
	s.log.Info("starting HTTP server", "addr", lis.Addr().String())
	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) ListenAndServe() error {
	lis, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// Stop waits for active requests until ctx ends.
func (s *HTTPServer) Stop(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	if err == nil {
		s.log.Info("HTTP server stopped")
	}
	return err
}
