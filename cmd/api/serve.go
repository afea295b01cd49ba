package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// serve runs s on ln until ctx is done, then returns only after in-flight
// requests finished or drainTimeout passed.
func serve(ctx context.Context, s *http.Server, ln net.Listener, drainTimeout time.Duration, logger *zap.Logger) error {
	served := make(chan error, 1)
	go func() {
		served <- s.Serve(ln)
	}()

	select {
	case err := <-served:
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down the http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if err := <-served; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}
