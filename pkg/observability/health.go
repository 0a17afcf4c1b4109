package observability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const (
	healthStatusOK = "ok"

	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// HealthHandler returns an [http.Handler] for liveness checks at /healthz.
// It always returns HTTP 200 with {"status":"ok"}.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(http.StatusOK)
		writeHealthJSON(rw, healthStatusOK)
	})
}

func writeHealthJSON(w io.Writer, status string) {
	data, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return
	}

	_, err = w.Write(data)
	if err != nil {
		return
	}
}

// MetricsMux routes [RouteMetrics] to the scrape handler and [RouteHealth] to
// [HealthHandler], each wrapped in [HTTPMiddleware]. red may be nil.
func MetricsMux(tracer trace.Tracer, red *REDMetrics, scrape http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(RouteMetrics, HTTPMiddleware(tracer, red, RouteMetrics, scrape))
	mux.Handle(RouteHealth, HTTPMiddleware(tracer, red, RouteHealth, HealthHandler()))

	return mux
}

// ServeMetrics serves [MetricsMux] on listener until ctx is cancelled.
func ServeMetrics(
	ctx context.Context, listener net.Listener, tracer trace.Tracer,
	red *REDMetrics, scrape http.Handler, logger *slog.Logger,
) error {
	server := &http.Server{
		Handler:           MetricsMux(tracer, red, scrape),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.InfoContext(ctx, "metrics server listening", "addr", listener.Addr().String())
		errCh <- server.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown metrics server: %w", err)
		}

		<-errCh

		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serve metrics: %w", err)
	}
}
