package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const traceShutdownTimeout = 5 * time.Second

// setupTracing exports spans over OTLP/gRPC when an endpoint is configured.
// Without one the global no-op provider stays in place.
func setupTracing(ra *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if ra.OTLPEndpoint == "" {
			return nil
		}

		exporter, err := otlptracegrpc.New(cmd.Context(),
			otlptracegrpc.WithEndpoint(ra.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("create trace exporter: %w", err)
		}

		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		otel.SetTracerProvider(tp)

		ra.shutdownTracing = tp.Shutdown

		slog.DebugContext(cmd.Context(), "exporting traces", slog.String("endpoint", ra.OTLPEndpoint))

		return nil
	}
}

// flushTraces shuts the exporter down, sending any buffered spans. It still
// gets a few seconds when ctx is already canceled.
func (ra *RootArgs) flushTraces(ctx context.Context) {
	if ra.shutdownTracing == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), traceShutdownTimeout)
	defer cancel()

	if err := ra.shutdownTracing(ctx); err != nil {
		slog.WarnContext(ctx, "failed to flush traces", slog.Any("error", err))
	}
}
