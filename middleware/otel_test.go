package middleware

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/modelctx/mcphost/protocol"
)

func TestOTel(t *testing.T) {
	t.Run("creates span per request", func(t *testing.T) {
		exporter := tracetest.NewInMemoryExporter()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		defer tp.Shutdown(context.Background())

		handler := OTel(WithTracerProvider(tp))(okHandler)

		if _, err := handler(context.Background(), testRequest("tools/list")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		spans := exporter.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		if spans[0].Name != "mcp.tools/list" {
			t.Errorf("span name = %q, want %q", spans[0].Name, "mcp.tools/list")
		}
	})

	t.Run("records error on protocol failure", func(t *testing.T) {
		exporter := tracetest.NewInMemoryExporter()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		defer tp.Shutdown(context.Background())

		handler := OTel(WithTracerProvider(tp))(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			return nil, protocol.NewMethodNotFound(req.Method)
		})

		_, _ = handler(context.Background(), testRequest("bogus"))

		spans := exporter.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		if len(spans[0].Events) == 0 {
			t.Error("expected an error event on the span")
		}
	})

	t.Run("skips configured methods", func(t *testing.T) {
		exporter := tracetest.NewInMemoryExporter()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		defer tp.Shutdown(context.Background())

		handler := OTel(WithTracerProvider(tp), WithOTelSkipMethods("ping"))(okHandler)

		if _, err := handler(context.Background(), testRequest("ping")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(exporter.GetSpans()) != 0 {
			t.Error("expected no spans for skipped method")
		}
	})

	t.Run("counts requests", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer mp.Shutdown(context.Background())

		handler := OTel(WithMeterProvider(mp))(okHandler)

		for i := 0; i < 3; i++ {
			if _, err := handler(context.Background(), testRequest("tools/list")); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		var rm metricdata.ResourceMetrics
		if err := reader.Collect(context.Background(), &rm); err != nil {
			t.Fatalf("collect metrics: %v", err)
		}

		var total int64
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				if m.Name != "mcp.server.requests" {
					continue
				}
				if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
					for _, dp := range sum.DataPoints {
						total += dp.Value
					}
				}
			}
		}
		if total != 3 {
			t.Errorf("request count = %d, want 3", total)
		}
	})
}

func TestSpanHelpers(t *testing.T) {
	// No-op span path: helpers must not panic without a tracer installed.
	ctx := context.Background()
	AddSpanEvent(ctx, "lookup")
	if SpanFromContext(ctx) == nil {
		t.Error("expected a no-op span, got nil")
	}
}
