package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etf-dashboard/internal/config"
)

func TestNewTracerProvider_Stdout(t *testing.T) {
	var buf bytes.Buffer
	tp, err := NewTracerProvider(config.TracingConfig{ServiceName: "etf-dashboard", Exporter: "stdout", SampleRatio: 1}, &buf)
	require.NoError(t, err)

	ctx, span := tp.Tracer(tracerName).Start(context.Background(), "dashboard.render")
	traceID := TraceID(ctx)
	EndSpan(span, errors.New("sheet missing"))

	require.NoError(t, tp.Shutdown(context.Background()))

	assert.Len(t, traceID, 32)
	out := buf.String()
	assert.Contains(t, out, "dashboard.render")
	assert.Contains(t, out, traceID)
	assert.Contains(t, out, "sheet missing")
}

func TestNewTracerProvider_None(t *testing.T) {
	tp, err := NewTracerProvider(config.TracingConfig{ServiceName: "etf-dashboard", Exporter: "none", SampleRatio: 0}, nil)
	require.NoError(t, err)
	defer tp.Shutdown(context.Background())

	// unsampled spans still carry IDs for log correlation
	ctx, span := tp.Tracer(tracerName).Start(context.Background(), "request")
	defer span.End()
	assert.NotEmpty(t, TraceID(ctx))
}

func TestNewTracerProvider_Unsupported(t *testing.T) {
	_, err := NewTracerProvider(config.TracingConfig{Exporter: "zipkin"}, nil)
	assert.Error(t, err)
}

func TestTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
}
