package telemetry

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestSetup_Disabled(t *testing.T) {
	p, err := Setup(Config{}, nil)
	require.NoError(t, err)

	_, span := p.Tracer.Start(context.Background(), "load")
	assert.False(t, span.SpanContext().IsValid())
	EndSpan(span, nil)

	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSetup_ExportsSpans(t *testing.T) {
	var out bytes.Buffer
	p, err := Setup(Config{Enabled: true, Output: &out, ServiceVersion: "test"}, nil)
	require.NoError(t, err)

	ctx, span := p.Tracer.Start(context.Background(), "forecast")
	span.SetAttributes(attribute.Int("horizon", 12))
	_, child := p.Tracer.Start(ctx, "summary")
	EndSpan(child, errors.New("ollama unreachable"))
	EndSpan(span, nil)

	require.NoError(t, p.Shutdown(context.Background()))

	assert.Contains(t, out.String(), `"Name": "forecast"`)
	assert.Contains(t, out.String(), `"Name": "summary"`)
	assert.Contains(t, out.String(), "ollama unreachable")
	assert.Contains(t, out.String(), ServiceName)
}

func TestShutdown_NilProvider(t *testing.T) {
	var p *Provider
	assert.NoError(t, p.Shutdown(context.Background()))
}
