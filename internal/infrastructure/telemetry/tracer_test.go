package telemetry

import (
	"context"
	"testing"

	"github.com/retailpos/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewProviders_Disabled(t *testing.T) {
	p, err := NewProviders(context.Background(), config.TelemetryConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.IsEnabled())
	assert.NotNil(t, p.Tracer("pos"))
	assert.NotNil(t, p.Meter("pos"))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestBridgeLogger_DisabledReturnsBase(t *testing.T) {
	p, err := NewProviders(context.Background(), config.TelemetryConfig{}, zap.NewNop())
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)
	bridged := p.BridgeLogger(base, zapcore.InfoLevel)

	assert.Same(t, base, bridged)
	bridged.Info("sale registered")
	assert.Equal(t, 1, logs.Len())
}

func TestSampler(t *testing.T) {
	assert.Contains(t, Sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, Sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, Sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}
	logger := zap.New(core)

	logger.Info("ignored")
	logger.Warn("drawer shortage")
	logger.With(zap.String("cashier", "ana")).Error("checkout failed")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "drawer shortage", logs.All()[0].Message)
	assert.False(t, core.Enabled(zapcore.DebugLevel))
}
