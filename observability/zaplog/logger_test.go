package zaplog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	parallel "github.com/Swind/go-parallel"
	"github.com/Swind/go-parallel/core"
)

func TestLogger_ForwardsLevelsAndFields(t *testing.T) {
	zcore, logs := observer.New(zapcore.DebugLevel)
	logger := New(zap.New(zcore))

	logger.Debug("partitioned input", core.F("blocks", 3))
	logger.Info("started", core.F("pool", "p1"))
	logger.Warn("rejected", core.F("reason", "closed"))
	logger.Error("failed", core.F("err", errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, map[string]any{"blocks": int64(3)}, entries[0].ContextMap())
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "p1", entries[1].ContextMap()["pool"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, "boom", entries[3].ContextMap()["err"])
}

func TestNew_NilIsNop(t *testing.T) {
	logger := New(nil)
	logger.Info("dropped")
	assert.NotNil(t, logger.Zap())
}

func TestNewProduction(t *testing.T) {
	logger, err := NewProduction("warn")
	require.NoError(t, err)
	assert.False(t, logger.Zap().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Zap().Core().Enabled(zapcore.WarnLevel))

	_, err = NewProduction("loud")
	assert.Error(t, err)
}

// TestLogger_WithWorkerPool verifies pool lifecycle and failure logs reach zap
func TestLogger_WithWorkerPool(t *testing.T) {
	zcore, logs := observer.New(zapcore.DebugLevel)
	pool, err := parallel.NewWorkerPoolWithConfig("zap-pool", 1, &parallel.WorkerPoolConfig{
		Logger: New(zap.New(zcore)),
	})
	require.NoError(t, err)

	_, err = pool.RunBatch(context.Background(), []parallel.BatchFunc{
		func(ctx context.Context) (any, error) { panic("kaboom") },
	})
	require.Error(t, err)
	pool.Close()
	pool.Join()

	assert.Equal(t, 1, logs.FilterMessage("worker pool started").Len())
	assert.Equal(t, 1, logs.FilterMessage("task panicked").FilterField(zap.String("pool", "zap-pool")).Len())
	assert.Equal(t, 1, logs.FilterMessage("batch did not complete").Len())
	assert.Equal(t, 1, logs.FilterMessage("worker pool closed").Len())
}
