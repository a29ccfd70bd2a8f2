package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(t *testing.T, level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	t.Helper()
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func TestNewGormLogger(t *testing.T) {
	gl, _ := newObservedGormLogger(t, gormlogger.Info)

	assert.Equal(t, gormlogger.Info, gl.level)
	assert.Equal(t, defaultSlowThreshold, gl.slow)
	assert.True(t, gl.skipNotFound)

	var _ gormlogger.Interface = gl
}

func TestGormLoggerOptions(t *testing.T) {
	gl, _ := newObservedGormLogger(t, gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithIgnoreRecordNotFoundError(false),
	)

	assert.Equal(t, 500*time.Millisecond, gl.slow)
	assert.False(t, gl.skipNotFound)
}

func TestGormLogger_LogMode(t *testing.T) {
	gl, _ := newObservedGormLogger(t, gormlogger.Info)

	clone, ok := gl.LogMode(gormlogger.Warn).(*GormLogger)
	require.True(t, ok)

	assert.Equal(t, gormlogger.Warn, clone.level)
	assert.Equal(t, gormlogger.Info, gl.level, "original level unchanged")
}

func TestGormLogger_LevelGates(t *testing.T) {
	t.Run("info logged at info level", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(t, gormlogger.Info)
		gl.Info(context.Background(), "migrating %s", "batches")

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "migrating batches")
	})

	t.Run("info suppressed at silent level", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(t, gormlogger.Silent)
		gl.Info(context.Background(), "migrating batches")
		assert.Empty(t, recorded.All())
	})

	t.Run("warn and error pass through", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(t, gormlogger.Info)
		gl.Warn(context.Background(), "retry %d", 2)
		gl.Error(context.Background(), "connect failed")

		logs := recorded.All()
		require.Len(t, logs, 2)
		assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
		assert.Equal(t, zapcore.ErrorLevel, logs[1].Level)
	})
}

func TestGormLogger_Trace(t *testing.T) {
	query := func() (string, int64) {
		return "SELECT * FROM reconciliation_items", 5
	}

	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		opts    []GormLoggerOption
		begin   time.Time
		err     error
		wantMsg string
	}{
		{
			name:    "query error",
			level:   gormlogger.Error,
			begin:   time.Now(),
			err:     errors.New("deadlock detected"),
			wantMsg: "SQL Error",
		},
		{
			name:  "record not found skipped",
			level: gormlogger.Error,
			begin: time.Now(),
			err:   gormlogger.ErrRecordNotFound,
		},
		{
			name:    "slow query",
			level:   gormlogger.Warn,
			opts:    []GormLoggerOption{WithSlowThreshold(time.Nanosecond)},
			begin:   time.Now().Add(-time.Second),
			wantMsg: "SLOW SQL",
		},
		{
			name:    "normal query",
			level:   gormlogger.Info,
			begin:   time.Now(),
			wantMsg: "SQL Query",
		},
		{
			name:  "silent logs nothing",
			level: gormlogger.Silent,
			begin: time.Now(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gl, recorded := newObservedGormLogger(t, tt.level, tt.opts...)

			gl.Trace(context.Background(), tt.begin, query, tt.err)

			logs := recorded.All()
			if tt.wantMsg == "" {
				assert.Empty(t, logs)
				return
			}
			require.Len(t, logs, 1)
			assert.Contains(t, logs[0].Message, tt.wantMsg)
		})
	}
}

func TestGormLogger_Trace_ContextFields(t *testing.T) {
	gl, recorded := newObservedGormLogger(t, gormlogger.Info)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-7")
	ctx = context.WithValue(ctx, TenantIDKey, "tenant-9")

	gl.Trace(ctx, time.Now(), func() (string, int64) {
		return "SELECT * FROM suspense_entries", 2
	}, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)

	got := map[string]string{}
	for _, field := range logs[0].Context {
		got[field.Key] = field.String
	}
	assert.Equal(t, "req-7", got["request_id"])
	assert.Equal(t, "tenant-9", got["tenant_id"])
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}
