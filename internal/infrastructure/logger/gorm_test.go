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

func newObservedGormLogger(t *testing.T, observeAt zapcore.Level, gormLevel gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	t.Helper()
	core, recorded := observer.New(observeAt)
	return NewGormLogger(zap.New(core), gormLevel, opts...), recorded
}

func selectListings() (string, int64) {
	return "SELECT * FROM listings", 3
}

func TestNewGormLogger(t *testing.T) {
	gormLog, _ := newObservedGormLogger(t, zapcore.InfoLevel, gormlogger.Info)

	assert.Equal(t, gormlogger.Info, gormLog.logLevel)
	assert.Equal(t, 200*time.Millisecond, gormLog.slowThreshold)
	assert.True(t, gormLog.ignoreRecordNotFoundError)

	var _ gormlogger.Interface = gormLog
}

func TestNewGormLogger_Options(t *testing.T) {
	gormLog, _ := newObservedGormLogger(t, zapcore.InfoLevel, gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithIgnoreRecordNotFoundError(false),
	)

	assert.Equal(t, 500*time.Millisecond, gormLog.slowThreshold)
	assert.False(t, gormLog.ignoreRecordNotFoundError)
}

func TestGormLogger_LogMode(t *testing.T) {
	gormLog, _ := newObservedGormLogger(t, zapcore.InfoLevel, gormlogger.Info)

	lowered := gormLog.LogMode(gormlogger.Warn)

	assert.Equal(t, gormlogger.Info, gormLog.logLevel, "original level is unchanged")
	loweredGorm, ok := lowered.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, loweredGorm.logLevel)
}

func TestGormLogger_Leveled(t *testing.T) {
	t.Run("info passes through", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(t, zapcore.InfoLevel, gormlogger.Info)
		gormLog.Info(context.Background(), "migrated %s", "records")

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "migrated records")
	})

	t.Run("silent suppresses info", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(t, zapcore.InfoLevel, gormlogger.Silent)
		gormLog.Info(context.Background(), "suppressed")

		assert.Empty(t, recorded.All())
	})

	t.Run("warn passes through", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(t, zapcore.WarnLevel, gormlogger.Warn)
		gormLog.Warn(context.Background(), "retrying %d", 2)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
		assert.Contains(t, logs[0].Message, "retrying 2")
	})

	t.Run("error passes through", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(t, zapcore.ErrorLevel, gormlogger.Error)
		gormLog.Error(context.Background(), "connect failed")

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)
	})
}

func TestGormLogger_Trace_Error(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(t, zapcore.ErrorLevel, gormlogger.Error)

	gormLog.Trace(context.Background(), time.Now(), selectListings, errors.New("relation does not exist"))

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "SQL error", logs[0].Message)
}

func TestGormLogger_Trace_RecordNotFoundSuppressed(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(t, zapcore.ErrorLevel, gormlogger.Error,
		WithIgnoreRecordNotFoundError(true))

	gormLog.Trace(context.Background(), time.Now(), selectListings, gormlogger.ErrRecordNotFound)

	assert.Empty(t, recorded.All())
}

func TestGormLogger_Trace_SlowQuery(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(t, zapcore.WarnLevel, gormlogger.Warn,
		WithSlowThreshold(time.Nanosecond))

	begin := time.Now().Add(-time.Second)
	gormLog.Trace(context.Background(), begin, selectListings, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "Slow SQL", logs[0].Message)

	hasThreshold := false
	for _, field := range logs[0].Context {
		if field.Key == "threshold" {
			hasThreshold = true
		}
	}
	assert.True(t, hasThreshold, "threshold should be in log fields")
}

func TestGormLogger_Trace_NormalQuery(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(t, zapcore.DebugLevel, gormlogger.Info)

	gormLog.Trace(context.Background(), time.Now(), selectListings, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "SQL query", logs[0].Message)
}

func TestGormLogger_Trace_Silent(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(t, zapcore.DebugLevel, gormlogger.Silent)

	gormLog.Trace(context.Background(), time.Now(), selectListings, nil)

	assert.Empty(t, recorded.All())
}

func TestGormLogger_Trace_RequestID(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(t, zapcore.DebugLevel, gormlogger.Info)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-77")
	gormLog.Trace(ctx, time.Now(), selectListings, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)

	hasRequestID := false
	for _, field := range logs[0].Context {
		if field.Key == "request_id" {
			hasRequestID = true
			assert.Equal(t, "req-77", field.String)
		}
	}
	assert.True(t, hasRequestID, "request_id should be in log fields")
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
		{"bogus", gormlogger.Warn},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, MapGormLogLevel(tt.level), "level %q", tt.level)
	}
}
