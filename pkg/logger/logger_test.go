package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sectorlens/pkg/config"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	return &Logger{zlog: zerolog.New(buf).With().Timestamp().Logger()}
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output should be JSON")
	return entry
}

func TestNewWithWriter_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(&buf, &config.Config{Env: "development", LogLevel: tt.level, LogFormat: "json"})
			require.NotNil(t, log)
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	tests := []struct {
		name      string
		logFunc   func()
		wantMsg   string
		wantLevel string
	}{
		{"debug", func() { log.Debug("sector skipped") }, "sector skipped", "debug"},
		{"info", func() { log.Info("run started") }, "run started", "info"},
		{"warn", func() { log.Warn("low confidence sector") }, "low confidence sector", "warn"},
		{"error", func() { log.Error("stage failed") }, "stage failed", "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc()

			entry := decode(t, &buf)
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, tt.wantMsg, entry["message"])
		})
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.WithComponent("fundamental").
		WithFields(map[string]interface{}{
			"sector_code":  "BANK",
			"ticker_count": 2,
		}).
		WithField("report_date", "2024-03-31").
		Info("sector aggregated")

	entry := decode(t, &buf)
	assert.Equal(t, "fundamental", entry["component"])
	assert.Equal(t, "BANK", entry["sector_code"])
	assert.Equal(t, float64(2), entry["ticker_count"])
	assert.Equal(t, "2024-03-31", entry["report_date"])
}

func TestWithSector(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.WithSector("BANK", time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)).Debug("no scorable metrics")
	entry := decode(t, &buf)
	assert.Equal(t, "BANK", entry["sector"])
	assert.Equal(t, "2024-03-31", entry["date"])

	buf.Reset()
	log.WithSector("BANK", time.Time{}).Warn("TTM disabled for sector")
	entry = decode(t, &buf)
	assert.Equal(t, "BANK", entry["sector"])
	_, hasDate := entry["date"]
	assert.False(t, hasDate)
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.WithError(errors.New("metric_observations.csv: no such file")).Error("FA branch failed")

	entry := decode(t, &buf)
	assert.Equal(t, "metric_observations.csv: no such file", entry["error"])
	assert.Equal(t, "FA branch failed", entry["message"])
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, &config.Config{Env: "development", LogLevel: "info", LogFormat: "console"})
	log.Info("run started")

	assert.True(t, strings.Contains(buf.String(), "run started"))
}

func TestNop(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() {
		log.WithField("sector_code", "BANK").Warn("discarded")
	})
}
