package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel_Conversions(t *testing.T) {
	tests := []struct {
		level LogLevel
		name  string
		slog  slog.Level
	}{
		{LevelDebug, "DEBUG", slog.LevelDebug},
		{LevelInfo, "INFO", slog.LevelInfo},
		{LevelWarn, "WARN", slog.LevelWarn},
		{LevelError, "ERROR", slog.LevelError},
		{LogLevel(42), "UNKNOWN", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.level.String())
			assert.Equal(t, tt.slog, tt.level.SlogLevel())
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{input: "debug", want: LevelDebug},
		{input: " INFO ", want: LevelInfo},
		{input: "", want: LevelInfo},
		{input: "warning", want: LevelWarn},
		{input: "Warn", want: LevelWarn},
		{input: "error", want: LevelError},
		{input: "verbose", want: LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorContains(t, err, "unknown log level")
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitForCLI_SubsystemAndFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelInfo, &buf)
	require.NotNil(t, defaultLogger)

	Debug("Analysis", "edge %s -> %s", "Token", "Subscription")
	Info("Repair", "Applied %d repairs", 3)
	Warn("Walker", "ambiguous node at %s", "items[0]")

	out := buf.String()
	assert.NotContains(t, out, "edge Token")
	assert.Contains(t, out, `msg="Applied 3 repairs"`)
	assert.Contains(t, out, "subsystem=Repair")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "subsystem=Walker")
}

func TestError_AddsErrorAttribute(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelDebug, &buf)

	Error("Workbook", errors.New("disk full"), "Failed to write %s", "a.json")

	assert.Contains(t, buf.String(), `error="disk full"`)
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), `msg="Failed to write a.json"`)
}

func TestMessageWithoutArgsIsNotFormatted(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelInfo, &buf)

	Info("CLI", "100% done")

	assert.Contains(t, buf.String(), `msg="100% done"`)
}
