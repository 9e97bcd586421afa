package logging

import (
	"bytes"
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelInfo))

	logger.Info("analysis started", "run_id", "abc", "turns", 5)

	line := buf.String()
	assert.Regexp(t, regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] \[INFO\] analysis started`), line)
	assert.Contains(t, line, `run_id="abc"`)
	assert.Contains(t, line, "turns=5")
	assert.Equal(t, byte('\n'), line[len(line)-1])
}

func TestHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	lv := new(slog.LevelVar)
	lv.Set(slog.LevelWarn)
	logger := slog.New(NewHandler(&buf, lv))

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	lv.Set(slog.LevelDebug)
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "[DEBUG] shown")
}

func TestHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelInfo)).With("run_id", "r1").WithGroup("tool")

	logger.Warn("call failed", "name", "get_device_status", slog.Group("err", "code", 500))

	line := buf.String()
	assert.Contains(t, line, `run_id="r1"`)
	assert.Contains(t, line, `tool.name="get_device_status"`)
	assert.Contains(t, line, "tool.err.code=500")
}

func TestSetup(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	lv := Setup(&buf, slog.LevelError)

	slog.Warn("dropped")
	assert.Empty(t, buf.String())

	lv.Set(slog.LevelInfo)
	slog.Info("kept")
	assert.Contains(t, buf.String(), "kept")
}
