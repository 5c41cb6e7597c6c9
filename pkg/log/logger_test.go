package log

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestTestLoggerCapturesFields(t *testing.T) {
	logger, buffer := NewTestLogger(LevelDebug)

	logger.Info("stability path started",
		ModelNameKey, "STABL",
		SamplesKey, 50,
		FeaturesKey, 20,
	)

	line := strings.TrimSpace(buffer.String())
	var record map[string]interface{}
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		t.Fatalf("captured output is not valid JSON: %v", err)
	}

	if record["message"] != "stability path started" {
		t.Errorf("message = %v", record["message"])
	}
	if record[ModelNameKey] != "STABL" {
		t.Errorf("%s = %v, want STABL", ModelNameKey, record[ModelNameKey])
	}
	if record[SamplesKey] != float64(50) {
		t.Errorf("%s = %v, want 50", SamplesKey, record[SamplesKey])
	}
}

func TestTestLoggerLevelFiltering(t *testing.T) {
	logger, buffer := NewTestLogger(LevelWarn)

	logger.Debug("hidden")
	logger.Info("also hidden")
	logger.Warn("visible")

	out := buffer.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug/info output should be filtered: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn output should be captured: %q", out)
	}
}

func TestTestLoggerWith(t *testing.T) {
	logger, buffer := NewTestLogger(LevelInfo)

	contextual := logger.With(ComponentKey, "stabl")
	contextual.Info("fit finished")

	if !strings.Contains(buffer.String(), `"ml.component":"stabl"`) {
		t.Errorf("pre-populated field missing: %q", buffer.String())
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestZerologProviderEnabled(t *testing.T) {
	SetLevel(LevelInfo)
	logger := GetLogger()

	if logger.Enabled(context.Background(), LevelDebug) {
		t.Error("debug should be disabled at info level")
	}
	if !logger.Enabled(context.Background(), LevelError) {
		t.Error("error should be enabled at info level")
	}
}
