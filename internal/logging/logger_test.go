package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerLevels(t *testing.T) {
	quiet := NewLogger(false)
	if quiet.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be disabled without verbose")
	}
	quiet.Close()

	loud := NewLogger(true)
	if !loud.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be enabled with verbose")
	}
	loud.Close()
}

func TestNamedAndWithCarryFields(t *testing.T) {
	core, observed := observer.New(zap.InfoLevel)
	base := &Logger{SugaredLogger: zap.New(core).Sugar()}

	base.Named("pipeline").With("request_id", "req-1").Infow("resolved", "source", "local")

	records := observed.All()
	if len(records) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(records))
	}
	if records[0].LoggerName != "pipeline" {
		t.Errorf("logger name = %q, want pipeline", records[0].LoggerName)
	}
	fields := records[0].ContextMap()
	if fields["request_id"] != "req-1" || fields["source"] != "local" {
		t.Errorf("fields = %v", fields)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Named("x").With("k", "v").Infow("dropped")
	l.Close()
	Nop().Debugw("dropped")
}
