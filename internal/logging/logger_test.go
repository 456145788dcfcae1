package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		mode  string
		level zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"release", zapcore.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			log, err := New(tt.level, tt.mode)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if !log.Core().Enabled(tt.level) {
				t.Errorf("level %v not enabled", tt.level)
			}
			if log.Core().Enabled(tt.level - 1) {
				t.Errorf("level below %v enabled", tt.level)
			}
		})
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
	log, err := New(zapcore.InfoLevel, "debug")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if OrNop(log) != log {
		t.Error("OrNop replaced a non-nil logger")
	}
}
