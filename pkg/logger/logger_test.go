package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestSetMode(t *testing.T) {
	SetMode("debug")
	if Level() != zap.DebugLevel {
		t.Fatalf("level = %v, want debug", Level())
	}
	SetMode("release")
	if Level() != zap.InfoLevel {
		t.Fatalf("level = %v, want info", Level())
	}
}
