package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	fl, err := NewFileLogger(path, LevelInfo)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}

	fl.Info("store opened at %s", "/data/app.db")
	fl.Debug("below threshold")
	if err := fl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "store opened at /data/app.db") {
		t.Errorf("log file missing info entry: %s", out)
	}
	if !strings.Contains(out, "[INFO]") {
		t.Errorf("log file missing level tag: %s", out)
	}
	if strings.Contains(out, "below threshold") {
		t.Errorf("debug entry should be filtered at info level: %s", out)
	}
}
