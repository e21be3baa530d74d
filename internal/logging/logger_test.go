package logging

import (
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewWritesToProjectLogFile(t *testing.T) {
	projectDir := t.TempDir()
	logger, err := New(Options{ProjectDir: projectDir})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("lead saved", zap.Int64("lead_id", 4))
	logger.Debug("hidden at info level")
	_ = logger.Sync()

	data, err := os.ReadFile(Path(projectDir))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, `"msg":"lead saved"`) || !strings.Contains(text, `"lead_id":4`) {
		t.Fatalf("expected structured entry, got %q", text)
	}
	if strings.Contains(text, "hidden at info level") {
		t.Fatalf("debug entry should be filtered at info level")
	}
}

func TestNewVerboseKeepsDebug(t *testing.T) {
	projectDir := t.TempDir()
	logger, err := New(Options{ProjectDir: projectDir, Verbose: true})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("request finished")
	_ = logger.Sync()

	data, err := os.ReadFile(Path(projectDir))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "request finished") {
		t.Fatalf("expected debug entry in verbose mode")
	}
}
