package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kingrea/leads-admin/internal/config"
)

// LogFileName is the file inside .leads/logs that receives TUI logs so the
// terminal stays clean and failures can be inspected afterwards.
const LogFileName = "leads.log"

// Options selects the sink and verbosity.
type Options struct {
	// ProjectDir roots the .leads/logs directory. Empty means log to stderr.
	ProjectDir string
	Verbose    bool
}

// New builds a zap logger. With a ProjectDir it appends JSON lines to
// .leads/logs/leads.log; otherwise it writes console output to stderr.
func New(opts Options) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Verbose {
		level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	if opts.ProjectDir == "" {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = level
		cfg.DisableStacktrace = true
		logger, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("logging: build console logger: %w", err)
		}
		return logger, nil
	}

	logPath := Path(opts.ProjectDir)
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.OutputPaths = []string{logPath}
	cfg.ErrorOutputPaths = []string{logPath}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build file logger: %w", err)
	}
	return logger, nil
}

// Path returns the log file location for projectDir.
func Path(projectDir string) string {
	return filepath.Join(projectDir, config.LeadsDir, "logs", LogFileName)
}
