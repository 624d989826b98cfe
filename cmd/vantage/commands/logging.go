package commands

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rpggio/vantage/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger builds the process logger. In stdio mode stdout carries JSON-RPC,
// so console logs go to stderr. A configured log path switches to a rotating
// file.
func newLogger(lc config.LogConfig, transportMode string) (*slog.Logger, io.Closer, error) {
	var (
		w      io.Writer = os.Stdout
		closer io.Closer
	)
	if transportMode == "stdio" {
		w = os.Stderr
	}
	if lc.Path != "" {
		if err := ensureDir(lc.Path); err != nil {
			return nil, nil, err
		}
		rotating := &lumberjack.Logger{
			Filename:   lc.Path,
			MaxSize:    lc.MaxSizeMB, // megabytes
			MaxBackups: lc.MaxBackups,
			Compress:   true,
		}
		w, closer = rotating, rotating
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLogLevel(lc.Level),
	}))
	return logger, closer, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ensureDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
