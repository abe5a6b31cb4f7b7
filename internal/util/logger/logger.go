package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	once   sync.Once
	logger *slog.Logger
)

// GetLogger returns the process-wide logger. LOG_FILE_PATH is read straight
// from the environment because config itself logs while loading.
func GetLogger() *slog.Logger {
	once.Do(func() {
		var output io.Writer = os.Stdout

		if path := os.Getenv("LOG_FILE_PATH"); path != "" {
			output = io.MultiWriter(os.Stdout, &lumberjack.Logger{
				Filename:   path,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			})
		}

		logger = slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	})

	return logger
}
