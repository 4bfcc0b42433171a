package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	slog.SetDefault(slog.New(StdoutHandler()))
}

func StdoutHandler() slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}

// FileHandler writes JSON records to path, rotating at 10 MB and keeping five
// compressed backups for a week. Close the returned io.Closer on shutdown.
func FileHandler(path string) (slog.Handler, io.Closer) {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     7, // days
		Compress:   true,
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}), w
}
