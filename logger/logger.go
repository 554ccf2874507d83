package logger

import (
	"context"
	"log"
	"log/slog"
	"os"
	"sync"
)

var rootLogger *slog.Logger
var setup sync.Once

// Setup configures the process wide default logger. The first
// call wins; later calls return the same logger.
func Setup() *slog.Logger {

	setup.Do(func() {

		var programLevel = new(slog.LevelVar) // Info by default

		if len(os.Getenv("LOVEBOT_DEBUG")) > 0 {
			programLevel.Set(slog.LevelDebug)
		}

		logOptions := &slog.HandlerOptions{Level: programLevel}

		if len(os.Getenv("INVOCATION_ID")) > 0 {
			// don't add timestamps when running under systemd
			log.Default().SetFlags(0)

			logReplace := func(groups []string, a slog.Attr) slog.Attr {
				// Remove time
				if a.Key == slog.TimeKey && len(groups) == 0 {
					a.Key = ""
					a.Value = slog.AnyValue(nil)
				}
				return a
			}

			logOptions.ReplaceAttr = logReplace
		}

		logHandler := slog.NewTextHandler(os.Stderr, logOptions)

		log := slog.New(logHandler)

		slog.SetDefault(log)

		rootLogger = log

	})

	return rootLogger
}

type loggerKey struct{}

// NewContext adds the logger to the context.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext retrieves a logger from the context. If there is none,
// it returns the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return Setup()
}
