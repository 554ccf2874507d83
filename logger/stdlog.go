package logger

import (
	"fmt"
	"log/slog"
)

type stdLoggerish struct {
	key string
	log *slog.Logger
}

// NewStdLog wraps a slog.Logger in the subset of the stdlib log
// interface that http.Server and friends want.
func NewStdLog(key string, log *slog.Logger) *stdLoggerish {
	if log == nil {
		log = Setup()
	}
	return &stdLoggerish{
		key: key,
		log: log,
	}
}

func (l stdLoggerish) Println(msg ...interface{}) {
	l.log.Info(l.key, "msg", msg)
}

func (l stdLoggerish) Printf(msg string, args ...interface{}) {
	l.log.Info(l.key, "msg", fmt.Sprintf(msg, args...))
}

func (l stdLoggerish) Print(msg ...interface{}) {
	l.log.Info(l.key, "msg", msg)
}
