// Package logger предоставляет единый интерфейс логирования сервиса поверх zerolog.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger — интерфейс логгера, который используют все слои приложения.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(err error, format string, args ...any)
}

// ZerologLogger реализует Logger поверх zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger создаёт логгер с уровнем и форматом из переменных окружения LOG_LEVEL и LOG_FORMAT.
func NewZerologLogger() *ZerologLogger {
	return New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Stdout)
}

// New создаёт логгер с явно заданными уровнем, форматом (json|console) и приёмником.
func New(level string, format string, out io.Writer) *ZerologLogger {
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return &ZerologLogger{
		log: zerolog.New(out).Level(lvl).With().Timestamp().Logger(),
	}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(err error, format string, args ...any) {
	l.log.Error().Err(err).Msgf(format, args...)
}

// With возвращает дочерний логгер с дополнительным строковым полем.
func (l *ZerologLogger) With(key string, value string) *ZerologLogger {
	return &ZerologLogger{log: l.log.With().Str(key, value).Logger()}
}

// Nop возвращает логгер, который ничего не пишет. Используется в тестах.
func Nop() *ZerologLogger {
	return &ZerologLogger{log: zerolog.Nop()}
}
