package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Config struct {
	Env    string // development -> okunabilir konsol, diğerleri JSON
	Level  string
	Output io.Writer
}

type Logger struct {
	zl zerolog.Logger
}

func New(cfg Config) *Logger {
	var w io.Writer = cfg.Output
	if w == nil {
		w = os.Stdout
	}
	if strings.EqualFold(cfg.Env, "development") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	zl := zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// Nop testlerde ve logger verilmediğinde kullanılır.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With alt logger oluşturur (ör. component alanı ile).
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger()}
}
