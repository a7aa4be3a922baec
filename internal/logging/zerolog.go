package logging

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts zerolog to Logger. Key–value args become fields.
type ZerologLogger struct {
	l zerolog.Logger
}

// NewZerologLogger returns a JSON logger tagged with the service name.
func NewZerologLogger(w io.Writer, level string) *ZerologLogger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	l := zerolog.New(w).
		With().
		Timestamp().
		Str("service", "shopkeeper").
		Logger().
		Level(ParseZerologLevel(level))
	return &ZerologLogger{l: l}
}

// ParseZerologLevel maps a textual level to zerolog, defaulting to info.
func ParseZerologLevel(value string) zerolog.Level {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "" {
		return zerolog.InfoLevel
	}
	if lvl, err := zerolog.ParseLevel(s); err == nil && lvl != zerolog.NoLevel {
		return lvl
	}
	return zerolog.InfoLevel
}

func (z *ZerologLogger) Debug(ctx context.Context, msg string, args ...any) {
	withFields(z.l.Debug(), args).Msg(msg)
}

func (z *ZerologLogger) Info(ctx context.Context, msg string, args ...any) {
	withFields(z.l.Info(), args).Msg(msg)
}

func (z *ZerologLogger) Warn(ctx context.Context, msg string, args ...any) {
	withFields(z.l.Warn(), args).Msg(msg)
}

func (z *ZerologLogger) Error(ctx context.Context, msg string, args ...any) {
	withFields(z.l.Error(), args).Msg(msg)
}

func (z *ZerologLogger) With(args ...any) Logger {
	c := z.l.With()
	for i := 0; i < len(args); i += 2 {
		key, val := pair(args, i)
		if err, ok := val.(error); ok {
			c = c.AnErr(key, err)
			continue
		}
		c = c.Interface(key, val)
	}
	return &ZerologLogger{l: c.Logger()}
}

func withFields(e *zerolog.Event, args []any) *zerolog.Event {
	for i := 0; i < len(args); i += 2 {
		key, val := pair(args, i)
		if err, ok := val.(error); ok {
			e = e.AnErr(key, err)
			continue
		}
		e = e.Interface(key, val)
	}
	return e
}

// pair returns the i-th key/value; a dangling key gets a nil value and a
// non-string key is formatted.
func pair(args []any, i int) (string, any) {
	key, ok := args[i].(string)
	if !ok {
		key = fmt.Sprint(args[i])
	}
	if i+1 >= len(args) {
		return key, nil
	}
	return key, args[i+1]
}
