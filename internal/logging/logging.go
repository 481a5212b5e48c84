// Package logging builds the application logger and carries it, with the
// acting user, on a context.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// New returns a logger that writes JSON to file, or to stderr when file
// is empty. Stdout is left to command output.
//
// The level parameter can be one of: trace, debug, info, warn, error,
// fatal, panic, or disabled.
func New(level string, file string) (zerolog.Logger, func(), error) {
	closer := func() {}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, closer, fmt.Errorf("parse log level: %w", err)
	}

	var writer io.Writer = os.Stderr
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return zerolog.Logger{}, closer, fmt.Errorf("create logs dir: %w", err)
		}

		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Logger{}, closer, fmt.Errorf("open log file: %w", err)
		}
		closer = func() { _ = f.Close() }
		writer = f
	}

	l := zerolog.New(writer).
		With().
		Timestamp().
		Logger().
		Level(lvl)

	return l, closer, nil
}

type userKey struct{}

// WithUser stores userID on ctx and attaches a logger tagged with it.
func WithUser(ctx context.Context, log zerolog.Logger, userID string) context.Context {
	l := log.With().Str("user", userID).Logger()
	ctx = l.WithContext(ctx)
	return context.WithValue(ctx, userKey{}, userID)
}

// User returns the user stored by WithUser, or "".
func User(ctx context.Context) string {
	u, _ := ctx.Value(userKey{}).(string)
	return u
}

// Ctx returns the logger on ctx. It is disabled when none was attached.
func Ctx(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
