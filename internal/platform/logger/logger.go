// Package logger envuelve zerolog con helpers de contexto usados por
// middleware y repositorios.
package logger

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger embebe zerolog.Logger para exponer su API completa y permitir
// agregar helpers propios sin tocar el tipo upstream.
type Logger struct {
	zerolog.Logger
}

// New construye el logger del proceso en formato JSON hacia stdout.
// level acepta debug|info|warn|error (default info).
func New(app, level string) *Logger {
	zerolog.SetGlobalLevel(parseLevel(level))

	l := zerolog.New(os.Stdout).With().
		Str("app", app).
		Timestamp().
		Logger()

	return &Logger{l}
}

// Nop devuelve un logger que descarta todo. Para tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// WithContext adjunta el logger al contexto (zerolog.Ctx lo recupera).
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}

// FromContext recupera el logger request-scoped del contexto.
// Si no hay ninguno, zerolog devuelve su logger global, nunca nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}

// FromRequest recupera el logger adjuntado al request por el middleware.
func FromRequest(r *http.Request) *Logger {
	return &Logger{*log.Ctx(r.Context())}
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
