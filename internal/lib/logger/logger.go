package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/linemk/remeras-order/internal/lib/logger/handlers/slogpretty"
)

const serviceName = "remeras-order"

// окружения из config.env
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvTest  = "test"
)

// SetupLogger логгер процесса, пишет в stdout
func SetupLogger(env string) *slog.Logger {
	return New(env, os.Stdout)
}

// New выбирает обработчик по окружению: local цветной, test только ошибки,
// остальные JSON. Каждая запись помечена именем сервиса.
func New(env string, out io.Writer) *slog.Logger {
	var handler slog.Handler

	switch env {
	case EnvLocal:
		color.NoColor = false
		opts := slogpretty.PrettyHandlerOptions{
			SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug},
		}
		handler = opts.NewPrettyHandler(out)
	case EnvDev:
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug})
	case EnvTest:
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelError})
	default:
		// prod и неизвестные значения
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	return slog.New(handler).With(slog.String("service", serviceName))
}
