package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/linemk/remeras-order/internal/app"
	"github.com/linemk/remeras-order/internal/config"
	"github.com/linemk/remeras-order/internal/lib/logger"
	"github.com/pkg/errors"
)

func main() {
	// .env нужен только локально, в окружении переменные задаются напрямую
	_ = godotenv.Load()

	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app",
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("export", cfg.Export.Mode),
	)

	// загружаем объект приложения: хранилища и отправитель писем
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.Close()

	// чистка просроченных сессий до остановки сервера
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go application.Janitor().Run(janitorCtx)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      application.Router(),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout + cfg.Mail.Timeout, // отправка письма идёт внутри запроса
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", errors.Wrap(err, "shutdown")))
	}
	log.Info("server gracefully stopped")
}
