package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/linemk/remeras-order/internal/app/handlers"
	"github.com/linemk/remeras-order/internal/config"
	"github.com/linemk/remeras-order/internal/export"
	"github.com/linemk/remeras-order/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/remeras-order/internal/lib/logger/handlers/urllog"
	"github.com/linemk/remeras-order/internal/mailer"
	"github.com/linemk/remeras-order/internal/service"
	"github.com/linemk/remeras-order/internal/storage"
)

type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	DB         *sql.DB // nil при storage.driver=memory
	Sessions   storage.SessionStorage
	Dispatches storage.DispatchStorage
	Sender     mailer.Sender
}

// NewApp создаёт новый экземпляр App: хранилища по storage.driver и отправителя писем
func NewApp(log *slog.Logger, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	app := &App{
		Config: cfg,
		Logger: log,
	}

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := openDB(cfg.Database)
		if err != nil {
			return nil, err
		}
		app.DB = db
		app.Sessions = storage.NewSessionRepository(db)
		app.Dispatches = storage.NewDispatchRepository(db)
	default:
		app.Sessions = storage.NewMemorySessionRepository()
		app.Dispatches = storage.NewMemoryDispatchRepository()
	}

	if cfg.Mail.DryRun {
		log.Warn("mail dry run enabled, orders will not be delivered")
		app.Sender = mailer.NewLogSender(log)
	} else {
		app.Sender = mailer.NewSMTPSender(log, cfg.Mail)
	}

	return app, nil
}

func openDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	// реализуем подключение к БД через DSN
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Close освобождает подключение к БД, если оно есть
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// Janitor чистильщик просроченных сессий; журнал в памяти хранится не дольше TTL сессии
func (a *App) Janitor() *service.Janitor {
	return service.NewJanitor(a.Logger, a.Sessions, a.Dispatches, a.Config.Session.CleanupInterval, a.Config.Session.TTL)
}

// Router собирает сервисы и http-маршруты
func (a *App) Router() http.Handler {
	cfg := a.Config

	sessionService := service.NewSessionService(a.Logger, a.Sessions, cfg.Session.TTL, cfg.Session.Secret)
	submitService := service.NewSubmitService(a.Logger, a.Sessions, a.Dispatches, a.Sender, cfg.Mail, export.Options{
		Mode:     cfg.Export.Mode,
		TempDir:  cfg.Export.TempDir,
		FileName: cfg.Export.FileName,
	})

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(a.Logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// справочники для отрисовки формы
	router.Get("/api/catalog", handlers.CatalogHandler(a.Logger))
	// открытие новой формы, в ответе токен сессии
	router.Post("/api/session", handlers.StartSessionHandler(a.Logger, sessionService))

	router.Group(func(r chi.Router) {
		r.Use(jwtmiddleware.NewJWTMiddleware(cfg.Session.Secret))

		r.Get("/api/session", handlers.GetSessionHandler(a.Logger, sessionService))
		r.Put("/api/session/intake", handlers.UpdateIntakeHandler(a.Logger, sessionService))
		r.Put("/api/session/details", handlers.UpdateDetailsHandler(a.Logger, sessionService))
		r.Post("/api/session/submit", handlers.SubmitHandler(a.Logger, submitService))
		r.Get("/api/session/dispatches", handlers.HistoryHandler(a.Logger, submitService))
		r.Delete("/api/session", handlers.EndSessionHandler(a.Logger, sessionService))
	})

	return router
}
