package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/cluckhub/cluckhub/config"
	"github.com/cluckhub/cluckhub/internal/domain"
	httpHandler "github.com/cluckhub/cluckhub/internal/http"
	"github.com/cluckhub/cluckhub/internal/http/middleware"
	"github.com/cluckhub/cluckhub/internal/repository"
	"github.com/cluckhub/cluckhub/internal/service"
	"github.com/cluckhub/cluckhub/pkg/blob"
	"github.com/cluckhub/cluckhub/pkg/logger"
	"github.com/cluckhub/cluckhub/pkg/mailer"
)

// AppInterface defines the interface for the App
type AppInterface interface {
	Initialize() error
	Start() error
	Shutdown(ctx context.Context) error

	// Getters for app components accessed in tests
	GetConfig() *config.Config
	GetLogger() logger.Logger
	GetMux() *http.ServeMux
	GetStore() blob.Store
	GetMailer() mailer.Mailer

	// Methods for initialization steps
	InitStore() error
	InitMailer() error
	InitRepositories() error
	InitServices() error
	InitHandlers() error
}

// App encapsulates the application dependencies and configuration
type App struct {
	config *config.Config
	logger logger.Logger
	store  blob.Store
	mailer mailer.Mailer

	// Repositories
	accountRepo domain.AccountRepository
	farmRepo    domain.FarmRepository
	dataRepo    *repository.BlobDataRepository

	// Services
	authService      *service.AuthService
	farmService      *service.FarmService
	farmDataService  *service.FarmDataService
	userDataService  *service.UserDataService
	profileService   *service.ProfileService
	calendarService  *service.CalendarService
	digestService    *service.DigestService
	migrationService *service.MigrationService

	// HTTP
	mux    *http.ServeMux
	server *http.Server

	serverMu sync.RWMutex

	// Background digest job
	digestCancel context.CancelFunc
	digestWg     sync.WaitGroup
}

// AppOption defines a functional option for configuring the App
type AppOption func(*App)

// WithMockStore configures the app to use a pre-built blob store
func WithMockStore(store blob.Store) AppOption {
	return func(a *App) {
		a.store = store
	}
}

// WithMockMailer configures the app to use a mock mailer
func WithMockMailer(m mailer.Mailer) AppOption {
	return func(a *App) {
		a.mailer = m
	}
}

// WithLogger sets a custom logger
func WithLogger(logger logger.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, opts ...AppOption) *App {
	app := &App{
		config: cfg,
		logger: logger.NewLogger(cfg.LogLevel),
		mux:    http.NewServeMux(),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

var _ AppInterface = (*App)(nil)

// InitStore opens the configured blob store backend.
func (a *App) InitStore() error {
	// Skip if store already set (e.g., by mock)
	if a.store != nil {
		return nil
	}

	switch a.config.Storage.Driver {
	case config.StorageDriverMemory:
		a.store = blob.NewMemoryStore()
		a.logger.Info("Using in-memory blob store")

	case config.StorageDriverBolt:
		store, err := blob.NewBoltStore(a.config.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open bolt store: %w", err)
		}
		a.store = store
		a.logger.WithField("data_dir", a.config.Storage.DataDir).Info("Using bolt blob store")

	case config.StorageDriverPostgres:
		db, err := sql.Open("postgres", a.config.Database.DSN())
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return fmt.Errorf("failed to ping postgres: %w", err)
		}
		store, err := blob.NewPostgresStore(db)
		if err != nil {
			db.Close()
			return fmt.Errorf("failed to initialize postgres store: %w", err)
		}
		a.store = store
		a.logger.WithField("db_host", a.config.Database.Host).Info("Using postgres blob store")

	default:
		return fmt.Errorf("unknown storage driver %q", a.config.Storage.Driver)
	}

	return nil
}

// InitMailer initializes the mailer service
func (a *App) InitMailer() error {
	// Skip if mailer already set (e.g., by mock)
	if a.mailer != nil {
		return nil
	}

	mailerConfig := &mailer.Config{
		SMTPHost:     a.config.SMTP.Host,
		SMTPPort:     a.config.SMTP.Port,
		SMTPUsername: a.config.SMTP.Username,
		SMTPPassword: a.config.SMTP.Password,
		FromEmail:    a.config.SMTP.FromEmail,
		FromName:     a.config.SMTP.FromName,
	}

	if !mailerConfig.IsConfigured() {
		a.mailer = mailer.NewNoOpMailer()
		a.logger.Info("SMTP not configured, reminder digests disabled")
		return nil
	}

	a.mailer = mailer.NewSMTPMailer(mailerConfig)
	a.logger.WithField("smtp_host", a.config.SMTP.Host).Info("Using SMTP mailer")
	return nil
}

// InitRepositories initializes all repositories
func (a *App) InitRepositories() error {
	if a.store == nil {
		return fmt.Errorf("store must be initialized before repositories")
	}

	a.accountRepo = repository.NewBlobAccountRepository(a.store)
	a.farmRepo = repository.NewBlobFarmRepository(a.store)
	a.dataRepo = repository.NewBlobDataRepository(a.store)

	return nil
}

// InitServices initializes all application services
func (a *App) InitServices() error {
	var err error
	a.authService, err = service.NewAuthService(service.AuthServiceConfig{
		Repository: a.accountRepo,
		PrivateKey: a.config.Security.PasetoPrivateKeyBytes,
		PublicKey:  a.config.Security.PasetoPublicKeyBytes,
		Logger:     a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize auth service: %w", err)
	}

	a.farmService = service.NewFarmService(a.farmRepo, a.logger)
	a.farmDataService = service.NewFarmDataService(a.farmRepo, a.dataRepo, a.logger)
	a.userDataService = service.NewUserDataService(a.dataRepo, a.logger)
	a.profileService = service.NewProfileService(a.dataRepo, a.logger)
	a.calendarService = service.NewCalendarService(a.farmRepo, a.dataRepo)
	a.migrationService = service.NewMigrationService(a.store, a.dataRepo, a.logger)

	location, err := time.LoadLocation(a.config.Digest.Timezone)
	if err != nil {
		return fmt.Errorf("invalid digest timezone %q: %w", a.config.Digest.Timezone, err)
	}
	a.digestService = service.NewDigestService(a.farmRepo, a.dataRepo, a.mailer, location, a.logger)

	return nil
}

// InitHandlers initializes all HTTP handlers and routes
func (a *App) InitHandlers() error {
	// Create a new ServeMux to avoid route conflicts on restart
	a.mux = http.NewServeMux()

	auth := middleware.NewAuth(a.authService)
	secureCookies := a.config.Server.SSL.Enabled

	authHandler := httpHandler.NewAuthHandler(a.authService, auth, secureCookies, a.logger)
	farmHandler := httpHandler.NewFarmHandler(a.farmService, auth, a.logger)
	farmDataHandler := httpHandler.NewFarmDataHandler(a.farmDataService, auth, a.logger)
	userDataHandler := httpHandler.NewUserDataHandler(a.userDataService, auth, a.logger)
	profileHandler := httpHandler.NewProfileHandler(a.profileService, auth, a.logger)
	icsHandler := httpHandler.NewICSHandler(a.calendarService, auth, a.logger)
	migrationHandler := httpHandler.NewMigrationHandler(a.migrationService, auth, a.logger)

	authHandler.RegisterRoutes(a.mux)
	farmHandler.RegisterRoutes(a.mux)
	farmDataHandler.RegisterRoutes(a.mux)
	userDataHandler.RegisterRoutes(a.mux)
	profileHandler.RegisterRoutes(a.mux)
	icsHandler.RegisterRoutes(a.mux)
	migrationHandler.RegisterRoutes(a.mux)

	return nil
}

// Initialize runs all initialization steps in order.
func (a *App) Initialize() error {
	if err := a.InitStore(); err != nil {
		return err
	}
	if err := a.InitMailer(); err != nil {
		return err
	}
	if err := a.InitRepositories(); err != nil {
		return err
	}
	if err := a.InitServices(); err != nil {
		return err
	}
	return a.InitHandlers()
}

// Start starts the HTTP server and the digest scheduler. It blocks until the
// server stops.
func (a *App) Start() error {
	handler := middleware.CORS(a.mux)

	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	a.logger.WithField("address", addr).
		WithField("storage_driver", a.config.Storage.Driver).
		Info("Server starting")

	a.serverMu.Lock()
	a.server = &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	a.serverMu.Unlock()

	a.startDigestScheduler()

	if a.config.Server.SSL.Enabled {
		a.logger.WithField("cert_file", a.config.Server.SSL.CertFile).Info("SSL enabled")
		return a.server.ListenAndServeTLS(a.config.Server.SSL.CertFile, a.config.Server.SSL.KeyFile)
	}

	return a.server.ListenAndServe()
}

// startDigestScheduler runs the reminder digest on the configured interval.
func (a *App) startDigestScheduler() {
	interval := time.Duration(a.config.Digest.IntervalHours) * time.Hour
	if interval <= 0 {
		a.logger.Info("Digest scheduler disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.digestCancel = cancel

	a.digestWg.Add(1)
	go func() {
		defer a.digestWg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		a.logger.WithField("interval", interval.String()).Info("Digest scheduler started")
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := a.digestService.Run(ctx); err != nil {
					a.logger.WithField("error", err.Error()).Error("Reminder digest run failed")
				}
			}
		}
	}()
}

// Shutdown gracefully shuts down the server
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Starting graceful shutdown...")

	if a.digestCancel != nil {
		a.digestCancel()
		a.digestWg.Wait()
	}

	a.serverMu.RLock()
	server := a.server
	a.serverMu.RUnlock()

	var shutdownErr error
	if server != nil {
		if err := server.Shutdown(ctx); err != nil {
			a.logger.WithField("error", err.Error()).Error("HTTP server shutdown failed")
			shutdownErr = err
		}
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.WithField("error", err.Error()).Error("Blob store close failed")
			if shutdownErr == nil {
				shutdownErr = err
			}
		}
	}

	if shutdownErr == nil {
		a.logger.Info("Graceful shutdown completed")
	}
	return shutdownErr
}

// GetConfig returns the application configuration
func (a *App) GetConfig() *config.Config { return a.config }

// GetLogger returns the application logger
func (a *App) GetLogger() logger.Logger { return a.logger }

// GetMux returns the HTTP request multiplexer
func (a *App) GetMux() *http.ServeMux { return a.mux }

// GetStore returns the blob store
func (a *App) GetStore() blob.Store { return a.store }

// GetMailer returns the mailer
func (a *App) GetMailer() mailer.Mailer { return a.mailer }
