package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Lukeeddleman/loadoutlab-site/internal/auth"
	"github.com/Lukeeddleman/loadoutlab-site/internal/catalog"
	"github.com/Lukeeddleman/loadoutlab-site/internal/config"
	"github.com/Lukeeddleman/loadoutlab-site/internal/forge"
	"github.com/Lukeeddleman/loadoutlab-site/internal/handlers"
	"github.com/Lukeeddleman/loadoutlab-site/internal/logger"
	"github.com/Lukeeddleman/loadoutlab-site/internal/metrics"
	"github.com/Lukeeddleman/loadoutlab-site/internal/repository"
	"github.com/Lukeeddleman/loadoutlab-site/internal/services"
	"github.com/Lukeeddleman/loadoutlab-site/internal/sessions"
	"github.com/Lukeeddleman/loadoutlab-site/internal/websocket"
)

// Background task intervals
const (
	SessionSweepInterval = time.Minute
	RevocationPruneEvery = 10 * time.Minute
	PresenceInterval     = 5 * time.Second
	ShutdownTimeout      = 10 * time.Second
)

// App holds all application dependencies
type App struct {
	cfg      *config.Config
	log      logger.Logger
	handlers *handlers.Handlers
	repo     *repository.Repository
	builds   *services.BuildService
	sessions *sessions.Manager
	baseURL  string
	cancel   context.CancelFunc
}

// ForgeOptions translates the configuration into store options
func ForgeOptions(cfg *config.Config) []forge.Option {
	var opts []forge.Option
	if cfg.StrictPlatform {
		opts = append(opts, forge.WithStrictPlatform())
	}
	if cfg.EnforceDependencies {
		opts = append(opts, forge.WithDependencyGating())
	}
	return opts
}

// LoadCatalog returns the catalog named by the configuration, or the
// embedded sample catalog
func LoadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogFile == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(cfg.CatalogFile)
}

// New creates and initializes a new application instance
func New(cfg *config.Config, log logger.Logger, templatesFS, staticFS fs.FS) (*App, error) {
	cat, err := LoadCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	repo, err := repository.New(cfg.DB)
	if err != nil {
		return nil, err
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = auth.GenerateSecret()
		log.Warn("No jwt_secret configured; sessions will not survive a restart")
	}
	userAuth := auth.New(secret, cfg.SessionTTL)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.InitMetrics(reg)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s:%d", lanAddress(realNetworkProvider{}), cfg.Port)
	}

	opts := ForgeOptions(cfg)

	// Initialize services
	accountService := services.NewAccountService(log, repo, userAuth)
	accountService.SetMetrics(m)
	buildService := services.NewBuildService(log, repo, cat, opts...)
	buildService.SetMetrics(m)
	buildService.SetBaseURL(baseURL)

	sess := sessions.NewManager(log, cat, cfg.ForgeSessionTTL, opts...)
	sess.SetSecureCookies(cfg.SecureCookies)

	// Initialize WebSocket hub with DI
	hub := websocket.New(log, buildService)
	hub.Start()
	buildService.SetBroadcaster(hub)

	m.RegisterGauge("forge_sessions", "Live forge sessions.", func() float64 { return float64(sess.Len()) })
	m.RegisterGauge("feed_clients", "Connected build feed clients.", func() float64 { return float64(hub.ClientCount()) })

	ctx, cancel := context.WithCancel(context.Background())

	seeded, err := buildService.SeedTemplates(ctx)
	if err != nil {
		cancel()
		repo.Close()
		return nil, fmt.Errorf("failed to seed templates: %w", err)
	}
	if seeded > 0 {
		log.Debug("Templates ready", "count", seeded)
	}

	staticServer := handlers.NewStaticServer(staticFS)

	h, err := handlers.New(
		accountService,
		buildService,
		cat,
		sess,
		templatesFS,
		staticServer,
		userAuth,
		hub,
		m,
		metrics.Handler(reg),
		log,
	)
	if err != nil {
		cancel()
		repo.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	go sess.StartSweeper(ctx, SessionSweepInterval)
	go hub.StartPresence(ctx, PresenceInterval)
	go pruneRevoked(ctx, log, userAuth, RevocationPruneEvery)

	return &App{
		cfg:      cfg,
		log:      log,
		handlers: h,
		repo:     repo,
		builds:   buildService,
		sessions: sess,
		baseURL:  baseURL,
		cancel:   cancel,
	}, nil
}

// pruneRevoked drops expired entries from the sign-out list until ctx is cancelled
func pruneRevoked(ctx context.Context, log logger.Logger, a *auth.Auth, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.PruneRevoked(); n > 0 {
				log.Debug("Pruned revoked tokens", "count", n)
			}
		}
	}
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// BaseURL is the public address used in share links
func (a *App) BaseURL() string {
	return a.baseURL
}

// Close stops background work and closes the database
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.repo != nil {
		a.repo.Close()
	}
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down gracefully
func (a *App) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Server starting", "addr", addr, "url", a.baseURL)
		a.log.Info("Forge URL", "url", a.baseURL+"/forge")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
