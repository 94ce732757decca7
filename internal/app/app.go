package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/aetas/aetas/internal/config"
	"github.com/aetas/aetas/internal/database"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const (
	sessionPurgeSchedule = "@hourly"
	shutdownTimeout      = 10 * time.Second
)

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg  config.Application
	db   *pgxpool.Pool
	deps *Dependencies
	srv  *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(ctx context.Context, configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(cfg.Database); err != nil {
		db.Close()
		return nil, err
	}

	deps, err := BuildDependencies(db, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	r := mux.NewRouter()
	SetupMiddleware(r, deps, cfg)
	RegisterRoutes(r, deps, cfg)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Listen,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, db: db, deps: deps, srv: srv}, nil
}

// Run starts the live view worker, the schedules and the HTTP server. It blocks until ctx is
// done and the server has shut down.
func (a *Application) Run(ctx context.Context) error {
	defer a.db.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.deps.LiveHub.Run(ctx)

	scheduler, err := a.deps.LiveHub.ScheduleRollover(a.cfg.Live.RolloverCron)
	if err != nil {
		return err
	}
	defer scheduler.Stop()
	if _, err := scheduler.AddFunc(sessionPurgeSchedule, func() {
		if err := a.deps.AuthService.PurgeExpired(ctx); err != nil {
			log.Error(err)
		}
	}); err != nil {
		return err
	}

	// live streams end with ctx, otherwise Shutdown would wait for them
	a.srv.BaseContext = func(net.Listener) context.Context { return ctx }
	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		errCh <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down server")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
