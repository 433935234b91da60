package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/klokku-calendar/internal/config"
	"github.com/klokku/klokku-calendar/internal/utils"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, the calendar registry, the command loop and the HTTP server.
type Application struct {
	cfg    config.Application
	deps   *Dependencies
	mu     sync.Mutex
	router *mux.Router
	srv    *http.Server
}

// NewApplication constructs the full application, ready to Run() or Serve().
func NewApplication(cfg config.Application) (*Application, error) {
	deps, err := BuildDependencies(cfg, &utils.SystemClock{})
	if err != nil {
		return nil, err
	}

	a := &Application{cfg: cfg, deps: deps}
	a.router = mux.NewRouter()

	// Middleware chain
	SetupMiddleware(a.router, &a.mu)

	// Routes
	RegisterRoutes(a.router, deps)

	a.srv = &http.Server{
		Handler:      a.router,
		Addr:         cfg.Server.Addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

func (a *Application) Router() http.Handler {
	return a.router
}

// Serve starts the HTTP server and blocks until ctx is done.
func (a *Application) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		errCh <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("Shutting down server")
		return a.srv.Shutdown(shutdownCtx)
	}
}
