package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/forgevyn/zenzero/internal/config"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Application wires configuration, storage, router, and server lifecycle.
type Application struct {
	cfg     config.Application
	deps    *Dependencies
	storage Storage
	router  *mux.Router
	srv     *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load("./config/application.yaml", ".env")
	if err != nil {
		return nil, err
	}

	storage, err := OpenStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	deps, err := BuildDependencies(ctx, storage, cfg)
	if err != nil {
		storage.Close()
		return nil, err
	}

	return newApplication(cfg, storage, deps), nil
}

func newApplication(cfg config.Application, storage Storage, deps *Dependencies) *Application {
	r := mux.NewRouter()
	SetupMiddleware(r, deps)
	RegisterRoutes(r, deps)

	srv := &http.Server{
		Handler:      r,
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		WriteTimeout: cfg.Advisor.Timeout + 15*time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return &Application{cfg: cfg, deps: deps, storage: storage, router: r, srv: srv}
}

// Run serves HTTP and writes budget snapshots until ctx is cancelled, then shuts the server
// down and flushes pending snapshots before closing the storage.
func (a *Application) Run(ctx context.Context) error {
	defer a.storage.Close()

	ln, err := net.Listen("tcp", a.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.srv.Addr, err)
	}
	return a.serve(ctx, ln)
}

// serve runs the server on ln. The snapshot writer outlives the server so mutations finished by
// in-flight requests during shutdown are still written.
func (a *Application) serve(ctx context.Context, ln net.Listener) error {
	writerCtx, stopWriter := context.WithCancel(context.WithoutCancel(ctx))
	defer stopWriter()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.deps.SnapshotWriter.Run(writerCtx)
	})

	g.Go(func() error {
		log.Infof("Starting server on %s", ln.Addr())
		if err := a.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		defer stopWriter()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return a.srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	// Requests abandoned by a timed out shutdown may still enqueue after the writer stopped.
	a.deps.SnapshotWriter.Flush(context.WithoutCancel(ctx))
	return err
}
