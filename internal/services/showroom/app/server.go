// Package app wires the showroom runtime and HTTP lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/verisim/verisim/internal/platform/config"
	"github.com/verisim/verisim/internal/services/showroom/api/rest"
	"github.com/verisim/verisim/internal/services/showroom/auth"
	"github.com/verisim/verisim/internal/services/showroom/catalog"
	"github.com/verisim/verisim/internal/services/showroom/simulation"
	"github.com/verisim/verisim/internal/services/showroom/storage/files"
	"github.com/verisim/verisim/internal/services/showroom/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

type serverEnv struct {
	DBPath      string `env:"VERISIM_SHOWROOM_DB_PATH"`
	UploadsDir  string `env:"VERISIM_SHOWROOM_UPLOADS_DIR"`
	TokenSecret string `env:"VERISIM_AUTH_TOKEN_SECRET"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "showroom.db")
	}
	if strings.TrimSpace(cfg.UploadsDir) == "" {
		cfg.UploadsDir = filepath.Join("data", "uploads")
	}
	if strings.TrimSpace(cfg.TokenSecret) == "" {
		cfg.TokenSecret = "dev-only-secret"
		log.Println("VERISIM_AUTH_TOKEN_SECRET not set, using development secret")
	}
	return cfg
}

// Server hosts the showroom HTTP API and storage lifecycle.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *sqlite.Store
}

// New creates a configured showroom server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured showroom server for the provided address.
func NewWithAddr(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	env := loadServerEnv()
	store, err := openShowroomStore(env.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}
	models, err := files.NewStore(env.UploadsDir)
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, err
	}

	authService, err := auth.NewService(store, []byte(env.TokenSecret))
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, err
	}
	catalogService := catalog.NewService(catalog.Stores{
		Product:        store,
		Scenario:       store,
		Characteristic: store,
	}, models)
	simulationService := simulation.NewService(simulation.Stores{
		User:     store,
		Product:  store,
		Scenario: store,
		Session:  store,
	})

	handler := rest.NewHandler(authService, catalogService, simulationService)
	httpServer := &http.Server{
		Handler:           otelhttp.NewHandler(handler.Router(), "showroom"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		listener:   listener,
		httpServer: httpServer,
		store:      store,
	}, nil
}

// Run starts a showroom server on the provided port and blocks until
// the context is cancelled.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Start(ctx)
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(s.listener)
	}()
	log.Printf("showroom server listening on %s", s.Addr())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("http shutdown: %v", err)
		}
		<-errCh
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.closeStore()
			return fmt.Errorf("serve http: %w", err)
		}
	}

	s.closeStore()
	return nil
}

func (s *Server) closeStore() {
	if err := s.store.Close(); err != nil {
		log.Printf("close store: %v", err)
	}
}

func openShowroomStore(dbPath string) (*sqlite.Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	store, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open showroom store: %w", err)
	}
	return store, nil
}
