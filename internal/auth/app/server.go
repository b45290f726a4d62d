// Package server wires the auth service together and runs it.
package server

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

	"github.com/zdangz/ToDoApp-Group5/internal/auth/api/httpapi"
	"github.com/zdangz/ToDoApp-Group5/internal/auth/ceremony"
	"github.com/zdangz/ToDoApp-Group5/internal/auth/challenge"
	"github.com/zdangz/ToDoApp-Group5/internal/auth/passkey"
	"github.com/zdangz/ToDoApp-Group5/internal/auth/session"
	authsqlite "github.com/zdangz/ToDoApp-Group5/internal/auth/storage/sqlite"
)

const challengeCleanupInterval = time.Minute

// Server hosts the auth HTTP service.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *authsqlite.Store
	challenges *challenge.Store
}

// New creates a configured auth server listening on the provided address.
func New(addr, dbPath string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	store, err := openAuthStore(dbPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	sessionConfig := session.LoadConfigFromEnv()
	if sessionConfig.UsesDevSecret() {
		log.Printf("TODO_APP_SESSION_SECRET is not set, using the insecure development secret")
	}
	sessions := session.NewManager(sessionConfig)
	challenges := challenge.NewStore(passkey.ChallengeTTL)

	ceremonies, err := ceremony.New(passkey.LoadConfigFromEnv(), store, challenges, sessions)
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, fmt.Errorf("build ceremony service: %w", err)
	}

	mux := http.NewServeMux()
	httpapi.NewServer(ceremonies, sessions, sessionConfig.TTL).RegisterRoutes(mux)

	return &Server{
		listener:   listener,
		httpServer: &http.Server{Handler: mux},
		store:      store,
		challenges: challenges,
	}, nil
}

// Addr returns the listener address for the auth server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves an auth server until the context ends.
func Run(ctx context.Context, addr, dbPath string) error {
	authServer, err := New(addr, dbPath)
	if err != nil {
		return err
	}
	return authServer.Serve(ctx)
}

// Serve starts the auth server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	serverCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.closeStore()

	s.challenges.StartCleanup(serverCtx, challengeCleanupInterval)

	log.Printf("auth server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}

	select {
	case <-ctx.Done():
		shutdown()
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}
}

func openAuthStore(path string) (*authsqlite.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "todos.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	store, err := authsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open auth sqlite store: %w", err)
	}
	return store, nil
}

func (s *Server) closeStore() {
	if s == nil {
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close auth store: %v", err)
		}
	}
}
