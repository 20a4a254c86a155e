// Package fakeapi is an in-memory implementation of the CityCare REST
// contract used for local development and end-to-end tests.
package fakeapi

import (
	"fmt"
	"net"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/citycare/internal/config"
	"github.com/spec-kit/citycare/internal/observability"
)

// Demo account created when SeedDemo is set.
const (
	DemoName     = "Demo Citizen"
	DemoEmail    = "citizen@citycare.local"
	DemoPassword = "citizen123"
)

// Server owns the fiber app and the state behind it.
type Server struct {
	app    *fiber.App
	store  *Store
	tokens *TokenManager
	logger *zap.Logger
	addr   string
}

// New builds a server from cfg, seeding the admin account and optional
// demo data.
func New(cfg config.FakeAPIConfig, app config.AppConfig, logger *zap.Logger, metrics *observability.Metrics) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fiberApp := fiber.New(fiber.Config{
		AppName:               app.Name,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})
	RegisterMiddlewares(fiberApp, logger, metrics)

	store := NewStore()
	tokens := NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes, cfg.RefreshTokenTTLMinutes)
	dispatcher := NewInMemoryDispatcher(logger)
	NewNotifier(store, logger).RegisterHandlers(dispatcher)

	if err := seed(store, cfg); err != nil {
		return nil, err
	}

	RegisterRoutes(fiberApp, RouteConfig{
		Health:         NewHealthHandler(app.Name+"-fakeapi", app.Version, store),
		Handlers:       NewHandlers(store, tokens, dispatcher, cfg.BcryptCost, logger),
		AuthMiddleware: NewAuthMiddleware(tokens, store),
	})

	return &Server{
		app:    fiberApp,
		store:  store,
		tokens: tokens,
		logger: logger,
		addr:   net.JoinHostPort(cfg.Host, cfg.Port),
	}, nil
}

func seed(store *Store, cfg config.FakeAPIConfig) error {
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		hash, err := HashPassword(cfg.AdminPassword, cfg.BcryptCost)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		if _, err := store.CreateUser("Administrator", cfg.AdminEmail, hash, true); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}
	if !cfg.SeedDemo {
		return nil
	}

	hash, err := HashPassword(DemoPassword, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	demo, err := store.CreateUser(DemoName, DemoEmail, hash, false)
	if err != nil {
		return fmt.Errorf("seed demo user: %w", err)
	}
	store.CreateIssue(demo.ID, "Overflowing bins", "Garbage", "12 Market Street", "Bins have not been emptied for a week.")
	store.CreateIssue(demo.ID, "Broken streetlight", "Streetlight", "Park Avenue near the school", "The light flickers and goes dark after 9pm.")
	store.CreateNotification("Welcome to CityCare", "Report problems in your neighbourhood and follow their progress here.", nil)
	return nil
}

// App exposes the fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App { return s.app }

// Store exposes the backing store.
func (s *Server) Store() *Store { return s.store }

// Addr is the configured listen address.
func (s *Server) Addr() string { return s.addr }

// Listen serves on the configured address until Shutdown.
func (s *Server) Listen() error {
	s.logger.Info("fake api listening", zap.String("addr", s.addr))
	return s.app.Listen(s.addr)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Start listens on a random loopback port in the background and returns
// the API base URL.
func (s *Server) Start() (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	go func() {
		if err := s.app.Listener(ln); err != nil {
			s.logger.Warn("fake api stopped", zap.Error(err))
		}
	}()
	return fmt.Sprintf("http://%s/api/", ln.Addr().String()), nil
}

// Shutdown stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
