package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpupo63/sideshub-backend/config"
	"github.com/rpupo63/sideshub-backend/database"
	"github.com/rpupo63/sideshub-backend/services"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
	done        chan struct{}
}

// NewServer wires the router for database. storage may be nil, in which case
// upload requests answer 503.
func NewServer(database database.Database, c map[string]string, storage *services.ObjectStorage) (Server, error) {
	if config.GetString(c, "SESSION_SECRET", "") == "" {
		return Server{}, fmt.Errorf("SESSION_SECRET is not set")
	}

	// Ensure correct port is set
	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	// Capture startup time
	startupTime := time.Now()
	done := make(chan struct{})

	opts := []func(*router){withConfig(c), withStartupTime(startupTime), withDone(done)}
	if storage != nil {
		opts = append(opts, withStorage(storage))
	}
	router := newRouter(database, opts...)

	// Get timeout values from config with sensible defaults
	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 30)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 30)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 120)) * time.Second

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  readTimeout,  // Timeout for reading the entire request
		WriteTimeout: writeTimeout, // Timeout for writing the response
		IdleTimeout:  idleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime, done}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
	storage     uploadPresigner
	done        <-chan struct{}
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func withStorage(storage uploadPresigner) func(*router) {
	return func(r *router) {
		r.storage = storage
	}
}

// withDone stops background sweeps when the channel closes.
func withDone(done <-chan struct{}) func(*router) {
	return func(r *router) {
		r.done = done
	}
}

func newRouter(database database.Database, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)
	acceptedOrigins := config.GetList(router.config, "ACCEPTED_ORIGINS")
	if len(acceptedOrigins) == 0 {
		acceptedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	chiRouter.Use(corsMiddleware(acceptedOrigins))

	// Initialize all handlers
	handlers := initializeHandlers(database, router.storage, router.startupTime)

	// Initialize auth middleware
	authMiddleware := newAuthMiddleware(config.GetString(router.config, "SESSION_SECRET", ""), database.UserRepo())

	limiter := newRateLimiter(
		config.GetInt(router.config, "RATE_LIMIT_PER_MINUTE", 60),
		config.GetInt(router.config, "RATE_LIMIT_BURST", 10),
	)
	if router.done != nil {
		go limiter.run(router.done)
	}

	setupRoutes(chiRouter, handlers, authMiddleware, limiter)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")
	close(s.done)

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
