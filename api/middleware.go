package api

import (
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/cors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rpupo63/sideshub-backend/database"
	"github.com/rpupo63/sideshub-backend/errs"
	"github.com/rpupo63/sideshub-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// sessionClaims is the payload of a session token issued after the identity
// provider login. Subject is the user id.
type sessionClaims struct {
	Email           string `json:"email,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	jwt.RegisteredClaims
}

func (c sessionClaims) user() *models.User {
	optional := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}
	return &models.User{
		ID:              c.Subject,
		Email:           optional(c.Email),
		FirstName:       optional(c.FirstName),
		LastName:        optional(c.LastName),
		ProfileImageURL: optional(c.ProfileImageURL),
	}
}

type authMiddleware struct {
	responder Responder
	logger    zerolog.Logger
	secret    []byte
	userRepo  *database.UserRepo
}

func newAuthMiddleware(secret string, userRepo *database.UserRepo) authMiddleware {
	logger := log.With().Str("handlerName", "authMiddleware").Logger()
	return authMiddleware{
		responder: NewResponder(logger),
		logger:    logger,
		secret:    []byte(secret),
		userRepo:  userRepo,
	}
}

func (m authMiddleware) parse(r *http.Request) (*sessionClaims, error) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, errs.ErrUnauthorized
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if raw == "" || len(m.secret) == 0 {
		return nil, errs.ErrUnauthorized
	}

	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", errs.ErrUnauthorized)
	}
	return claims, nil
}

// signIn validates the session token and upserts the user from its claims.
func (m authMiddleware) signIn(r *http.Request) (*http.Request, error) {
	claims, err := m.parse(r)
	if err != nil {
		return nil, err
	}
	if err := m.userRepo.Upsert(r.Context(), claims.user()); err != nil {
		return nil, wrapDatabaseError("upsert", "user", err)
	}
	return r.WithContext(ctxWithUserID(r.Context(), claims.Subject)), nil
}

func (m authMiddleware) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signedIn, err := m.signIn(r)
		if errs.IsUnauthorized(err) {
			m.logger.Debug().Err(err).Msg("Rejected session token")
			m.responder.WriteError(w, errs.Unauthorized)
			return
		}
		if err != nil {
			m.responder.WriteError(w, err)
			return
		}
		next.ServeHTTP(w, signedIn)
	})
}

// optional signs the user in when a valid token is present and otherwise
// lets the request through anonymously.
func (m authMiddleware) optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}

		signedIn, err := m.signIn(r)
		if err != nil {
			m.logger.Debug().Err(err).Msg("Ignoring session on public route")
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, signedIn)
	})
}

// rateLimiter keeps one token bucket per client IP.
type rateLimiter struct {
	mu             sync.Mutex
	limiters       map[string]*limiterEntry
	limit          rate.Limit
	burst          int
	limitPerMinute int
	responder      Responder
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiter(requestsPerMinute, burst int) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	if burst <= 0 {
		burst = 1
	}
	return &rateLimiter{
		limiters:       make(map[string]*limiterEntry),
		limit:          rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:          burst,
		limitPerMinute: requestsPerMinute,
		responder:      NewResponder(log.With().Str("handlerName", "rateLimiter").Logger()),
	}
}

func (rl *rateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// cleanup forgets clients idle for longer than maxIdle.
func (rl *rateLimiter) cleanup(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, entry := range rl.limiters {
		if time.Since(entry.lastSeen) > maxIdle {
			delete(rl.limiters, key)
		}
	}
}

// run sweeps idle limiters until done is closed.
func (rl *rateLimiter) run(done <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(30 * time.Minute)
		case <-done:
			return
		}
	}
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.get(clientIP(r)).Allow() {
			w.Header().Set("Retry-After", "60")
			rl.responder.WriteError(w, errs.NewRateLimitError(rl.limitPerMinute))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr, which middleware.RealIP has
// already replaced with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.status = statusCode
		w.wroteHeader = true
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func LogInternalServerErrors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic", err).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic")

				// Write 500 if nothing written yet
				if !srw.wroteHeader {
					srw.WriteHeader(http.StatusInternalServerError)
				}
			}
		}()

		next.ServeHTTP(srw, r)

		if srw.status == http.StatusInternalServerError {
			log.Error().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("500 error response")
		}
	})
}

// corsMiddleware allows the configured frontend origins to call the API with
// credentials.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// httpLoggingMiddleware logs each request at a level chosen by its status.
func httpLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		next.ServeHTTP(srw, r)

		var logEvent *zerolog.Event
		switch {
		case srw.status >= 500:
			logEvent = log.Error()
		case srw.status >= 400:
			logEvent = log.Warn()
		default:
			logEvent = log.Info()
		}

		logEvent.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", srw.status).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("HTTP Request")
	})
}
