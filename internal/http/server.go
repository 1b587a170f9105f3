// Package http is the presentation surface: JSON API plus a small
// HTML/HTMX front end for the forms and dashboard. It only reads the
// state store and calls its mutators; persistence happens behind the
// store's change notifications.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/techcolloid1243/finance-planner/internal/auth"
	"github.com/techcolloid1243/finance-planner/internal/cache"
	"github.com/techcolloid1243/finance-planner/internal/core"
	applog "github.com/techcolloid1243/finance-planner/internal/log"
	"github.com/techcolloid1243/finance-planner/internal/persist"
	"github.com/techcolloid1243/finance-planner/internal/state"
	appweb "github.com/techcolloid1243/finance-planner/web"
)

type Server struct {
	http.Server
	templates *template.Template

	store   *state.Store
	adapter *persist.Adapter
	auth    auth.Provider

	defaultMonths int

	rateLimiter *rateLimiter

	// dashboard payloads memoized per (revision, months)
	dashCache  *cache.LRU[dashboardPayload]
	unsubStore func()

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// server.
func NewServer(addr string, store *state.Store, adapter *persist.Adapter, authp auth.Provider, defaultMonths int) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:         store,
		adapter:       adapter,
		auth:          authp,
		defaultMonths: defaultMonths,
		rateLimiter:   newRateLimiter(),
		dashCache:     cache.NewLRU[dashboardPayload](64, 5*time.Minute),
	}

	// Stale revisions never get read again; drop them as soon as the
	// state moves on.
	s.unsubStore = store.Subscribe(func(core.FinanceState, uint64) {
		s.dashCache.Purge()
	})

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /{$}", s.withMiddleware(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /api/state", s.withMiddleware(s.handleGetState))
	mux.HandleFunc("PUT /api/state/fields", s.withMiddleware(s.handleSetField))
	mux.HandleFunc("POST /api/entries", s.withMiddleware(s.handleUpsertEntry))
	mux.HandleFunc("DELETE /api/entries/{id}", s.withMiddleware(s.handleRemoveEntry))
	mux.HandleFunc("POST /api/holdings", s.withMiddleware(s.handleUpsertHolding))
	mux.HandleFunc("DELETE /api/holdings/{id}", s.withMiddleware(s.handleRemoveHolding))
	mux.HandleFunc("POST /api/insurances", s.withMiddleware(s.handleUpsertInsurance))
	mux.HandleFunc("DELETE /api/insurances/{id}", s.withMiddleware(s.handleRemoveInsurance))

	mux.HandleFunc("GET /api/dashboard", s.withMiddleware(s.handleDashboard))
	mux.HandleFunc("GET /api/enums", s.withMiddleware(s.handleEnums))
	mux.HandleFunc("GET /api/metrics", s.withMiddleware(s.handleMetrics))
	mux.HandleFunc("GET /export", s.withMiddleware(s.handleExport))

	mux.HandleFunc("POST /auth/signin", s.withMiddleware(s.handleSignIn))
	mux.HandleFunc("POST /auth/signout", s.withMiddleware(s.handleSignOut))
	mux.HandleFunc("GET /auth/me", s.withMiddleware(s.handleMe))

	mux.HandleFunc("GET /ui/dashboard", s.withMiddleware(s.handleDashboardPartial))

	return s
}

// Shutdown stops the server and its cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.unsubStore != nil {
			s.unsubStore()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// withMiddleware adds security headers, request logging and rate
// limiting of mutating requests.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		if mutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

type contextKey string

const requestIDKey contextKey = "request_id"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Simple in-memory rate limiter: 60 mutating requests per client per
// minute.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.runCleanup()
	return rl
}

func (rl *rateLimiter) runCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanupStale()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) cleanupStale() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]
	if !exists {
		rl.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}
	client.requests++
	client.lastRequest = now
	return client.requests <= 60
}
