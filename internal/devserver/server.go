// Package devserver runs a local stand-in for the leads API: token login and
// organisation-scoped lead CRUD backed by memory.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kingrea/leads-admin/internal/lead"
	"github.com/kingrea/leads-admin/internal/session"
)

// ServerStatus reports runtime lifecycle states for the HTTP server.
type ServerStatus string

const (
	StatusStarting ServerStatus = "starting"
	StatusReady    ServerStatus = "ready"
	StatusDraining ServerStatus = "draining"
)

// Server wraps the HTTP listener and handlers of the dev API.
type Server struct {
	settings Settings
	store    *Store
	logger   *zap.Logger
	clock    func() time.Time

	mu        sync.RWMutex
	server    *http.Server
	listener  net.Listener
	status    ServerStatus
	startTime time.Time
}

// Option customizes server construction.
type Option func(*Server)

// WithStore overrides the seeded in-memory store.
func WithStore(store *Store) Option {
	return func(s *Server) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock allows tests to control timestamps and token expiry.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewServer prepares a dev API server using the provided settings.
func NewServer(settings Settings, opts ...Option) *Server {
	settings.normalize()
	s := &Server{
		settings: settings,
		logger:   zap.NewNop(),
		clock:    func() time.Time { return time.Now().UTC() },
		status:   StatusStarting,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.store == nil {
		s.store = SeededStore(s.now)
	}
	return s
}

// Handler returns the routed HTTP handler without binding a listener.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(s.logRequests)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet, http.MethodHead)

	api := router.PathPrefix(APIPrefix).Subrouter()
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(s.requireAuth)
	protected.HandleFunc("/organisations/{orgID:[0-9]+}/leads", s.handleList).Methods(http.MethodGet)
	protected.HandleFunc("/leads", s.handleCreate).Methods(http.MethodPost)
	protected.HandleFunc("/leads/{id:[0-9]+}", s.handleUpdate).Methods(http.MethodPut, http.MethodPatch)
	protected.HandleFunc("/leads/{id:[0-9]+}", s.handleDelete).Methods(http.MethodDelete)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found.")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})
	return router
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("devserver: server is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("devserver: server already started")
	}
	if s.settings.Secret == "" {
		return fmt.Errorf("devserver: token secret is required")
	}
	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("devserver: listen %s: %w", addr, err)
	}
	s.listener = listener
	s.startTime = s.clock()
	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server
	s.status = StatusReady
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("devserver: serve error", zap.Error(err))
		}
	}()
	s.logger.Info("devserver: listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight requests to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil || s.server == nil {
		return nil
	}
	s.status = StatusDraining
	deadline := ctx
	if deadline == nil {
		var cancel context.CancelFunc
		deadline, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	if err := s.server.Shutdown(deadline); err != nil {
		return err
	}
	s.listener = nil
	s.server = nil
	return nil
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the API base URL for the running server.
func (s *Server) BaseURL() string {
	addr := s.Addr()
	if addr == "" {
		return s.settings.URL()
	}
	return "http://" + addr + APIPrefix
}

// Status reports the server's lifecycle state.
func (s *Server) Status() ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Server) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type listResponse struct {
	Status string      `json:"status"`
	Count  int         `json:"count"`
	Data   []lead.Lead `json:"data"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	started := s.startTime
	s.mu.RUnlock()
	var uptime int64
	if !started.IsZero() {
		uptime = int64(s.now().Sub(started).Seconds())
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: string(s.Status()), UptimeSeconds: uptime})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds session.Credentials
	if !s.decodeBody(w, r, &creds) {
		return
	}
	user, err := s.store.Authenticate(creds.Email, creds.Password)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}
	token, err := s.issueToken(user)
	if err != nil {
		s.logger.Error("devserver: sign token", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Could not issue token.")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	orgID, err := strconv.ParseInt(mux.Vars(r)["orgID"], 10, 64)
	if err != nil || claims == nil || claims.OrganisationID != orgID {
		writeMessage(w, http.StatusForbidden, "This action is unauthorized.")
		return
	}
	leads := s.store.List(orgID)
	writeJSON(w, http.StatusOK, listResponse{Status: "success", Count: len(leads), Data: leads})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	var payload lead.CreateLeadPayload
	if !s.decodeBody(w, r, &payload) {
		return
	}
	created, err := s.store.Create(claims.OrganisationID, payload)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	var payload lead.UpdatePayload
	if !s.decodeBody(w, r, &payload) {
		return
	}
	updated, err := s.store.Update(claims.OrganisationID, id, payload)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err := s.store.Delete(claims.OrganisationID, id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if r.Body == nil {
		writeMessage(w, http.StatusBadRequest, "Empty body.")
		return false
	}
	reader := http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "Payload exceeds limit.")
			return false
		}
		writeMessage(w, http.StatusBadRequest, "Unable to read body.")
		return false
	}
	if err := json.Unmarshal(body, out); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON.")
		return false
	}
	return true
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("devserver: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", r.Header.Get("X-Request-Id")),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(started)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNotFound):
		writeMessage(w, http.StatusNotFound, "Lead not found.")
	case errors.Is(err, errValidation):
		writeMessage(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, "Server error.")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
