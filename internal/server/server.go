// Package server hosts the websocket and HTTP boundary of the room
// server: connection lifecycle, event dispatch, per-room orchestration
// and personalized fan-out.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/pokerrooms/internal/auth"
	"github.com/lox/pokerrooms/internal/game"
	"github.com/lox/pokerrooms/internal/room"
)

// Server ties the transport layer to the room registry and orchestrator.
type Server struct {
	config   *ServerConfig
	logger   *log.Logger
	auth     *auth.Service
	registry *room.Registry
	sessions *Sessions
	fanout   *Fanout
	orch     *Orchestrator
	upgrader websocket.Upgrader

	mu          sync.Mutex
	connections map[*Connection]struct{}
	httpServer  *http.Server
}

// NewServer wires a server from configuration. A nil clock uses the real
// one; tests inject a mock.
func NewServer(config *ServerConfig, logger *log.Logger, clock quartz.Clock) *Server {
	if clock == nil {
		clock = quartz.NewReal()
	}
	registry := room.NewRegistry(logger, nil)
	sessions := NewSessions(logger)
	fanout := NewFanout(logger, sessions)

	return &Server{
		config:   config,
		logger:   logger.WithPrefix("server"),
		auth:     auth.NewService([]byte(config.Auth.Secret), time.Duration(config.Auth.TokenTTLHours)*time.Hour),
		registry: registry,
		sessions: sessions,
		fanout:   fanout,
		orch:     NewOrchestrator(logger, clock, registry, fanout),
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]struct{}),
	}
}

// Registry exposes the room registry, mainly for tests and tooling.
func (s *Server) Registry() *room.Registry { return s.registry }

// Start serves HTTP and websocket traffic until Stop is called.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/auth/anonymous", s.handleAnonymousAuth)
	mux.HandleFunc("/api/rooms", s.handleRooms)

	s.httpServer = &http.Server{
		Addr:    s.config.ListenAddress(),
		Handler: mux,
	}
	s.logger.Info("starting server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains HTTP and drops every live connection.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.mu.Lock()
	for c := range s.connections {
		_ = c.Close()
	}
	s.connections = make(map[*Connection]struct{})
	s.mu.Unlock()
	return err
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newConnection(conn, s.logger, s)
	s.mu.Lock()
	s.connections[c] = struct{}{}
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("client connected", "total", total)

	c.Start()
}

func (s *Server) dropConnection(c *Connection) {
	s.mu.Lock()
	delete(s.connections, c)
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("client disconnected", "total", total)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

// AnonymousAuthRequest is the POST /api/auth/anonymous body.
type AnonymousAuthRequest struct {
	ClientID string `json:"clientId,omitempty"`
	Username string `json:"username,omitempty"`
}

// AnonymousAuthResponse carries the signed token and the account.
type AnonymousAuthResponse struct {
	Token string    `json:"token"`
	User  auth.User `json:"user"`
}

func (s *Server) handleAnonymousAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AnonymousAuthRequest
	if r.Body != nil {
		// An empty body is a valid request for a fresh identity.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	token, user, err := s.auth.IssueAnonymous(req.ClientID, req.Username)
	if err != nil {
		s.logger.Error("failed to issue token", "error", err)
		http.Error(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, AnonymousAuthResponse{Token: token, User: user})
}

// CreateRoomRequest is the POST /api/rooms body.
type CreateRoomRequest struct {
	Name        string       `json:"name"`
	Variant     string       `json:"variant,omitempty"`
	Stakes      *game.Stakes `json:"stakes,omitempty"`
	CustomRules *game.Rules  `json:"customRules,omitempty"`
	MaxPlayers  int          `json:"maxPlayers,omitempty"`
	Password    string       `json:"password,omitempty"`
	Public      bool         `json:"public,omitempty"`
}

// CreateRoomResponse returns the new room's listing, including its code.
type CreateRoomResponse struct {
	Room room.Summary `json:"room"`
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateRoom(w, r)
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, s.registry.ListPublic())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	identity, err := s.authorize(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	opts := room.Options{
		Name:       req.Name,
		HostID:     identity.UserID,
		MaxPlayers: req.MaxPlayers,
		Password:   req.Password,
		Public:     req.Public,
	}
	if req.Variant != "" {
		variant, err := game.ParseVariant(req.Variant)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		opts.Variant = variant
	}
	if req.Stakes != nil {
		opts.Stakes = *req.Stakes
	} else {
		opts.Stakes = game.Stakes{
			SmallBlind: s.config.Rooms.SmallBlind,
			BigBlind:   s.config.Rooms.BigBlind,
			MinBuyIn:   s.config.Rooms.MinBuyIn,
			MaxBuyIn:   s.config.Rooms.MaxBuyIn,
		}
	}
	if req.CustomRules != nil {
		opts.Rules = *req.CustomRules
	} else {
		opts.Rules = game.Rules{
			TurnTimeEnabled:    s.config.Rooms.TurnTimeEnabled,
			TurnTimeSeconds:    s.config.Rooms.TurnTimeSeconds,
			WarningTimeSeconds: s.config.Rooms.WarningTimeSeconds,
		}
	}
	if opts.MaxPlayers == 0 {
		opts.MaxPlayers = s.config.Rooms.MaxPlayers
	}

	rm, err := s.registry.Create(opts)
	if err != nil {
		http.Error(w, "failed to create room", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusCreated, CreateRoomResponse{Room: rm.Summarize()})
}

// authorize verifies the bearer token on an HTTP request.
func (s *Server) authorize(r *http.Request) (*auth.Identity, error) {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		return nil, auth.ErrInvalidToken
	}
	return s.auth.Verify(token)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
