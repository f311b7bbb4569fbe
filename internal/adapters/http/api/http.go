// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to the app service.
type Dependencies interface {
	// Recent returns at most n of the most recent messages.
	Recent(ctx context.Context, n int) []model.Message

	// All returns the full message sequence, newest first.
	All(ctx context.Context) []model.Message

	// Catalog returns the current top-K recommendation ranking.
	Catalog(ctx context.Context) []model.CatalogEntry
}

// Server wires HTTP routes for the read surface and the live push.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	messagesHandler *MessagesHandler
	catalogHandler  *CatalogHandler
	hub             *Hub
}

// NewServer creates a new API server with all handlers. The returned
// server's Hub must be subscribed to the ledger and catalog by the
// caller to receive pushes.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		messagesHandler: NewMessagesHandler(deps, defaultMaxLimit),
		catalogHandler:  NewCatalogHandler(deps),
		hub:             NewHub(),
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithMaxMessageLimit caps GET /messages?limit.
func WithMaxMessageLimit(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.messagesHandler.maxLimit = n
		}
	}
}

// Hub returns the websocket hub so the caller can register it as a
// ledger and catalog observer.
func (s *Server) Hub() *Hub { return s.hub }

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/messages", MetricsMiddleware(s.messagesHandler.HandleGetMessages, "messages"))
	mux.HandleFunc("/catalog", MetricsMiddleware(s.catalogHandler.HandleGetCatalog, "catalog"))
	mux.HandleFunc("/ws", s.hub.HandleWS)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// messageView converts a domain message to its read shape.
func messageView(m model.Message) types.MessageView {
	return types.MessageView{
		ID:     m.ID,
		Source: string(m.Source),
		Text:   m.Text,
		TS:     m.Timestamp,
		Time:   m.DisplayTime(),
		User:   m.User,
	}
}

// catalogView converts catalog entries to their read shape.
func catalogView(entries []model.CatalogEntry) []types.CatalogEntryView {
	out := make([]types.CatalogEntryView, len(entries))
	for i, e := range entries {
		out[i] = types.CatalogEntryView{
			Name:     e.Name,
			Source:   string(e.Source),
			Keywords: e.Keywords,
			Score:    e.Score,
		}
	}
	return out
}
