package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dstanek/workgraph/internal/mcp"
)

// MCPHandler handles MCP method dispatch.
type MCPHandler interface {
	Handle(ctx context.Context, actorID, method string, params json.RawMessage) (any, error)
}

// Server wires HTTP handlers.
type Server struct {
	handler MCPHandler
}

// NewRouter creates the HTTP router: a plain JSON-RPC endpoint at /rpc, the
// streamable MCP transport mounted at /mcp by the caller, health, and
// Prometheus metrics. authMiddleware may be nil when auth is disabled.
func NewRouter(handler MCPHandler, mcpHandler http.Handler, authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	srv := &Server{handler: handler}

	r.Get("/health", srv.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}
		r.Post("/rpc", srv.handleRPC)
		if mcpHandler != nil {
			r.Handle("/mcp", mcpHandler)
			r.Handle("/mcp/*", mcpHandler)
		}
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		WriteError(w, nil, ErrInvalidReq, "invalid request", nil)
		return
	}

	actorID, ok := ActorFromContext(r.Context())
	if !ok || actorID == "" {
		http.Error(w, "missing actor", http.StatusUnauthorized)
		return
	}

	result, err := s.handler.Handle(r.Context(), actorID, req.Method, req.Params)
	if err != nil {
		var apiErr *mcp.APIError
		if errors.As(err, &apiErr) {
			WriteError(w, req.ID, ErrInvalidParams, apiErr.Message, apiErr)
			return
		}
		WriteError(w, req.ID, ErrInternal, err.Error(), nil)
		return
	}

	WriteResult(w, req.ID, result)
}
