// Package httpapi is the transport the rendering layer talks to: JSON over
// HTTP for every match and table operation, plus a WebSocket feed of table
// updates.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	scoreService "github.com/cemkoker/adisyon/internal/services/score"
	tableService "github.com/cemkoker/adisyon/internal/services/table"
)

// Config holds dependencies for the HTTP API
type Config struct {
	ScoreService scoreService.Service
	TableService tableService.Service
}

// Handler serves the HTTP and WebSocket API
type Handler struct {
	scores   scoreService.Service
	tables   tableService.Service
	upgrader websocket.Upgrader
}

// New creates the API handler
func New(cfg *Config) (*Handler, error) {
	if cfg == nil || cfg.ScoreService == nil || cfg.TableService == nil {
		return nil, ErrNilConfig
	}

	return &Handler{
		scores: cfg.ScoreService,
		tables: cfg.TableService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
	}, nil
}

// Router builds the full route table with CORS applied
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/match", h.handleGetState).Methods("GET")
	api.HandleFunc("/match/standings", h.handleGetStandings).Methods("GET")
	api.HandleFunc("/match/configure", h.handleConfigure).Methods("POST")
	api.HandleFunc("/match/start", h.handleStartMatch).Methods("POST")
	api.HandleFunc("/match/value", h.handleSetValue).Methods("POST")
	api.HandleFunc("/match/hand", h.handleAddHand).Methods("POST")
	api.HandleFunc("/match/undo", h.handleUndo).Methods("POST")
	api.HandleFunc("/match/reset", h.handleReset).Methods("POST")
	api.HandleFunc("/match/theme", h.handleSetTheme).Methods("PUT")
	api.HandleFunc("/match/penalties", h.handleApplyPenalty).Methods("POST")
	api.HandleFunc("/match/penalties/quick", h.handleQuickPenalty).Methods("POST")
	api.HandleFunc("/match/penalties/{id}", h.handleRemovePenalty).Methods("DELETE")

	api.HandleFunc("/tables", h.handleCreateTable).Methods("POST")
	api.HandleFunc("/tables", h.handleListTables).Methods("GET")
	api.HandleFunc("/tables/{id}", h.handleGetTable).Methods("GET")
	api.HandleFunc("/tables/{id}/join", h.handleJoinTable).Methods("POST")
	api.HandleFunc("/tables/{id}/leave", h.handleLeaveTable).Methods("POST")
	api.HandleFunc("/tables/{id}/start", h.handleStartTableGame).Methods("POST")
	api.HandleFunc("/tables/{id}/state", h.handleUpdateMatchState).Methods("PUT")
	api.HandleFunc("/tables/{id}/ws", h.handleTableSocket).Methods("GET")

	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler(r)
}
