package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/cemkoker/adisyon/internal/match"
	"github.com/cemkoker/adisyon/internal/models"
	scoreService "github.com/cemkoker/adisyon/internal/services/score"
	tableService "github.com/cemkoker/adisyon/internal/services/table"
	"github.com/cemkoker/adisyon/pkg/logging"
)

// ErrNilConfig is returned when the handler is built without its services
var ErrNilConfig = errors.New("config and services cannot be nil")

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logging.Error("failed to encode response", zap.Error(err))
		}
	}
}

// writeError maps domain errors onto HTTP statuses. Every rejection carries
// a human-readable reason; nothing is retried server-side.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, match.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, match.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, tableService.ErrTableNotFound):
		status = http.StatusNotFound
	case errors.Is(err, tableService.ErrWrongPassword):
		status = http.StatusUnauthorized
	case errors.Is(err, tableService.ErrSlotOccupied):
		status = http.StatusConflict
	case errors.Is(err, tableService.ErrInvalidSlot):
		status = http.StatusBadRequest
	case errors.Is(err, tableService.ErrGameCannotStart):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(r *http.Request, into any) error {
	return json.NewDecoder(r.Body).Decode(into)
}

func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	out, err := h.scores.GetState(r.Context(), &scoreService.GetStateInput{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetStandings(w http.ResponseWriter, r *http.Request) {
	out, err := h.scores.GetStandings(r.Context(), &scoreService.GetStandingsInput{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleConfigure(w http.ResponseWriter, r *http.Request) {
	var body models.MatchSettings
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	out, err := h.scores.Configure(r.Context(), &scoreService.ConfigureInput{Settings: body})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleStartMatch(w http.ResponseWriter, r *http.Request) {
	out, err := h.scores.StartMatch(r.Context(), &scoreService.StartMatchInput{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleSetValue(w http.ResponseWriter, r *http.Request) {
	var body struct {
		HandIndex        int    `json:"handIndex"`
		ParticipantIndex int    `json:"participantIndex"`
		Value            string `json:"value"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	out, err := h.scores.SetValue(r.Context(), &scoreService.SetValueInput{
		HandIndex:        body.HandIndex,
		ParticipantIndex: body.ParticipantIndex,
		RawValue:         body.Value,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleAddHand(w http.ResponseWriter, r *http.Request) {
	out, err := h.scores.AddHand(r.Context(), &scoreService.AddHandInput{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleUndo(w http.ResponseWriter, r *http.Request) {
	out, err := h.scores.Undo(r.Context(), &scoreService.UndoInput{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	out, err := h.scores.ResetMatch(r.Context(), &scoreService.ResetMatchInput{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Theme string `json:"theme"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	out, err := h.scores.SetTheme(r.Context(), &scoreService.SetThemeInput{Theme: body.Theme})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleApplyPenalty(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Participant string `json:"participant"`
		Value       int    `json:"value"`
		Note        string `json:"note"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	out, err := h.scores.ApplyPenalty(r.Context(), &scoreService.ApplyPenaltyInput{
		Participant: body.Participant,
		Value:       body.Value,
		Note:        body.Note,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleQuickPenalty(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Participant string `json:"participant"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	out, err := h.scores.ApplyQuickPenalty(r.Context(), &scoreService.ApplyQuickPenaltyInput{
		Participant: body.Participant,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleRemovePenalty(w http.ResponseWriter, r *http.Request) {
	penaltyID := mux.Vars(r)["id"]

	out, err := h.scores.RemovePenalty(r.Context(), &scoreService.RemovePenaltyInput{PenaltyID: penaltyID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Password string `json:"password"`
		HostName string `json:"hostName"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	out, err := h.tables.CreateTable(r.Context(), &tableService.CreateTableInput{
		Name:     body.Name,
		Password: body.Password,
		HostName: body.HostName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// The creating device is the host in slot 0
	if _, err := h.scores.AttachTable(r.Context(), &scoreService.AttachTableInput{
		TableID:   out.TableID,
		SlotIndex: 0,
		IsHost:    true,
	}); err != nil {
		logging.Warn("failed to record table attachment", zap.Error(err))
	}

	writeJSON(w, http.StatusCreated, out)
}

func (h *Handler) handleListTables(w http.ResponseWriter, r *http.Request) {
	out, err := h.tables.ListTables(r.Context(), &tableService.ListTablesInput{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetTable(w http.ResponseWriter, r *http.Request) {
	out, err := h.tables.GetTable(r.Context(), &tableService.GetTableInput{
		TableID: mux.Vars(r)["id"],
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleJoinTable(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SlotIndex  int    `json:"slotIndex"`
		Password   string `json:"password"`
		PlayerName string `json:"playerName"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	tableID := mux.Vars(r)["id"]
	out, err := h.tables.JoinTable(r.Context(), &tableService.JoinTableInput{
		TableID:    tableID,
		SlotIndex:  body.SlotIndex,
		Password:   body.Password,
		PlayerName: body.PlayerName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.scores.AttachTable(r.Context(), &scoreService.AttachTableInput{
		TableID:   tableID,
		SlotIndex: body.SlotIndex,
	}); err != nil {
		logging.Warn("failed to record table attachment", zap.Error(err))
	}

	// Seed the local match from the authoritative table copy
	if out.Table.MatchState != nil {
		if _, err := h.scores.ApplyRemoteState(r.Context(), &scoreService.ApplyRemoteStateInput{
			State: out.Table.MatchState,
		}); err != nil {
			logging.Warn("failed to seed local state from table", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleLeaveTable(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SlotIndex int `json:"slotIndex"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	out, err := h.tables.LeaveTable(r.Context(), &tableService.LeaveTableInput{
		TableID:   mux.Vars(r)["id"],
		SlotIndex: body.SlotIndex,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.scores.DetachTable(r.Context(), &scoreService.DetachTableInput{}); err != nil {
		logging.Warn("failed to drop table attachment", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleStartTableGame(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Target int             `json:"target"`
		Mode   models.GameMode `json:"mode"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	out, err := h.tables.StartTableGame(r.Context(), &tableService.StartTableGameInput{
		TableID: mux.Vars(r)["id"],
		Target:  body.Target,
		Mode:    body.Mode,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleUpdateMatchState(w http.ResponseWriter, r *http.Request) {
	var body models.MatchState
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	out, err := h.tables.UpdateMatchState(r.Context(), &tableService.UpdateMatchStateInput{
		TableID:    mux.Vars(r)["id"],
		MatchState: &body,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
