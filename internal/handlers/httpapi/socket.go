package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cemkoker/adisyon/internal/models"
	tableService "github.com/cemkoker/adisyon/internal/services/table"
	"github.com/cemkoker/adisyon/pkg/logging"
)

// handleTableSocket streams table updates over a WebSocket until the client
// disconnects. The feed carries whole table documents, the same shape the
// REST endpoints return.
func (h *Handler) handleTableSocket(w http.ResponseWriter, r *http.Request) {
	tableID := mux.Vars(r)["id"]

	// Reject unknown tables before upgrading
	if _, err := h.tables.GetTable(r.Context(), &tableService.GetTableInput{TableID: tableID}); err != nil {
		writeError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("failed to upgrade connection",
			zap.String("table_id", tableID),
			zap.Error(err))
		return
	}
	defer conn.Close()

	updates := make(chan *models.Table, 8)
	watch, err := h.tables.WatchTable(r.Context(), &tableService.WatchTableInput{
		TableID: tableID,
		OnChange: func(table *models.Table) {
			select {
			case updates <- table:
			default:
				// Slow consumer; drop the update, the next one carries the
				// full document anyway
			}
		},
	})
	if err != nil {
		logging.Error("failed to watch table",
			zap.String("table_id", tableID),
			zap.Error(err))
		return
	}
	defer watch.Subscription.Close()

	// Drain reads so close frames are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case table := <-updates:
			if err := conn.WriteJSON(table); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logging.Warn("failed to write table update",
						zap.String("table_id", tableID),
						zap.Error(err))
				}
				return
			}
		}
	}
}
