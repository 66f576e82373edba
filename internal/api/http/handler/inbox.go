package handler

import (
	"encoding/json"
	"net/http"

	"github.com/talkwell/federation/internal/logger"
	"github.com/talkwell/federation/internal/model"
)

// Inbox accepts authenticated inbound activities and hands them to the
// forum's activity handler.
type Inbox struct {
	activities model.ActivityHandler
	logger     *logger.Logger
}

// NewInbox creates a new Inbox handler.
func NewInbox(activities model.ActivityHandler, logger *logger.Logger) *Inbox {
	return &Inbox{activities: activities, logger: logger}
}

func (h *Inbox) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var activity map[string]any
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := h.activities.Handle(r.Context(), activity); err != nil {
		h.logger.Error("Inbox handler: failed to process activity",
			"error", err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
