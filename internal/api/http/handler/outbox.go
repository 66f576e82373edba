package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/talkwell/federation/internal/logger"
	"github.com/talkwell/federation/internal/model"
)

// Sender performs the outbound send operation.
type Sender interface {
	Send(ctx context.Context, identity model.Identity, payload map[string]any, targets ...string) error
}

// OutboxRequest is the body of an outbox POST.
type OutboxRequest struct {
	To       []string       `json:"to"`
	Activity map[string]any `json:"activity"`
}

// Outbox lets the forum trigger deliveries over HTTP when the engine
// runs as a sidecar. It sits behind signature verification like the
// inbox: callers sign with a local identity's own key.
type Outbox struct {
	sender Sender
	logger *logger.Logger
}

// NewOutbox creates a new Outbox handler.
func NewOutbox(sender Sender, logger *logger.Logger) *Outbox {
	return &Outbox{sender: sender, logger: logger}
}

func (h *Outbox) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid, err := strconv.ParseInt(r.PathValue("uid"), 10, 64)
	if err != nil || uid < 0 {
		http.Error(w, "invalid identity", http.StatusBadRequest)
		return
	}

	var req OutboxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if len(req.To) == 0 {
		http.Error(w, "no targets", http.StatusBadRequest)
		return
	}

	err = h.sender.Send(r.Context(), model.Identity(uid), req.Activity, req.To...)
	if err != nil {
		var deliveryErr *model.DeliveryError
		switch {
		case errors.Is(err, model.ErrInvalidIdentity):
			http.Error(w, "invalid identity", http.StatusBadRequest)
		case errors.As(err, &deliveryErr):
			h.logger.Error("Outbox handler: delivery failed",
				"endpoint", deliveryErr.Endpoint,
				"status", deliveryErr.StatusCode)
			http.Error(w, "delivery failed", http.StatusBadGateway)
		default:
			h.logger.Error("Outbox handler: send failed", "error", err.Error())
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
