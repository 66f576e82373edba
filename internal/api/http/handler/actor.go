package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/talkwell/federation/internal/logger"
	"github.com/talkwell/federation/internal/model"
)

// PublicKeyProvider resolves the public key of a local identity.
type PublicKeyProvider interface {
	GetPublicKey(ctx context.Context, identity model.Identity) (string, error)
}

// Actor serves the key document of a local identity so remote verifiers
// can resolve our keyIds. Profile construction beyond key material is
// the forum's concern, not this engine's.
type Actor struct {
	keys    PublicKeyProvider
	baseURL string
	logger  *logger.Logger
}

// NewActor creates a new Actor handler for the instance at baseURL.
func NewActor(keys PublicKeyProvider, baseURL string, logger *logger.Logger) *Actor {
	return &Actor{keys: keys, baseURL: baseURL, logger: logger}
}

func (h *Actor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity := model.SystemActor
	if raw := r.PathValue("uid"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		identity = model.Identity(parsed)
	}

	publicKey, err := h.keys.GetPublicKey(r.Context(), identity)
	if err != nil {
		h.logger.Error("Actor handler: failed to get public key",
			"uid", identity,
			"error", err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	actorURI := h.actorURI(identity)
	doc := map[string]any{
		"@context": model.ActivityStreamsContext,
		"id":       actorURI,
		"publicKey": map[string]any{
			"id":           actorURI + "#key",
			"owner":        actorURI,
			"publicKeyPem": publicKey,
		},
	}

	w.Header().Set("Content-Type", model.LDContentType)
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		h.logger.Error("Actor handler: failed to write key document",
			"uid", identity,
			"error", err.Error())
	}
}

func (h *Actor) actorURI(identity model.Identity) string {
	if identity == model.SystemActor {
		return h.baseURL + "/actor"
	}
	return fmt.Sprintf("%s/uid/%d", h.baseURL, identity)
}
