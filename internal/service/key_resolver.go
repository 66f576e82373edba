package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/talkwell/federation/internal/logger"
	"github.com/talkwell/federation/internal/model"
)

// RemoteKeyResolver fetches remote actors' published public keys. Key
// fetches bypass the response cache: a rotated key must be visible
// immediately, not after the cache window.
type RemoteKeyResolver struct {
	signer *Signer
	client model.HTTPClient
	logger *logger.Logger
}

// NewRemoteKeyResolver creates a RemoteKeyResolver using the given
// outbound client.
func NewRemoteKeyResolver(signer *Signer, client model.HTTPClient, logger *logger.Logger) *RemoteKeyResolver {
	return &RemoteKeyResolver{
		signer: signer,
		client: client,
		logger: logger,
	}
}

// FetchPublicKey issues a content-negotiated GET to the keyId URI, signed
// as the system actor, and returns the PEM key published there.
func (r *RemoteKeyResolver) FetchPublicKey(ctx context.Context, keyID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, keyID, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build key request: %w", err)
	}
	req.Header.Set("Accept", model.LDContentType)

	if err := r.signer.SignRequest(ctx, model.SystemActor, req, nil); err != nil {
		return "", fmt.Errorf("failed to sign key request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch key from %s: %w", keyID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetching %s returned status %d: %w", keyID, resp.StatusCode, model.ErrKeyNotFound)
	}

	var doc struct {
		PublicKey struct {
			PublicKeyPem string `json:"publicKeyPem"`
		} `json:"publicKey"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("failed to decode key document from %s: %w", keyID, err)
	}
	if doc.PublicKey.PublicKeyPem == "" {
		return "", fmt.Errorf("key document at %s has no publicKey: %w", keyID, model.ErrKeyNotFound)
	}

	return doc.PublicKey.PublicKeyPem, nil
}
