package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/talkwell/federation/internal/logger"
	"github.com/talkwell/federation/internal/metrics"
	"github.com/talkwell/federation/internal/model"
)

// Fetcher performs authenticated GETs against remote resources, memoizing
// 2xx bodies per (identity, url) for a fixed TTL. Entries expire on the
// insertion clock regardless of reads; there is no size bound.
type Fetcher struct {
	signer *Signer
	client model.HTTPClient
	cache  *ttlcache.Cache[string, []byte]
	logger *logger.Logger
}

// NewFetcher creates a Fetcher whose cache entries live for ttl after
// insertion. Stop must be called to release the cache janitor.
func NewFetcher(signer *Signer, client model.HTTPClient, ttl time.Duration, logger *logger.Logger) *Fetcher {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, []byte](ttl),
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go cache.Start()

	return &Fetcher{
		signer: signer,
		client: client,
		cache:  cache,
		logger: logger,
	}
}

// Stop shuts down the cache janitor.
func (f *Fetcher) Stop() {
	f.cache.Stop()
}

// Get fetches rawURL as identity, serving repeated fetches from cache
// within the TTL window. Non-2xx responses are never cached and surface
// as a typed error.
func (f *Fetcher) Get(ctx context.Context, identity model.Identity, rawURL string) ([]byte, error) {
	if !identity.Valid() {
		return nil, model.ErrInvalidIdentity
	}

	key := fmt.Sprintf("%d:%s", identity, rawURL)
	if item := f.cache.Get(key); item != nil {
		metrics.CacheHits.Inc()
		return item.Value(), nil
	}
	metrics.CacheMisses.Inc()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", model.LDContentType)

	if err := f.signer.SignRequest(ctx, identity, req, nil); err != nil {
		return nil, fmt.Errorf("failed to sign request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.RemoteError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", rawURL, err)
	}

	f.cache.Set(key, body, ttlcache.DefaultTTL)

	return body, nil
}

// FetchActor retrieves the remote actor document at id, authenticated as
// the system actor, and maps its delivery and key fields.
func (f *Fetcher) FetchActor(ctx context.Context, id string) (model.RemoteActor, error) {
	body, err := f.Get(ctx, model.SystemActor, id)
	if err != nil {
		return model.RemoteActor{}, fmt.Errorf("failed to fetch actor %s: %w", id, err)
	}

	var doc struct {
		Inbox     string `json:"inbox"`
		Endpoints struct {
			SharedInbox string `json:"sharedInbox"`
		} `json:"endpoints"`
		PublicKey struct {
			PublicKeyPem string `json:"publicKeyPem"`
		} `json:"publicKey"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return model.RemoteActor{}, fmt.Errorf("failed to decode actor document %s: %w", id, err)
	}

	return model.RemoteActor{
		ID:          id,
		Inbox:       doc.Inbox,
		SharedInbox: doc.Endpoints.SharedInbox,
		PublicKey:   doc.PublicKey.PublicKeyPem,
	}, nil
}
