package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/talkwell/federation/internal/logger"
	"github.com/talkwell/federation/internal/metrics"
	"github.com/talkwell/federation/internal/model"
)

// EndpointResolver resolves recipient identifiers to delivery endpoints.
type EndpointResolver interface {
	ResolveInboxes(ctx context.Context, ids []string) ([]string, error)
}

// Dispatcher is the top-level send operation: envelope, resolve, sign per
// destination, deliver concurrently.
type Dispatcher struct {
	signer   *Signer
	resolver EndpointResolver
	client   model.HTTPClient
	logger   *logger.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(signer *Signer, resolver EndpointResolver, client model.HTTPClient, logger *logger.Logger) *Dispatcher {
	return &Dispatcher{
		signer:   signer,
		resolver: resolver,
		client:   client,
		logger:   logger,
	}
}

// Send wraps payload in the protocol envelope and delivers it to every
// resolved endpoint of targets. Inbox resolution completes before any
// signing begins; deliveries then run concurrently and independently.
// Every delivery runs to completion, but a single destination failure
// fails the whole send: the first error is returned after all deliveries
// finish.
func (d *Dispatcher) Send(ctx context.Context, identity model.Identity, payload map[string]any, targets ...string) error {
	if !identity.Valid() {
		return model.ErrInvalidIdentity
	}

	endpoints, err := d.resolver.ResolveInboxes(ctx, targets)
	if err != nil {
		return fmt.Errorf("failed to resolve inboxes: %w", err)
	}
	if len(endpoints) == 0 {
		d.logger.Debug("Dispatcher: no deliverable endpoints", "uid", identity)
		return nil
	}

	// Envelope fields are defaults; explicit payload fields win.
	envelope := make(map[string]any, len(payload)+2)
	envelope["@context"] = model.ActivityStreamsContext
	envelope["actor"] = d.signer.ActorURI(identity)
	for k, v := range payload {
		envelope[k] = v
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal activity: %w", err)
	}

	var g errgroup.Group
	for _, endpoint := range endpoints {
		g.Go(func() error {
			return d.deliver(ctx, identity, endpoint, body)
		})
	}

	return g.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, identity model.Identity, endpoint string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build delivery to %s: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", model.LDContentType)

	if err := d.signer.SignRequest(ctx, identity, req, body); err != nil {
		metrics.Deliveries.WithLabelValues(metrics.ResultFailed).Inc()
		return fmt.Errorf("failed to sign delivery to %s: %w", endpoint, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		metrics.Deliveries.WithLabelValues(metrics.ResultFailed).Inc()
		d.logger.Error("Dispatcher: delivery failed",
			"endpoint", endpoint,
			"error", err.Error())
		return fmt.Errorf("failed to deliver to %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.Deliveries.WithLabelValues(metrics.ResultFailed).Inc()
		d.logger.Error("Dispatcher: delivery rejected",
			"endpoint", endpoint,
			"status", resp.StatusCode)
		return &model.DeliveryError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	metrics.Deliveries.WithLabelValues(metrics.ResultOK).Inc()
	d.logger.Debug("Dispatcher: delivered",
		"endpoint", endpoint,
		"uid", identity)

	return nil
}
