package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/talkwell/federation/internal/logger"
	"github.com/talkwell/federation/internal/model"
)

// ActorFetcher refreshes a remote actor record from its actor document.
type ActorFetcher interface {
	FetchActor(ctx context.Context, id string) (model.RemoteActor, error)
}

// InboxResolver turns recipient identifiers into a deduplicated set of
// delivery endpoints.
type InboxResolver struct {
	actors  model.ActorStore
	fetcher ActorFetcher
	logger  *logger.Logger
}

// NewInboxResolver creates an InboxResolver over the actor store.
func NewInboxResolver(actors model.ActorStore, fetcher ActorFetcher, logger *logger.Logger) *InboxResolver {
	return &InboxResolver{
		actors:  actors,
		fetcher: fetcher,
		logger:  logger,
	}
}

// ResolveInboxes asserts actor records for every identifier in one batch,
// then collects each actor's preferred endpoint (sharedInbox over inbox)
// into a set. Identifiers sharing an endpoint collapse to one delivery
// target; actors exposing no endpoint contribute nothing. The public
// collection address is not a deliverable endpoint and is dropped up
// front. Order of the result is not significant.
func (r *InboxResolver) ResolveInboxes(ctx context.Context, ids []string) ([]string, error) {
	targets := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == model.PublicCollection {
			continue
		}
		targets = append(targets, id)
	}
	if len(targets) == 0 {
		return nil, nil
	}

	if err := r.actors.Assert(ctx, targets); err != nil {
		return nil, fmt.Errorf("failed to assert remote actors: %w", err)
	}

	seen := make(map[string]struct{}, len(targets))
	endpoints := make([]string, 0, len(targets))
	for _, id := range targets {
		actor, err := r.actors.GetByID(ctx, id)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("failed to get remote actor %s: %w", id, err)
		}

		if actor.Endpoint() == "" {
			refreshed, err := r.refresh(ctx, id)
			if err != nil {
				r.logger.Warn("Inbox resolver: failed to refresh actor",
					"actor", id,
					"error", err.Error())
				continue
			}
			actor = refreshed
		}

		endpoint := actor.Endpoint()
		if endpoint == "" {
			continue
		}
		if _, dup := seen[endpoint]; dup {
			continue
		}
		seen[endpoint] = struct{}{}
		endpoints = append(endpoints, endpoint)
	}

	return endpoints, nil
}

func (r *InboxResolver) refresh(ctx context.Context, id string) (model.RemoteActor, error) {
	actor, err := r.fetcher.FetchActor(ctx, id)
	if err != nil {
		return model.RemoteActor{}, err
	}

	saved, err := r.actors.Upsert(ctx, actor)
	if err != nil {
		return model.RemoteActor{}, fmt.Errorf("failed to store refreshed actor: %w", err)
	}

	return saved, nil
}
