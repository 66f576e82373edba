package model

import (
	"context"
	"time"
)

// ActorStore defines persistence operations for remote actors.
type ActorStore interface {
	Assert(ctx context.Context, ids []string) error
	GetByID(ctx context.Context, id string) (RemoteActor, error)
	Upsert(ctx context.Context, actor RemoteActor) (RemoteActor, error)
}

// RemoteActor is an external federation party keyed by its URI identifier.
type RemoteActor struct {
	ID          string
	Inbox       string
	SharedInbox string
	PublicKey   string
	LastSeenAt  time.Time
}

// Endpoint returns the preferred delivery endpoint for the actor,
// or an empty string when the actor exposes none.
func (a RemoteActor) Endpoint() string {
	if a.SharedInbox != "" {
		return a.SharedInbox
	}
	return a.Inbox
}

// ActivityHandler consumes authenticated inbound activities. The business
// meaning of an activity is decided by the surrounding forum, not here.
type ActivityHandler interface {
	Handle(ctx context.Context, activity map[string]any) error
}

// ActivityHandlerFunc adapts a function to the ActivityHandler interface.
type ActivityHandlerFunc func(ctx context.Context, activity map[string]any) error

func (f ActivityHandlerFunc) Handle(ctx context.Context, activity map[string]any) error {
	return f(ctx, activity)
}
