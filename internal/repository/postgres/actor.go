package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/talkwell/federation/internal/model"
)

var _ model.ActorStore = (*ActorRepository)(nil)

type ActorRepository struct {
	db *Connection
}

func NewActorRepository(db *Connection) *ActorRepository {
	return &ActorRepository{
		db: db,
	}
}

// Assert materializes stub rows for every id in one statement, so that
// later field reads never race concurrent creation.
func (r *ActorRepository) Assert(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := `INSERT INTO remote_actors (id)
			  SELECT unnest($1::text[])
			  ON CONFLICT (id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("failed to assert remote actors: %w", err)
	}

	return nil
}

func (r *ActorRepository) GetByID(ctx context.Context, id string) (model.RemoteActor, error) {
	var actor model.RemoteActor
	query := `SELECT id, inbox, shared_inbox, public_key, last_seen_at
			  FROM remote_actors WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&actor.ID, &actor.Inbox, &actor.SharedInbox, &actor.PublicKey, &actor.LastSeenAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RemoteActor{}, model.ErrNotFound
		}
		return model.RemoteActor{}, fmt.Errorf("failed to get remote actor by id: %w", err)
	}

	return actor, nil
}

func (r *ActorRepository) Upsert(ctx context.Context, actor model.RemoteActor) (model.RemoteActor, error) {
	query := `INSERT INTO remote_actors (id, inbox, shared_inbox, public_key, last_seen_at)
			  VALUES ($1, $2, $3, $4, now())
			  ON CONFLICT (id) DO UPDATE
			  SET inbox = EXCLUDED.inbox,
			      shared_inbox = EXCLUDED.shared_inbox,
			      public_key = EXCLUDED.public_key,
			      last_seen_at = now()
			  RETURNING id, inbox, shared_inbox, public_key, last_seen_at`

	var saved model.RemoteActor
	err := r.db.QueryRow(ctx, query, actor.ID, actor.Inbox, actor.SharedInbox, actor.PublicKey).Scan(
		&saved.ID, &saved.Inbox, &saved.SharedInbox, &saved.PublicKey, &saved.LastSeenAt,
	)
	if err != nil {
		return model.RemoteActor{}, fmt.Errorf("failed to upsert remote actor: %w", err)
	}

	return saved, nil
}
