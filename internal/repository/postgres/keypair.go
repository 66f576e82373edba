package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/talkwell/federation/internal/model"
)

var _ model.KeypairStore = (*KeypairRepository)(nil)

type KeypairRepository struct {
	db *Connection
}

func NewKeypairRepository(db *Connection) *KeypairRepository {
	return &KeypairRepository{
		db: db,
	}
}

func (r *KeypairRepository) GetByIdentity(ctx context.Context, identity model.Identity) (model.Keypair, error) {
	var keypair model.Keypair
	query := `SELECT uid, public_key, private_key, created_at
			  FROM keypairs WHERE uid = $1`

	err := r.db.QueryRow(ctx, query, int64(identity)).Scan(
		&keypair.UID, &keypair.PublicKey, &keypair.PrivateKey, &keypair.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Keypair{}, model.ErrNotFound
		}
		return model.Keypair{}, fmt.Errorf("failed to get keypair by identity: %w", err)
	}

	return keypair, nil
}

// Create inserts the keypair unless one already exists for the identity,
// and returns the stored pair either way. Concurrent first writes from
// separate processes converge on one winner.
func (r *KeypairRepository) Create(ctx context.Context, keypair model.Keypair) (model.Keypair, error) {
	query := `INSERT INTO keypairs (uid, public_key, private_key)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (uid) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, int64(keypair.UID), keypair.PublicKey, keypair.PrivateKey); err != nil {
		return model.Keypair{}, fmt.Errorf("failed to create keypair: %w", err)
	}

	stored, err := r.GetByIdentity(ctx, keypair.UID)
	if err != nil {
		return model.Keypair{}, fmt.Errorf("failed to reread keypair after create: %w", err)
	}

	return stored, nil
}
