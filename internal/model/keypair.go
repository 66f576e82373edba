package model

import (
	"context"
	"time"
)

// KeypairStore defines persistence operations for local signing keys.
type KeypairStore interface {
	GetByIdentity(ctx context.Context, identity Identity) (Keypair, error)
	Create(ctx context.Context, keypair Keypair) (Keypair, error)
}

// Keypair holds the PEM-encoded key material of one local identity.
// Key material is stable once generated: signatures issued at any point
// in the past must stay verifiable against the stored public half.
type Keypair struct {
	UID        Identity
	PublicKey  string
	PrivateKey string
	CreatedAt  time.Time
}
