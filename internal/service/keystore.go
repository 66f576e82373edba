package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/talkwell/federation/internal/httpsig"
	"github.com/talkwell/federation/internal/logger"
	"github.com/talkwell/federation/internal/model"
)

// Keystore serves key material for local identities, generating a keypair
// lazily on first access.
type Keystore struct {
	store  model.KeypairStore
	group  singleflight.Group
	logger *logger.Logger
}

// NewKeystore creates a new Keystore backed by the given store.
func NewKeystore(store model.KeypairStore, logger *logger.Logger) *Keystore {
	return &Keystore{
		store:  store,
		logger: logger,
	}
}

// GetPublicKey returns the PEM-encoded public key of the identity.
func (k *Keystore) GetPublicKey(ctx context.Context, identity model.Identity) (string, error) {
	keypair, err := k.getOrCreateKeypair(ctx, identity)
	if err != nil {
		return "", err
	}
	return keypair.PublicKey, nil
}

// GetPrivateKey returns the PEM-encoded private key of the identity.
func (k *Keystore) GetPrivateKey(ctx context.Context, identity model.Identity) (string, error) {
	keypair, err := k.getOrCreateKeypair(ctx, identity)
	if err != nil {
		return "", err
	}
	return keypair.PrivateKey, nil
}

// getOrCreateKeypair looks the pair up and generates one on a miss.
// Concurrent first accesses for the same identity collapse into a single
// generation; storage failures other than a miss propagate untouched.
func (k *Keystore) getOrCreateKeypair(ctx context.Context, identity model.Identity) (model.Keypair, error) {
	if !identity.Valid() {
		return model.Keypair{}, model.ErrInvalidIdentity
	}

	keypair, err := k.store.GetByIdentity(ctx, identity)
	if err == nil {
		return keypair, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.Keypair{}, fmt.Errorf("failed to get keypair: %w", err)
	}

	v, err, _ := k.group.Do(strconv.FormatInt(int64(identity), 10), func() (any, error) {
		// A concurrent flight may have stored the pair between our miss
		// and this call.
		keypair, err := k.store.GetByIdentity(ctx, identity)
		if err == nil {
			return keypair, nil
		}
		if !errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("failed to get keypair: %w", err)
		}

		publicKey, privateKey, err := httpsig.GenerateKeypair()
		if err != nil {
			return nil, fmt.Errorf("failed to generate keypair: %w", err)
		}

		stored, err := k.store.Create(ctx, model.Keypair{
			UID:        identity,
			PublicKey:  publicKey,
			PrivateKey: privateKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to store keypair: %w", err)
		}

		k.logger.Info("Keystore: generated keypair", "uid", identity)

		return stored, nil
	})
	if err != nil {
		return model.Keypair{}, err
	}

	return v.(model.Keypair), nil
}
