// Package mocks provides testify mocks for the engine's interfaces.
package mocks

import (
	"context"
	"net"
	"net/http"

	"github.com/stretchr/testify/mock"

	"github.com/talkwell/federation/internal/model"
)

// KeypairStore mocks model.KeypairStore.
type KeypairStore struct {
	mock.Mock
}

func (m *KeypairStore) GetByIdentity(ctx context.Context, identity model.Identity) (model.Keypair, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).(model.Keypair), args.Error(1)
}

func (m *KeypairStore) Create(ctx context.Context, keypair model.Keypair) (model.Keypair, error) {
	args := m.Called(ctx, keypair)
	return args.Get(0).(model.Keypair), args.Error(1)
}

// ActorStore mocks model.ActorStore.
type ActorStore struct {
	mock.Mock
}

func (m *ActorStore) Assert(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *ActorStore) GetByID(ctx context.Context, id string) (model.RemoteActor, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.RemoteActor), args.Error(1)
}

func (m *ActorStore) Upsert(ctx context.Context, actor model.RemoteActor) (model.RemoteActor, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).(model.RemoteActor), args.Error(1)
}

// HTTPClient mocks model.HTTPClient.
type HTTPClient struct {
	mock.Mock
}

func (m *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

// KeyResolver mocks service.KeyResolver.
type KeyResolver struct {
	mock.Mock
}

func (m *KeyResolver) FetchPublicKey(ctx context.Context, keyID string) (string, error) {
	args := m.Called(ctx, keyID)
	return args.String(0), args.Error(1)
}

// PrivateKeyProvider mocks service.PrivateKeyProvider.
type PrivateKeyProvider struct {
	mock.Mock
}

func (m *PrivateKeyProvider) GetPrivateKey(ctx context.Context, identity model.Identity) (string, error) {
	args := m.Called(ctx, identity)
	return args.String(0), args.Error(1)
}

// ActorFetcher mocks service.ActorFetcher.
type ActorFetcher struct {
	mock.Mock
}

func (m *ActorFetcher) FetchActor(ctx context.Context, id string) (model.RemoteActor, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.RemoteActor), args.Error(1)
}

// EndpointResolver mocks service.EndpointResolver.
type EndpointResolver struct {
	mock.Mock
}

func (m *EndpointResolver) ResolveInboxes(ctx context.Context, ids []string) ([]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// SecurityLayer mocks model.SecurityLayer.
type SecurityLayer struct {
	mock.Mock
}

func (m *SecurityLayer) Listen(protocol, addr string) (net.Listener, error) {
	args := m.Called(protocol, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(net.Listener), args.Error(1)
}

// Sender mocks handler.Sender.
type Sender struct {
	mock.Mock
}

func (m *Sender) Send(ctx context.Context, identity model.Identity, payload map[string]any, targets ...string) error {
	args := m.Called(ctx, identity, payload, targets)
	return args.Error(0)
}

// PublicKeyProvider mocks handler.PublicKeyProvider.
type PublicKeyProvider struct {
	mock.Mock
}

func (m *PublicKeyProvider) GetPublicKey(ctx context.Context, identity model.Identity) (string, error) {
	args := m.Called(ctx, identity)
	return args.String(0), args.Error(1)
}

// RequestVerifier mocks middleware.RequestVerifier.
type RequestVerifier struct {
	mock.Mock
}

func (m *RequestVerifier) Verify(ctx context.Context, req *http.Request) bool {
	args := m.Called(ctx, req)
	return args.Bool(0)
}

// Pinger mocks router.Pinger.
type Pinger struct {
	mock.Mock
}

func (m *Pinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ActivityHandler mocks model.ActivityHandler.
type ActivityHandler struct {
	mock.Mock
}

func (m *ActivityHandler) Handle(ctx context.Context, activity map[string]any) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}
