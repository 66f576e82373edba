package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/talkwell/federation/internal/httpsig"
	"github.com/talkwell/federation/internal/mocks"
	"github.com/talkwell/federation/internal/model"
	"github.com/talkwell/federation/internal/testutil"
)

func newTestSigner(t *testing.T, identity model.Identity) (*Signer, string) {
	t.Helper()

	publicKey, privateKey, err := httpsig.GenerateKeypair()
	require.NoError(t, err)

	keys := &mocks.PrivateKeyProvider{}
	keys.On("GetPrivateKey", mock.Anything, identity).Return(privateKey, nil)
	keys.On("GetPrivateKey", mock.Anything, mock.Anything).Return(privateKey, nil)

	return NewSigner(keys, "https://local.example", testutil.MakeNoopLogger()), publicKey
}

func TestSigner_SignGet(t *testing.T) {
	ctx := context.Background()
	signer, publicKey := newTestSigner(t, 7)

	header, err := signer.Sign(ctx, 7, "https://remote.example/uid/3", nil)
	require.NoError(t, err)

	assert.Empty(t, header.Digest)
	_, err = time.Parse(http.TimeFormat, header.Date)
	require.NoError(t, err)

	parsed, err := httpsig.ParseHeader(header.Signature)
	require.NoError(t, err)
	assert.Equal(t, "https://local.example/uid/7#key", parsed.KeyID)
	assert.Equal(t, []string{httpsig.RequestTarget, "host", "date"}, parsed.Headers)

	message := httpsig.SigningString("get", "remote.example", "/uid/3", header.Date, "")
	require.NoError(t, httpsig.Verify(publicKey, []byte(message), parsed.Signature))
}

func TestSigner_SignPostIncludesDigest(t *testing.T) {
	ctx := context.Background()
	signer, publicKey := newTestSigner(t, 7)

	body := []byte(`{"type":"Create"}`)
	header, err := signer.Sign(ctx, 7, "https://remote.example/inbox", body)
	require.NoError(t, err)

	assert.Equal(t, httpsig.Digest(body), header.Digest)

	parsed, err := httpsig.ParseHeader(header.Signature)
	require.NoError(t, err)
	assert.Equal(t, []string{httpsig.RequestTarget, "host", "date", "digest"}, parsed.Headers)

	message := httpsig.SigningString("post", "remote.example", "/inbox", header.Date, header.Digest)
	require.NoError(t, httpsig.Verify(publicKey, []byte(message), parsed.Signature))
}

func TestSigner_EmptyPathSignsRoot(t *testing.T) {
	ctx := context.Background()
	signer, publicKey := newTestSigner(t, 0)

	header, err := signer.Sign(ctx, 0, "https://remote.example", nil)
	require.NoError(t, err)

	parsed, err := httpsig.ParseHeader(header.Signature)
	require.NoError(t, err)

	message := httpsig.SigningString("get", "remote.example", "/", header.Date, "")
	require.NoError(t, httpsig.Verify(publicKey, []byte(message), parsed.Signature))
}

func TestSigner_InvalidIdentity(t *testing.T) {
	signer := NewSigner(&mocks.PrivateKeyProvider{}, "https://local.example", testutil.MakeNoopLogger())

	_, err := signer.Sign(context.Background(), -1, "https://remote.example/inbox", nil)
	require.ErrorIs(t, err, model.ErrInvalidIdentity)
}

func TestSigner_URLWithoutHost(t *testing.T) {
	signer, _ := newTestSigner(t, 7)

	_, err := signer.Sign(context.Background(), 7, "/relative/path", nil)
	require.Error(t, err)
}

func TestSigner_KeyLookupErrorPropagates(t *testing.T) {
	keys := &mocks.PrivateKeyProvider{}
	keys.On("GetPrivateKey", mock.Anything, model.Identity(7)).Return("", assert.AnError)

	signer := NewSigner(keys, "https://local.example", testutil.MakeNoopLogger())

	_, err := signer.Sign(context.Background(), 7, "https://remote.example/inbox", nil)
	require.ErrorIs(t, err, assert.AnError)
}

func TestSigner_SignRequestStampsHeaders(t *testing.T) {
	ctx := context.Background()
	signer, _ := newTestSigner(t, 7)

	body := []byte(`{}`)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://remote.example/inbox", nil)
	require.NoError(t, err)

	require.NoError(t, signer.SignRequest(ctx, 7, req, body))

	assert.NotEmpty(t, req.Header.Get("Date"))
	assert.NotEmpty(t, req.Header.Get("Signature"))
	assert.Equal(t, httpsig.Digest(body), req.Header.Get("Digest"))
}

func TestSigner_ActorURIs(t *testing.T) {
	signer := NewSigner(&mocks.PrivateKeyProvider{}, "https://local.example", testutil.MakeNoopLogger())

	assert.Equal(t, "https://local.example/actor", signer.ActorURI(model.SystemActor))
	assert.Equal(t, "https://local.example/actor#key", signer.KeyID(model.SystemActor))
	assert.Equal(t, "https://local.example/uid/42", signer.ActorURI(42))
	assert.Equal(t, "https://local.example/uid/42#key", signer.KeyID(42))
}
