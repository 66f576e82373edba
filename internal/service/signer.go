package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/talkwell/federation/internal/httpsig"
	"github.com/talkwell/federation/internal/logger"
	"github.com/talkwell/federation/internal/model"
)

// PrivateKeyProvider resolves the private key of a local identity.
type PrivateKeyProvider interface {
	GetPrivateKey(ctx context.Context, identity model.Identity) (string, error)
}

// Signer produces HTTP Signature headers for outbound requests.
type Signer struct {
	keys    PrivateKeyProvider
	baseURL string
	logger  *logger.Logger
}

// NewSigner creates a Signer for the instance at baseURL.
func NewSigner(keys PrivateKeyProvider, baseURL string, logger *logger.Logger) *Signer {
	return &Signer{
		keys:    keys,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Sign builds the signature header for a request from identity to rawURL.
// A nil payload signs a GET; a non-nil payload signs a POST and includes
// a body digest in the signed string. The result is timestamp-bound and
// must not be reused.
func (s *Signer) Sign(ctx context.Context, identity model.Identity, rawURL string, payload []byte) (model.SignatureHeader, error) {
	if !identity.Valid() {
		return model.SignatureHeader{}, model.ErrInvalidIdentity
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return model.SignatureHeader{}, fmt.Errorf("failed to parse url: %w", err)
	}
	if u.Host == "" {
		return model.SignatureHeader{}, fmt.Errorf("url %q has no host", rawURL)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	date := time.Now().UTC().Format(http.TimeFormat)

	method := "get"
	digest := ""
	headers := httpsig.RequestTarget + " host date"
	if payload != nil {
		method = "post"
		digest = httpsig.Digest(payload)
		headers += " digest"
	}

	privateKey, err := s.keys.GetPrivateKey(ctx, identity)
	if err != nil {
		return model.SignatureHeader{}, fmt.Errorf("failed to get private key: %w", err)
	}

	message := httpsig.SigningString(method, u.Host, path, date, digest)
	signature, err := httpsig.Sign(privateKey, []byte(message))
	if err != nil {
		return model.SignatureHeader{}, fmt.Errorf("failed to sign request: %w", err)
	}

	return model.SignatureHeader{
		Date:      date,
		Digest:    digest,
		Signature: fmt.Sprintf("keyId=%q,headers=%q,signature=%q", s.KeyID(identity), headers, signature),
	}, nil
}

// SignRequest signs req for identity and stamps the Date, Signature and,
// for bodies, Digest headers onto it.
func (s *Signer) SignRequest(ctx context.Context, identity model.Identity, req *http.Request, body []byte) error {
	header, err := s.Sign(ctx, identity, req.URL.String(), body)
	if err != nil {
		return err
	}

	req.Header.Set("Date", header.Date)
	req.Header.Set("Signature", header.Signature)
	if header.Digest != "" {
		req.Header.Set("Digest", header.Digest)
	}

	return nil
}

// KeyID returns the key identifier URI of a local identity.
func (s *Signer) KeyID(identity model.Identity) string {
	return s.ActorURI(identity) + "#key"
}

// ActorURI returns the actor URI of a local identity.
func (s *Signer) ActorURI(identity model.Identity) string {
	if identity == model.SystemActor {
		return s.baseURL + "/actor"
	}
	return fmt.Sprintf("%s/uid/%d", s.baseURL, identity)
}
