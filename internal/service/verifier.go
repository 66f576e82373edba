package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/talkwell/federation/internal/httpsig"
	"github.com/talkwell/federation/internal/logger"
	"github.com/talkwell/federation/internal/metrics"
)

// KeyResolver fetches the PEM public key published at a keyId URI.
type KeyResolver interface {
	FetchPublicKey(ctx context.Context, keyID string) (string, error)
}

// Verifier authenticates inbound requests against the claimed signer's
// published public key.
type Verifier struct {
	keys     KeyResolver
	basePath string
	logger   *logger.Logger
}

// NewVerifier creates a Verifier. basePath is the mount prefix of the
// inbound routes, prepended to the request path when reconstructing the
// signed string.
func NewVerifier(keys KeyResolver, basePath string, logger *logger.Logger) *Verifier {
	return &Verifier{
		keys:     keys,
		basePath: basePath,
		logger:   logger,
	}
}

// Verify reports whether the request carries a valid signature. It is a
// predicate: absence of a signature, malformed input, unreachable keys
// and cryptographic mismatches all collapse to false, never to an error.
func (v *Verifier) Verify(ctx context.Context, req *http.Request) bool {
	raw := req.Header.Get("Signature")
	if raw == "" {
		return false
	}

	ok := v.verify(ctx, req, raw)
	if ok {
		metrics.Verifications.WithLabelValues(metrics.ResultOK).Inc()
	} else {
		metrics.Verifications.WithLabelValues(metrics.ResultFailed).Inc()
	}
	return ok
}

func (v *Verifier) verify(ctx context.Context, req *http.Request, raw string) bool {
	parsed, err := httpsig.ParseHeader(raw)
	if err != nil {
		v.logger.Debug("Verifier: malformed signature header", "error", err.Error())
		return false
	}

	message := v.signingString(parsed.Headers, req)

	publicKey, err := v.keys.FetchPublicKey(ctx, parsed.KeyID)
	if err != nil {
		v.logger.Debug("Verifier: failed to resolve public key",
			"key_id", parsed.KeyID,
			"error", err.Error())
		return false
	}

	if err := httpsig.Verify(publicKey, []byte(message), parsed.Signature); err != nil {
		v.logger.Debug("Verifier: signature mismatch", "key_id", parsed.KeyID)
		return false
	}

	return true
}

// signingString reconstructs the signed string in the header order listed
// by the sender. Order is part of the contract; names the request does
// not carry are skipped.
func (v *Verifier) signingString(names []string, req *http.Request) string {
	lines := make([]string, 0, len(names))
	for _, name := range names {
		if name == httpsig.RequestTarget {
			lines = append(lines, fmt.Sprintf("%s: %s %s%s",
				httpsig.RequestTarget, strings.ToLower(req.Method), v.basePath, req.URL.Path))
			continue
		}

		value := req.Header.Get(name)
		if strings.EqualFold(name, "host") {
			// The Host header is promoted to Request.Host server-side.
			value = req.Host
		}
		if value == "" {
			continue
		}
		lines = append(lines, name+": "+value)
	}
	return strings.Join(lines, "\n")
}
