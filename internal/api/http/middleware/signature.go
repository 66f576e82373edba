package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/talkwell/federation/internal/logger"
)

// RequestVerifier authenticates an inbound request.
type RequestVerifier interface {
	Verify(ctx context.Context, req *http.Request) bool
}

// Signature rejects requests that do not carry a valid HTTP signature.
type Signature struct {
	verifier RequestVerifier
	logger   *logger.Logger
}

// NewSignature creates a new Signature middleware instance.
func NewSignature(verifier RequestVerifier, logger *logger.Logger) *Signature {
	return &Signature{verifier: verifier, logger: logger}
}

// Wrap verifies the request signature before calling next. The body is
// read once up front and restored around verification so the handler
// still sees it. Rejections carry no cryptographic detail.
func (m *Signature) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body.Close()
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		if !m.verifier.Verify(r.Context(), r) {
			m.logger.Info("Signature middleware: rejected request",
				"method", r.Method,
				"path", r.URL.Path)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}
