// Package httpsig implements the draft-cavage HTTP Signatures primitives:
// signing-string construction, body digests and RSA-SHA256 signatures over
// PEM-encoded keys.
package httpsig

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"
)

// RequestTarget is the pseudo-header carrying method and path in the
// signing string.
const RequestTarget = "(request-target)"

// SigningString builds the canonical string signed by the sender. The
// digest line is appended only when a digest is present, and the signed
// headers list must match line order exactly on both ends.
func SigningString(method, host, path, date, digest string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s %s\n", RequestTarget, strings.ToLower(method), path)
	fmt.Fprintf(&b, "host: %s\n", host)
	fmt.Fprintf(&b, "date: %s", date)
	if digest != "" {
		fmt.Fprintf(&b, "\ndigest: %s", digest)
	}
	return b.String()
}

// Digest computes the body digest header value, "sha-256=<base64>".
func Digest(body []byte) string {
	sum := sha256.Sum256(body)
	return "sha-256=" + base64.StdEncoding.EncodeToString(sum[:])
}

// Sign signs the message with a PEM-encoded RSA private key and returns
// the base64-encoded RSA-SHA256 signature.
func Sign(privateKeyPEM string, message []byte) (string, error) {
	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil {
		return "", fmt.Errorf("failed to decode private key PEM")
	}

	var rsaKey *rsa.PrivateKey
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		var ok bool
		rsaKey, ok = key.(*rsa.PrivateKey)
		if !ok {
			return "", fmt.Errorf("private key is not RSA")
		}
	} else if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		rsaKey = key
	} else {
		return "", fmt.Errorf("failed to parse private key: %w", err)
	}

	sum := sha256.Sum256(message)
	signature, err := rsa.SignPKCS1v15(rand.Reader, rsaKey, crypto.SHA256, sum[:])
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}

	return base64.StdEncoding.EncodeToString(signature), nil
}

// Verify checks a base64-encoded RSA-SHA256 signature over message against
// a PEM-encoded RSA public key.
func Verify(publicKeyPEM string, message []byte, signature string) error {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return fmt.Errorf("failed to decode public key PEM")
	}

	var rsaKey *rsa.PublicKey
	if key, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		var ok bool
		rsaKey, ok = key.(*rsa.PublicKey)
		if !ok {
			return fmt.Errorf("public key is not RSA")
		}
	} else if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		rsaKey = key
	} else {
		return fmt.Errorf("failed to parse public key: %w", err)
	}

	raw, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("failed to decode signature: %w", err)
	}

	sum := sha256.Sum256(message)
	if err := rsa.VerifyPKCS1v15(rsaKey, crypto.SHA256, sum[:], raw); err != nil {
		return fmt.Errorf("signature mismatch: %w", err)
	}

	return nil
}
