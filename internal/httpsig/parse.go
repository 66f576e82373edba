package httpsig

import (
	"fmt"
	"strings"
)

// Header is the parsed form of an inbound Signature header.
type Header struct {
	KeyID     string
	Headers   []string
	Signature string
}

// ParseHeader parses the comma-separated key="value" grammar of a
// Signature header. All three of keyId, headers and signature must be
// present; anything outside the grammar is rejected.
func ParseHeader(raw string) (Header, error) {
	fields := make(map[string]string, 3)

	rest := raw
	for {
		rest = strings.TrimLeft(rest, " ")
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 {
			return Header{}, fmt.Errorf("expected key=\"value\" pair at %q", rest)
		}
		key := rest[:eq]
		if !isToken(key) {
			return Header{}, fmt.Errorf("invalid parameter name %q", key)
		}
		rest = rest[eq+1:]
		if len(rest) < 2 || rest[0] != '"' {
			return Header{}, fmt.Errorf("parameter %q is not quoted", key)
		}
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			return Header{}, fmt.Errorf("unterminated value for parameter %q", key)
		}
		if _, dup := fields[key]; dup {
			return Header{}, fmt.Errorf("duplicate parameter %q", key)
		}
		fields[key] = rest[1 : 1+end]

		rest = rest[end+2:]
		if rest == "" {
			break
		}
		if rest[0] != ',' {
			return Header{}, fmt.Errorf("expected comma at %q", rest)
		}
		rest = rest[1:]
	}

	h := Header{
		KeyID:     fields["keyId"],
		Headers:   strings.Fields(fields["headers"]),
		Signature: fields["signature"],
	}
	if h.KeyID == "" || len(h.Headers) == 0 || h.Signature == "" {
		return Header{}, fmt.Errorf("missing keyId, headers or signature parameter")
	}

	return h, nil
}

func isToken(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return s != ""
}
