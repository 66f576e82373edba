package model

import (
	"context"
	"net"
	"net/http"
)

// SecurityLayer produces listeners for the inbound server, with or
// without TLS.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is the inbound federation endpoint lifecycle.
type Server interface {
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
}

// HTTPClient issues outbound requests. Timeouts are the client's own
// concern; the engine enforces none of its own.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
