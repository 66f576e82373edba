package model

// Wire format constants of the federation protocol.
const (
	// LDContentType is the content type for activity payloads, on both
	// outbound requests and content-negotiated fetches.
	LDContentType = `application/ld+json; profile="https://www.w3.org/ns/activitystreams"`

	// ActivityStreamsContext is the @context value injected into every
	// outbound envelope.
	ActivityStreamsContext = "https://www.w3.org/ns/activitystreams"

	// PublicCollection addresses the public audience. It is an address,
	// not a deliverable endpoint, and is skipped during inbox resolution.
	PublicCollection = "https://www.w3.org/ns/activitystreams#Public"
)

// SignatureHeader is the outbound signing artifact. It is timestamp-bound
// and produced fresh per request, never cached or reused.
type SignatureHeader struct {
	Date      string
	Digest    string
	Signature string
}
