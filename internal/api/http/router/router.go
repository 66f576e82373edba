package router

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talkwell/federation/internal/api/http/handler"
	"github.com/talkwell/federation/internal/api/http/middleware"
	"github.com/talkwell/federation/internal/logger"
)

// Pinger checks backing-store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router assembles the inbound federation routes.
type Router struct {
	inbox     *handler.Inbox
	outbox    *handler.Outbox
	actor     *handler.Actor
	signature *middleware.Signature
	logging   *middleware.Logging
	db        Pinger
	logger    *logger.Logger
}

// New creates a Router over the given handlers and middlewares.
func New(
	inbox *handler.Inbox,
	outbox *handler.Outbox,
	actor *handler.Actor,
	signature *middleware.Signature,
	logging *middleware.Logging,
	db Pinger,
	logger *logger.Logger,
) *Router {
	return &Router{
		inbox:     inbox,
		outbox:    outbox,
		actor:     actor,
		signature: signature,
		logging:   logging,
		db:        db,
		logger:    logger,
	}
}

// Register wires up all routes and returns the root handler. The inbox
// and outbox sit behind signature verification; key documents and
// operational endpoints do not.
func (r *Router) Register() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /inbox", r.signature.Wrap(r.inbox))
	mux.Handle("POST /outbox/{uid}", r.signature.Wrap(r.outbox))
	mux.Handle("GET /actor", r.actor)
	mux.Handle("GET /uid/{uid}", r.actor)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", r.healthz)

	return r.logging.Wrap(mux)
}

func (r *Router) healthz(w http.ResponseWriter, req *http.Request) {
	if err := r.db.Ping(req.Context()); err != nil {
		r.logger.Error("Router: health check failed", "error", err.Error())
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}
