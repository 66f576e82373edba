package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/talkwell/federation/internal/api/http/handler"
	"github.com/talkwell/federation/internal/api/http/middleware"
	"github.com/talkwell/federation/internal/api/http/router"
	httpServer "github.com/talkwell/federation/internal/api/http/server"
	"github.com/talkwell/federation/internal/config"
	"github.com/talkwell/federation/internal/logger"
	"github.com/talkwell/federation/internal/model"
	"github.com/talkwell/federation/internal/repository/postgres"
	"github.com/talkwell/federation/internal/server"
	"github.com/talkwell/federation/internal/service"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	keypairRepo := postgres.NewKeypairRepository(db)
	actorRepo := postgres.NewActorRepository(db)

	httpClient := &http.Client{Timeout: cfg.Federation.RequestTimeout}

	keystore := service.NewKeystore(keypairRepo, logger.Component("keystore"))
	signer := service.NewSigner(keystore, cfg.Federation.BaseURL, logger.Component("signer"))
	keyResolver := service.NewRemoteKeyResolver(signer, httpClient, logger.Component("key_resolver"))
	verifier := service.NewVerifier(keyResolver, "", logger.Component("verifier"))
	fetcher := service.NewFetcher(signer, httpClient, cfg.Federation.CacheTTL, logger.Component("fetcher"))
	defer fetcher.Stop()
	inboxResolver := service.NewInboxResolver(actorRepo, fetcher, logger.Component("inbox_resolver"))
	dispatcher := service.NewDispatcher(signer, inboxResolver, httpClient, logger.Component("dispatcher"))

	// The forum plugs its own activity processing in here.
	activities := model.ActivityHandlerFunc(func(ctx context.Context, activity map[string]any) error {
		logger.Info("inbound activity accepted",
			"type", activity["type"],
			"actor", activity["actor"])
		return nil
	})

	r := router.New(
		handler.NewInbox(activities, logger.Component("inbox")),
		handler.NewOutbox(dispatcher, logger.Component("outbox")),
		handler.NewActor(keystore, cfg.Federation.BaseURL, logger.Component("actor")),
		middleware.NewSignature(verifier, logger.Component("signature")),
		middleware.NewLogging(logger.Component("http")),
		db,
		logger.Component("router"),
	)

	srv := httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
