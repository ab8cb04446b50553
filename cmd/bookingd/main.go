// Command bookingd runs the booking engine's HTTP facade, wiring config,
// logging, the persisted store, the JWT proof issuer and the engine
// together. Grounded in services/escrow-gateway/main.go's composition root
// shape: load config, open the store, build the auth/engine/server chain,
// serve, and shut down gracefully on SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"bookingengine/auth"
	"bookingengine/config"
	"bookingengine/native/booking"
	"bookingengine/observability/logging"
	"bookingengine/rpcserver"
	"bookingengine/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "bookingd.toml", "path to the TOML configuration file")
	env := flag.String("env", "", "deployment environment name, included in log lines")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	baseLog := logging.Setup("bookingd", *env, cfg.LogRotatePath)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("create data dir: %v", err)
	}

	st, err := store.OpenGormStore(filepath.Join(cfg.DataDir, "bookingd.sqlite"))
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	issuer := auth.NewIssuer([]byte(cfg.AdminTokenSigningKey), cfg.TokenIssuer, 0)

	snap, err := rpcserver.LoadSnapshot(st)
	if err != nil {
		log.Fatalf("load persisted state: %v", err)
	}

	var engine *booking.Engine
	if rpcserver.HasState(snap) {
		engine = booking.RestoreEngine(snap)
		baseLog.Info("restored engine state from store",
			slog.Int("items", len(snap.Items)), slog.Int("reservations", len(snap.Reservations)))
	} else {
		engine = booking.NewEngine()
		if err := engine.SetPaymentDelay(booking.Proof{Kind: booking.ProofKindAdmin}, cfg.DefaultPaymentDelaySeconds); err != nil {
			log.Fatalf("apply default payment delay: %v", err)
		}
		if err := engine.SetMinArbitrators(booking.Proof{Kind: booking.ProofKindAdmin}, cfg.DefaultMinArbitrators); err != nil {
			log.Fatalf("apply default min arbitrators: %v", err)
		}
	}

	server := rpcserver.NewServer(engine, issuer, st, baseLog)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: server,
	}

	go func() {
		baseLog.Info("bookingd listening", slog.String("address", cfg.ListenAddress))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	baseLog.Info("shutting down bookingd")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		baseLog.Error("graceful shutdown failed", slog.Any("error", err))
	}
}
