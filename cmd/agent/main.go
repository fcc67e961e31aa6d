// The agent runs the push-notification sync core for one session: it obtains
// and registers a device credential, arms the foreground listener, and keeps
// the unread count and recent notifications reconciled until shutdown.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hrpulse/config"
	"hrpulse/internal/api"
	"hrpulse/internal/bus"
	"hrpulse/internal/models"
	"hrpulse/internal/session"
	"hrpulse/internal/store"
	"hrpulse/internal/syncer"
	"hrpulse/internal/token"
	"hrpulse/internal/transport/wspush"
)

func main() {
	cfg := config.Load()

	accessToken := os.Getenv("HRPULSE_ACCESS_TOKEN")
	if accessToken == "" {
		log.Fatal("HRPULSE_ACCESS_TOKEN is required (obtain one from the backend login endpoint)")
	}
	sess, err := session.FromToken(cfg.Stub.JWTSecret, accessToken)
	if err != nil {
		log.Fatalf("session: %v", err)
	}

	client := api.New(cfg.Backend.BaseURL, cfg.Backend.Timeout).WithAuth(sess.AccessToken)
	tr := wspush.New(cfg.Push.RelayURL, cfg.Push.PermissionGranted)
	tokens := token.NewManager(tr, client, cfg.Sync.RegisterTimeout)
	msgBus := bus.New(tr)
	st := store.New(client, cfg.Sync.RecentLimit)
	scheduler := syncer.New(st, msgBus, sess, cfg.Sync)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Registration failure degrades the session, it never blocks it.
	if tokens.Register(ctx, sess) {
		log.Printf("[Agent] push credential registered for %s/%s", sess.UserType, sess.UserID)
	} else {
		log.Printf("[Agent] notifications could not be enabled, continuing without push")
	}

	if err := msgBus.SubscribeEvents(func(evt models.Event) {
		log.Printf("[Agent] %s: %s - %s", evt.Type, evt.Title, evt.Body)
	}); err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("scheduler: %v", err)
	}

	if cfg.Metrics.Addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			log.Printf("[Agent] metrics listening on %s", cfg.Metrics.Addr)
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				log.Printf("[Agent] metrics listener: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[Agent] shutting down...")
	scheduler.Stop()
}
