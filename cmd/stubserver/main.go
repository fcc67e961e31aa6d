// stubserver runs the development HR backend: the notification REST contract,
// domain-action endpoints, and the WebSocket push relay.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hrpulse/config"
	"hrpulse/internal/stub"
)

func main() {
	cfg := config.Load()

	db, err := stub.OpenDB(cfg.Stub.DBPath)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if id := stub.SeedAdmin(db, cfg.Stub.AdminEmail, cfg.Stub.AdminPassword); id != "" {
		log.Printf("[Stub] seeded subadmin %s (%s)", cfg.Stub.AdminEmail, id)
	}

	fcm := stub.NewFCMSender(cfg.Stub.FirebaseServiceAccountPath)
	if fcm != nil {
		log.Printf("[Stub] real FCM forwarding enabled")
	}

	server := stub.NewServer(db, fcm, cfg.Stub.JWTSecret, cfg.Stub.AccessExpiry)
	// No read/write timeouts: the relay holds long-lived WebSocket connections.
	srv := &http.Server{
		Addr:    ":" + cfg.Stub.Port,
		Handler: server.Engine(),
	}
	go func() {
		log.Printf("[Stub] listening on :%s", cfg.Stub.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[Stub] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown: %v", err)
	}
}
