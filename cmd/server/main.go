package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tutorlink/config"
	"tutorlink/internal/database"
	"tutorlink/internal/repository"
	"tutorlink/internal/router"
	"tutorlink/internal/service"
)

func main() {
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	platformID, err := database.SeedPlatformProfile(db, cfg.Payment.PlatformProfileEmail)
	if err != nil {
		log.Fatalf("seed platform profile: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper := service.NewFunnelSweeper(repository.NewClickRepository(db), cfg.Referral.ClickTokenTTL, cfg.Referral.SweepInterval)
	go sweeper.Run(ctx)

	engine := router.Setup(cfg, db, platformID)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	fmt.Println("server stopped")
}
