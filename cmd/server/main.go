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

	"cardbridge/config"
	"cardbridge/internal/database"
	"cardbridge/internal/router"
	"cardbridge/pkg/gateway"
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

	creds := gateway.ResolveCredentials(gateway.Credentials{
		MerchantAccount: cfg.Gateway.MerchantAccount,
		APIUsername:     cfg.Gateway.APIUsername,
		APIPassword:     cfg.Gateway.APIPassword,
	})
	client := gateway.NewRESTClient(cfg.Gateway.BaseURL, creds.APIUsername, creds.APIPassword)

	var gw *gateway.Gateway
	if cfg.Gateway.AutoCapture {
		gw = gateway.NewImmediateCapture(client, creds, cfg.Gateway.DefaultCurrency)
	} else {
		gw = gateway.NewDelayedCapture(client, creds, cfg.Gateway.DefaultCurrency)
	}
	log.Printf("gateway configured: merchant=%s auto_capture=%v", gw.MerchantAccount(), gw.AutoCapture())

	engine := router.Setup(cfg, db, gw)
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
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	fmt.Println("server stopped")
}
