package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/liqwen/framegrab/internal/core/analytics"
	"github.com/liqwen/framegrab/internal/core/config"
	"github.com/liqwen/framegrab/internal/core/scratch"
	"github.com/liqwen/framegrab/internal/core/version"
	"github.com/liqwen/framegrab/internal/server"
)

func main() {
	port := flag.Int("port", 0, "HTTP listen port (default: 8080)")
	downloadDir := flag.String("downloads", "", "directory for downloaded videos")
	showVersion := flag.Bool("version", false, "show version")
	flag.Parse()

	if *showVersion {
		fmt.Printf("framegrab-server %s\n", version.Version)
		return
	}

	cfg := config.LoadOrDefault()

	// Resolve port (flag > config > default)
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if *downloadDir != "" {
		cfg.DownloadDir = *downloadDir
	}

	var store *analytics.Store
	if cfg.AnalyticsDB != "" {
		var err error
		store, err = analytics.Open(cfg.AnalyticsDB)
		if err != nil {
			log.Printf("analytics disabled: %v", err)
		} else {
			defer store.Close()
		}
	}

	srv := server.NewServer(cfg, store)

	// Background sweep of expired scratch files.
	janitor := &scratch.Janitor{
		Dirs:   []string{cfg.DownloadDir, cfg.FramesDir, cfg.ShortsDir},
		MaxAge: time.Duration(cfg.CleanupAgeHours) * time.Hour,
	}
	stop := make(chan struct{})
	go janitor.Run(time.Hour, stop)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down server...")
		close(stop)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Stop(ctx)
	}()

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
