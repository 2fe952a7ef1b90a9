package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/liqwen/framegrab/internal/core/analytics"
	"github.com/liqwen/framegrab/internal/core/config"
	"github.com/liqwen/framegrab/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server that extracts frames and renders clips on request.

Examples:
  framegrab serve              # Start server on port 8080
  framegrab serve -p 9000      # Start server on port 9000

API Endpoints:
  GET  /api/health             # Health check
  POST /api/validate-url       # Detect the platform for a URL
  GET  /api/video-info         # Probe remote metadata
  POST /api/extract-frames     # Extract frames at timestamps
  POST /api/shorts             # Render a short clip
  POST /api/cleanup            # Sweep expired scratch files
  GET  /api/stats              # Request history`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP listen port (default: 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg := config.LoadOrDefault()
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	var store *analytics.Store
	if cfg.AnalyticsDB != "" {
		var err error
		store, err = analytics.Open(cfg.AnalyticsDB)
		if err != nil {
			log.Printf("[server] analytics disabled: %v", err)
		} else {
			defer store.Close()
		}
	}

	srv := server.NewServer(cfg, store)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Stop(ctx)
	}()

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
