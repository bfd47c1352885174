// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ollamagw/gateway/internal/config"
	"github.com/ollamagw/gateway/internal/httpapi"
	"github.com/ollamagw/gateway/internal/logging"
	"github.com/ollamagw/gateway/internal/registry"
	"github.com/ollamagw/gateway/internal/upstream"
)

// Version is set via ldflags during build.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	port := flag.Int("port", 0, "HTTP port to listen on (overrides PROXY_PORT)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Ollama Gateway\nVersion: %s\n", Version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level})
	logger.Info("starting ollama gateway", "version", Version, "port", cfg.Server.Port, "upstream", cfg.Upstream.BaseURL)

	client := upstream.NewOpenAIClient(upstream.Config{
		BaseURL:        cfg.Upstream.BaseURL,
		APIKey:         cfg.Upstream.APIKey,
		RequestTimeout: cfg.Upstream.RequestTimeout,
		StreamTimeout:  cfg.Upstream.StreamTimeout,
		MaxConnections: cfg.Upstream.MaxConnections,
		MaxIdleConns:   cfg.Upstream.MaxIdleConns,
		MaxRetries:     cfg.Upstream.MaxRetries,
		Logger:         logger,
	})

	reg := registry.New()
	router := httpapi.New(client, reg, logger)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Upstream.RequestTimeout,
		WriteTimeout: cfg.Upstream.StreamTimeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped gracefully")
}
