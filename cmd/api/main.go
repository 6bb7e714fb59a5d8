package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leakbox/internal/analysis"
	"leakbox/internal/archive"
	"leakbox/internal/config"
	"leakbox/internal/handler"
	"leakbox/internal/lead"
	"leakbox/internal/llmclient"
	"leakbox/internal/notify"
	"leakbox/internal/server"
	"leakbox/internal/session"
	"leakbox/internal/wizard"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	flow := wizard.DefaultFlow()
	if cfg.FlowPath != "" {
		flow, err = wizard.LoadFlow(cfg.FlowPath)
		if err != nil {
			log.Fatalf("load wizard flow: %v", err)
		}
	}

	ctx := context.Background()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY is required")
	}
	reportClient, err := llmclient.NewGeminiClient(ctx, apiKey, cfg.Analysis.ReportModel)
	if err != nil {
		log.Fatalf("init report client: %v", err)
	}
	defer reportClient.Close()

	var relevanceClient llmclient.LLMClient
	if cfg.Analysis.RelevanceEnabled {
		rc, err := llmclient.NewGeminiClient(ctx, apiKey, cfg.Analysis.RelevanceModel)
		if err != nil {
			log.Fatalf("init relevance client: %v", err)
		}
		defer rc.Close()
		relevanceClient = rc
	}

	leadStore := lead.Open(cfg.Lead.Path, cfg.Lead.PgDSN)
	defer leadStore.Close()

	var notifier lead.Notifier
	if n := notify.NewEmailNotifier(cfg.Notify.Endpoint, cfg.Notify.ServiceID, cfg.Notify.TemplateID, cfg.Notify.PublicKey); n != nil {
		notifier = n
	} else {
		log.Printf("lead notification disabled: email service not configured")
	}

	var archiveStore *archive.Store
	if cfg.Archive.Enabled {
		archiveStore, err = archive.New(archive.Config{
			Endpoint:  cfg.Archive.Endpoint,
			Region:    cfg.Archive.Region,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Bucket:    cfg.Archive.Bucket,
			UseSSL:    cfg.Archive.UseSSL,
		})
		if err != nil {
			log.Fatalf("init report archive: %v", err)
		}
	}

	router := server.NewRouter(&server.Container{
		Sessions: session.NewStore(flow, cfg.Session.MaxSessions, cfg.Session.TTL),
		Pipeline: &analysis.Pipeline{
			Report:           reportClient,
			Relevance:        relevanceClient,
			RelevanceEnabled: cfg.Analysis.RelevanceEnabled,
		},
		Hub:            handler.NewEventHub(),
		Ledger:         lead.NewLedger(leadStore, notifier),
		Archive:        archiveStore,
		ChannelURL:     cfg.Unlock.ChannelURL,
		AnalyzeTimeout: cfg.Analysis.RequestTimeout,
		AdminID:        cfg.Admin.ID,
		AdminPassword:  cfg.Admin.Password,
	})

	srv := server.New(cfg.Port, router)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-stop:
		log.Printf("received %s, shutting down", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}
}
