// Package main wires together the platform service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	gcsclient "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/campusfolio/platform/internal/allowlist"
	"github.com/campusfolio/platform/internal/api"
	attachgcs "github.com/campusfolio/platform/internal/attachment/gcs"
	attachlocal "github.com/campusfolio/platform/internal/attachment/local"
	attachmem "github.com/campusfolio/platform/internal/attachment/memory"
	"github.com/campusfolio/platform/internal/auth"
	"github.com/campusfolio/platform/internal/clock/system"
	"github.com/campusfolio/platform/internal/config"
	"github.com/campusfolio/platform/internal/crawl"
	collyfetcher "github.com/campusfolio/platform/internal/fetcher/colly"
	idgen "github.com/campusfolio/platform/internal/id/uuid"
	"github.com/campusfolio/platform/internal/logging"
	pubmem "github.com/campusfolio/platform/internal/publisher/memory"
	"github.com/campusfolio/platform/internal/publisher/noop"
	pubgcp "github.com/campusfolio/platform/internal/publisher/pubsub"
	"github.com/campusfolio/platform/internal/records"
	"github.com/campusfolio/platform/internal/scheduler"
	"github.com/campusfolio/platform/internal/store/memory"
	"github.com/campusfolio/platform/internal/store/postgres"
	"github.com/campusfolio/platform/internal/workflow"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, cleanup, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store init failed", zap.Error(err))
	}
	defer cleanup()

	attachments, err := buildAttachments(ctx, cfg)
	if err != nil {
		logger.Fatal("attachment store init failed", zap.Error(err))
	}
	publisher, err := buildPublisher(ctx, cfg)
	if err != nil {
		logger.Fatal("publisher init failed", zap.Error(err))
	}

	clk := system.New()
	ids := idgen.New()
	validator := allowlist.New(allowlist.Config{AllowLoopback: cfg.Allowlist.AllowLoopback})

	authSvc := auth.New(auth.Config{
		Secret:   cfg.Auth.Secret,
		TokenTTL: cfg.TokenTTL(),
	}, stores.tenants, stores.users, clk, ids)

	workflowSvc := workflow.New(workflow.Deps{
		Tenants:           stores.tenants,
		Users:             stores.users,
		Claims:            stores.claims,
		Announcements:     stores.announcements,
		Attachments:       attachments,
		Publisher:         publisher,
		Allowlist:         validator,
		Clock:             clk,
		IDs:               ids,
		Logger:            logger,
		StrictSourceCheck: cfg.Approval.StrictSourceCheck,
	})

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Crawl.UserAgent,
		Timeout:   cfg.CrawlTimeout(),
	})
	engine := crawl.New(crawl.Deps{
		Tenants:       stores.tenants,
		Users:         stores.users,
		Announcements: stores.announcements,
		Fetcher:       fetcher,
		Publisher:     publisher,
		Clock:         clk,
		IDs:           ids,
		Logger:        logger,
	})

	sched := scheduler.New(cfg.CrawlInterval(), engine, logger)
	sched.Start(ctx)
	defer sched.Stop()

	apiServer := api.NewServer(authSvc, workflowSvc, engine, stores.users, logger, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// storeSet groups the record stores regardless of backend.
type storeSet struct {
	tenants       records.TenantStore
	users         records.UserStore
	claims        records.ClaimStore
	announcements records.AnnouncementStore
}

func buildStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (storeSet, func(), error) {
	switch cfg.Store.Provider {
	case "postgres":
		pool, err := postgres.Connect(ctx, postgres.Config{
			DSN:             cfg.Store.Postgres.DSN,
			MaxConns:        int32(cfg.Store.Postgres.MaxConns),
			MinConns:        int32(cfg.Store.Postgres.MinConns),
			MaxConnLifetime: time.Duration(cfg.Store.Postgres.MaxConnLifetimeMin) * time.Minute,
		})
		if err != nil {
			return storeSet{}, nil, err
		}
		return storeSet{
			tenants:       postgres.NewTenantStore(pool),
			users:         postgres.NewUserStore(pool),
			claims:        postgres.NewClaimStore(pool),
			announcements: postgres.NewAnnouncementStore(pool),
		}, pool.Close, nil

	default:
		tenants := memory.NewTenantStore()
		users := memory.NewUserStore()
		claims := memory.NewClaimStore()
		announcements := memory.NewAnnouncementStore()
		if cfg.Server.DemoPages {
			eventsURL := fmt.Sprintf("http://127.0.0.1:%d/mock/demo.edu/events", cfg.Server.Port)
			if err := memory.SeedDemo(ctx, tenants, users, announcements, eventsURL); err != nil {
				return storeSet{}, nil, err
			}
			logger.Info("seeded demo tenant", zap.String("events_url", eventsURL))
		}
		return storeSet{
			tenants:       tenants,
			users:         users,
			claims:        claims,
			announcements: announcements,
		}, func() {}, nil
	}
}

func buildAttachments(ctx context.Context, cfg config.Config) (records.AttachmentStore, error) {
	switch cfg.Attachments.Provider {
	case "local":
		return attachlocal.New(attachlocal.Config{BaseDir: cfg.Attachments.LocalDir})
	case "gcs":
		client, err := gcsclient.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs client: %w", err)
		}
		return attachgcs.New(client, attachgcs.Config{
			Bucket: cfg.Attachments.GCSBucket,
			Prefix: cfg.Attachments.Prefix,
		})
	default:
		return attachmem.New(), nil
	}
}

func buildPublisher(ctx context.Context, cfg config.Config) (records.Publisher, error) {
	switch cfg.Publisher.Provider {
	case "pubsub":
		client, err := pubsub.NewClient(ctx, cfg.Publisher.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("pubsub client: %w", err)
		}
		return pubgcp.New(client.Topic(cfg.Publisher.TopicName)), nil
	case "memory":
		return pubmem.New(), nil
	default:
		return noop.New(), nil
	}
}
