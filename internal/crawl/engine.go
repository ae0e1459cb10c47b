// Package crawl ingests announcement candidates from tenant pages. Crawled
// records enter the approval workflow as pending, exactly like manual
// submissions; the crawler never approves anything.
package crawl

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusfolio/platform/internal/metrics"
	"github.com/campusfolio/platform/internal/records"
)

// Deps wires the engine to its collaborators.
type Deps struct {
	Tenants       records.TenantStore
	Users         records.UserStore
	Announcements records.AnnouncementStore
	Fetcher       records.Fetcher
	Publisher     records.Publisher
	Clock         records.Clock
	IDs           records.IDGenerator
	Contract      Contract
	Logger        *zap.Logger
}

// Engine runs crawl passes over tenant-configured target pages.
type Engine struct {
	deps   Deps
	logger *zap.Logger
}

// New builds an Engine.
func New(deps Deps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Contract == (Contract{}) {
		deps.Contract = DefaultContract()
	}
	return &Engine{deps: deps, logger: logger.Named("crawl")}
}

// RunTenant crawls one tenant's target pages. A fetch or store failure on
// one target never aborts the remaining targets.
func (e *Engine) RunTenant(ctx context.Context, tenant records.Tenant) (records.CrawlResult, error) {
	result := records.CrawlResult{TenantID: tenant.ID, Tenant: tenant.Name}

	if !tenant.Enabled || !tenant.CrawlEnabled || len(tenant.CrawlTargets) == 0 {
		return result, nil
	}

	actor, err := e.deps.Users.FindReviewActor(ctx, tenant.ID)
	if errors.Is(err, records.ErrNotFound) {
		e.logger.Warn("no admin or faculty to attribute crawled records to, skipping tenant",
			zap.String("tenant", tenant.Name))
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("resolve review actor: %w", err)
	}

	for _, target := range tenant.CrawlTargets {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		created, skipped := e.crawlTarget(ctx, tenant, actor, target)
		result.Created += created
		result.Skipped += skipped
	}
	return result, nil
}

// RunTenantByID loads a tenant and crawls it. It backs the on-demand crawl
// trigger.
func (e *Engine) RunTenantByID(ctx context.Context, tenantID uuid.UUID) (records.CrawlResult, error) {
	tenant, err := e.deps.Tenants.QueryByID(ctx, tenantID)
	if err != nil {
		return records.CrawlResult{}, fmt.Errorf("load tenant: %w", err)
	}
	return e.RunTenant(ctx, tenant)
}

// RunAll crawls every crawl-enabled tenant sequentially and publishes a run
// summary. A failing tenant is logged and does not stop the run.
func (e *Engine) RunAll(ctx context.Context) ([]records.CrawlResult, error) {
	tenants, err := e.deps.Tenants.ListCrawlEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("list crawl-enabled tenants: %w", err)
	}

	results := make([]records.CrawlResult, 0, len(tenants))
	for _, tenant := range tenants {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := e.RunTenant(ctx, tenant)
		if err != nil {
			e.logger.Error("tenant crawl failed",
				zap.String("tenant", tenant.Name), zap.Error(err))
			continue
		}
		results = append(results, result)
		e.logger.Info("tenant crawl complete",
			zap.String("tenant", tenant.Name),
			zap.Int("created", result.Created),
			zap.Int("skipped", result.Skipped))
	}

	if e.deps.Publisher != nil {
		if _, err := e.deps.Publisher.Publish(ctx, "crawl.completed", results); err != nil {
			e.logger.Warn("publish crawl summary failed", zap.Error(err))
		}
	}
	metrics.ObserveCrawlRun()
	return results, nil
}

func (e *Engine) crawlTarget(ctx context.Context, tenant records.Tenant, actor records.User, target string) (created, skipped int) {
	body, err := e.deps.Fetcher.Fetch(ctx, target)
	if err != nil {
		e.logger.Warn("fetch crawl target failed",
			zap.String("tenant", tenant.Name), zap.String("target", target), zap.Error(err))
		metrics.ObserveFetchFailure(tenant.Name)
		return 0, 0
	}

	candidates, err := e.deps.Contract.Parse(body, target)
	if err != nil {
		e.logger.Warn("parse crawl target failed",
			zap.String("tenant", tenant.Name), zap.String("target", target), zap.Error(err))
		metrics.ObserveFetchFailure(tenant.Name)
		return 0, 0
	}

	for _, cand := range candidates {
		ok, err := e.ingest(ctx, tenant, actor, cand)
		if err != nil {
			e.logger.Warn("ingest candidate failed",
				zap.String("tenant", tenant.Name),
				zap.String("external_key", cand.ExternalKey), zap.Error(err))
			continue
		}
		if ok {
			created++
			metrics.ObserveIngest(tenant.Name, "created")
		} else {
			skipped++
			metrics.ObserveIngest(tenant.Name, "skipped")
		}
	}
	return created, skipped
}

func (e *Engine) ingest(ctx context.Context, tenant records.Tenant, actor records.User, cand Candidate) (bool, error) {
	id, err := e.deps.IDs.NewRawID()
	if err != nil {
		return false, fmt.Errorf("mint announcement id: %w", err)
	}
	now := e.deps.Clock.Now()
	return e.deps.Announcements.CreateIfAbsent(ctx, records.Announcement{
		ID:          id,
		TenantID:    tenant.ID,
		Title:       cand.Title,
		Body:        cand.Body,
		Category:    cand.Category,
		SourceURL:   cand.SourceURL,
		StartsAt:    cand.StartsAt,
		EndsAt:      cand.EndsAt,
		ExternalKey: cand.ExternalKey,
		Status:      records.StatusPending,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}
