package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/apnchris/semaine/internal/domain"
	"github.com/apnchris/semaine/internal/repository"
	"github.com/apnchris/semaine/internal/sanity"
	"github.com/apnchris/semaine/internal/shopify"
)

const fullSyncPageSize = 250

// FullSyncService is the bulk catalog importer: a one-way backfill that seeds
// product identity (id, handle, slug) in the content store before the richer
// webhook flow takes over. It writes no variants and no pricing. Runs on the
// same instance are serialized by mu.
type FullSyncService struct {
	admin  *shopify.Client
	store  *sanity.Client
	repos  *repository.Repositories
	logger *zap.Logger

	mu sync.Mutex
}

// NewFullSyncService creates a new bulk catalog importer.
func NewFullSyncService(admin *shopify.Client, store *sanity.Client, repos *repository.Repositories, logger *zap.Logger) *FullSyncService {
	return &FullSyncService{
		admin:  admin,
		store:  store,
		repos:  repos,
		logger: logger,
	}
}

type catalogProduct struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
	Status string `json:"status"`
}

// RunFullSync paginates the whole catalog and upserts a stub per active
// product. Title is set only on creation so editorial overrides survive
// re-runs. Per-product failures are counted and recorded; they never abort
// the run.
func (s *FullSyncService) RunFullSync(ctx context.Context) (*domain.FullSyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	startedAt := time.Now()

	products, err := s.fetchAllProducts(ctx)
	if err != nil {
		s.journal(ctx, startedAt, nil, err)
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	s.logger.Info("Fetched catalog from Shopify", zap.Int("products", len(products)))

	result := &domain.FullSyncResult{}
	for _, p := range products {
		if !strings.EqualFold(p.Status, "ACTIVE") {
			continue
		}
		created, err := s.upsertStub(ctx, p)
		if err != nil {
			result.Errors++
			result.ErrorDetails = append(result.ErrorDetails, fmt.Sprintf("%s: %v", p.Handle, err))
			s.logger.Warn("Full sync: product upsert failed", zap.String("handle", p.Handle), zap.Error(err))
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.journal(ctx, startedAt, result, nil)
	s.logger.Info("Full sync complete",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", result.Errors),
	)
	return result, nil
}

func (s *FullSyncService) fetchAllProducts(ctx context.Context) ([]catalogProduct, error) {
	var all []catalogProduct
	cursor := ""

	for {
		variables := map[string]interface{}{"first": fullSyncPageSize}
		if cursor != "" {
			variables["after"] = cursor
		}

		resp, err := s.admin.Execute(ctx, shopify.ProductsPageQuery, variables)
		if err != nil {
			return nil, err
		}

		var result struct {
			Products struct {
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
				Edges []struct {
					Node catalogProduct `json:"node"`
				} `json:"edges"`
			} `json:"products"`
		}
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			return nil, fmt.Errorf("parse products page: %w", err)
		}

		for _, e := range result.Products.Edges {
			all = append(all, e.Node)
		}

		if !result.Products.PageInfo.HasNextPage {
			break
		}
		cursor = result.Products.PageInfo.EndCursor
	}

	return all, nil
}

// upsertStub creates or updates the minimal product stub. Returns true when a
// new document was created.
func (s *FullSyncService) upsertStub(ctx context.Context, p catalogProduct) (bool, error) {
	var existing *struct {
		ID    string `json:"_id"`
		Title string `json:"title"`
	}
	err := s.store.Fetch(ctx,
		`*[_type == "product" && store.gid == $gid][0]{_id, title}`,
		map[string]interface{}{"gid": p.ID},
		&existing,
	)
	if err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}

	slug := map[string]interface{}{
		"_type":   "slug",
		"current": p.Handle,
	}

	if existing != nil {
		// Patch identity fields only; title belongs to the editors now.
		_, err := s.store.Transaction(ctx, []sanity.Mutation{{
			Patch: &sanity.Patch{
				ID: existing.ID,
				Set: map[string]interface{}{
					"handle":             p.Handle,
					"store.gid":          p.ID,
					"store.slug.current": p.Handle,
					"slug":               slug,
				},
			},
		}})
		return false, err
	}

	numericID := shopify.NumericID(p.ID)
	_, err = s.store.Transaction(ctx, []sanity.Mutation{{
		CreateIfNotExists: map[string]interface{}{
			"_type":  "product",
			"_id":    sanity.ProductDocID(numericID),
			"title":  p.Title,
			"handle": p.Handle,
			"slug":   slug,
			"store":  map[string]interface{}{

				"_type": "shopifyProduct",
				"id":    parseNumeric(numericID),
				"gid":   p.ID,
				"slug":  slug,
			},
		},
	}})
	return true, err
}

func (s *FullSyncService) journal(ctx context.Context, startedAt time.Time, result *domain.FullSyncResult, runErr error) {
	run := &domain.SyncRun{
		ID:         uuid.New(),
		Kind:       domain.SyncRunKindFull,
		Action:     domain.ActionSync,
		Status:     domain.SyncRunStatusCompleted,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}
	if result != nil {
		run.Products = result.Created + result.Updated + result.Errors
		run.Created = result.Created
		run.Updated = result.Updated
		run.Errors = result.Errors
	}
	if runErr != nil {
		msg := runErr.Error()
		run.Status = domain.SyncRunStatusFailed
		run.ErrorMessage = &msg
	}
	if err := s.repos.SyncRun.Record(ctx, run); err != nil {
		s.logger.Warn("Failed to journal full sync run", zap.Error(err))
	}
}

// RunFullSyncLoop runs the importer once, then on every tick. Call from a
// goroutine; returns when ctx is cancelled.
func (s *FullSyncService) RunFullSyncLoop(ctx context.Context, interval time.Duration) {
	if _, err := s.RunFullSync(ctx); err != nil {
		s.logger.Error("Scheduled full sync failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunFullSync(ctx); err != nil {
				s.logger.Error("Scheduled full sync failed", zap.Error(err))
			}
		}
	}
}
