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
	apperrors "github.com/apnchris/semaine/pkg/errors"
)

// SyncService drives the webhook sync pipeline: enrich each product in a
// batch, reconcile it against the content store's documents, and commit all
// resulting mutations as one atomic transaction.
type SyncService struct {
	admin      *shopify.Client
	storefront *shopify.StorefrontClient
	store      *sanity.Client
	repos      *repository.Repositories
	logger     *zap.Logger
}

// NewSyncService creates a new sync service. storefront may be nil when the
// Storefront API fallback is not configured.
func NewSyncService(admin *shopify.Client, storefront *shopify.StorefrontClient, store *sanity.Client, repos *repository.Repositories, logger *zap.Logger) *SyncService {
	return &SyncService{
		admin:      admin,
		storefront: storefront,
		store:      store,
		repos:      repos,
		logger:     logger,
	}
}

// ProcessBatch handles one webhook payload and returns the number of products
// touched. Replaying the same payload produces the same end state: document
// ids are deterministic and every write is an upsert, which is required
// because Shopify webhooks are delivered at least once.
func (s *SyncService) ProcessBatch(ctx context.Context, payload domain.WebhookPayload) (int, error) {
	if msg := payload.Validate(); msg != "" {
		return 0, &apperrors.ErrValidation{Message: msg}
	}

	startedAt := time.Now()

	if payload.IsDeletion() {
		mutations := softDeleteMutations(payload.ProductIDs)
		_, err := s.store.Transaction(ctx, mutations)
		s.journal(ctx, payload.Action, len(payload.ProductIDs), startedAt, err)
		if err != nil {
			return 0, fmt.Errorf("soft-delete transaction: %w", err)
		}
		s.logger.Info("Soft-deleted products", zap.Int("count", len(payload.ProductIDs)))
		return len(payload.ProductIDs), nil
	}

	// Per-product enrichment and reconciliation are independent; run them
	// concurrently and flatten results in payload order so the committed
	// mutation list is deterministic.
	perProduct := make([][]sanity.Mutation, len(payload.Products))
	var wg sync.WaitGroup
	for i := range payload.Products {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			perProduct[i] = s.buildProductMutations(ctx, payload.Products[i])
		}(i)
	}
	wg.Wait()

	var mutations []sanity.Mutation
	for _, m := range perProduct {
		mutations = append(mutations, m...)
	}

	_, err := s.store.Transaction(ctx, mutations)
	s.journal(ctx, payload.Action, len(payload.Products), startedAt, err)
	if err != nil {
		return 0, fmt.Errorf("sync transaction: %w", err)
	}

	s.logger.Info("Synced products",
		zap.String("action", payload.Action),
		zap.Int("products", len(payload.Products)),
		zap.Int("mutations", len(mutations)),
	)
	return len(payload.Products), nil
}

// buildProductMutations enriches one product (variant refresh, metafields,
// editorial overlay) and reconciles it. Enrichment failures degrade to the
// payload data; they never abort the batch.
func (s *SyncService) buildProductMutations(ctx context.Context, p domain.Product) []sanity.Mutation {
	p.Variants = s.refreshVariants(ctx, p)

	metafields := p.Metafields
	if len(metafields) == 0 {
		metafields = s.fetchMetafields(ctx, p.ID)
	}

	overlay := s.fetchOverlay(ctx, shopify.NumericID(p.ID))

	return reconcileProduct(p, overlay, metafields)
}

// refreshVariants re-fetches variant data from the Admin API and merges it
// with the payload's variants, keeping an explicit availableForSale boolean
// from the payload when present. On Admin API failure the Storefront API is
// tried for availability only; on total failure the payload variants are
// returned unchanged.
func (s *SyncService) refreshVariants(ctx context.Context, p domain.Product) []domain.Variant {
	fetched, err := s.fetchAdminVariants(ctx, p.ID)
	if err != nil || len(fetched) == 0 {
		if err != nil {
			s.logger.Warn("Admin API variant refresh failed, trying Storefront API",
				zap.String("product_gid", p.ID), zap.Error(err))
		}
		return s.enrichFromStorefront(ctx, p)
	}

	byGID := make(map[string]domain.Variant, len(p.Variants))
	for _, v := range p.Variants {
		byGID[v.ID] = v
	}

	merged := make([]domain.Variant, len(fetched))
	for i, fv := range fetched {
		if wv, ok := byGID[fv.ID]; ok && wv.AvailableForSale != nil {
			fv.AvailableForSale = wv.AvailableForSale
		}
		merged[i] = fv
	}
	return merged
}

func (s *SyncService) fetchAdminVariants(ctx context.Context, productGID string) ([]domain.Variant, error) {
	resp, err := s.admin.Execute(ctx, shopify.ProductVariantsQuery, map[string]interface{}{"id": productGID})
	if err != nil {
		return nil, err
	}

	var result struct {
		Product *struct {
			Variants struct {
				Edges []struct {
					Node domain.Variant `json:"node"`
				} `json:"edges"`
			} `json:"variants"`
		} `json:"product"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("parse variants response: %w", err)
	}
	if result.Product == nil {
		return nil, &apperrors.ErrNotFound{Resource: "product", ID: productGID}
	}

	variants := make([]domain.Variant, 0, len(result.Product.Variants.Edges))
	for _, e := range result.Product.Variants.Edges {
		variants = append(variants, e.Node)
	}
	return variants, nil
}

func (s *SyncService) enrichFromStorefront(ctx context.Context, p domain.Product) []domain.Variant {
	if s.storefront == nil {
		return p.Variants
	}

	resp, err := s.storefront.Execute(ctx, shopify.StorefrontAvailabilityQuery, map[string]interface{}{"handle": p.Handle})
	if err != nil {
		s.logger.Warn("Storefront API availability fetch failed, using payload variants",
			zap.String("handle", p.Handle), zap.Error(err))
		return p.Variants
	}

	var result struct {
		Product *struct {
			Variants struct {
				Edges []struct {
					Node struct {
						ID               string `json:"id"`
						AvailableForSale *bool  `json:"availableForSale"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"variants"`
		} `json:"product"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil || result.Product == nil {
		return p.Variants
	}

	availability := make(map[string]*bool)
	for _, e := range result.Product.Variants.Edges {
		availability[e.Node.ID] = e.Node.AvailableForSale
	}

	variants := make([]domain.Variant, len(p.Variants))
	copy(variants, p.Variants)
	for i := range variants {
		if a, ok := availability[variants[i].ID]; ok && a != nil {
			variants[i].AvailableForSale = a
		}
	}
	return variants
}

// fetchMetafields fetches the fixed set of descriptive metafields for a
// product and strips the namespace prefix from the returned keys. It never
// fails: on any error it logs and returns an empty map so the caller proceeds
// with partial data.
func (s *SyncService) fetchMetafields(ctx context.Context, productGID string) map[string]string {
	metafields := map[string]string{}

	resp, err := s.admin.Execute(ctx, shopify.ProductMetafieldsQuery, map[string]interface{}{"id": productGID})
	if err != nil {
		s.logger.Warn("Metafield fetch failed", zap.String("product_gid", productGID), zap.Error(err))
		return metafields
	}

	var result struct {
		Product *struct {
			Metafields struct {
				Edges []struct {
					Node struct {
						Key   string `json:"key"`
						Value string `json:"value"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"metafields"`
		} `json:"product"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil || result.Product == nil {
		s.logger.Warn("Metafield response unparseable", zap.String("product_gid", productGID), zap.Error(err))
		return metafields
	}

	for _, e := range result.Product.Metafields.Edges {
		key := strings.TrimPrefix(e.Node.Key, metafieldNamespace)
		metafields[key] = e.Node.Value
	}
	return metafields
}

// fetchOverlay reads the editorial fields of the existing product document,
// with the draft taking precedence over the published document. Absence of a
// document signals first-time creation and returns nil.
func (s *SyncService) fetchOverlay(ctx context.Context, numericID string) *sanity.ProductOverlay {
	docID := sanity.ProductDocID(numericID)

	var result struct {
		Published *sanity.ProductOverlay `json:"published"`
		Draft     *sanity.ProductOverlay `json:"draft"`
	}
	query := `{
		"published": *[_id == $id][0]{body, thumbSize, seo},
		"draft": *[_id == $draftId][0]{body, thumbSize, seo}
	}`
	params := map[string]interface{}{
		"id":      docID,
		"draftId": sanity.DraftID(docID),
	}

	if err := s.store.Fetch(ctx, query, params, &result); err != nil {
		s.logger.Warn("Existing document fetch failed, treating as first sync",
			zap.String("doc_id", docID), zap.Error(err))
		return nil
	}

	if result.Draft != nil {
		return result.Draft
	}
	return result.Published
}

func (s *SyncService) journal(ctx context.Context, action string, products int, startedAt time.Time, runErr error) {
	run := &domain.SyncRun{
		ID:         uuid.New(),
		Kind:       domain.SyncRunKindWebhook,
		Action:     action,
		Products:   products,
		Status:     domain.SyncRunStatusCompleted,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}
	if runErr != nil {
		msg := runErr.Error()
		run.Status = domain.SyncRunStatusFailed
		run.ErrorMessage = &msg
		run.Errors = products
	}
	if err := s.repos.SyncRun.Record(ctx, run); err != nil {
		s.logger.Warn("Failed to journal sync run", zap.Error(err))
	}
}
