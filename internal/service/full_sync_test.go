package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/apnchris/semaine/internal/repository"
	"github.com/apnchris/semaine/internal/shopify"
)

// newFakeCatalog serves the paginated products query: page one has an ACTIVE
// and a DRAFT product, page two a single ACTIVE product.
func newFakeCatalog(t *testing.T) *httptest.Server {
	t.Helper()
	pageOne := `{"products":{"pageInfo":{"hasNextPage":true,"endCursor":"c1"},"edges":[
		{"node":{"id":"gid://shopify/Product/1","title":"Orange Wine","handle":"orange-wine","status":"ACTIVE"}},
		{"node":{"id":"gid://shopify/Product/2","title":"Unreleased","handle":"unreleased","status":"DRAFT"}}
	]}}`
	pageTwo := `{"products":{"pageInfo":{"hasNextPage":false,"endCursor":""},"edges":[
		{"node":{"id":"gid://shopify/Product/3","title":"Red Wine","handle":"red-wine","status":"active"}}
	]}}`
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req shopify.GraphQLRequest
		if err := json.Unmarshal(body, &req); err != nil || !strings.Contains(req.Query, "getProducts") {
			t.Errorf("unexpected request: %s", body)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Variables["after"] == "c1" {
			io.WriteString(w, `{"data":`+pageTwo+`}`)
			return
		}
		io.WriteString(w, `{"data":`+pageOne+`}`)
	}))
}

func newFullSyncService(adminURL string, store *fakeStore) *FullSyncService {
	return NewFullSyncService(adminClient(adminURL), store.client(), repository.NewNopRepositories(), zap.NewNop())
}

func TestRunFullSync(t *testing.T) {
	catalog := newFakeCatalog(t)
	defer catalog.Close()

	store := newFakeStore("")
	// Product 1 already has a document; the rest are new.
	store.queryFn = func(query string, params map[string]interface{}) string {
		if params["gid"] == "gid://shopify/Product/1" {
			return `{"_id":"shopifyProduct-1","title":"Editor Title"}`
		}
		return "null"
	}
	defer store.server.Close()

	svc := newFullSyncService(catalog.URL, store)

	result, err := svc.RunFullSync(context.Background())
	if err != nil {
		t.Fatalf("RunFullSync: %v", err)
	}
	// DRAFT product 2 is skipped entirely; status matching is case-insensitive
	// so lowercase "active" still counts.
	if result.Created != 1 || result.Updated != 1 || result.Errors != 0 {
		t.Errorf("result = %+v", result)
	}

	txns := store.committed()
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}

	// Existing document: identity fields only, title stays with the editors.
	patch := txns[0][0].Patch
	if patch == nil || patch.ID != "shopifyProduct-1" {
		t.Fatalf("expected patch on existing doc, got %+v", txns[0][0])
	}
	if _, ok := patch.Set["title"]; ok {
		t.Error("re-running the importer must not overwrite title")
	}
	if patch.Set["handle"] != "orange-wine" {
		t.Errorf("handle not refreshed: %v", patch.Set["handle"])
	}
	if patch.Set["store.slug.current"] != "orange-wine" {
		t.Errorf("slug not refreshed: %v", patch.Set["store.slug.current"])
	}

	// New document: full stub including title.
	doc := txns[1][0].CreateIfNotExists
	if doc == nil || doc["_id"] != "shopifyProduct-3" {
		t.Fatalf("expected createIfNotExists for new doc, got %+v", txns[1][0])
	}
	if doc["title"] != "Red Wine" {
		t.Errorf("title = %v", doc["title"])
	}
	if doc["handle"] != "red-wine" {
		t.Errorf("handle = %v", doc["handle"])
	}
	docStore := doc["store"].(map[string]interface{})
	if docStore["gid"] != "gid://shopify/Product/3" {
		t.Errorf("store.gid = %v", docStore["gid"])
	}
}

func TestRunFullSyncCountsPerProductErrors(t *testing.T) {
	catalog := newFakeCatalog(t)
	defer catalog.Close()

	store := newFakeStore("")
	store.failMutate = true
	defer store.server.Close()

	svc := newFullSyncService(catalog.URL, store)

	result, err := svc.RunFullSync(context.Background())
	if err != nil {
		t.Fatalf("per-product failures must not abort the run: %v", err)
	}
	if result.Errors != 2 {
		t.Errorf("errors = %d, want 2", result.Errors)
	}
	if result.Created != 0 || result.Updated != 0 {
		t.Errorf("result = %+v", result)
	}
	if len(result.ErrorDetails) != 2 {
		t.Errorf("error details = %v", result.ErrorDetails)
	}
}

func TestRunFullSyncSerialized(t *testing.T) {
	catalog := newFakeCatalog(t)
	defer catalog.Close()

	store := newFakeStore("")
	defer store.server.Close()

	svc := newFullSyncService(catalog.URL, store)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.RunFullSync(context.Background())
			if err != nil {
				t.Errorf("RunFullSync: %v", err)
				return
			}
			if result.Created+result.Updated != 2 {
				t.Errorf("result = %+v", result)
			}
		}()
	}
	wg.Wait()

	// Two serialized runs over two active products.
	if got := len(store.committed()); got != 4 {
		t.Errorf("transactions = %d, want 4", got)
	}
}

func TestRunFullSyncCatalogFetchFailure(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	store := newFakeStore("")
	defer store.server.Close()

	svc := newFullSyncService(broken.URL, store)

	if _, err := svc.RunFullSync(context.Background()); err == nil {
		t.Fatal("a catalog fetch failure must abort the run")
	}
	if len(store.committed()) != 0 {
		t.Error("nothing may be written when the catalog cannot be fetched")
	}
}
