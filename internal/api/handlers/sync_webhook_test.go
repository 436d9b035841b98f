package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/apnchris/semaine/internal/config"
	"github.com/apnchris/semaine/internal/repository"
	"github.com/apnchris/semaine/internal/sanity"
	"github.com/apnchris/semaine/internal/service"
	"github.com/apnchris/semaine/internal/shopify"
)

// newWebhookRouter wires the webhook routes against fake upstreams: a Shopify
// Admin endpoint answering the variant and metafield queries, and a content
// store accepting every query and mutation.
func newWebhookRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	admin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req shopify.GraphQLRequest
		if err := json.Unmarshal(body, &req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if strings.Contains(req.Query, "getProductMetafields") {
			io.WriteString(w, `{"data":{"product":{"metafields":{"edges":[]}}}}`)
			return
		}
		io.WriteString(w, `{"data":{"product":{"id":"gid://shopify/Product/42","variants":{"edges":[
			{"node":{"id":"gid://shopify/ProductVariant/111","availableForSale":true,"inventoryQuantity":3,"inventoryPolicy":"DENY","price":"25.00"}}
		]}}}}`)
	}))
	t.Cleanup(admin.Close)

	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/data/query/") {
			io.WriteString(w, `{"result":null}`)
			return
		}
		io.WriteString(w, `{"transactionId":"txn-1","results":[]}`)
	}))
	t.Cleanup(store.Close)

	adminClient := shopify.NewClient(config.ShopifyConfig{
		StoreDomain: admin.URL,
		AdminToken:  "token",
		APIVersion:  "2024-01",
	}, zap.NewNop())
	storeClient := sanity.NewClient(config.SanityConfig{
		ProjectID:  "test",
		Dataset:    "production",
		APIVersion: "2024-01-01",
		WriteToken: "tok",
		APIHost:    store.URL,
	}, zap.NewNop())

	syncSvc := service.NewSyncService(adminClient, nil, storeClient, repository.NewNopRepositories(), zap.NewNop())

	r := gin.New()
	r.OPTIONS("/webhooks/shopify/sync", HandleSyncPreflight())
	r.POST("/webhooks/shopify/sync", HandleShopifySyncWebhook(syncSvc, zap.NewNop()))
	return r
}

func postSync(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify/sync", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookMalformedJSON(t *testing.T) {
	r := newWebhookRouter(t)

	w := postSync(r, `{"action": "sync", "products": [`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS header must be set on error responses too")
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["success"] != false {
		t.Errorf("success = %v", resp["success"])
	}
}

func TestWebhookUnknownAction(t *testing.T) {
	r := newWebhookRouter(t)

	w := postSync(r, `{"action": "reticulate", "products": [{"id": "gid://shopify/Product/42"}]}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestWebhookSync(t *testing.T) {
	r := newWebhookRouter(t)

	w := postSync(r, `{"action": "sync", "products": [
		{"id": "gid://shopify/Product/42", "handle": "natural-wine", "variants": [{"id": "gid://shopify/ProductVariant/111"}]}
	]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["success"] != true || resp["synced"] != float64(1) {
		t.Errorf("response = %v", resp)
	}
}

func TestWebhookDelete(t *testing.T) {
	r := newWebhookRouter(t)

	w := postSync(r, `{"action": "delete", "productIds": [42, 7]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["success"] != true {
		t.Errorf("response = %v", resp)
	}
	if _, ok := resp["synced"]; ok {
		t.Error("deletion response carries no synced count")
	}
}

func TestWebhookPreflight(t *testing.T) {
	r := newWebhookRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/webhooks/shopify/sync", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing Access-Control-Allow-Origin")
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Errorf("Allow-Methods = %q", w.Header().Get("Access-Control-Allow-Methods"))
	}
}
