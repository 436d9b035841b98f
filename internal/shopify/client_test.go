package shopify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/apnchris/semaine/internal/config"
	apperrors "github.com/apnchris/semaine/pkg/errors"
)

func testAdminClient(url string) *Client {
	return NewClient(config.ShopifyConfig{
		StoreDomain: url,
		AdminToken:  "token",
		APIVersion:  "2024-01",
	}, zap.NewNop())
}

func TestExecuteUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := testAdminClient(ts.URL)
	_, err := c.Execute(context.Background(), ProductsPageQuery, nil)

	var ue *apperrors.ErrUpstream
	if !errors.As(err, &ue) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if ue.Service != "shopify" {
		t.Errorf("service = %q", ue.Service)
	}
}

func TestExecuteGraphQLErrorsFolded(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":null,"errors":[{"message":"Field 'bogus' doesn't exist"}]}`)
	}))
	defer ts.Close()

	c := testAdminClient(ts.URL)
	_, err := c.Execute(context.Background(), "query { bogus }", nil)
	if err == nil || !strings.Contains(err.Error(), "Field 'bogus'") {
		t.Fatalf("GraphQL errors must surface as Go errors, got %v", err)
	}
}

func TestExecuteSendsAccessToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Shopify-Access-Token") != "token" {
			t.Errorf("access token header = %q", r.Header.Get("X-Shopify-Access-Token"))
		}
		io.WriteString(w, `{"data":{}}`)
	}))
	defer ts.Close()

	c := testAdminClient(ts.URL)
	if _, err := c.Execute(context.Background(), ProductsPageQuery, nil); err != nil {
		t.Fatal(err)
	}
}
