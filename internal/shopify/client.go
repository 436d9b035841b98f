package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/apnchris/semaine/internal/config"
	apperrors "github.com/apnchris/semaine/pkg/errors"
)

// Client is a Shopify Admin GraphQL client.
type Client struct {
	baseURL     string
	accessToken string
	apiVersion  string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a new Shopify Admin GraphQL client
func NewClient(cfg config.ShopifyConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:     normalizeDomain(cfg.StoreDomain),
		accessToken: cfg.AdminToken,
		apiVersion:  cfg.APIVersion,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// normalizeDomain turns a shop domain into a base URL. A scheme is preserved
// when the caller supplies one (tests point at local servers).
func normalizeDomain(domain string) string {
	domain = strings.TrimSuffix(domain, "/")
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain
	}
	return "https://" + domain
}

// GraphQLRequest represents a GraphQL request
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// GraphQLResponse represents a GraphQL response
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message string        `json:"message"`
	Path    []interface{} `json:"path,omitempty"`
}

// Execute executes a GraphQL query against the Admin API. A GraphQL errors
// array is folded into the returned error even on HTTP 200.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]interface{}) (*GraphQLResponse, error) {
	url := fmt.Sprintf("%s/admin/api/%s/graphql.json", c.baseURL, c.apiVersion)
	return execute(ctx, c.httpClient, url, map[string]string{
		"X-Shopify-Access-Token": c.accessToken,
	}, query, variables)
}

// StorefrontClient is a Shopify Storefront GraphQL client, used only as the
// availability fallback when the Admin API is unreachable.
type StorefrontClient struct {
	baseURL     string
	accessToken string
	apiVersion  string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewStorefrontClient creates a Storefront API client; returns nil when the
// storefront credentials are not configured.
func NewStorefrontClient(cfg config.ShopifyConfig, logger *zap.Logger) *StorefrontClient {
	if cfg.StorefrontDomain == "" || cfg.StorefrontAccessToken == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StorefrontClient{
		baseURL:     normalizeDomain(cfg.StorefrontDomain),
		accessToken: cfg.StorefrontAccessToken,
		apiVersion:  cfg.APIVersion,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Execute executes a GraphQL query against the Storefront API.
func (c *StorefrontClient) Execute(ctx context.Context, query string, variables map[string]interface{}) (*GraphQLResponse, error) {
	url := fmt.Sprintf("%s/api/%s/graphql.json", c.baseURL, c.apiVersion)
	return execute(ctx, c.httpClient, url, map[string]string{
		"X-Shopify-Storefront-Access-Token": c.accessToken,
	}, query, variables)
}

func execute(ctx context.Context, httpClient *http.Client, url string, headers map[string]string, query string, variables map[string]interface{}) (*GraphQLResponse, error) {
	reqBody := GraphQLRequest{
		Query:     query,
		Variables: variables,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &apperrors.ErrUpstream{
			Service: "shopify",
			Message: fmt.Sprintf("status %d, body: %s", resp.StatusCode, string(body)),
		}
	}

	var graphQLResp GraphQLResponse
	if err := json.Unmarshal(body, &graphQLResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}

	if len(graphQLResp.Errors) > 0 {
		errorMessages := make([]string, len(graphQLResp.Errors))
		for i, err := range graphQLResp.Errors {
			errorMessages[i] = err.Message
		}
		return nil, fmt.Errorf("graphQL errors: %s", strings.Join(errorMessages, "; "))
	}

	return &graphQLResp, nil
}
