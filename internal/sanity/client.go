package sanity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/apnchris/semaine/internal/config"
	apperrors "github.com/apnchris/semaine/pkg/errors"
)

// Client talks to the content store's HTTP API: GROQ queries and atomic
// multi-document mutation transactions.
type Client struct {
	baseURL    string
	dataset    string
	apiVersion string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a content-store client. APIHost overrides the default
// api.sanity.io host (tests, self-hosted).
func NewClient(cfg config.SanityConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID)
	if cfg.APIHost != "" {
		if strings.Contains(cfg.APIHost, "://") {
			baseURL = strings.TrimSuffix(cfg.APIHost, "/")
		} else {
			baseURL = fmt.Sprintf("https://%s.%s", cfg.ProjectID, cfg.APIHost)
		}
	}
	return &Client{
		baseURL:    baseURL,
		dataset:    cfg.Dataset,
		apiVersion: cfg.APIVersion,
		token:      cfg.WriteToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type queryRequest struct {
	Query  string                 `json:"query"`
	Params map[string]interface{} `json:"params,omitempty"`
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

// Fetch runs a GROQ query and unmarshals the result into out.
func (c *Client) Fetch(ctx context.Context, query string, params map[string]interface{}, out interface{}) error {
	endpoint := fmt.Sprintf("%s/v%s/data/query/%s", c.baseURL, c.apiVersion, url.PathEscape(c.dataset))

	body, err := c.post(ctx, endpoint, queryRequest{Query: query, Params: params})
	if err != nil {
		return err
	}

	var qr queryResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return fmt.Errorf("failed to unmarshal query response: %w", err)
	}
	if out == nil || len(qr.Result) == 0 || string(qr.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(qr.Result, out); err != nil {
		return fmt.Errorf("failed to unmarshal query result: %w", err)
	}
	return nil
}

type transactionRequest struct {
	Mutations []Mutation `json:"mutations"`
}

// TransactionResult is the mutate endpoint's response.
type TransactionResult struct {
	TransactionID string `json:"transactionId"`
	Results       []struct {
		ID        string `json:"id"`
		Operation string `json:"operation"`
	} `json:"results"`
}

// Transaction commits all mutations as one atomic unit. Either every mutation
// applies or none do.
func (c *Client) Transaction(ctx context.Context, mutations []Mutation) (*TransactionResult, error) {
	if len(mutations) == 0 {
		return &TransactionResult{}, nil
	}
	endpoint := fmt.Sprintf("%s/v%s/data/mutate/%s?visibility=sync", c.baseURL, c.apiVersion, url.PathEscape(c.dataset))

	body, err := c.post(ctx, endpoint, transactionRequest{Mutations: mutations})
	if err != nil {
		return nil, err
	}

	var result TransactionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction response: %w", err)
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apperrors.ErrUpstream{
			Service: "content store",
			Message: fmt.Sprintf("status %d, body: %s", resp.StatusCode, string(body)),
		}
	}

	return body, nil
}
