// Package provider implements the client for the external accounting-data
// aggregation service.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is the contract the orchestrator consumes. All report and metric
// windows are open-ended from `since`.
type Client interface {
	CreateCompany(ctx context.Context, externalRef string) (*Company, error)
	GetAccountingPlatforms(ctx context.Context) ([]Platform, error)
	GetFinancialMetrics(ctx context.Context, companyID, connectionID string, since time.Time) (*FinancialMetrics, error)
	GetProfitAndLoss(ctx context.Context, companyID, connectionID string, since time.Time) (*ProfitAndLossReport, error)
	GetBalanceSheet(ctx context.Context, companyID, connectionID string, since time.Time) (*BalanceSheetReport, error)
}

// HTTPClient talks to the provider's REST API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type createCompanyRequest struct {
	ExternalRef string `json:"externalRef"`
}

func (c *HTTPClient) CreateCompany(ctx context.Context, externalRef string) (*Company, error) {
	var company Company
	err := c.do(ctx, http.MethodPost, "/companies", createCompanyRequest{ExternalRef: externalRef}, &company)
	if err != nil {
		return nil, err
	}
	if company.ID == "" {
		return nil, fmt.Errorf("provider returned company without id")
	}
	return &company, nil
}

type platformsResponse struct {
	Platforms []Platform `json:"platforms"`
}

func (c *HTTPClient) GetAccountingPlatforms(ctx context.Context) ([]Platform, error) {
	var resp platformsResponse
	if err := c.do(ctx, http.MethodGet, "/integrations/accounting", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Platforms, nil
}

func (c *HTTPClient) GetFinancialMetrics(ctx context.Context, companyID, connectionID string, since time.Time) (*FinancialMetrics, error) {
	var metrics FinancialMetrics
	path := c.dataPath(companyID, connectionID, "financialMetrics", since)
	if err := c.do(ctx, http.MethodGet, path, nil, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}

func (c *HTTPClient) GetProfitAndLoss(ctx context.Context, companyID, connectionID string, since time.Time) (*ProfitAndLossReport, error) {
	var report ProfitAndLossReport
	path := c.dataPath(companyID, connectionID, "profitAndLoss", since)
	if err := c.do(ctx, http.MethodGet, path, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *HTTPClient) GetBalanceSheet(ctx context.Context, companyID, connectionID string, since time.Time) (*BalanceSheetReport, error) {
	var report BalanceSheetReport
	path := c.dataPath(companyID, connectionID, "balanceSheet", since)
	if err := c.do(ctx, http.MethodGet, path, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *HTTPClient) dataPath(companyID, connectionID, dataset string, since time.Time) string {
	return fmt.Sprintf("/companies/%s/connections/%s/data/%s?since=%s",
		url.PathEscape(companyID), url.PathEscape(connectionID), dataset,
		url.QueryEscape(since.UTC().Format(time.RFC3339)),
	)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("provider request %s %s failed (status %d): %s", method, path, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
