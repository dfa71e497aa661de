// internal/common/crm/client.go
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"leadgen-workers/internal/common/httpclient"
)

// Client talks to the configured CRM's lead API.
type Client struct {
	apiKey     string
	authToken  string
	baseURL    string
	httpClient *httpclient.Client
}

// Lead is the CRM-side representation of a qualified business.
type Lead struct {
	ID           string   `json:"id,omitempty"`
	Company      string   `json:"Company"`
	ContactName  string   `json:"Contact_Name,omitempty"`
	Email        string   `json:"Email,omitempty"`
	Phone        string   `json:"Phone,omitempty"`
	Website      string   `json:"Website,omitempty"`
	Score        *float64 `json:"ICP_Score,omitempty"`
	Band         string   `json:"Score_Band,omitempty"`
	Source       string   `json:"Lead_Source,omitempty"`
	CampaignName string   `json:"Campaign,omitempty"`
}

type createLeadResponse struct {
	Data []struct {
		Code    string `json:"code"`
		Details struct {
			ID string `json:"id"`
		} `json:"details"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"data"`
}

func NewClient(baseURL, apiKey, authToken string) *Client {
	return &Client{
		apiKey:     apiKey,
		authToken:  authToken,
		baseURL:    baseURL,
		httpClient: httpclient.NewClient(30 * time.Second),
	}
}

// CreateLead pushes one lead and returns the CRM record id.
func (c *Client) CreateLead(ctx context.Context, lead *Lead) (string, error) {
	url := fmt.Sprintf("%s/Leads", c.baseURL)

	payload := map[string]interface{}{
		"data": []Lead{*lead},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to create lead (status %d): %s", resp.StatusCode, string(body))
	}

	var createResp createLeadResponse
	if err := json.Unmarshal(body, &createResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(createResp.Data) == 0 {
		return "", fmt.Errorf("no data in response")
	}

	if createResp.Data[0].Status != "success" {
		return "", fmt.Errorf("lead creation failed: %s", createResp.Data[0].Message)
	}

	return createResp.Data[0].Details.ID, nil
}

// GetLead fetches one lead by CRM record id.
func (c *Client) GetLead(ctx context.Context, leadID string) (*Lead, error) {
	url := fmt.Sprintf("%s/Leads/%s", c.baseURL, leadID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get lead (status %d): %s", resp.StatusCode, string(body))
	}

	var getResp struct {
		Data []Lead `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&getResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(getResp.Data) == 0 {
		return nil, fmt.Errorf("lead %s not found", leadID)
	}

	return &getResp.Data[0], nil
}
