// Package sheets talks to the spreadsheet Web App that is the ledger's
// durable store: a single URL answering GET (fetch everything) and POST
// (apply one tagged mutation).
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nljewellers/ledger/internal/ledger"
	apperrors "github.com/nljewellers/ledger/internal/shared/errors"
)

const defaultTimeout = 15 * time.Second

// Client is the HTTP client for the sheet Web App.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a sheet client for the deployed Web App URL.
func NewClient(url string) *Client {
	return NewClientWithTimeout(url, defaultTimeout)
}

// NewClientWithTimeout creates a sheet client with a custom request timeout.
func NewClientWithTimeout(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
			// Apps Script answers unauthenticated requests with a 302 to a
			// login page when the deployment is misconfigured. Surfacing
			// the redirect beats following it into an HTML error.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// mutateRequest is the POST body envelope.
type mutateRequest struct {
	Action  string `json:"action"`
	Payload any    `json:"payload"`
}

// mutateResponse is the Web App's reply envelope.
type mutateResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

// FetchAll reads the complete sheet state.
func (c *Client) FetchAll(ctx context.Context) (*ledger.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, apperrors.StoreUnreachable(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.StoreUnreachable(err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	var snap ledger.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, apperrors.StoreBadResponse(err)
	}

	return &snap, nil
}

// Mutate applies one tagged write. One attempt, no retries: the
// reconciliation engine has already committed optimistically and decides
// what a failure means.
func (c *Client) Mutate(ctx context.Context, action string, payload any) error {
	body, err := json.Marshal(mutateRequest{Action: action, Payload: payload})
	if err != nil {
		return apperrors.Internal("failed to encode mutation", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return apperrors.StoreUnreachable(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.StoreUnreachable(err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return err
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.StoreBadResponse(err)
	}

	var mr mutateResponse
	if err := json.Unmarshal(respBody, &mr); err != nil {
		return apperrors.StoreBadResponse(fmt.Errorf("non-JSON body: %w", err))
	}

	if mr.Status != "success" {
		return apperrors.StoreRejected(mr.Message)
	}

	return nil
}

// classifyStatus maps HTTP status codes to the user-facing error taxonomy.
func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized, code == http.StatusForbidden, code == http.StatusFound:
		return apperrors.StoreForbidden(code)
	case code == http.StatusNotFound:
		return apperrors.StoreNotFound()
	default:
		return apperrors.StoreBadResponse(fmt.Errorf("unexpected status code %d", code))
	}
}

// Ensure Client implements ledger.RemoteStore
var _ ledger.RemoteStore = (*Client)(nil)
