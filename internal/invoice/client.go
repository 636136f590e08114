// Package invoice talks to the external invoicing system.  Credit
// notes issued there are referenced by opaque document IDs; this
// service never inspects them.
package invoice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client posts credit notes to the invoicing API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for the given API base URL.  Requests
// time out after five seconds so a slow invoicing system cannot stall
// refund processing.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

type creditNoteRequest struct {
	UnitID      uint64 `json:"unit_id"`
	UserID      uint64 `json:"user_id"`
	AmountCents int64  `json:"amount_cents"`
	Reason      string `json:"reason"`
}

type creditNoteResponse struct {
	DocumentID string `json:"document_id"`
}

// CreateCreditNote registers a credit note for a refunded unit and
// returns the opaque document ID the invoicing system assigned.
func (c *Client) CreateCreditNote(ctx context.Context, unitID, userID uint64, amountCents int64, reason string) (string, error) {
	body, err := json.Marshal(creditNoteRequest{
		UnitID:      unitID,
		UserID:      userID,
		AmountCents: amountCents,
		Reason:      reason,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/credit-notes", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("invoice api: unexpected status %d", resp.StatusCode)
	}
	var out creditNoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("invoice api: decode response: %w", err)
	}
	return out.DocumentID, nil
}
