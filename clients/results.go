package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// --- Result sink (/melody-results) ---
type PublishResp struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}

// PublishResult posts a finished analysis to a downstream service that
// stores or renders it.
func (h *HTTP) PublishResult(ctx context.Context, url string, payload any) (*PublishResp, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("publish encode: %w", err)
	}
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/melody-results", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	r.Header.Set("Content-Type", "application/json")
	resp, err := h.c.Do(r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("publish %s: %s", resp.Status, string(body))
	}

	var out PublishResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("publish decode: %w", err)
	}
	return &out, nil
}
