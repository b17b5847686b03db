package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/danielpatrickdp/mca-engine/internal/belief"
	"github.com/danielpatrickdp/mca-engine/internal/signals"
)

// #region capability

// Capability is an external pattern classifier. Implementations may be absent
// or failing; callers must treat any error as "skip the classifier".
type Capability interface {
	Predict(ctx context.Context, sig signals.Signals) (belief.Distribution, error)
}

// #endregion capability

// #region types

type predictRequest struct {
	Signals map[signals.DimensionKey]int `json:"signals"`
}

type predictResponse struct {
	Pattern       string             `json:"pattern"`
	Probabilities map[string]float64 `json:"probabilities"`
	Confidence    float64            `json:"confidence"`
}

// #endregion types

// #region client-struct

// Client calls the SVM classifier REST service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a classifier client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTP creates a Client with an injected http.Client.
// Used for testing without a real service.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, http: httpClient}
}

// #endregion client-struct

// #region predict

// Predict posts the twelve scored dimensions to the service and returns the
// normalized probability distribution over the six archetypes.
func (c *Client) Predict(ctx context.Context, sig signals.Signals) (belief.Distribution, error) {
	body, err := json.Marshal(predictRequest{Signals: sig.Dimensions()})
	if err != nil {
		return nil, fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predict rpc: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("predict rpc: status %d", resp.StatusCode)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode predict response: %w", err)
	}

	dist := make(belief.Distribution, len(belief.Patterns))
	for _, p := range belief.Patterns {
		v := out.Probabilities[string(p)]
		if v < 0 {
			return nil, fmt.Errorf("predict rpc: negative probability for %s", p)
		}
		dist[p] = v
	}
	if dist.Sum() <= 0 {
		return nil, fmt.Errorf("predict rpc: empty probability vector")
	}
	dist.Normalize()
	return dist, nil
}

// #endregion predict
