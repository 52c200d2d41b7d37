// Package dialer holds implementations of the engine's Dialer port.
package dialer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"callwatch/internal/engine"
)

// Bridge forwards dial requests to the device-side bridge over HTTP. The
// bridge hands the tel: request to the system dialer and reports whether
// the hand-off was accepted; it knows nothing about the call's fate.
type Bridge struct {
	url    string
	client *http.Client
}

func NewBridge(url string) *Bridge {
	return &Bridge{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type bridgeRequest struct {
	URI string `json:"uri"`
}

type bridgeResponse struct {
	Result string `json:"result"`
}

func (b *Bridge) Dial(ctx context.Context, number string) (engine.DialResult, error) {
	body, err := json.Marshal(bridgeRequest{URI: "tel:" + number})
	if err != nil {
		return "", fmt.Errorf("dialer: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("dialer: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("dialer: bridge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dialer: bridge status %d", resp.StatusCode)
	}

	var out bridgeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("dialer: decode response: %w", err)
	}

	switch res := engine.DialResult(out.Result); res {
	case engine.DialSuccess, engine.DialFailed, engine.DialUnsupported, engine.DialInvalidInput:
		return res, nil
	default:
		return "", fmt.Errorf("dialer: unknown result %q", out.Result)
	}
}
