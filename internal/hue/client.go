package hue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/amimof/huego"
)

// Client talks to the Hue bridge v1 REST API. Bodies stay raw JSON in both
// directions so zero values (hue 0, sat 0, transitiontime 0) survive.
type Client struct {
	address    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new v1 client. address may carry a scheme; plain hosts
// are reached over http.
func NewClient(address, token string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}

	return &Client{
		address: strings.TrimSuffix(address, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) v1URL(path string) string {
	return fmt.Sprintf("%s/api/%s/%s", c.address, c.token, path)
}

func (c *Client) v1Request(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.v1URL(path), body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}
	return data, nil
}

// Config returns the bridge configuration (v1 API).
func (c *Client) Config(ctx context.Context) (*huego.Config, error) {
	data, err := c.v1Request(ctx, http.MethodGet, "config", nil)
	if err != nil {
		return nil, err
	}
	if err := responseError(data); err != nil {
		return nil, err
	}

	var cfg huego.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Resources returns every object under path ("lights" or "groups") keyed by id,
// undecoded.
func (c *Client) Resources(ctx context.Context, path string) (map[string]json.RawMessage, error) {
	data, err := c.v1Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if err := responseError(data); err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// SetState sends body as-is to a state endpoint (lights/<id>/state or
// groups/<id>/action). Any per-key error in the reply fails the call.
func (c *Client) SetState(ctx context.Context, path string, body map[string]any) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}

	data, err := c.v1Request(ctx, http.MethodPut, path, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	return responseError(data)
}

// APIError is an error entry of a v1 reply.
type APIError struct {
	Type        int    `json:"type"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hue error %d [%s]: %s", e.Type, e.Address, e.Description)
}

// errTypeNotAvailable is the v1 error type for a missing resource.
const errTypeNotAvailable = 3

// responseError extracts the first error of a v1 reply. Replies that are not a
// JSON array carry no errors.
func responseError(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}

	var entries []struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	for _, entry := range entries {
		if entry.Error != nil {
			return entry.Error
		}
	}
	return nil
}
