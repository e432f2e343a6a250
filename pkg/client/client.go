package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Client provides HTTP client functionality to communicate with the proverd daemon
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Config holds client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger // Optional logger for client operations
}

// DefaultConfig returns default client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8080",
		Timeout: 10 * time.Second,
	}
}

// New creates a new proverd API client
func New(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8080"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Client{
		baseURL: config.BaseURL,
		logger:  config.Logger,
		client:  &http.Client{Timeout: config.Timeout},
	}
}

// IsReachable checks if the daemon is running and reachable
func (c *Client) IsReachable(ctx context.Context) bool {
	var ids []uint64
	if err := c.doJSON(ctx, http.MethodGet, "/processes", nil, &ids); err != nil {
		c.logger.Debug("daemon unreachable", "error", err)
		return false
	}
	return true
}

// Start submits a new program invocation and returns its process id
func (c *Client) Start(ctx context.Context, req StartRequest) (uint64, error) {
	c.logger.Debug("starting run", "program", req.Program)
	var resp StartResponse
	if err := c.doJSON(ctx, http.MethodPost, "/start", req, &resp); err != nil {
		return 0, err
	}
	return resp.ProcessID, nil
}

// Status fetches the full state of one run
func (c *Client) Status(ctx context.Context, id uint64) (ProcessStatus, error) {
	var st ProcessStatus
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/status/%d", id), nil, &st)
	return st, err
}

// List returns the ids of all tracked runs in creation order
func (c *Client) List(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	err := c.doJSON(ctx, http.MethodGet, "/processes", nil, &ids)
	return ids, err
}

// Pause suspends a running process
func (c *Client) Pause(ctx context.Context, id uint64) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/pause/%d", id), nil, nil)
}

// Resume continues a suspended process
func (c *Client) Resume(ctx context.Context, id uint64) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/resume/%d", id), nil, nil)
}

// Kill requests termination of a live run
func (c *Client) Kill(ctx context.Context, id uint64) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/kill/%d", id), nil, nil)
}

// ExitTable fetches the exit code label table for a program
func (c *Client) ExitTable(ctx context.Context, program string) (map[string]string, error) {
	var table map[string]string
	err := c.doJSON(ctx, http.MethodGet, "/exits/"+program, nil, &table)
	return table, err
}

// WaitDone polls the daemon until the run reaches a terminal state
func (c *Client) WaitDone(ctx context.Context, id uint64, interval time.Duration) (ProcessStatus, error) {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		st, err := c.Status(ctx, id)
		if err != nil {
			return ProcessStatus{}, err
		}
		switch st.State {
		case "done", "error", "killed":
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-t.C:
		}
	}
}

// doJSON performs an HTTP request, decoding a JSON response into out when
// out is non-nil and mapping error payloads to errors.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var rdr *bytes.Reader
	var req *http.Request
	var err error
	if body != nil {
		data, merr := json.Marshal(body)
		if merr != nil {
			return fmt.Errorf("marshal request: %w", merr)
		}
		rdr = bytes.NewReader(data)
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("HTTP request failed", "error", err, "path", path)
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errorResp); err != nil {
			return fmt.Errorf("HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("API error: %s", errorResp.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
