package backend

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

	"github.com/matthieukhl/quotedesk/internal/types"
)

// DefaultOrigin is where the quotation backend listens unless configured otherwise
const DefaultOrigin = "http://localhost:8000"

// StatusError is returned when the backend answers with a non-2xx status
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: backend returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, e.Body)
}

type HTTPClient struct {
	origin string
	client *http.Client
}

type rootResponse struct {
	Message string `json:"message"`
}

// NewHTTPClient creates a client for the backend at origin. A zero timeout
// means requests wait as long as the backend takes.
func NewHTTPClient(origin string, timeout time.Duration) (*HTTPClient, error) {
	if origin == "" {
		origin = DefaultOrigin
	}

	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("invalid backend origin %q: %w", origin, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend origin %q: scheme must be http or https", origin)
	}

	return &HTTPClient{
		origin: strings.TrimRight(origin, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (c *HTTPClient) Origin() string {
	return c.origin
}

// Ping hits the backend root and returns its banner message
func (c *HTTPClient) Ping(ctx context.Context) (string, error) {
	var out rootResponse
	if err := c.doJSON(ctx, "ping", http.MethodGet, "/", nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *HTTPClient) Process(ctx context.Context, rawText string) (*types.ProcessResponse, error) {
	var out types.ProcessResponse
	req := types.ProcessRequest{RawText: rawText}
	if err := c.doJSON(ctx, "process", http.MethodPost, "/api/process", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListInventory(ctx context.Context) ([]types.InventoryItem, error) {
	var out []types.InventoryItem
	if err := c.doJSON(ctx, "list inventory", http.MethodGet, "/api/inventory", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []types.InventoryItem{}
	}
	return out, nil
}

// CreateInventory submits a complete item. Only the status matters; the
// caller reloads the list afterwards.
func (c *HTTPClient) CreateInventory(ctx context.Context, item types.InventoryItem) error {
	return c.doJSON(ctx, "create inventory", http.MethodPost, "/api/inventory", item, nil)
}

func (c *HTTPClient) DeleteInventory(ctx context.Context, id string) error {
	path := "/api/inventory/" + url.PathEscape(id)
	return c.doJSON(ctx, "delete inventory", http.MethodDelete, path, nil, nil)
}

// GeneratePDF returns the rendered document bytes
func (c *HTTPClient) GeneratePDF(ctx context.Context, pdfReq types.PDFRequest) ([]byte, error) {
	resp, err := c.send(ctx, "generate pdf", http.MethodPost, "/api/generate-pdf", pdfReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("generate pdf: failed to read document: %w", err)
	}
	return data, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, op, method, path string, body, out any) error {
	resp, err := c.send(ctx, op, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

// send performs the request and returns the response only for 2xx statuses
func (c *HTTPClient) send(ctx context.Context, op, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}
		reader = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.origin+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to make request: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	return resp, nil
}

// Compile-time interface check
var _ types.Backend = (*HTTPClient)(nil)
