package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Client talks to a storage service
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for the service at baseURL. A nil httpClient
// uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Save implements Store
func (c *Client) Save(ctx context.Context, d Document) (Document, error) {
	body, err := json.Marshal(saveRequest{ID: d.ID, Title: d.Title, Content: d.Content})
	if err != nil {
		return Document{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/documents", bytes.NewReader(body))
	if err != nil {
		return Document{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// Load implements Store
func (c *Client) Load(ctx context.Context, id string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/documents/"+url.PathEscape(id), nil)
	if err != nil {
		return Document{}, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (Document, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return Document{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			e.Error = resp.Status
		}
		if resp.StatusCode == http.StatusNotFound {
			return Document{}, fmt.Errorf("%w: %s", ErrNotFound, e.Error)
		}
		return Document{}, fmt.Errorf("storage service: %s", e.Error)
	}

	var d Document
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	return d, nil
}
