// Package docsvc forwards collection and document operations to the
// separate documents backend on behalf of an authenticated user.
package docsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound reports that the backend knows no such collection or document.
var ErrNotFound = errors.New("docsvc: not found")

type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type Document struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type collectionsResp struct {
	Collections []string `json:"collections"`
}

type documentsResp struct {
	Documents []Document `json:"documents"`
}

func (c *Client) do(ctx context.Context, method, path, userID string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	// The backend scopes every operation by this header.
	req.Header.Set("user", userID)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docs service: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		resp.Body.Close()
		return nil, fmt.Errorf("docs service: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

func (c *Client) ListCollections(ctx context.Context, userID string) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/collections", userID)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded collectionsResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("docs service: decode: %w", err)
	}
	if decoded.Collections == nil {
		decoded.Collections = []string{}
	}
	return decoded.Collections, nil
}

func (c *Client) DeleteCollection(ctx context.Context, userID, collection string) error {
	path := "/collections/" + url.PathEscape(collection)
	resp, err := c.do(ctx, http.MethodDelete, path, userID)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) ListDocuments(ctx context.Context, userID, collection string) ([]Document, error) {
	path := "/collections/" + url.PathEscape(collection) + "/documents"
	resp, err := c.do(ctx, http.MethodGet, path, userID)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded documentsResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("docs service: decode: %w", err)
	}
	if decoded.Documents == nil {
		decoded.Documents = []Document{}
	}
	return decoded.Documents, nil
}

func (c *Client) DeleteDocument(ctx context.Context, userID, collection, documentID string) error {
	path := "/collections/" + url.PathEscape(collection) + "/documents/" + url.PathEscape(documentID)
	resp, err := c.do(ctx, http.MethodDelete, path, userID)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
