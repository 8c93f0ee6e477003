// Package storefront is the viewer's client for the storefront proxy API.
package storefront

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

	"layerlight-storefront/models"
)

const defaultTimeout = 10 * time.Second

// ErrNotFound is returned for a 404 or an empty product list
var ErrNotFound = errors.New("storefront: no products found")

// ErrEmptyQuery is returned by Fetch when no field of the query is set
var ErrEmptyQuery = errors.New("storefront: either collection, handle or search must be provided")

// FetchError is a transport or server failure
type FetchError struct {
	Op     string
	Status int
	Msg    string
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("storefront: %s: %v", e.Op, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("storefront: %s: status %d: %s", e.Op, e.Status, e.Msg)
	default:
		return fmt.Sprintf("storefront: %s: status %d", e.Op, e.Status)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Query picks what the gallery shows. Collection wins over Handle, Handle over Search.
// At least one field must be set.
type Query struct {
	Collection string
	Handle     string
	Search     string
}

// Empty reports whether no field is set.
func (q Query) Empty() bool {
	return q.Collection == "" && q.Handle == "" && q.Search == ""
}

// Client talks to the proxy routes of the storefront server
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL, e.g. "http://localhost:8080".
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    httpClient,
	}
}

// ProductByHandle fetches one product.
func (c *Client) ProductByHandle(ctx context.Context, handle string) (models.Product, error) {
	endpoint, err := url.JoinPath(c.baseURL, "api", "products", handle)
	if err != nil {
		return models.Product{}, err
	}
	var p models.Product
	if err := c.getJSON(ctx, "product", endpoint, &p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// SearchProducts runs a title search; an empty term lists everything.
func (c *Client) SearchProducts(ctx context.Context, term string) ([]models.Product, error) {
	endpoint, err := url.JoinPath(c.baseURL, "api", "products")
	if err != nil {
		return nil, err
	}
	if term != "" {
		endpoint += "?" + url.Values{"search": {term}}.Encode()
	}
	var products []models.Product
	if err := c.getJSON(ctx, "search", endpoint, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CollectionProducts lists the products of a collection.
func (c *Client) CollectionProducts(ctx context.Context, handle string) ([]models.Product, error) {
	endpoint, err := url.JoinPath(c.baseURL, "api", "collections", handle, "products")
	if err != nil {
		return nil, err
	}
	var products []models.Product
	if err := c.getJSON(ctx, "collection", endpoint, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Fetch resolves a gallery query to products. An empty result is ErrNotFound,
// an empty query is ErrEmptyQuery.
func (c *Client) Fetch(ctx context.Context, q Query) ([]models.Product, error) {
	if q.Empty() {
		return nil, ErrEmptyQuery
	}
	var (
		products []models.Product
		err      error
	)
	switch {
	case q.Collection != "":
		products, err = c.CollectionProducts(ctx, q.Collection)
	case q.Handle != "":
		var p models.Product
		p, err = c.ProductByHandle(ctx, q.Handle)
		if err == nil {
			products = []models.Product{p}
		}
	default:
		products, err = c.SearchProducts(ctx, q.Search)
	}
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNotFound
	}
	return products, nil
}

// OpenMesh streams a mesh file published under /models/. It satisfies surface.Loader.
func (c *Client) OpenMesh(ctx context.Context, path string) (io.ReadCloser, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Op: "mesh", Err: err}
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, &FetchError{Op: "mesh", Status: resp.StatusCode, Msg: errorMessage(resp.Body)}
	}
	return resp.Body, nil
}

func (c *Client) getJSON(ctx context.Context, op, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return &FetchError{Op: op, Status: resp.StatusCode, Msg: errorMessage(resp.Body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// errorMessage extracts {"error": "..."} or falls back to the raw body
func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var payload models.ErrorResponse
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}
