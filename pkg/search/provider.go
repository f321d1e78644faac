// Package search queries hosted web search APIs for the last-resort answers.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultResultCount = 3

var ErrNoResults = errors.New("search returned no results")

type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Provider is one web search backend. Name is the key used by the usage tracker.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, count int) ([]Result, error)
}

// NewProvider builds a provider by type ("brave" or "bing"). baseURL may be empty.
func NewProvider(providerType, apiKey, baseURL string, timeout time.Duration) (Provider, error) {
	switch strings.ToLower(providerType) {
	case "brave":
		return NewBraveProvider(apiKey, baseURL, timeout), nil
	case "bing":
		return NewBingProvider(apiKey, baseURL, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported search provider: %s", providerType)
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func doGet(client *http.Client, req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search api error (status %d)", resp.StatusCode)
	}
	return body, nil
}

func limit(results []Result, count int) []Result {
	if count > 0 && len(results) > count {
		return results[:count]
	}
	return results
}
