package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const BraveBaseURL = "https://api.search.brave.com/res/v1/web/search"

type BraveProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

func NewBraveProvider(apiKey, baseURL string, timeout time.Duration) *BraveProvider {
	if baseURL == "" {
		baseURL = BraveBaseURL
	}
	return &BraveProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
	}
}

func (p *BraveProvider) Name() string {
	return "braveSearch"
}

func (p *BraveProvider) Search(ctx context.Context, query string, count int) ([]Result, error) {
	if count <= 0 {
		count = DefaultResultCount
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Subscription-Token", p.apiKey)

	body, err := doGet(p.client, req)
	if err != nil {
		return nil, err
	}

	var parsed braveResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Web.Results))
	for _, r := range parsed.Web.Results {
		results = append(results, Result{Title: r.Title, URL: r.URL, Snippet: r.Description})
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return limit(results, count), nil
}
