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

const BingBaseURL = "https://api.bing.microsoft.com/v7.0/search"

type BingProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type bingResponse struct {
	WebPages struct {
		Value []struct {
			Name    string `json:"name"`
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
		} `json:"value"`
	} `json:"webPages"`
}

func NewBingProvider(apiKey, baseURL string, timeout time.Duration) *BingProvider {
	if baseURL == "" {
		baseURL = BingBaseURL
	}
	return &BingProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
	}
}

func (p *BingProvider) Name() string {
	return "bingSearch"
}

func (p *BingProvider) Search(ctx context.Context, query string, count int) ([]Result, error) {
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
	req.Header.Set("Ocp-Apim-Subscription-Key", p.apiKey)

	body, err := doGet(p.client, req)
	if err != nil {
		return nil, err
	}

	var parsed bingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]Result, 0, len(parsed.WebPages.Value))
	for _, r := range parsed.WebPages.Value {
		results = append(results, Result{Title: r.Name, URL: r.URL, Snippet: r.Snippet})
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return limit(results, count), nil
}
