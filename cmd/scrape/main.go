// Command scrape downloads the school website pages and writes them as
// retrieval documents for the chat backend.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"school-chatbot-be/pkg/store"
	"school-chatbot-be/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/fatih/color"
)

const (
	chunkSize    = 600
	chunkOverlap = 100
)

var defaultPages = []string{
	"https://www.shivaboys.edu.tt/",
	"https://www.shivaboys.edu.tt/about",
	"https://www.shivaboys.edu.tt/academics",
	"https://www.shivaboys.edu.tt/admissions",
	"https://www.shivaboys.edu.tt/contact",
}

func main() {
	out := flag.String("out", "data/website_data.json", "output JSON file")
	pagesFlag := flag.String("pages", "", "comma separated page URLs (default: built-in school pages)")
	timeout := flag.Duration("timeout", 20*time.Second, "per page timeout")
	flag.Parse()

	pages := defaultPages
	if *pagesFlag != "" {
		pages = strings.Split(*pagesFlag, ",")
	}

	client := &http.Client{Timeout: *timeout}
	var docs []store.Document

	color.Cyan("Scraping %d pages\n", len(pages))
	for _, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}

		text, err := fetchText(context.Background(), client, page)
		if err != nil {
			color.Red("  %s: %v", page, err)
			continue
		}

		chunks := utils.SplitText(text, chunkSize, chunkOverlap)
		for _, c := range chunks {
			docs = append(docs, store.Document{Title: page, Content: c})
		}
		color.Green("  %s: %d chunks", page, len(chunks))
	}

	if len(docs) == 0 {
		color.Red("No content scraped, %s left untouched", *out)
		os.Exit(1)
	}

	if err := writeDocuments(*out, docs); err != nil {
		color.Red("Failed to write %s: %v", *out, err)
		os.Exit(1)
	}
	color.Cyan("Wrote %d documents to %s", len(docs), *out)
}

func fetchText(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "school-chatbot-scraper/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	return extractText(resp.Body)
}

const (
	hiddenSelector = "script, style, noscript, svg, head, nav, footer"
	blockSelector  = "p, div, section, article, li, td, th, br, h1, h2, h3, h4, h5, h6"
)

// extractText returns the visible text of an HTML document.
func extractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}

	doc.Find(hiddenSelector).Remove()
	// keep words in adjacent blocks apart
	doc.Find(blockSelector).AppendHtml(" ")

	return utils.CollapseWhitespace(doc.Find("body").Text()), nil
}

func writeDocuments(path string, docs []store.Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
