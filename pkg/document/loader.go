package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"school-chatbot-be/internal/pkg/logger"
	"school-chatbot-be/pkg/store"
)

const module = "DOCUMENTS"

type rawDocument struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Loader reads the website content files from a data directory.
type Loader struct {
	logger logger.ILogger
}

func NewLoader(log logger.ILogger) *Loader {
	return &Loader{logger: log}
}

// Load returns every valid document found in *.json files under dir.
// Files are read in name order; a broken file is logged and skipped.
func (l *Loader) Load(dir string) ([]store.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var docs []store.Document
	for _, name := range names {
		path := filepath.Join(dir, name)
		fileDocs, err := parseFile(path)
		if err != nil {
			l.logger.Warn(module, "Skipping malformed document file", map[string]interface{}{
				"file":  path,
				"error": err.Error(),
			})
			continue
		}

		dropped := 0
		for _, raw := range fileDocs {
			content := strings.TrimSpace(raw.Content)
			if content == "" {
				dropped++
				continue
			}
			title := strings.TrimSpace(raw.Title)
			if title == "" {
				title = strings.TrimSuffix(name, filepath.Ext(name))
			}
			docs = append(docs, store.Document{Title: title, Content: content})
		}

		l.logger.Info(module, "Loaded document file", map[string]interface{}{
			"file":    path,
			"entries": len(fileDocs) - dropped,
			"dropped": dropped,
		})
	}

	return docs, nil
}

// parseFile accepts either a JSON array of documents or a single document object.
func parseFile(path string) ([]rawDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	switch trimmed[0] {
	case '[':
		var list []rawDocument
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
		return list, nil
	case '{':
		var single rawDocument
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("decode object: %w", err)
		}
		return []rawDocument{single}, nil
	default:
		return nil, fmt.Errorf("expected a JSON array or object")
	}
}
