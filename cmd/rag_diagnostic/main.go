// Command rag_diagnostic embeds the document set with the configured provider
// and prints the ranked matches for a few queries.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"school-chatbot-be/internal/bootstrap"
	"school-chatbot-be/internal/config"
	"school-chatbot-be/internal/pkg/logger"
	"school-chatbot-be/pkg/document"
	"school-chatbot-be/pkg/rag"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()
	sysLogger := logger.NewNopLogger()

	embeddingProvider, err := bootstrap.NewEmbeddingProvider(cfg.Ai)
	if err != nil {
		log.Fatal(err)
	}

	docs, err := document.NewLoader(sysLogger).Load(cfg.App.DataPath)
	if err != nil {
		log.Fatal("Failed to load documents:", err)
	}

	// === TEST QUERIES ===
	queries := []string{
		"What time does school start?",
		"What is the school uniform?",
		"Which exams do students take?",
	}
	if len(os.Args) > 1 {
		queries = os.Args[1:]
	}

	ctx := context.Background()
	index := rag.NewIndex(embeddingProvider, sysLogger, cfg.Ai.EmbedConcurrency, cfg.Ai.RequestTimeout)
	embedded, err := index.Build(ctx, docs)
	if err != nil {
		log.Fatal("Failed to build index:", err)
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("RAG RETRIEVAL DIAGNOSTIC TOOL")
	fmt.Println(strings.Repeat("=", 80))
	color.Cyan("Provider: %s  Documents: %d  Embedded: %d  TopK: %d\n",
		cfg.Ai.EmbeddingProvider, len(docs), embedded, cfg.Ai.TopK)

	for _, q := range queries {
		color.Yellow("\nQuery: %s", q)
		results, err := index.Search(ctx, q, cfg.Ai.TopK)
		if err != nil {
			color.Red("  search failed: %v", err)
			continue
		}
		for i, r := range results {
			fmt.Printf("  %d. [%.4f] %s: %s\n", i+1, r.Score, r.Title, preview(r.Content, 90))
		}
	}
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
