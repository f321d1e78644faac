package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"

	"school-chatbot-be/internal/config"
	"school-chatbot-be/internal/constant"
	"school-chatbot-be/internal/controller"
	"school-chatbot-be/internal/pkg/logger"
	"school-chatbot-be/internal/repository/contract"
	"school-chatbot-be/internal/repository/memory"
	redisRepo "school-chatbot-be/internal/repository/redis"
	"school-chatbot-be/internal/service"
	"school-chatbot-be/pkg/admin/usage"
	"school-chatbot-be/pkg/ai/pipeline"
	"school-chatbot-be/pkg/document"
	"school-chatbot-be/pkg/embedding"
	"school-chatbot-be/pkg/embedding/jina"
	"school-chatbot-be/pkg/llm"
	"school-chatbot-be/pkg/llm/factory"
	"school-chatbot-be/pkg/rag"
	"school-chatbot-be/pkg/rag/intent"
	"school-chatbot-be/pkg/rag/session"
	"school-chatbot-be/pkg/rules"
	"school-chatbot-be/pkg/search"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	HealthController  controller.IHealthController
	ChatbotController controller.IChatbotController
	AdminController   controller.IAdminController // nil when JWT_SECRET is unset

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger           logger.ILogger
	TranscriptLogger *logger.TranscriptLogger

	index  *rag.Index
	loader *document.Loader
	cfg    *config.Config
	pubSub *gochannel.GoChannel
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	transcriptLogger := logger.NewTranscriptLogger(cfg.App.ChatLogPath)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermillLogger,
	)

	// 3. AI Providers
	embeddingProvider, err := NewEmbeddingProvider(cfg.Ai)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] Using Embedding Provider: %s", cfg.Ai.EmbeddingProvider)

	llmBaseURL := cfg.Ai.LLMBaseURL
	if cfg.Ai.LLMProvider == "ollama" && llmBaseURL == "" {
		llmBaseURL = cfg.Ai.OllamaBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL,
		cfg.Ai.LLMApiKey,
		cfg.Ai.RequestTimeout,
	)
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	primary := newSearchProvider(cfg.Search.PrimaryProvider, cfg.Search.PrimaryApiKey, cfg, sysLogger)
	secondary := newSearchProvider(cfg.Search.SecondaryProvider, cfg.Search.SecondaryApiKey, cfg, sysLogger)

	limits := map[string]usage.Limit{}
	if primary != nil {
		limits[primary.Name()] = usage.Limit{Daily: cfg.Search.PrimaryDailyLimit, Monthly: cfg.Search.PrimaryMonthlyLimit}
	}
	if secondary != nil {
		limits[secondary.Name()] = usage.Limit{Daily: cfg.Search.SecondaryDailyLimit, Monthly: cfg.Search.SecondaryMonthlyLimit}
	}
	tracker := usage.NewTracker(cfg.App.UsageTrackerPath, limits, sysLogger)

	// 4. Session Storage
	sessionRepo, err := newSessionRepository(cfg.Session)
	if err != nil {
		return nil, err
	}
	sessions := session.NewManager(sessionRepo, cfg.Session.HistoryLimit)

	// 5. Domain
	phraseRules, err := rules.Load(cfg.App.RulesPath, map[string]string{
		"SCHOOL_NAME":  cfg.School.Name,
		"SCHOOL_PHONE": cfg.School.Phone,
		"SCHOOL_EMAIL": cfg.School.Email,
	})
	if err != nil {
		return nil, err
	}

	var smoother llm.LLMProvider
	if cfg.Ai.SmoothPersonalFacts {
		smoother = llmProvider
	}
	matcher := intent.NewMatcher(phraseRules, sessions, smoother, cfg.School.Name, sysLogger)

	index := rag.NewIndex(embeddingProvider, sysLogger, cfg.Ai.EmbedConcurrency, cfg.Ai.RequestTimeout)
	answerer := pipeline.NewAnswerPipeline(
		pipeline.NewRAGPipeline(index, llmProvider, cfg.Ai.TopK, cfg.School.Name, sysLogger),
		pipeline.NewBypassPipeline(llmProvider, fmt.Sprintf(constant.PersonaSystemPrompt, cfg.School.Name, cfg.School.Name), sysLogger),
		primary, secondary,
		tracker,
		pipeline.Config{
			IrrelevantPhrases: phraseRules.IrrelevantPhrases,
			WeakPhrases:       phraseRules.WeakPhrases,
			StepTimeout:       cfg.Ai.RequestTimeout,
			SearchResults:     search.DefaultResultCount,
			Apology:           fmt.Sprintf(constant.FallbackApologyTemplate, cfg.School.Phone, cfg.School.Email),
		},
		sysLogger,
	)

	// 6. Services
	publisherService := service.NewPublisherService(pubSub, service.TranscriptTopic)
	consumerService := service.NewConsumerService(pubSub, service.TranscriptTopic, transcriptLogger, sysLogger)
	chatbotService := service.NewChatbotService(sessions, matcher, answerer, publisherService, sysLogger)

	loader := document.NewLoader(sysLogger)

	c := &Container{
		HealthController:  controller.NewHealthController(index),
		ChatbotController: controller.NewChatbotController(chatbotService),
		ConsumerService:   consumerService,
		Logger:            sysLogger,
		TranscriptLogger:  transcriptLogger,
		index:             index,
		loader:            loader,
		cfg:               cfg,
		pubSub:            pubSub,
	}

	if cfg.App.JwtSecret != "" {
		adminService := service.NewAdminService(tracker, sysLogger, sessionRepo, loader, index, cfg.App.DataPath)
		c.AdminController = controller.NewAdminController(adminService, cfg.App.JwtSecret)
	} else {
		log.Println("[INFO] JWT_SECRET not set, admin routes disabled")
	}

	return c, nil
}

// StartTranscriptConsumer subscribes the transcript writer on a context that
// only the returned stop func cancels. Call stop after the server has drained.
func (c *Container) StartTranscriptConsumer() (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	if err := c.ConsumerService.Consume(ctx); err != nil {
		cancel()
		return nil, err
	}
	return cancel, nil
}

// LoadDocuments reads DATA_PATH and embeds every document. It must finish
// before the server accepts chat traffic.
func (c *Container) LoadDocuments(ctx context.Context) error {
	docs, err := c.loader.Load(c.cfg.App.DataPath)
	if err != nil {
		c.Logger.Error("BOOTSTRAP", "Failed to load documents, answering without retrieval", map[string]interface{}{
			"path":  c.cfg.App.DataPath,
			"error": err,
		})
		return nil
	}

	embedded, err := c.index.Build(ctx, docs)
	if errors.Is(err, rag.ErrNothingEmbedded) {
		c.Logger.Error("BOOTSTRAP", "No document could be embedded, answering without retrieval", map[string]interface{}{
			"documents": len(docs),
			"error":     err,
		})
		return nil
	}
	if err != nil {
		return fmt.Errorf("build document index: %w", err)
	}
	log.Printf("[INFO] Embedded %d/%d documents", embedded, len(docs))
	return nil
}

func (c *Container) Close() {
	if err := c.pubSub.Close(); err != nil {
		log.Printf("[WARN] Failed to close pubsub: %v", err)
	}
	_ = c.TranscriptLogger.Sync()
	_ = c.Logger.Sync()
}

// NewEmbeddingProvider builds the embedding client named by EMBEDDING_PROVIDER.
func NewEmbeddingProvider(cfg config.AIConfig) (embedding.EmbeddingProvider, error) {
	switch cfg.EmbeddingProvider {
	case "openai":
		apiKey := cfg.EmbeddingApiKey
		if apiKey == "" {
			apiKey = cfg.LLMApiKey
		}
		return embedding.NewOpenAIProvider(apiKey, cfg.EmbeddingBaseURL, cfg.EmbeddingModel, cfg.RequestTimeout), nil
	case "ollama":
		baseURL := cfg.EmbeddingBaseURL
		if baseURL == "" {
			baseURL = cfg.OllamaBaseURL
		}
		return embedding.NewOllamaProvider(baseURL, cfg.EmbeddingModel, cfg.RequestTimeout), nil
	case "jina":
		return jina.NewProvider(cfg.EmbeddingApiKey, cfg.EmbeddingBaseURL, cfg.EmbeddingModel, cfg.RequestTimeout), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.EmbeddingProvider)
	}
}

// newSearchProvider returns nil when the provider has no API key; the
// pipeline then skips that search stage.
func newSearchProvider(providerType, apiKey string, cfg *config.Config, sysLogger logger.ILogger) search.Provider {
	if providerType == "" || apiKey == "" {
		sysLogger.Warn("BOOTSTRAP", "Web search provider disabled", map[string]interface{}{
			"provider": providerType,
		})
		return nil
	}
	p, err := search.NewProvider(providerType, apiKey, "", cfg.Ai.RequestTimeout)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Web search provider disabled", map[string]interface{}{
			"provider": providerType,
			"error":    err.Error(),
		})
		return nil
	}
	return p
}

func newSessionRepository(cfg config.SessionConfig) (contract.SessionRepository, error) {
	switch cfg.Backend {
	case "memory", "":
		return memory.NewSessionRepository(cfg.IdleTimeout), nil
	case "redis":
		rdb := redisRepo.NewClient(cfg.RedisURL)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		return redisRepo.NewSessionRepository(rdb, cfg.IdleTimeout), nil
	default:
		return nil, fmt.Errorf("unsupported session backend: %s", cfg.Backend)
	}
}
