package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"school-chatbot-be/internal/dto"
	"school-chatbot-be/internal/pkg/logger"
	"school-chatbot-be/pkg/ai/pipeline"
	"school-chatbot-be/pkg/rag/intent"
	"school-chatbot-be/pkg/rag/session"
	"school-chatbot-be/pkg/store"
)

var ErrEmptyMessage = errors.New("message is required")

// IChatbotService defines the chatbot service interface
type IChatbotService interface {
	SendChat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error)
}

// Answerer produces the reply for queries no shortcut handled.
type Answerer interface {
	Answer(ctx context.Context, query string, history []store.Turn) (*pipeline.Answer, error)
}

type chatbotService struct {
	sessions    *session.Manager
	matcher     *intent.Matcher
	answerer    Answerer
	transcripts IPublisherService
	logger      logger.ILogger
	now         func() time.Time
}

func NewChatbotService(
	sessions *session.Manager,
	matcher *intent.Matcher,
	answerer Answerer,
	transcripts IPublisherService,
	log logger.ILogger,
) IChatbotService {
	return &chatbotService{
		sessions:    sessions,
		matcher:     matcher,
		answerer:    answerer,
		transcripts: transcripts,
		logger:      log,
		now:         time.Now,
	}
}

func (c *chatbotService) SendChat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	text := request.Text()
	if text == "" {
		return nil, ErrEmptyMessage
	}

	sessionID := request.SessionId
	if sessionID == "" {
		sessionID = session.NewID()
	}

	if len(request.History) > 0 {
		turns := make([]store.Turn, 0, len(request.History))
		for _, h := range request.History {
			turns = append(turns, store.Turn{Role: h.Role, Content: h.Content})
		}
		if err := c.sessions.Seed(ctx, sessionID, turns); err != nil {
			c.logger.Warn("CHATBOT", "Failed to seed session history", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
	}

	history, err := c.sessions.History(ctx, sessionID)
	if err != nil {
		c.logger.Warn("CHATBOT", "Failed to read session history", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	reply, stage, err := c.reply(ctx, sessionID, text, history)
	if err != nil {
		c.record(ctx, sessionID, text, "", stage, err)
		return nil, fmt.Errorf("answer chat: %w", err)
	}

	c.appendTurns(ctx, sessionID, text, reply)
	c.record(ctx, sessionID, text, reply, stage, nil)

	return &dto.ChatResponse{
		Reply:     reply,
		SessionId: sessionID,
	}, nil
}

func (c *chatbotService) reply(ctx context.Context, sessionID, text string, history []store.Turn) (string, string, error) {
	shortcut, err := c.matcher.Match(ctx, sessionID, text)
	if err != nil {
		// session state is unavailable; answer without shortcuts
		c.logger.Warn("CHATBOT", "Shortcut matching failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		shortcut = &intent.Result{Query: text}
	}
	if shortcut.Handled() {
		return shortcut.Reply, string(shortcut.Kind), nil
	}

	answer, err := c.answerer.Answer(ctx, shortcut.Query, history)
	if err != nil {
		return "", string(pipeline.StageFallback), err
	}
	return answer.Reply, string(answer.Stage), nil
}

func (c *chatbotService) appendTurns(ctx context.Context, sessionID, text, reply string) {
	for _, t := range []store.Turn{
		{Role: store.RoleUser, Content: text},
		{Role: store.RoleAssistant, Content: reply},
	} {
		if err := c.sessions.Append(ctx, sessionID, t.Role, t.Content); err != nil {
			c.logger.Error("CHATBOT", "Failed to append session turn", map[string]interface{}{
				"session_id": sessionID,
				"error":      err,
			})
			return
		}
	}
}

func (c *chatbotService) record(ctx context.Context, sessionID, query, reply, stage string, answerErr error) {
	entry := logger.TranscriptEntry{
		Timestamp:      c.now().UTC(),
		SessionId:      sessionID,
		UserQuery:      query,
		AssistantReply: reply,
		Stage:          stage,
	}
	if answerErr != nil {
		msg := answerErr.Error()
		entry.Error = &msg
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		c.logger.Error("CHATBOT", "Failed to encode transcript", map[string]interface{}{"error": err})
		return
	}
	// the request context may already be cancelled here
	if err := c.transcripts.Publish(context.WithoutCancel(ctx), payload); err != nil {
		c.logger.Error("CHATBOT", "Failed to publish transcript", map[string]interface{}{
			"session_id": sessionID,
			"error":      err,
		})
	}
}
