package dto

import "strings"

// ChatRequest accepts either "message" or "query" for the visitor's text.
type ChatRequest struct {
	Message   string            `json:"message" validate:"required_without=Query,max=2000"`
	Query     string            `json:"query" validate:"max=2000"`
	SessionId string            `json:"sessionId" validate:"max=100"`
	History   []ChatHistoryTurn `json:"history,omitempty" validate:"max=50,dive"`
}

type ChatHistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content" validate:"max=4000"`
}

// Text returns the trimmed visitor text, preferring Message over Query.
func (r *ChatRequest) Text() string {
	if msg := strings.TrimSpace(r.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(r.Query)
}

type ChatResponse struct {
	Reply     string `json:"reply"`
	SessionId string `json:"sessionId"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
}
