package dto

import (
	"time"

	"school-chatbot-be/internal/pkg/logger"
)

type UsageResponse struct {
	Provider     string `json:"provider"`
	DailyCount   int    `json:"dailyCount"`
	DailyLimit   int    `json:"dailyLimit"`
	MonthlyCount int    `json:"monthlyCount"`
	MonthlyLimit int    `json:"monthlyLimit"`
	LastReset    string `json:"lastReset"`
}

type LogListRequest struct {
	Level  string `query:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR"`
	Limit  int    `query:"limit" validate:"min=0,max=500"`
	Offset int    `query:"offset" validate:"min=0"`
}

type LogListResponse struct {
	Logs   []logger.LogEntry `json:"logs"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

type SessionTurnResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type SessionResponse struct {
	Id                   string                `json:"id"`
	History              []SessionTurnResponse `json:"history"`
	PendingClarification string                `json:"pendingClarification,omitempty"`
	LastActivity         time.Time             `json:"lastActivity"`
}

type ReloadDocumentsResponse struct {
	Loaded   int `json:"loaded"`
	Embedded int `json:"embedded"`
}
