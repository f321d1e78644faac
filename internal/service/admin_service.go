package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"school-chatbot-be/internal/dto"
	"school-chatbot-be/internal/pkg/logger"
	"school-chatbot-be/internal/repository/contract"
	"school-chatbot-be/pkg/admin/usage"
	"school-chatbot-be/pkg/store"
)

var ErrSessionNotFound = errors.New("session not found")

type IAdminService interface {
	GetUsage(ctx context.Context) ([]dto.UsageResponse, error)
	GetLogs(ctx context.Context, request *dto.LogListRequest) (*dto.LogListResponse, error)
	GetSession(ctx context.Context, sessionId string) (*dto.SessionResponse, error)
	ReloadDocuments(ctx context.Context) (*dto.ReloadDocumentsResponse, error)
}

// DocumentSource loads the raw documents from disk.
type DocumentSource interface {
	Load(dir string) ([]store.Document, error)
}

// DocumentIndex embeds and serves documents.
type DocumentIndex interface {
	Build(ctx context.Context, docs []store.Document) (int, error)
}

type adminService struct {
	tracker     *usage.Tracker
	logger      logger.ILogger
	sessionRepo contract.SessionRepository
	source      DocumentSource
	index       DocumentIndex
	dataPath    string
}

func NewAdminService(
	tracker *usage.Tracker,
	log logger.ILogger,
	sessionRepo contract.SessionRepository,
	source DocumentSource,
	index DocumentIndex,
	dataPath string,
) IAdminService {
	return &adminService{
		tracker:     tracker,
		logger:      log,
		sessionRepo: sessionRepo,
		source:      source,
		index:       index,
		dataPath:    dataPath,
	}
}

func (s *adminService) GetUsage(ctx context.Context) ([]dto.UsageResponse, error) {
	counters, err := s.tracker.Snapshot()
	if err != nil {
		return nil, err
	}
	limits := s.tracker.Limits()

	res := make([]dto.UsageResponse, 0, len(counters))
	for name, c := range counters {
		res = append(res, dto.UsageResponse{
			Provider:     name,
			DailyCount:   c.DailyCount,
			DailyLimit:   limits[name].Daily,
			MonthlyCount: c.MonthlyCount,
			MonthlyLimit: limits[name].Monthly,
			LastReset:    c.LastReset,
		})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Provider < res[j].Provider })
	return res, nil
}

func (s *adminService) GetLogs(ctx context.Context, request *dto.LogListRequest) (*dto.LogListResponse, error) {
	limit := request.Limit
	if limit == 0 {
		limit = 50
	}
	logs, err := s.logger.GetLogs(request.Level, limit, request.Offset)
	if err != nil {
		return nil, fmt.Errorf("read logs: %w", err)
	}
	return &dto.LogListResponse{
		Logs:   logs,
		Limit:  limit,
		Offset: request.Offset,
	}, nil
}

func (s *adminService) GetSession(ctx context.Context, sessionId string) (*dto.SessionResponse, error) {
	sess, err := s.sessionRepo.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	history := make([]dto.SessionTurnResponse, 0, len(sess.History))
	for _, t := range sess.History {
		history = append(history, dto.SessionTurnResponse{Role: t.Role, Content: t.Content})
	}
	return &dto.SessionResponse{
		Id:                   sess.ID,
		History:              history,
		PendingClarification: sess.PendingClarification,
		LastActivity:         sess.LastActivity,
	}, nil
}

// ReloadDocuments re-reads the data directory and re-embeds everything.
// The previous index keeps serving until the new one is complete.
func (s *adminService) ReloadDocuments(ctx context.Context) (*dto.ReloadDocumentsResponse, error) {
	docs, err := s.source.Load(s.dataPath)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	embedded, err := s.index.Build(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	s.logger.Info("ADMIN", "Documents reloaded", map[string]interface{}{
		"loaded":   len(docs),
		"embedded": embedded,
	})
	return &dto.ReloadDocumentsResponse{Loaded: len(docs), Embedded: embedded}, nil
}
