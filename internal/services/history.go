package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Ayash-Bera/medquery/internal/auth"
	"github.com/Ayash-Bera/medquery/internal/container"
	"github.com/Ayash-Bera/medquery/internal/database"
	"github.com/Ayash-Bera/medquery/internal/models"
	"github.com/Ayash-Bera/medquery/internal/view"
	"github.com/sirupsen/logrus"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
	historyCacheTTL     = 30 * time.Second
)

// HistoryService persists finished submissions and serves them back.
type HistoryService struct {
	repo        models.QueryRecordRepository
	cache       *database.Cache
	credentials auth.Provider
	logger      *logrus.Logger
}

func NewHistoryService(
	repo models.QueryRecordRepository,
	cache *database.Cache,
	credentials auth.Provider,
	logger *logrus.Logger,
) *HistoryService {
	return &HistoryService{
		repo:        repo,
		cache:       cache,
		credentials: credentials,
		logger:      logger,
	}
}

// Record stores one outcome. Failures are logged and never reach the user.
func (s *HistoryService) Record(ctx context.Context, outcome container.Outcome) {
	record := s.toRecord(outcome)

	if err := s.repo.Create(record); err != nil {
		s.logger.WithError(err).WithField("submission_id", outcome.SubmissionID).Error("Failed to record query")
		return
	}

	if err := s.cache.InvalidateHistory(ctx); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate history cache")
	}
}

func (s *HistoryService) toRecord(outcome container.Outcome) *models.QueryRecord {
	record := &models.QueryRecord{
		SubmissionID:   outcome.SubmissionID,
		SessionID:      outcome.SessionID,
		UserID:         s.credentials.UserID(),
		QueryText:      outcome.Query,
		ResponseTimeMs: int(outcome.Duration.Milliseconds()),
		SubmittedAt:    outcome.StartedAt,
	}

	switch {
	case outcome.Stale:
		record.Status = models.QueryStatusSuperseded
	case outcome.Err != nil:
		record.Status = models.QueryStatusFailed
	default:
		record.Status = models.QueryStatusSucceeded
	}

	if outcome.Err != nil {
		record.ErrorMessage = outcome.Err.Error()
	}

	if len(outcome.Response) > 0 {
		narrowed := view.NarrowResponse(outcome.Response)
		record.Response = string(outcome.Response)
		record.ResponseKind = string(narrowed.Kind)
		record.Confidence = narrowed.Confidence
	}

	return record
}

// Recent returns the newest records, served from Redis when possible.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]models.QueryRecord, error) {
	limit = clampLimit(limit)

	cached, err := s.cache.GetCachedRecentHistory(ctx, limit)
	if err == nil {
		s.logger.WithField("limit", limit).Debug("History served from cache")
		return cached, nil
	}
	if !database.IsCacheMiss(err) {
		s.logger.WithError(err).Warn("History cache read failed")
	}

	records, err := s.repo.GetRecent(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	if err := s.cache.CacheRecentHistory(ctx, limit, records, historyCacheTTL); err != nil {
		s.logger.WithError(err).Warn("Failed to cache history")
	}

	return records, nil
}

// Get returns one record by its submission id.
func (s *HistoryService) Get(ctx context.Context, submissionID string) (*models.QueryRecord, error) {
	record, err := s.repo.GetBySubmissionID(submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load record %s: %w", submissionID, err)
	}
	return record, nil
}

// ForSession returns the newest records of one browser session.
func (s *HistoryService) ForSession(ctx context.Context, sessionID string, limit int) ([]models.QueryRecord, error) {
	records, err := s.repo.GetBySession(sessionID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}
	return records, nil
}

// StatusCounts counts records per status over the trailing window.
func (s *HistoryService) StatusCounts(ctx context.Context, window time.Duration) (map[string]int64, error) {
	return s.repo.CountByStatus(time.Now().Add(-window))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}

var _ container.Recorder = (*HistoryService)(nil)
