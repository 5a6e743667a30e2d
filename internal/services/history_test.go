package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Ayash-Bera/medquery/internal/auth"
	"github.com/Ayash-Bera/medquery/internal/container"
	"github.com/Ayash-Bera/medquery/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecordRepo struct {
	mu        sync.Mutex
	created   []models.QueryRecord
	createErr error
	recent    []models.QueryRecord
	lastLimit int
}

func (f *fakeRecordRepo) Create(record *models.QueryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if err := record.Validate(); err != nil {
		return err
	}
	f.created = append(f.created, *record)
	return nil
}

func (f *fakeRecordRepo) GetBySubmissionID(submissionID string) (*models.QueryRecord, error) {
	for _, r := range f.created {
		if r.SubmissionID == submissionID {
			return &r, nil
		}
	}
	return nil, errors.New("record not found")
}

func (f *fakeRecordRepo) GetRecent(limit int) ([]models.QueryRecord, error) {
	f.lastLimit = limit
	return f.recent, nil
}

func (f *fakeRecordRepo) GetBySession(sessionID string, limit int) ([]models.QueryRecord, error) {
	f.lastLimit = limit
	var out []models.QueryRecord
	for _, r := range f.created {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) CountByStatus(since time.Time) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, r := range f.created {
		counts[r.Status]++
	}
	return counts, nil
}

func newHistoryService(repo *fakeRecordRepo) *HistoryService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewHistoryService(repo, nil, auth.NewStaticProvider("your-token-here", "test-user"), logger)
}

func TestHistoryService_RecordStatuses(t *testing.T) {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name       string
		outcome    container.Outcome
		wantStatus string
		wantKind   string
		wantError  string
	}{
		{
			name: "answer with confidence",
			outcome: container.Outcome{
				Response: json.RawMessage(`{"response":"Vitamin C helps.","confidence":0.82}`),
			},
			wantStatus: models.QueryStatusSucceeded,
			wantKind:   "answer",
		},
		{
			name:       "failure",
			outcome:    container.Outcome{Err: errors.New("request failed: status 500")},
			wantStatus: models.QueryStatusFailed,
			wantError:  "request failed: status 500",
		},
		{
			name:       "superseded",
			outcome:    container.Outcome{Err: context.Canceled, Stale: true},
			wantStatus: models.QueryStatusSuperseded,
			wantError:  "context canceled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRecordRepo{}
			svc := newHistoryService(repo)

			tt.outcome.SubmissionID = "sub-1"
			tt.outcome.SessionID = "sess-1"
			tt.outcome.Query = "iron"
			tt.outcome.StartedAt = started
			tt.outcome.Duration = 120 * time.Millisecond

			svc.Record(context.Background(), tt.outcome)

			require.Len(t, repo.created, 1)
			rec := repo.created[0]
			assert.Equal(t, tt.wantStatus, rec.Status)
			assert.Equal(t, tt.wantKind, rec.ResponseKind)
			assert.Equal(t, tt.wantError, rec.ErrorMessage)
			assert.Equal(t, "test-user", rec.UserID)
			assert.Equal(t, "sess-1", rec.SessionID)
			assert.Equal(t, "iron", rec.QueryText)
			assert.Equal(t, 120, rec.ResponseTimeMs)
			assert.Equal(t, started, rec.SubmittedAt)
		})
	}
}

func TestHistoryService_RecordUserIDWithoutSigning(t *testing.T) {
	repo := &fakeRecordRepo{}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	// An empty secret makes Credentials fail, so the id must come from UserID.
	svc := NewHistoryService(repo, nil, auth.NewSignedProvider("", "clinician-7", time.Hour), logger)

	svc.Record(context.Background(), container.Outcome{SubmissionID: "sub-1", Err: errors.New("boom")})

	require.Len(t, repo.created, 1)
	assert.Equal(t, "clinician-7", repo.created[0].UserID)
}

func TestHistoryService_RecordKeepsConfidence(t *testing.T) {
	repo := &fakeRecordRepo{}
	svc := newHistoryService(repo)

	svc.Record(context.Background(), container.Outcome{
		SubmissionID: "sub-1",
		Response:     json.RawMessage(`{"response":"ok","confidence":0.5}`),
	})

	require.Len(t, repo.created, 1)
	require.NotNil(t, repo.created[0].Confidence)
	assert.Equal(t, 0.5, *repo.created[0].Confidence)
	assert.JSONEq(t, `{"response":"ok","confidence":0.5}`, repo.created[0].Response)
}

func TestHistoryService_RecordSwallowsRepositoryErrors(t *testing.T) {
	repo := &fakeRecordRepo{createErr: errors.New("db down")}
	svc := newHistoryService(repo)

	assert.NotPanics(t, func() {
		svc.Record(context.Background(), container.Outcome{SubmissionID: "sub-1"})
	})
	assert.Empty(t, repo.created)
}

func TestHistoryService_RecentClampsLimit(t *testing.T) {
	repo := &fakeRecordRepo{recent: []models.QueryRecord{{SubmissionID: "a"}}}
	svc := newHistoryService(repo)

	records, err := svc.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, DefaultHistoryLimit, repo.lastLimit)

	_, err = svc.Recent(context.Background(), 5000)
	require.NoError(t, err)
	assert.Equal(t, MaxHistoryLimit, repo.lastLimit)
}

func TestHistoryService_Get(t *testing.T) {
	repo := &fakeRecordRepo{}
	svc := newHistoryService(repo)
	ctx := context.Background()

	svc.Record(ctx, container.Outcome{SubmissionID: "sub-7", Query: "iron", Response: json.RawMessage(`"x"`)})

	record, err := svc.Get(ctx, "sub-7")
	require.NoError(t, err)
	assert.Equal(t, "iron", record.QueryText)

	_, err = svc.Get(ctx, "missing")
	assert.Error(t, err)
}

func TestHistoryService_ForSessionAndCounts(t *testing.T) {
	repo := &fakeRecordRepo{}
	svc := newHistoryService(repo)
	ctx := context.Background()

	svc.Record(ctx, container.Outcome{SubmissionID: "a", SessionID: "s1", Response: json.RawMessage(`"x"`)})
	svc.Record(ctx, container.Outcome{SubmissionID: "b", SessionID: "s2", Err: errors.New("boom")})
	svc.Record(ctx, container.Outcome{SubmissionID: "c", SessionID: "s1", Err: errors.New("boom")})

	records, err := svc.ForSession(ctx, "s1", 10)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	counts, err := svc.StatusCounts(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"succeeded": 1, "failed": 2}, counts)
}
