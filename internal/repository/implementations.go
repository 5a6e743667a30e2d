package repository

import (
	"time"

	"github.com/Ayash-Bera/medquery/internal/models"
	"gorm.io/gorm"
)

// QueryRecordRepositoryImpl implements QueryRecordRepository
type QueryRecordRepositoryImpl struct {
	db *gorm.DB
}

func NewQueryRecordRepository(db *gorm.DB) models.QueryRecordRepository {
	return &QueryRecordRepositoryImpl{db: db}
}

func (r *QueryRecordRepositoryImpl) Create(record *models.QueryRecord) error {
	return r.db.Create(record).Error
}

func (r *QueryRecordRepositoryImpl) GetBySubmissionID(submissionID string) (*models.QueryRecord, error) {
	var record models.QueryRecord
	err := r.db.Where("submission_id = ?", submissionID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *QueryRecordRepositoryImpl) GetRecent(limit int) ([]models.QueryRecord, error) {
	var records []models.QueryRecord
	err := r.db.Order("submitted_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *QueryRecordRepositoryImpl) GetBySession(sessionID string, limit int) ([]models.QueryRecord, error) {
	var records []models.QueryRecord
	err := r.db.Where("session_id = ?", sessionID).
		Order("submitted_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *QueryRecordRepositoryImpl) CountByStatus(since time.Time) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.Model(&models.QueryRecord{}).
		Select("status, COUNT(*) AS count").
		Where("submitted_at >= ?", since).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// SystemHealthRepositoryImpl implements SystemHealthRepository
type SystemHealthRepositoryImpl struct {
	db *gorm.DB
}

func NewSystemHealthRepository(db *gorm.DB) models.SystemHealthRepository {
	return &SystemHealthRepositoryImpl{db: db}
}

func (r *SystemHealthRepositoryImpl) UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error {
	return r.db.Exec(`
		INSERT INTO system_health (service_name, status, response_time_ms, error_message, checked_at)
		VALUES (?, ?, ?, ?, NOW())
	`, serviceName, status, responseTime, errorMsg).Error
}

func (r *SystemHealthRepositoryImpl) GetAllServicesHealth() ([]models.SystemHealth, error) {
	var health []models.SystemHealth
	err := r.db.Raw(`
		SELECT DISTINCT ON (service_name) *
		FROM system_health
		ORDER BY service_name, checked_at DESC
	`).Scan(&health).Error
	return health, err
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	QueryRecord  models.QueryRecordRepository
	SystemHealth models.SystemHealthRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		QueryRecord:  NewQueryRecordRepository(db),
		SystemHealth: NewSystemHealthRepository(db),
	}
}
