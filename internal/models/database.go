package models

// GORM models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	QueryStatusSucceeded  = "succeeded"
	QueryStatusFailed     = "failed"
	QueryStatusSuperseded = "superseded"
)

// QueryRecord is one submitted query and what came of it
type QueryRecord struct {
	BaseModel
	SubmissionID   string   `json:"submission_id" gorm:"size:36;uniqueIndex;not null"`
	SessionID      string   `json:"session_id" gorm:"size:64;index"`
	UserID         string   `json:"user_id" gorm:"size:128"`
	QueryText      string   `json:"query_text"`
	Status         string   `json:"status" gorm:"size:16;not null;check:status IN ('succeeded','failed','superseded')"`
	Response       string   `json:"response,omitempty"`
	ResponseKind   string   `json:"response_kind,omitempty" gorm:"size:16"`
	Confidence     *float64 `json:"confidence,omitempty"`
	ErrorMessage   string   `json:"error_message,omitempty"`
	ResponseTimeMs int      `json:"response_time_ms"`
	// SubmittedAt is when the user pressed submit, not when the row was written.
	SubmittedAt time.Time `json:"submitted_at" gorm:"index"`
}

// SystemHealth represents service health monitoring
type SystemHealth struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ServiceName    string    `json:"service_name" gorm:"not null"`
	Status         string    `json:"status" gorm:"not null;check:status IN ('healthy','degraded','unhealthy')"`
	ResponseTimeMs int       `json:"response_time_ms"`
	ErrorMessage   string    `json:"error_message"`
	CheckedAt      time.Time `json:"checked_at" gorm:"default:NOW()"`
}

// Database interfaces for repository pattern
type QueryRecordRepository interface {
	Create(record *QueryRecord) error
	GetBySubmissionID(submissionID string) (*QueryRecord, error)
	GetRecent(limit int) ([]QueryRecord, error)
	GetBySession(sessionID string, limit int) ([]QueryRecord, error)
	CountByStatus(since time.Time) (map[string]int64, error)
}

type SystemHealthRepository interface {
	UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error
	GetAllServicesHealth() ([]SystemHealth, error)
}

// TableName methods for custom table names
func (QueryRecord) TableName() string  { return "query_records" }
func (SystemHealth) TableName() string { return "system_health" }

// Model validation methods
func (qr *QueryRecord) Validate() error {
	if qr.SubmissionID == "" {
		return fmt.Errorf("submission ID is required")
	}
	validStatuses := map[string]bool{
		QueryStatusSucceeded:  true,
		QueryStatusFailed:     true,
		QueryStatusSuperseded: true,
	}
	if !validStatuses[qr.Status] {
		return fmt.Errorf("invalid query status: %s", qr.Status)
	}
	if qr.ResponseTimeMs < 0 {
		return fmt.Errorf("response time cannot be negative")
	}
	return nil
}

// GORM hooks
func (qr *QueryRecord) BeforeCreate(tx *gorm.DB) error {
	return qr.Validate()
}
