package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		record  QueryRecord
		wantErr bool
	}{
		{
			name:   "empty query text is allowed",
			record: QueryRecord{SubmissionID: "s-1", Status: QueryStatusSucceeded},
		},
		{
			name:   "superseded",
			record: QueryRecord{SubmissionID: "s-1", Status: QueryStatusSuperseded, QueryText: "q"},
		},
		{
			name:    "missing submission id",
			record:  QueryRecord{Status: QueryStatusFailed},
			wantErr: true,
		},
		{
			name:    "unknown status",
			record:  QueryRecord{SubmissionID: "s-1", Status: "pending"},
			wantErr: true,
		},
		{
			name:    "negative response time",
			record:  QueryRecord{SubmissionID: "s-1", Status: QueryStatusFailed, ResponseTimeMs: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
