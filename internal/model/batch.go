package model

import "time"

type BatchKind string

const (
	BatchKindAlumniExcel  BatchKind = "alumni_excel"
	BatchKindAlumniManual BatchKind = "alumni_manual_entry"
	BatchKindResourceCSV  BatchKind = "resource_csv"
	BatchKindActivity     BatchKind = "activity_media"
)

type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "pending"
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusFailed     BatchStatus = "failed"
)

// UploadBatch tracks one import run. Rows it produced reference it but are not owned by it.
type UploadBatch struct {
	ID             int64       `json:"id" gorm:"primaryKey"`
	BatchType      BatchKind   `json:"batch_type" gorm:"type:varchar(32);not null"`
	SourceFilename string      `json:"source_filename" gorm:"type:varchar(512)"`
	SubmittedBy    string      `json:"submitted_by" gorm:"type:varchar(255)"`
	TotalRows      int         `json:"total_rows" gorm:"default:0"`
	AcceptedRows   int         `json:"accepted_rows" gorm:"default:0"`
	Status         BatchStatus `json:"status" gorm:"type:varchar(16);default:pending;index"`
	Notes          *string     `json:"notes,omitempty" gorm:"type:text"`
	StartedAt      time.Time   `json:"started_at"`
	FinishedAt     *time.Time  `json:"finished_at,omitempty"`
}

func (UploadBatch) TableName() string { return "upload_batches" }

// BatchResult is the final accounting written to a batch when it leaves processing.
type BatchResult struct {
	Status       BatchStatus
	TotalRows    int
	AcceptedRows int
	Notes        []string
}
