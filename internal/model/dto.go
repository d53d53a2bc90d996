package model

import "time"

// ImportJob is queued when an alumni import runs asynchronously. The uploaded files already
// live in object storage under the batch prefix.
type ImportJob struct {
	BatchID     int64  `json:"batch_id"`
	SheetKey    string `json:"sheet_key"`
	ArchiveKey  string `json:"archive_key,omitempty"`
	SubmittedBy string `json:"submitted_by"`
	Role        string `json:"role"`
}

// ImportSummary is returned to the caller after a batch import.
type ImportSummary struct {
	BatchID  int64    `json:"batch_id"`
	Total    int      `json:"total"`
	Filtered int      `json:"filtered"`
	Accepted int      `json:"accepted"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings,omitempty"`
}

// Preview truncates the error and warning lists for interactive callers.
func (s ImportSummary) Preview(limit int) ImportSummary {
	if limit <= 0 {
		return s
	}
	out := s
	if len(out.Errors) > limit {
		out.Errors = out.Errors[:limit]
	}
	if len(out.Warnings) > limit {
		out.Warnings = out.Warnings[:limit]
	}
	return out
}

type StoredAsset struct {
	AssetID     int64   `json:"asset_id"`
	StoragePath string  `json:"storage_path"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FileSize    int64   `json:"file_size"`
	Ratio       float64 `json:"ratio"`
}

type ActivityMediaResult struct {
	BatchID int64 `json:"batch_id"`
	MediaID int64 `json:"media_id"`
	AssetID int64 `json:"asset_id"`
}

type BatchStatusResponse struct {
	BatchID      int64       `json:"batch_id"`
	BatchType    BatchKind   `json:"batch_type"`
	Status       BatchStatus `json:"status"`
	TotalRows    int         `json:"total_rows"`
	AcceptedRows int         `json:"accepted_rows"`
	Notes        []string    `json:"notes,omitempty"`
	StartedAt    time.Time   `json:"started_at"`
	FinishedAt   *time.Time  `json:"finished_at,omitempty"`
}

type ResourcePage struct {
	Items   []ExternalResource `json:"items"`
	Page    int                `json:"page"`
	HasMore bool               `json:"has_more"`
}
