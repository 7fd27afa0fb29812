package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExportCriteria filters which corrections become training examples.
type ExportCriteria struct {
	MinWeight       *float64           `json:"min_weight,omitempty"`
	DateFrom        *time.Time         `json:"date_from,omitempty"`
	DateTo          *time.Time         `json:"date_to,omitempty"`
	ClientTypes     []string           `json:"client_types,omitempty"`
	CorrectedFields []CorrectableField `json:"corrected_fields,omitempty"`
}

// Matches applies the criteria in order: weight, inclusive date range,
// client type membership, corrected field intersection.
func (c ExportCriteria) Matches(corr *FilingCorrection) bool {
	if c.MinWeight != nil && corr.CorrectionWeight < *c.MinWeight {
		return false
	}
	if c.DateFrom != nil && corr.CreatedAt.Before(*c.DateFrom) {
		return false
	}
	if c.DateTo != nil && corr.CreatedAt.After(*c.DateTo) {
		return false
	}
	if len(c.ClientTypes) > 0 {
		found := false
		for _, ct := range c.ClientTypes {
			if ct == corr.ClientType {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(c.CorrectedFields) > 0 {
		found := false
		for _, f := range c.CorrectedFields {
			if corr.CorrectedFields.Contains(f) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ExportStats counts the examples written by an export.
type ExportStats struct {
	TotalExamples    int            `json:"total_examples"`
	ByFileType       map[string]int `json:"by_file_type"`
	ByCategory       map[string]int `json:"by_category"`
	ByCorrectedField map[string]int `json:"by_corrected_field"`
}

// NewExportStats returns zeroed stats with initialized maps.
func NewExportStats() ExportStats {
	return ExportStats{
		ByFileType:       map[string]int{},
		ByCategory:       map[string]int{},
		ByCorrectedField: map[string]int{},
	}
}

// TrainingExportJob tracks one asynchronous training data export.
type TrainingExportJob struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	ExportName   string         `db:"export_name" json:"export_name"`
	ExportedBy   uuid.UUID      `db:"exported_by" json:"exported_by"`
	ExportedAt   time.Time      `db:"exported_at" json:"exported_at"`
	Criteria     ExportCriteria `db:"criteria" json:"criteria"`
	Stats        ExportStats    `db:"stats" json:"stats"`
	ExportFormat ExportFormat   `db:"export_format" json:"export_format"`
	Status       ExportStatus   `db:"status" json:"status"`
	ExampleCount int            `db:"example_count" json:"example_count"`
	Error        string         `db:"error" json:"error,omitempty"`
	ArtifactKey  *string        `db:"artifact_key" json:"artifact_key,omitempty"`
	CompletedAt  *time.Time     `db:"completed_at" json:"completed_at,omitempty"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// ExportWithDownload pairs a job with a download URL for its artifact.
type ExportWithDownload struct {
	TrainingExportJob
	DownloadURL string `json:"download_url,omitempty"`
}
