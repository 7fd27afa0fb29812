package handler

import (
	"time"

	"github.com/google/uuid"

	"filewise/internal/domain"
)

// Request bodies accepted by the API. The example tags feed the generated
// OpenAPI documentation.

// CreateBatchRequest represents the create bulk upload batch request body.
type CreateBatchRequest struct {
	Scope            domain.BatchScope     `json:"scope" binding:"required" example:"project"`
	ClientID         *uuid.UUID            `json:"client_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ClientName       string                `json:"client_name" example:"Acme Capital"`
	ClientType       string                `json:"client_type" example:"fund"`
	ProjectID        *uuid.UUID            `json:"project_id"`
	ProjectName      string                `json:"project_name" example:"Fund III raise"`
	ProjectShortcode string                `json:"project_shortcode" example:"ACME"`
	IsInternal       bool                  `json:"is_internal"`
	ProcessingMode   domain.ProcessingMode `json:"processing_mode" example:"background"`
	UploaderInitials string                `json:"uploader_initials" example:"JD"`
	Instructions     string                `json:"instructions" example:"Track record files go under Diligence"`
	ChecklistItems   []string              `json:"checklist_items" example:"Track Record,LPA"`
	Folders          []string              `json:"folders" example:"Diligence,Legal"`
	// Notify emails the caller when the batch is ready for review.
	Notify bool `json:"notify"`
}

// FileItemRequest represents the file bulk upload item request body.
type FileItemRequest struct {
	Override          *domain.Classification `json:"override"`
	AsNewVersion      bool                   `json:"as_new_version"`
	SignificantChange bool                   `json:"significant_change"`
}

// CaptureCorrectionRequest represents the capture correction request body.
type CaptureCorrectionRequest struct {
	SourceItemID     *uuid.UUID                `json:"source_item_id"`
	FileName         string                    `json:"file_name" binding:"required" example:"Acme_Q3_2024_Report.pdf"`
	Content          string                    `json:"content"`
	ContentHash      string                    `json:"content_hash" example:"0a1b2c3d"`
	ContentSummary   string                    `json:"content_summary"`
	ClientType       string                    `json:"client_type" example:"fund"`
	AIPrediction     domain.AIPrediction       `json:"ai_prediction"`
	UserCorrection   domain.UserCorrection     `json:"user_correction"`
	CorrectedFields  []domain.CorrectableField `json:"corrected_fields"`
	CorrectionWeight float64                   `json:"correction_weight" example:"1.0"`
}

// TargetedCorrectionsRequest represents the targeted corrections request body.
type TargetedCorrectionsRequest struct {
	ConfusedBetween []domain.ConfusionPair `json:"confused_between" binding:"required"`
	Current         domain.Classification  `json:"current"`
	FileName        string                 `json:"file_name"`
	Limit           int                    `json:"limit" example:"3"`
}

// StoreCacheRequest represents the store classification request body.
type StoreCacheRequest struct {
	ContentHash     string                `json:"content_hash" binding:"required" example:"0a1b2c3d"`
	FileNamePattern string                `json:"file_name_pattern" example:"acme q# report"`
	Classification  domain.Classification `json:"classification" binding:"required"`
	ClientType      string                `json:"client_type" example:"fund"`
}

// InvalidateCacheRequest represents the cache sweep request body.
type InvalidateCacheRequest struct {
	Pattern    string     `json:"pattern" example:"report"`
	ClientType string     `json:"client_type" example:"fund"`
	OlderThan  *time.Time `json:"older_than" example:"2026-01-01T00:00:00Z"`
}

// CreateExportRequest represents the create training export request body.
type CreateExportRequest struct {
	Name     string                `json:"name" binding:"required" example:"October corrections"`
	Format   domain.ExportFormat   `json:"format" binding:"required" example:"openai_chat"`
	Criteria domain.ExportCriteria `json:"criteria"`
}

// GenerateNameRequest represents the generate document code request body.
type GenerateNameRequest struct {
	Shortcode  string `json:"shortcode" binding:"required" example:"ACME"`
	Category   string `json:"category" binding:"required" example:"Track Record"`
	IsInternal bool   `json:"is_internal"`
	Initials   string `json:"initials" example:"JD"`
	Version    string `json:"version" example:"V1.0"`
	// Date is YYYY-MM-DD; empty means today.
	Date string `json:"date" example:"2026-01-31"`
}

// NextVersionRequest represents the next version request body.
type NextVersionRequest struct {
	Existing    []string `json:"existing" example:"V1.0,V1.2"`
	Significant bool     `json:"significant"`
}

// FingerprintRequest represents the fingerprint request body.
type FingerprintRequest struct {
	Content  string `json:"content"`
	FileName string `json:"file_name"`
}
