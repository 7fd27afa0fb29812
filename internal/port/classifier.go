package port

import (
	"context"

	"filewise/internal/domain"
)

// ClassifyContext is the batch-scoped metadata sent with every file.
type ClassifyContext struct {
	ClientName       string   `json:"clientName,omitempty"`
	ClientType       string   `json:"clientType,omitempty"`
	ProjectName      string   `json:"projectName,omitempty"`
	ProjectShortcode string   `json:"projectShortcode,omitempty"`
	IsInternal       bool     `json:"isInternal"`
	UploaderInitials string   `json:"uploaderInitials,omitempty"`
	Instructions     string   `json:"instructions,omitempty"`
	ChecklistItems   []string `json:"checklistItems,omitempty"`
	Folders          []string `json:"folders,omitempty"`
}

// ClassificationHints carries what the correction history knows about files
// like this one.
type ClassificationHints struct {
	Corrections []domain.ScoredCorrection   `json:"corrections,omitempty"`
	Rules       []domain.ConsolidatedRule   `json:"rules,omitempty"`
	Targeted    []domain.TargetedCorrection `json:"targeted,omitempty"`
}

// Empty reports whether there is nothing to send.
func (h *ClassificationHints) Empty() bool {
	return h == nil || (len(h.Corrections) == 0 && len(h.Rules) == 0 && len(h.Targeted) == 0)
}

// ClassifyInput carries the data needed to classify one file.
type ClassifyInput struct {
	FileName    string
	ContentType string
	FileBytes   []byte
	ContentHash string
	Context     ClassifyContext
	Hints       *ClassificationHints
}

// ClassifyOutput is the sanitized classifier result.
type ClassifyOutput struct {
	Summary               string
	Classification        domain.Classification
	GeneratedDocumentCode string
	ChecklistMatches      []string
	IntelligenceFields    []domain.IntelligenceField
	Reasoning             string
	ConfusedBetween       []domain.ConfusionPair
	ModelUsed             string
	FromCache             bool
}

// Classifier abstracts the external document classification service.
type Classifier interface {
	Classify(ctx context.Context, input ClassifyInput) (*ClassifyOutput, error)
}
