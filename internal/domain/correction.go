package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// MaxContentSummaryLen bounds FilingCorrection.ContentSummary, in runes.
const MaxContentSummaryLen = 500

// DefaultCorrectionWeight is applied when a capture does not set a weight.
const DefaultCorrectionWeight = 1.0

// Match reasons reported by relevance retrieval.
const (
	MatchReasonFileType = "file_type"
	MatchReasonCategory = "category"
	MatchReasonFileName = "file_name"
)

// AIPrediction is what the classifier proposed for a file.
type AIPrediction struct {
	FileType                string   `json:"file_type"`
	Category                string   `json:"category"`
	TargetFolder            string   `json:"target_folder"`
	Confidence              float64  `json:"confidence"`
	IsInternal              *bool    `json:"is_internal,omitempty"`
	SuggestedChecklistItems []string `json:"suggested_checklist_items,omitempty"`
}

// PredictionFromClassification converts a classifier result into the
// prediction half of a correction.
func PredictionFromClassification(c Classification) AIPrediction {
	return AIPrediction{
		FileType:                c.FileType,
		Category:                c.Category,
		TargetFolder:            c.TargetFolder,
		Confidence:              c.Confidence,
		IsInternal:              c.IsInternal,
		SuggestedChecklistItems: c.SuggestedChecklistItems,
	}
}

// UserCorrection holds the fields a user overrode. Nil means "not corrected".
type UserCorrection struct {
	FileType       *string  `json:"file_type,omitempty"`
	Category       *string  `json:"category,omitempty"`
	TargetFolder   *string  `json:"target_folder,omitempty"`
	IsInternal     *bool    `json:"is_internal,omitempty"`
	ChecklistItems []string `json:"checklist_items,omitempty"`
}

// CorrectedFieldList is the set of fields a correction changed.
type CorrectedFieldList []CorrectableField

// Contains reports whether f is in the list.
func (l CorrectedFieldList) Contains(f CorrectableField) bool {
	for _, x := range l {
		if x == f {
			return true
		}
	}
	return false
}

// FilingCorrection is an immutable record of a user overriding the classifier.
type FilingCorrection struct {
	ID                 uuid.UUID          `db:"id" json:"id"`
	SourceItemID       *uuid.UUID         `db:"source_item_id" json:"source_item_id"`
	FileName           string             `db:"file_name" json:"file_name"`
	FileNameNormalized string             `db:"file_name_normalized" json:"file_name_normalized"`
	ContentHash        string             `db:"content_hash" json:"content_hash"`
	ContentSummary     string             `db:"content_summary" json:"content_summary"`
	ClientType         string             `db:"client_type" json:"client_type"`
	AIPrediction       AIPrediction       `db:"ai_prediction" json:"ai_prediction"`
	UserCorrection     UserCorrection     `db:"user_correction" json:"user_correction"`
	CorrectedFields    CorrectedFieldList `db:"corrected_fields" json:"corrected_fields"`
	CorrectionWeight   float64            `db:"correction_weight" json:"correction_weight"`
	CorrectedBy        uuid.UUID          `db:"corrected_by" json:"corrected_by"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at"`
}

// EffectiveFileType is the corrected file type, else the predicted one.
func (c *FilingCorrection) EffectiveFileType() string {
	if c.UserCorrection.FileType != nil {
		return *c.UserCorrection.FileType
	}
	return c.AIPrediction.FileType
}

// EffectiveCategory is the corrected category, else the predicted one.
func (c *FilingCorrection) EffectiveCategory() string {
	if c.UserCorrection.Category != nil {
		return *c.UserCorrection.Category
	}
	return c.AIPrediction.Category
}

// EffectiveTargetFolder is the corrected folder, else the predicted one.
func (c *FilingCorrection) EffectiveTargetFolder() string {
	if c.UserCorrection.TargetFolder != nil {
		return *c.UserCorrection.TargetFolder
	}
	return c.AIPrediction.TargetFolder
}

// FieldDiffers reports whether the correction sets field to a value other
// than the prediction.
func FieldDiffers(field CorrectableField, pred AIPrediction, corr UserCorrection) bool {
	switch field {
	case FieldFileType:
		return corr.FileType != nil && *corr.FileType != pred.FileType
	case FieldCategory:
		return corr.Category != nil && *corr.Category != pred.Category
	case FieldTargetFolder:
		return corr.TargetFolder != nil && *corr.TargetFolder != pred.TargetFolder
	case FieldIsInternal:
		if corr.IsInternal == nil {
			return false
		}
		return pred.IsInternal == nil || *pred.IsInternal != *corr.IsInternal
	case FieldChecklistItems:
		return corr.ChecklistItems != nil && !sameStringSet(corr.ChecklistItems, pred.SuggestedChecklistItems)
	default:
		return false
	}
}

// DiffFields lists, in canonical order, every field the correction changes.
func DiffFields(pred AIPrediction, corr UserCorrection) CorrectedFieldList {
	var out CorrectedFieldList
	for _, f := range CorrectableFields {
		if FieldDiffers(f, pred, corr) {
			out = append(out, f)
		}
	}
	return out
}

func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// ScoredCorrection is a correction ranked for relevance to a query.
type ScoredCorrection struct {
	FilingCorrection
	RelevanceScore float64 `json:"relevance_score"`
	MatchReason    string  `json:"match_reason"`
}

// ConfusionPair names two labels the classifier could not decide between.
type ConfusionPair struct {
	Field   CorrectableField `json:"field"`
	OptionA string           `json:"option_a"`
	OptionB string           `json:"option_b"`
}

// TargetedCorrection is a correction that resolved a specific confusion.
type TargetedCorrection struct {
	FilingCorrection
	ConfusionResolved string `json:"confusion_resolved"`
}

// ConsolidatedRule is a repeated predicted -> corrected transition mined from
// the correction history. Count is always at least 2.
type ConsolidatedRule struct {
	Field             CorrectableField `json:"field"`
	From              string           `json:"from"`
	To                string           `json:"to"`
	Count             int              `json:"count"`
	AverageConfidence float64          `json:"average_confidence"`
	Examples          []string         `json:"examples"`
}

// CorrectionStats aggregates the correction history.
type CorrectionStats struct {
	Total               int            `json:"total"`
	ByCorrectedField    map[string]int `json:"by_corrected_field"`
	ByPredictedFileType map[string]int `json:"by_predicted_file_type"`
	ByPredictedCategory map[string]int `json:"by_predicted_category"`
	Since               *time.Time     `json:"since,omitempty"`
}
