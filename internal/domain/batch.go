package domain

import (
	"time"

	"github.com/google/uuid"
)

// BulkUploadBatch is a set of files uploaded together for one destination.
type BulkUploadBatch struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	Scope            BatchScope     `db:"scope" json:"scope"`
	ClientID         *uuid.UUID     `db:"client_id" json:"client_id"`
	ClientName       string         `db:"client_name" json:"client_name"`
	ClientType       string         `db:"client_type" json:"client_type"`
	ProjectID        *uuid.UUID     `db:"project_id" json:"project_id"`
	ProjectName      string         `db:"project_name" json:"project_name"`
	ProjectShortcode string         `db:"project_shortcode" json:"project_shortcode"`
	IsInternal       bool           `db:"is_internal" json:"is_internal"`
	ProcessingMode   ProcessingMode `db:"processing_mode" json:"processing_mode"`
	UploaderInitials string         `db:"uploader_initials" json:"uploader_initials"`
	Instructions     string         `db:"instructions" json:"instructions"`
	ChecklistItems   StringList     `db:"checklist_items" json:"checklist_items"`
	Folders          StringList     `db:"folders" json:"folders"`
	TotalFiles       int            `db:"total_files" json:"total_files"`
	ProcessedFiles   int            `db:"processed_files" json:"processed_files"`
	ErrorFiles       int            `db:"error_files" json:"error_files"`
	Status           BatchStatus    `db:"status" json:"status"`
	CreatedBy        uuid.UUID      `db:"created_by" json:"created_by"`
	NotifyEmail      string         `db:"notify_email" json:"-"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// BulkUploadItem is one file within a batch.
type BulkUploadItem struct {
	ID                      uuid.UUID          `db:"id" json:"id"`
	BatchID                 uuid.UUID          `db:"batch_id" json:"batch_id"`
	Status                  ItemStatus         `db:"status" json:"status"`
	OriginalFileName        string             `db:"original_file_name" json:"original_file_name"`
	ContentType             string             `db:"content_type" json:"content_type"`
	FileSize                int64              `db:"file_size" json:"file_size"`
	StorageKey              string             `db:"storage_key" json:"storage_key"`
	ContentHash             string             `db:"content_hash" json:"content_hash"`
	Summary                 string             `db:"summary" json:"summary"`
	Classification          Classification     `db:"classification" json:"classification"`
	ClassificationReasoning string             `db:"classification_reasoning" json:"classification_reasoning"`
	ChecklistMatches        StringList         `db:"checklist_matches" json:"checklist_matches"`
	IntelligenceFields      IntelligenceFields `db:"intelligence_fields" json:"intelligence_fields"`
	GeneratedDocumentCode   string             `db:"generated_document_code" json:"generated_document_code"`
	Version                 *string            `db:"version" json:"version"`
	IsDuplicate             bool               `db:"is_duplicate" json:"is_duplicate"`
	DuplicateOfDocumentID   *uuid.UUID         `db:"duplicate_of_document_id" json:"duplicate_of_document_id"`
	FromCache               bool               `db:"from_cache" json:"from_cache"`
	ErrorMessage            string             `db:"error_message" json:"error_message,omitempty"`
	FiledDocumentID         *uuid.UUID         `db:"filed_document_id" json:"filed_document_id"`
	CreatedAt               time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time          `db:"updated_at" json:"updated_at"`
}

// FieldValue holds exactly the member that matches its field's ValueType:
// Number for number/currency/percentage, Bool for boolean, Items for array
// and Text for everything else.
type FieldValue struct {
	Text   string   `json:"text,omitempty"`
	Number *float64 `json:"number,omitempty"`
	Bool   *bool    `json:"bool,omitempty"`
	Items  []string `json:"items,omitempty"`
}

// IntelligenceField is a sanitized piece of data extracted from a document.
type IntelligenceField struct {
	Key        string     `json:"key"`
	Label      string     `json:"label"`
	ValueType  ValueType  `json:"value_type"`
	Value      FieldValue `json:"value"`
	Confidence float64    `json:"confidence"`
	Category   string     `json:"category,omitempty"`
}

// IntelligenceFields is stored as a JSONB array.
type IntelligenceFields []IntelligenceField

// NormalizeValueType maps unknown tags to ValueTypeText.
func NormalizeValueType(t string) ValueType {
	vt := ValueType(t)
	if KnownValueTypes[vt] {
		return vt
	}
	return ValueTypeText
}

// Document is a filed document produced from a reviewed bulk item.
type Document struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	ClientID           *uuid.UUID `db:"client_id" json:"client_id"`
	ProjectID          *uuid.UUID `db:"project_id" json:"project_id"`
	DocumentCode       string     `db:"document_code" json:"document_code"`
	BasePattern        string     `db:"base_pattern" json:"base_pattern"`
	Version            string     `db:"version" json:"version"`
	OriginalFileName   string     `db:"original_file_name" json:"original_file_name"`
	FileNameNormalized string     `db:"file_name_normalized" json:"file_name_normalized"`
	FileType           string     `db:"file_type" json:"file_type"`
	Category           string     `db:"category" json:"category"`
	TargetFolder       string     `db:"target_folder" json:"target_folder"`
	IsInternal         bool       `db:"is_internal" json:"is_internal"`
	StorageKey         string     `db:"storage_key" json:"storage_key"`
	ContentHash        string     `db:"content_hash" json:"content_hash"`
	SourceItemID       *uuid.UUID `db:"source_item_id" json:"source_item_id"`
	CreatedBy          uuid.UUID  `db:"created_by" json:"created_by"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}

// DuplicateMatch is an existing document that matched a duplicate check.
type DuplicateMatch struct {
	DocumentID       uuid.UUID `db:"id" json:"document_id"`
	DocumentCode     string    `db:"document_code" json:"document_code"`
	OriginalFileName string    `db:"original_file_name" json:"original_file_name"`
	Version          string    `db:"version" json:"version"`
	MatchType        MatchType `db:"match_type" json:"match_type"`
}

// DuplicateCheckResult is the outcome of checking a file name against the
// documents already filed for a client.
type DuplicateCheckResult struct {
	IsDuplicate     bool             `json:"is_duplicate"`
	HasExactMatch   bool             `json:"has_exact_match"`
	HasSimilarMatch bool             `json:"has_similar_match"`
	Matches         []DuplicateMatch `json:"matches"`
}

// FirstExact returns the first exact match, if any.
func (r *DuplicateCheckResult) FirstExact() *DuplicateMatch {
	for i := range r.Matches {
		if r.Matches[i].MatchType == MatchTypeExact {
			return &r.Matches[i]
		}
	}
	return nil
}
