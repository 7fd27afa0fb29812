package domain

// FileType represents the allowed upload formats for bulk ingestion.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
	FileTypeDOCX FileType = "docx"
	FileTypeXLSX FileType = "xlsx"
	FileTypeTXT  FileType = "txt"
	FileTypeEML  FileType = "eml"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF:  "application/pdf",
	FileTypeJPG:  "image/jpeg",
	FileTypePNG:  "image/png",
	FileTypeDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FileTypeXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FileTypeTXT:  "text/plain",
	FileTypeEML:  "message/rfc822",
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
	"docx": FileTypeDOCX,
	"xlsx": FileTypeXLSX,
	"txt":  FileTypeTXT,
	"eml":  FileTypeEML,
}

// UserRole defines what an authenticated caller may do.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// BatchStatus is the lifecycle of a bulk upload batch.
type BatchStatus string

const (
	BatchStatusUploading  BatchStatus = "uploading"
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusReview     BatchStatus = "review"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusPartial    BatchStatus = "partial"
)

// ItemStatus is the lifecycle of a single file within a batch.
type ItemStatus string

const (
	ItemStatusPending        ItemStatus = "pending"
	ItemStatusProcessing     ItemStatus = "processing"
	ItemStatusReadyForReview ItemStatus = "ready_for_review"
	ItemStatusFiled          ItemStatus = "filed"
	ItemStatusError          ItemStatus = "error"
)

// BatchScope is where the documents of a batch are filed.
type BatchScope string

const (
	BatchScopeClient   BatchScope = "client"
	BatchScopeProject  BatchScope = "project"
	BatchScopeInternal BatchScope = "internal"
	BatchScopePersonal BatchScope = "personal"
)

// ValidBatchScopes lists the accepted batch scopes.
var ValidBatchScopes = map[BatchScope]bool{
	BatchScopeClient:   true,
	BatchScopeProject:  true,
	BatchScopeInternal: true,
	BatchScopePersonal: true,
}

// ProcessingMode controls whether the uploader waits on the batch.
type ProcessingMode string

const (
	ProcessingModeForeground ProcessingMode = "foreground"
	ProcessingModeBackground ProcessingMode = "background"
)

// ExportStatus is the lifecycle of a training export job.
type ExportStatus string

const (
	ExportStatusPending    ExportStatus = "pending"
	ExportStatusGenerating ExportStatus = "generating"
	ExportStatusCompleted  ExportStatus = "completed"
	ExportStatusError      ExportStatus = "error"
)

// ExportFormat selects the serialization of training examples.
type ExportFormat string

const (
	// ExportFormatOpenAIChat writes {"messages":[system,user,assistant]} lines.
	ExportFormatOpenAIChat ExportFormat = "openai_chat"
	// ExportFormatDelimitedPrompt writes a single role-delimited text per line.
	ExportFormatDelimitedPrompt ExportFormat = "delimited_prompt"
	// ExportFormatAlpaca writes instruction/input/output objects.
	ExportFormatAlpaca ExportFormat = "alpaca"
)

// ValidExportFormats is the closed set of export formats.
var ValidExportFormats = map[ExportFormat]bool{
	ExportFormatOpenAIChat:      true,
	ExportFormatDelimitedPrompt: true,
	ExportFormatAlpaca:          true,
}

// CorrectableField names a classification field a user can override.
type CorrectableField string

const (
	FieldFileType       CorrectableField = "file_type"
	FieldCategory       CorrectableField = "category"
	FieldTargetFolder   CorrectableField = "target_folder"
	FieldIsInternal     CorrectableField = "is_internal"
	FieldChecklistItems CorrectableField = "checklist_items"
)

// CorrectableFields lists every correctable field in canonical order.
var CorrectableFields = []CorrectableField{
	FieldFileType,
	FieldCategory,
	FieldTargetFolder,
	FieldIsInternal,
	FieldChecklistItems,
}

// ValueType tags the shape of an extracted intelligence value.
type ValueType string

const (
	ValueTypeString     ValueType = "string"
	ValueTypeNumber     ValueType = "number"
	ValueTypeCurrency   ValueType = "currency"
	ValueTypeDate       ValueType = "date"
	ValueTypePercentage ValueType = "percentage"
	ValueTypeArray      ValueType = "array"
	ValueTypeText       ValueType = "text"
	ValueTypeBoolean    ValueType = "boolean"
)

// KnownValueTypes is the set of value types storage accepts. Anything else is
// coerced to ValueTypeText.
var KnownValueTypes = map[ValueType]bool{
	ValueTypeString:     true,
	ValueTypeNumber:     true,
	ValueTypeCurrency:   true,
	ValueTypeDate:       true,
	ValueTypePercentage: true,
	ValueTypeArray:      true,
	ValueTypeText:       true,
	ValueTypeBoolean:    true,
}

// MatchType describes how an existing document matched a duplicate check.
type MatchType string

const (
	MatchTypeExact   MatchType = "exact"
	MatchTypeSimilar MatchType = "similar"
)
