package domain

import (
	"time"

	"github.com/google/uuid"
)

// Classification is the advisory filing decision produced by the classifier.
type Classification struct {
	FileType                string   `json:"file_type"`
	Category                string   `json:"category"`
	TargetFolder            string   `json:"target_folder"`
	Confidence              float64  `json:"confidence"`
	IsInternal              *bool    `json:"is_internal,omitempty"`
	SuggestedChecklistItems []string `json:"suggested_checklist_items,omitempty"`
}

// ClassificationCacheEntry is a content-hash keyed classification result.
// Entries are never deleted; invalidation only flips IsValid. At most one
// valid entry exists per ContentHash.
type ClassificationCacheEntry struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	ContentHash     string         `db:"content_hash" json:"content_hash"`
	FileNamePattern string         `db:"file_name_pattern" json:"file_name_pattern"`
	Classification  Classification `db:"classification" json:"classification"`
	HitCount        int64          `db:"hit_count" json:"hit_count"`
	LastHitAt       *time.Time     `db:"last_hit_at" json:"last_hit_at"`
	CorrectionCount int            `db:"correction_count" json:"correction_count"`
	IsValid         bool           `db:"is_valid" json:"is_valid"`
	InvalidatedAt   *time.Time     `db:"invalidated_at" json:"invalidated_at"`
	ClientType      string         `db:"client_type" json:"client_type"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// CacheInvalidationFilter selects entries for an administrative sweep.
// An entry matches when its file name pattern contains Pattern or it has not
// been hit (or created) since OlderThan; ClientType narrows either branch.
type CacheInvalidationFilter struct {
	Pattern    string     `json:"pattern,omitempty"`
	ClientType string     `json:"client_type,omitempty"`
	OlderThan  *time.Time `json:"older_than,omitempty"`
}

// CacheStats summarizes the classification cache.
type CacheStats struct {
	ValidEntries   int64 `db:"valid_entries" json:"valid_entries"`
	InvalidEntries int64 `db:"invalid_entries" json:"invalid_entries"`
	TotalHits      int64 `db:"total_hits" json:"total_hits"`
}
