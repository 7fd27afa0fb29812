package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"filewise/internal/domain"
	"filewise/internal/fingerprint"
	"filewise/internal/port"
)

const maxDuplicateMatches = 10

type duplicateCheckerRepo struct {
	db *sqlx.DB
}

// NewDuplicateCheckerRepo creates a DuplicateChecker over the filed documents
// table. Matching the original file name case-insensitively is exact; sharing
// the normalized file name is similar. Only exact matches make a duplicate.
func NewDuplicateCheckerRepo(db *sqlx.DB) port.DuplicateChecker {
	return &duplicateCheckerRepo{db: db}
}

func (r *duplicateCheckerRepo) Check(ctx context.Context, input port.DuplicateCheckInput) (*domain.DuplicateCheckResult, error) {
	var matches []domain.DuplicateMatch
	err := r.db.SelectContext(ctx, &matches, `
		SELECT id, document_code, original_file_name, version,
		       CASE WHEN LOWER(original_file_name) = LOWER($1) THEN 'exact' ELSE 'similar' END AS match_type
		FROM documents
		WHERE client_id IS NOT DISTINCT FROM $2
		  AND ($3::uuid IS NULL OR project_id = $3)
		  AND (LOWER(original_file_name) = LOWER($1) OR file_name_normalized = $4)
		ORDER BY (LOWER(original_file_name) = LOWER($1)) DESC, created_at DESC
		LIMIT $5`,
		input.OriginalFileName, input.ClientID, input.ProjectID,
		fingerprint.NormalizeFilename(input.OriginalFileName), maxDuplicateMatches,
	)
	if err != nil {
		return nil, fmt.Errorf("duplicateCheckerRepo.Check: %w", err)
	}

	result := &domain.DuplicateCheckResult{Matches: matches}
	for _, m := range matches {
		switch m.MatchType {
		case domain.MatchTypeExact:
			result.HasExactMatch = true
		case domain.MatchTypeSimilar:
			result.HasSimilarMatch = true
		}
	}
	result.IsDuplicate = result.HasExactMatch
	return result, nil
}
