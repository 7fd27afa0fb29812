package port

import (
	"context"

	"github.com/google/uuid"

	"filewise/internal/domain"
)

// DuplicateCheckInput identifies the file being checked.
type DuplicateCheckInput struct {
	OriginalFileName string
	ClientID         *uuid.UUID
	ProjectID        *uuid.UUID
}

// DuplicateChecker looks for already-filed documents with the same file name
// in the same client (and project, when given).
type DuplicateChecker interface {
	Check(ctx context.Context, input DuplicateCheckInput) (*domain.DuplicateCheckResult, error)
}
