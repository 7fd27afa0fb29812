package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"filewise/internal/domain"
	"filewise/internal/fingerprint"
	"filewise/internal/logger"
	"filewise/internal/port"
)

const (
	defaultRelevantLimit = 5
	defaultTargetedLimit = 3
	defaultRuleLimit     = 5
	perTierCap           = 2

	scoreFileType = 1.0
	scoreCategory = 0.8
	scoreFileName = 0.7
)

// CaptureCorrectionInput is the DTO for recording a user override.
type CaptureCorrectionInput struct {
	SourceItemID   *uuid.UUID
	FileName       string
	Content        string // hashed when ContentHash is empty
	ContentHash    string
	ContentSummary string
	ClientType     string
	AIPrediction   domain.AIPrediction
	UserCorrection domain.UserCorrection
	// CorrectedFields is derived from the diff when empty.
	CorrectedFields  []domain.CorrectableField
	CorrectionWeight float64
	CorrectedBy      uuid.UUID
}

// RelevantCorrectionsQuery selects corrections similar to a new prediction.
type RelevantCorrectionsQuery struct {
	FileType string
	Category string
	FileName string
	Limit    int
}

// TargetedCorrectionsQuery asks for corrections that resolved specific
// confusions the classifier reported.
type TargetedCorrectionsQuery struct {
	ConfusedBetween []domain.ConfusionPair
	Current         domain.Classification
	FileName        string
	Limit           int
}

// CorrectionService defines the correction capture and retrieval contract.
type CorrectionService interface {
	Capture(ctx context.Context, input *CaptureCorrectionInput) (*domain.FilingCorrection, error)
	GetCorrection(ctx context.Context, id uuid.UUID) (*domain.FilingCorrection, error)
	GetRelevantCorrections(ctx context.Context, q RelevantCorrectionsQuery) ([]domain.ScoredCorrection, error)
	GetTargetedCorrections(ctx context.Context, q TargetedCorrectionsQuery) ([]domain.TargetedCorrection, error)
	GetConsolidatedRules(ctx context.Context, q RuleQuery) ([]domain.ConsolidatedRule, error)
	GetCorrectionStats(ctx context.Context, since *time.Time) (*domain.CorrectionStats, error)
}

type correctionService struct {
	repo  port.CorrectionRepository
	cache ClassificationCacheService
	log   *logger.Logger
	now   func() time.Time
}

// NewCorrectionService creates a new CorrectionService implementation.
func NewCorrectionService(repo port.CorrectionRepository, cache ClassificationCacheService, log *logger.Logger) CorrectionService {
	return &correctionService{
		repo:  repo,
		cache: cache,
		log:   log.With("component", "correctionService"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *correctionService) Capture(ctx context.Context, input *CaptureCorrectionInput) (*domain.FilingCorrection, error) {
	fields, err := resolveCorrectedFields(input)
	if err != nil {
		return nil, err
	}

	hash := input.ContentHash
	switch {
	case hash != "":
	case input.Content != "":
		hash = fingerprint.Hash(input.Content)
	default:
		hash = fingerprint.Hash(input.FileName)
	}

	weight := input.CorrectionWeight
	if weight <= 0 {
		weight = domain.DefaultCorrectionWeight
	}

	c := &domain.FilingCorrection{
		ID:                 uuid.New(),
		SourceItemID:       input.SourceItemID,
		FileName:           input.FileName,
		FileNameNormalized: fingerprint.NormalizeFilename(input.FileName),
		ContentHash:        hash,
		ContentSummary:     truncateRunes(input.ContentSummary, domain.MaxContentSummaryLen),
		ClientType:         input.ClientType,
		AIPrediction:       input.AIPrediction,
		UserCorrection:     input.UserCorrection,
		CorrectedFields:    fields,
		CorrectionWeight:   weight,
		CorrectedBy:        input.CorrectedBy,
		CreatedAt:          s.now(),
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("persisting correction: %w", err)
	}

	// The correction is durable at this point; a failed invalidation only
	// leaves a stale cache entry behind.
	if _, err := s.cache.InvalidateByHash(ctx, hash); err != nil {
		s.log.Warn("correctionService.Capture: cache invalidation failed",
			"correction_id", c.ID, "hash", hash, "error", err)
	}

	s.log.Info("correctionService.Capture: recorded correction",
		"correction_id", c.ID, "file_name", c.FileName, "fields", c.CorrectedFields)
	return c, nil
}

func resolveCorrectedFields(input *CaptureCorrectionInput) (domain.CorrectedFieldList, error) {
	if len(input.CorrectedFields) == 0 {
		fields := domain.DiffFields(input.AIPrediction, input.UserCorrection)
		if len(fields) == 0 {
			return nil, domain.ErrNoCorrectedFields
		}
		return fields, nil
	}

	seen := map[domain.CorrectableField]bool{}
	var fields domain.CorrectedFieldList
	for _, f := range input.CorrectedFields {
		if seen[f] {
			continue
		}
		seen[f] = true
		if !domain.FieldDiffers(f, input.AIPrediction, input.UserCorrection) {
			return nil, fmt.Errorf("%s: %w", f, domain.ErrInvalidCorrection)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func (s *correctionService) GetCorrection(ctx context.Context, id uuid.UUID) (*domain.FilingCorrection, error) {
	return s.repo.GetByID(ctx, id)
}

// GetRelevantCorrections merges three tiers: same predicted file type, same
// predicted category, then full-text filename matches. Each tier contributes
// at most two corrections not already selected.
func (s *correctionService) GetRelevantCorrections(ctx context.Context, q RelevantCorrectionsQuery) ([]domain.ScoredCorrection, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultRelevantLimit
	}

	seen := map[uuid.UUID]bool{}
	var out []domain.ScoredCorrection
	take := func(list []domain.FilingCorrection, score float64, reason string) {
		added := 0
		for i := range list {
			if added == perTierCap {
				return
			}
			if seen[list[i].ID] {
				continue
			}
			seen[list[i].ID] = true
			out = append(out, domain.ScoredCorrection{
				FilingCorrection: list[i],
				RelevanceScore:   score,
				MatchReason:      reason,
			})
			added++
		}
	}

	if q.FileType != "" {
		list, err := s.repo.ListByPredictedFileType(ctx, q.FileType, perTierCap)
		if err != nil {
			return nil, fmt.Errorf("listing corrections by file type: %w", err)
		}
		take(list, scoreFileType, domain.MatchReasonFileType)
	}

	if q.Category != "" {
		list, err := s.repo.ListByPredictedCategory(ctx, q.Category, perTierCap+len(seen))
		if err != nil {
			return nil, fmt.Errorf("listing corrections by category: %w", err)
		}
		take(list, scoreCategory, domain.MatchReasonCategory)
	}

	if normalized := fingerprint.NormalizeFilename(q.FileName); normalized != "" {
		list, err := s.repo.SearchByFileName(ctx, normalized, perTierCap+len(seen))
		if err != nil {
			s.log.Warn("correctionService.GetRelevantCorrections: filename search unavailable",
				"file_name", q.FileName, "error", err)
		} else {
			take(list, scoreFileName, domain.MatchReasonFileName)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *correctionService) GetTargetedCorrections(ctx context.Context, q TargetedCorrectionsQuery) ([]domain.TargetedCorrection, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultTargetedLimit
	}

	seen := map[uuid.UUID]bool{}
	var out []domain.TargetedCorrection
	for _, pair := range q.ConfusedBetween {
		if pair.OptionA == "" || pair.OptionB == "" || pair.OptionA == pair.OptionB {
			continue
		}
		for _, dir := range [][2]string{{pair.OptionA, pair.OptionB}, {pair.OptionB, pair.OptionA}} {
			list, err := s.repo.ListByConfusion(ctx, pair.Field, dir[0], dir[1], limit)
			if err != nil {
				return nil, fmt.Errorf("listing corrections for %s %q -> %q: %w", pair.Field, dir[0], dir[1], err)
			}
			for i := range list {
				if seen[list[i].ID] {
					continue
				}
				seen[list[i].ID] = true
				out = append(out, domain.TargetedCorrection{
					FilingCorrection:  list[i],
					ConfusionResolved: fmt.Sprintf("%s: AI predicted %q, user corrected to %q", pair.Field, dir[0], dir[1]),
				})
			}
		}
	}

	if normalized := fingerprint.NormalizeFilename(q.FileName); normalized != "" {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].FileNameNormalized == normalized && out[j].FileNameNormalized != normalized
		})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *correctionService) GetConsolidatedRules(ctx context.Context, q RuleQuery) ([]domain.ConsolidatedRule, error) {
	if q.Limit <= 0 {
		q.Limit = defaultRuleLimit
	}
	all, err := s.repo.ListSince(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("loading corrections: %w", err)
	}
	return MineRules(all, q), nil
}

func (s *correctionService) GetCorrectionStats(ctx context.Context, since *time.Time) (*domain.CorrectionStats, error) {
	list, err := s.repo.ListSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("loading corrections: %w", err)
	}

	stats := &domain.CorrectionStats{
		Total:               len(list),
		ByCorrectedField:    map[string]int{},
		ByPredictedFileType: map[string]int{},
		ByPredictedCategory: map[string]int{},
		Since:               since,
	}
	for i := range list {
		c := &list[i]
		for _, f := range c.CorrectedFields {
			stats.ByCorrectedField[string(f)]++
		}
		if c.AIPrediction.FileType != "" {
			stats.ByPredictedFileType[c.AIPrediction.FileType]++
		}
		if c.AIPrediction.Category != "" {
			stats.ByPredictedCategory[c.AIPrediction.Category]++
		}
	}
	return stats, nil
}

func truncateRunes(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
