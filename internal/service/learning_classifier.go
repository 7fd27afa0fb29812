package service

import (
	"context"
	"errors"
	"fmt"

	"filewise/internal/domain"
	"filewise/internal/fingerprint"
	"filewise/internal/logger"
	"filewise/internal/port"
)

// DefaultRefineThreshold is the confidence below which a reported confusion
// triggers a second, targeted classification.
const DefaultRefineThreshold = 0.75

// LearningClassifier wraps an upstream classifier with the classification
// cache and the correction history.
type LearningClassifier struct {
	upstream        port.Classifier
	cache           ClassificationCacheService
	corrections     CorrectionService
	refineThreshold float64
	log             *logger.Logger
}

// NewLearningClassifier creates a LearningClassifier. A threshold <= 0 uses
// DefaultRefineThreshold.
func NewLearningClassifier(
	upstream port.Classifier,
	cache ClassificationCacheService,
	corrections CorrectionService,
	refineThreshold float64,
	log *logger.Logger,
) *LearningClassifier {
	if refineThreshold <= 0 {
		refineThreshold = DefaultRefineThreshold
	}
	return &LearningClassifier{
		upstream:        upstream,
		cache:           cache,
		corrections:     corrections,
		refineThreshold: refineThreshold,
		log:             log.With("component", "learningClassifier"),
	}
}

// Classify serves cached results when the content was seen before. Otherwise
// it sends the upstream classifier hints from past corrections, refines once
// on a low-confidence confusion and caches what it gets back.
func (c *LearningClassifier) Classify(ctx context.Context, input port.ClassifyInput) (*port.ClassifyOutput, error) {
	hash := input.ContentHash
	if hash == "" {
		hash = fingerprint.Hash(string(input.FileBytes))
		input.ContentHash = hash
	}

	if out := c.fromCache(ctx, hash); out != nil {
		return out, nil
	}

	input.Hints = c.hints(ctx, input.FileName)
	out, err := c.upstream.Classify(ctx, input)
	if err != nil {
		return nil, err
	}

	if len(out.ConfusedBetween) > 0 && out.Classification.Confidence < c.refineThreshold {
		out = c.refine(ctx, input, out)
	}

	_, err = c.cache.Store(ctx, &StoreCacheInput{
		ContentHash:     hash,
		FileNamePattern: fingerprint.NormalizeFilename(input.FileName),
		Classification:  out.Classification,
		ClientType:      input.Context.ClientType,
	})
	if err != nil {
		c.log.Warn("learningClassifier.Classify: cache store failed", "hash", hash, "error", err)
	}
	return out, nil
}

func (c *LearningClassifier) fromCache(ctx context.Context, hash string) *port.ClassifyOutput {
	res, err := c.cache.Check(ctx, hash)
	if err != nil {
		c.log.Warn("learningClassifier.fromCache: cache check failed", "hash", hash, "error", err)
		return nil
	}
	if !res.Hit {
		return nil
	}

	if err := c.cache.RecordHit(ctx, *res.CacheID); err != nil {
		if errors.Is(err, domain.ErrCacheEntryNotFound) {
			c.log.Debug("learningClassifier.fromCache: entry vanished before hit was recorded", "cache_id", *res.CacheID)
		} else {
			c.log.Warn("learningClassifier.fromCache: record hit failed", "cache_id", *res.CacheID, "error", err)
		}
	}

	return &port.ClassifyOutput{
		Classification: *res.Classification,
		Reasoning:      fmt.Sprintf("cached classification (seen %d times before)", res.HitCount),
		FromCache:      true,
	}
}

func (c *LearningClassifier) hints(ctx context.Context, fileName string) *port.ClassificationHints {
	h := &port.ClassificationHints{}

	relevant, err := c.corrections.GetRelevantCorrections(ctx, RelevantCorrectionsQuery{FileName: fileName})
	if err != nil {
		c.log.Warn("learningClassifier.hints: relevant corrections unavailable", "error", err)
	} else {
		h.Corrections = relevant
	}

	rules, err := c.corrections.GetConsolidatedRules(ctx, RuleQuery{})
	if err != nil {
		c.log.Warn("learningClassifier.hints: rules unavailable", "error", err)
	} else {
		h.Rules = rules
	}

	if h.Empty() {
		return nil
	}
	return h
}

// refine re-classifies once with corrections that resolved the reported
// confusion. The first result stands if there is nothing to add or the retry
// fails.
func (c *LearningClassifier) refine(ctx context.Context, input port.ClassifyInput, first *port.ClassifyOutput) *port.ClassifyOutput {
	targeted, err := c.corrections.GetTargetedCorrections(ctx, TargetedCorrectionsQuery{
		ConfusedBetween: first.ConfusedBetween,
		Current:         first.Classification,
		FileName:        input.FileName,
	})
	if err != nil {
		c.log.Warn("learningClassifier.refine: targeted corrections unavailable", "error", err)
		return first
	}
	if len(targeted) == 0 {
		return first
	}

	hints := port.ClassificationHints{}
	if input.Hints != nil {
		hints = *input.Hints
	}
	hints.Targeted = targeted
	input.Hints = &hints

	second, err := c.upstream.Classify(ctx, input)
	if err != nil {
		c.log.Warn("learningClassifier.refine: refinement failed, keeping first result", "error", err)
		return first
	}
	c.log.Debug("learningClassifier.refine: refined classification",
		"file_name", input.FileName, "before", first.Classification.Confidence, "after", second.Classification.Confidence)
	return second
}
