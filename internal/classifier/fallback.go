package classifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"filewise/internal/logger"
	"filewise/internal/port"
)

// circuitState tracks rate-limit backoff for a single endpoint.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackClassifier tries classifiers in order, skipping those with open circuits.
// It implements port.Classifier.
type FallbackClassifier struct {
	classifiers []port.Classifier
	circuits    []*circuitState
	names       []string
	log         *logger.Logger
	now         func() time.Time
}

// NewFallbackClassifier creates a FallbackClassifier from an ordered list of
// classifiers and their names.
func NewFallbackClassifier(classifiers []port.Classifier, names []string, log *logger.Logger) *FallbackClassifier {
	circuits := make([]*circuitState, len(classifiers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackClassifier{
		classifiers: classifiers,
		circuits:    circuits,
		names:       names,
		log:         log,
		now:         time.Now,
	}
}

func (f *FallbackClassifier) Classify(ctx context.Context, input port.ClassifyInput) (*port.ClassifyOutput, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, c := range f.classifiers {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.log.Debug("classifier.FallbackClassifier: skipping endpoint, circuit open",
				"endpoint", f.names[i], "until", resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := c.Classify(ctx, input)
		if err == nil {
			return out, nil
		}

		f.log.Warn("classifier.FallbackClassifier: endpoint failed", "endpoint", f.names[i], "error", err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all classification endpoints rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all classification endpoints failed: %w", lastErr)
}
