package classifier_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"filewise/internal/classifier"
)

func TestRateLimitError_ErrorsAs(t *testing.T) {
	underlying := fmt.Errorf("rate limited")
	rlErr := classifier.NewRateLimitError("primary", underlying, 30)

	wrapped := fmt.Errorf("classify failed: %w", rlErr)

	var target *classifier.RateLimitError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "primary", target.Endpoint)
	assert.Equal(t, 30*time.Second, target.RetryAfter)
	assert.Equal(t, underlying, errors.Unwrap(rlErr))
	assert.Contains(t, rlErr.Error(), "30s")
}

func TestNewRateLimitError_DefaultRetryAfter(t *testing.T) {
	rlErr := classifier.NewRateLimitError("primary", fmt.Errorf("err"), 0)

	assert.Equal(t, 60*time.Second, rlErr.RetryAfter)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, classifier.ParseRetryAfterHeader(""))
	assert.Equal(t, 30, classifier.ParseRetryAfterHeader("30"))
	assert.Equal(t, 0, classifier.ParseRetryAfterHeader("invalid"))
}
