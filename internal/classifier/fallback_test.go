package classifier_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"filewise/internal/classifier"
	"filewise/internal/domain"
	"filewise/internal/logger"
	"filewise/internal/port"
	"filewise/mocks"
)

func fallbackOutput(model string) *port.ClassifyOutput {
	return &port.ClassifyOutput{
		Classification: domain.Classification{FileType: "Appraisal", Category: "Valuation", Confidence: 0.9},
		ModelUsed:      model,
	}
}

func fallbackInput() port.ClassifyInput {
	return port.ClassifyInput{FileName: "appraisal.pdf", ContentType: "application/pdf", FileBytes: []byte("test")}
}

func TestFallbackClassifier_FirstSucceeds(t *testing.T) {
	c1 := new(mocks.MockClassifier)
	c2 := new(mocks.MockClassifier)

	input := fallbackInput()
	c1.On("Classify", mock.Anything, input).Return(fallbackOutput("primary"), nil)

	fc := classifier.NewFallbackClassifier([]port.Classifier{c1, c2}, []string{"primary", "secondary"}, logger.Nop())

	result, err := fc.Classify(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "primary", result.ModelUsed)
	c2.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
}

func TestFallbackClassifier_FirstFails_SecondSucceeds(t *testing.T) {
	c1 := new(mocks.MockClassifier)
	c2 := new(mocks.MockClassifier)

	input := fallbackInput()
	c1.On("Classify", mock.Anything, input).Return(nil, errors.New("boom"))
	c2.On("Classify", mock.Anything, input).Return(fallbackOutput("secondary"), nil)

	fc := classifier.NewFallbackClassifier([]port.Classifier{c1, c2}, []string{"primary", "secondary"}, logger.Nop())

	result, err := fc.Classify(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "secondary", result.ModelUsed)
}

func TestFallbackClassifier_AllRateLimited(t *testing.T) {
	c1 := new(mocks.MockClassifier)
	c2 := new(mocks.MockClassifier)

	input := fallbackInput()
	c1.On("Classify", mock.Anything, input).Return(nil, classifier.NewRateLimitError("primary", errors.New("429"), 60))
	c2.On("Classify", mock.Anything, input).Return(nil, classifier.NewRateLimitError("secondary", errors.New("429"), 30))

	fc := classifier.NewFallbackClassifier([]port.Classifier{c1, c2}, []string{"primary", "secondary"}, logger.Nop())

	result, err := fc.Classify(context.Background(), input)

	assert.Nil(t, result)
	var rlErr *classifier.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Endpoint)
	assert.Equal(t, 30*time.Second, rlErr.RetryAfter)
}

func TestFallbackClassifier_AllFail_NonRateLimit(t *testing.T) {
	c1 := new(mocks.MockClassifier)
	c2 := new(mocks.MockClassifier)

	input := fallbackInput()
	c1.On("Classify", mock.Anything, input).Return(nil, classifier.NewRateLimitError("primary", errors.New("429"), 60))
	c2.On("Classify", mock.Anything, input).Return(nil, errors.New("error 2"))

	fc := classifier.NewFallbackClassifier([]port.Classifier{c1, c2}, []string{"primary", "secondary"}, logger.Nop())

	result, err := fc.Classify(context.Background(), input)

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all classification endpoints failed")
	var rlErr *classifier.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestFallbackClassifier_SkipsOpenCircuit(t *testing.T) {
	c1 := new(mocks.MockClassifier)
	c2 := new(mocks.MockClassifier)

	input := fallbackInput()
	c1.On("Classify", mock.Anything, input).Return(nil, classifier.NewRateLimitError("primary", errors.New("429"), 60)).Once()
	c2.On("Classify", mock.Anything, input).Return(fallbackOutput("secondary"), nil)

	fc := classifier.NewFallbackClassifier([]port.Classifier{c1, c2}, []string{"primary", "secondary"}, logger.Nop())

	_, err := fc.Classify(context.Background(), input)
	require.NoError(t, err)

	result, err := fc.Classify(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "secondary", result.ModelUsed)
	c1.AssertNumberOfCalls(t, "Classify", 1)
	c2.AssertNumberOfCalls(t, "Classify", 2)
}
