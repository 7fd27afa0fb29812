package domain

import "fmt"

var batchTransitions = map[BatchStatus][]BatchStatus{
	BatchStatusUploading:  {BatchStatusProcessing},
	BatchStatusProcessing: {BatchStatusProcessing, BatchStatusReview, BatchStatusPartial},
	BatchStatusReview:     {BatchStatusProcessing, BatchStatusCompleted, BatchStatusPartial},
	BatchStatusPartial:    {BatchStatusProcessing},
	BatchStatusCompleted:  nil,
}

var itemTransitions = map[ItemStatus][]ItemStatus{
	ItemStatusPending:        {ItemStatusProcessing},
	ItemStatusProcessing:     {ItemStatusReadyForReview, ItemStatusError},
	ItemStatusReadyForReview: {ItemStatusFiled, ItemStatusError},
	ItemStatusError:          {ItemStatusPending, ItemStatusProcessing},
	ItemStatusFiled:          nil,
}

var exportTransitions = map[ExportStatus][]ExportStatus{
	ExportStatusPending:    {ExportStatusGenerating, ExportStatusError},
	ExportStatusGenerating: {ExportStatusCompleted, ExportStatusError},
	ExportStatusCompleted:  nil,
	ExportStatusError:      nil,
}

func allowed[S comparable](table map[S][]S, from, to S) bool {
	for _, s := range table[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the batch may move from s to next.
func (s BatchStatus) CanTransitionTo(next BatchStatus) bool {
	return allowed(batchTransitions, s, next)
}

// CanTransitionTo reports whether the item may move from s to next.
func (s ItemStatus) CanTransitionTo(next ItemStatus) bool {
	return allowed(itemTransitions, s, next)
}

// CanTransitionTo reports whether the export job may move from s to next.
func (s ExportStatus) CanTransitionTo(next ExportStatus) bool {
	return allowed(exportTransitions, s, next)
}

// TransitionError wraps ErrInvalidTransition with the offending states.
func TransitionError(entity string, from, to interface{}) error {
	return fmt.Errorf("%s %v -> %v: %w", entity, from, to, ErrInvalidTransition)
}

// AggregateBatchStatus derives a batch status from its items. Any unfinished
// item keeps the batch processing; all filed completes it; errors with nothing
// left to review make it partial; otherwise it awaits review.
func AggregateBatchStatus(items []ItemStatus) BatchStatus {
	if len(items) == 0 {
		return BatchStatusUploading
	}

	var filed, errored, ready int
	for _, s := range items {
		switch s {
		case ItemStatusPending, ItemStatusProcessing:
			return BatchStatusProcessing
		case ItemStatusFiled:
			filed++
		case ItemStatusError:
			errored++
		case ItemStatusReadyForReview:
			ready++
		}
	}

	switch {
	case filed == len(items):
		return BatchStatusCompleted
	case errored > 0 && ready == 0:
		return BatchStatusPartial
	default:
		return BatchStatusReview
	}
}
