package scoring

import (
	"errors"
	"fmt"

	"github.com/jonathan/knotic/internal/types"
)

var (
	// ErrEmptyJobDescription is a caller error: matching needs a non-blank job description.
	ErrEmptyJobDescription = errors.New("job description is required for matching")
	// ErrMissingResume is a caller error: scoring needs a structured résumé.
	ErrMissingResume = errors.New("structured résumé is required for scoring")
)

// ScoringError reports a failed match or readiness assessment.
type ScoringError struct {
	Kind      types.FailureKind
	Operation string
	Message   string
	Cause     error
}

func (e *ScoringError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed (%s): %s: %v", e.Operation, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s failed (%s): %s", e.Operation, e.Kind, e.Message)
}

func (e *ScoringError) Unwrap() error {
	return e.Cause
}
