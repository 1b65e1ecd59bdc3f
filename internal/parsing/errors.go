package parsing

import (
	"fmt"

	"github.com/jonathan/knotic/internal/types"
)

// StructuringError reports that raw résumé text could not be turned into a
// StructuredResume. Kind separates a failed delegate call from an answer that
// did not match the expected shape.
type StructuringError struct {
	Kind    types.FailureKind
	Message string
	Cause   error
}

func (e *StructuringError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("structuring failed (%s): %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("structuring failed (%s): %s", e.Kind, e.Message)
}

func (e *StructuringError) Unwrap() error {
	return e.Cause
}

func upstreamError(message string, cause error) *StructuringError {
	return &StructuringError{Kind: types.UpstreamFailure, Message: message, Cause: cause}
}

func parseError(message string, cause error) *StructuringError {
	return &StructuringError{Kind: types.ParseFailure, Message: message, Cause: cause}
}
