package llm

import "fmt"

// ConfigurationError reports that the language-model capability is unavailable
// or not configured (missing API key, unknown provider, no model for a tier).
// It is fatal for the request and is never retried.
type ConfigurationError struct {
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm not configured: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("llm not configured: %s", e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}
