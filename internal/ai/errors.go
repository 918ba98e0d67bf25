// Package ai holds the provider-independent error types produced by LLM-backed components.
package ai

import "fmt"

// ExtractionError is returned when a résumé could not be turned into a profile:
// either its text was unreadable or every configured model failed.
type ExtractionError struct {
	// Model is the last model attempted. Empty when the failure happened before any call.
	Model string
	Err   error
}

func (e *ExtractionError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("profile extraction failed: %v", e.Err)
	}
	return fmt.Sprintf("profile extraction failed (last model %s): %v", e.Model, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ScoringError is returned when every configured model failed to score a posting.
type ScoringError struct {
	Model string
	Err   error
}

func (e *ScoringError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("fit scoring failed: %v", e.Err)
	}
	return fmt.Sprintf("fit scoring failed (last model %s): %v", e.Model, e.Err)
}

func (e *ScoringError) Unwrap() error { return e.Err }
