package services

import "fmt"

// RetrievalError means the search backend was unreachable or answered with
// something that could not be turned into FAQ records.
type RetrievalError struct {
	Op  string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed (%s): %v", e.Op, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// GenerationError means the model backend failed, rejected the request or
// returned no completion. StatusCode is 0 when no HTTP response was received.
type GenerationError struct {
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generation failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
