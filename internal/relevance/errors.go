package relevance

import "errors"

// Domain errors for relevance operations.
var (
	ErrContextFetch  = errors.New("contact context fetch failed")
	ErrJudgeFailed   = errors.New("LLM validation failed")
	ErrJudgeParse    = errors.New("failed to parse LLM response")
	ErrInvalidPolicy = errors.New("invalid validation policy")
)
