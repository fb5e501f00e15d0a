package workflow

import "errors"

// State bag keys shared across workflow nodes.
const (
	KeyRequest    = "request"
	KeyPolicy     = "policy"
	KeySnapshot   = "snapshot"
	KeyRuleResult = "rule_result"
	KeyLLMResult  = "llm_result"
	KeyResult     = "result"
)

// Workflow errors.
var (
	ErrContextFailed  = errors.New("context node failed")
	ErrEvaluateFailed = errors.New("evaluate node failed")
	ErrJudgeFailed    = errors.New("judge node failed")
	ErrFinalizeFailed = errors.New("finalize node failed")
)
