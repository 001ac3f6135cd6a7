package model

import "github.com/secmon-lab/zia/pkg/domain/types"

const (
	// RuleEngineConfidence is the fixed confidence of rule based answers
	RuleEngineConfidence = 0.5

	UnknownAnswerText = "I don't know this yet. You can teach me using /teach."
)

// Answer is the outcome of asking a question
type Answer struct {
	Text       string
	Source     types.AnswerSource
	Confidence float64
	Intent     types.Intent
}
