package interfaces

import "github.com/secmon-lab/zia/pkg/domain/types"

// IntentDetector classifies a question. It never fails.
type IntentDetector interface {
	Detect(text string) types.Intent
}

// FallbackResponder produces a canned answer, or false when no rule applies
type FallbackResponder interface {
	Fallback(question string, intent types.Intent) (string, bool)
}
