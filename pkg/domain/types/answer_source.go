package types

import "fmt"

// AnswerSource tells where an answer came from
type AnswerSource string

const (
	AnswerSourceLocalKnowledge AnswerSource = "local_knowledge"
	AnswerSourceRuleEngine     AnswerSource = "rule_engine"
	AnswerSourceUnknown        AnswerSource = "unknown"
)

// AllAnswerSources returns all valid answer sources
func AllAnswerSources() []AnswerSource {
	return []AnswerSource{
		AnswerSourceLocalKnowledge,
		AnswerSourceRuleEngine,
		AnswerSourceUnknown,
	}
}

// IsValid checks if the answer source is valid
func (s AnswerSource) IsValid() bool {
	switch s {
	case AnswerSourceLocalKnowledge,
		AnswerSourceRuleEngine,
		AnswerSourceUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation of the answer source
func (s AnswerSource) String() string {
	return string(s)
}

// ParseAnswerSource parses a string into an AnswerSource
func ParseAnswerSource(s string) (AnswerSource, error) {
	src := AnswerSource(s)
	if !src.IsValid() {
		return "", fmt.Errorf("invalid answer source: %s", s)
	}
	return src, nil
}
