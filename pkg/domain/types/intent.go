package types

// Intent is the coarse classification tag of a question
type Intent string

const (
	IntentGeneralQA  Intent = "general_qa"
	IntentNoteCreate Intent = "note_create"
	IntentCommand    Intent = "command"
	IntentGreeting   Intent = "greeting"
	IntentUnknown    Intent = "unknown"
)

// AllIntents returns every intent the detector can produce
func AllIntents() []Intent {
	return []Intent{
		IntentGeneralQA,
		IntentNoteCreate,
		IntentCommand,
		IntentGreeting,
		IntentUnknown,
	}
}

// IsValid checks if the intent is part of the vocabulary
func (i Intent) IsValid() bool {
	switch i {
	case IntentGeneralQA,
		IntentNoteCreate,
		IntentCommand,
		IntentGreeting,
		IntentUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation of the intent
func (i Intent) String() string {
	return string(i)
}
