package intent

import (
	"regexp"
	"strings"

	"github.com/secmon-lab/zia/pkg/domain/interfaces"
	"github.com/secmon-lab/zia/pkg/domain/types"
)

var (
	questionPrefixes = []string{"what is", "who is", "why", "how", "define"}
	notePrefixes     = []string{"remember that", "note that", "save this"}
	commandPattern   = regexp.MustCompile(`^(open|start|run|launch)\s+`)
	greetings        = map[string]struct{}{"hi": {}, "hello": {}, "hey": {}}
)

// Detector classifies text with fixed prefix and pattern rules
type Detector struct{}

var _ interfaces.IntentDetector = &Detector{}

func New() *Detector {
	return &Detector{}
}

// Detect never fails. Text that matches no rule is general_qa.
func (d *Detector) Detect(text string) types.Intent {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return types.IntentUnknown
	}

	if hasAnyPrefix(t, questionPrefixes) {
		return types.IntentGeneralQA
	}
	if hasAnyPrefix(t, notePrefixes) {
		return types.IntentNoteCreate
	}
	if commandPattern.MatchString(t) {
		return types.IntentCommand
	}
	if _, ok := greetings[t]; ok {
		return types.IntentGreeting
	}

	return types.IntentGeneralQA
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
