package rules

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/domain/interfaces"
	"github.com/secmon-lab/zia/pkg/domain/types"
)

// DefaultAssistantName is used when no name is configured
const DefaultAssistantName = "ZIA"

var ruleIDPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Rule is a configured canned answer triggered by any of its phrases
type Rule struct {
	ID       string   `toml:"id" validate:"required"`
	Contains []string `toml:"contains" validate:"required,min=1,dive,required"`
	Answer   string   `toml:"answer" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (r Rule) Validate() error {
	if err := validate.Struct(r); err != nil {
		return goerr.Wrap(err, "invalid rule", goerr.V("id", r.ID))
	}
	if !ruleIDPattern.MatchString(r.ID) {
		return goerr.New("rule ID must be lowercase alphanumeric with hyphens", goerr.V("id", r.ID))
	}
	return nil
}

func (r Rule) matches(q string) bool {
	for _, phrase := range r.Contains {
		if strings.Contains(q, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// Engine answers questions that stored knowledge cannot, using built-in
// rules followed by configured ones
type Engine struct {
	name  string
	rules []Rule
	now   func() time.Time
}

var _ interfaces.FallbackResponder = &Engine{}

type Option func(*Engine)

func WithAssistantName(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.name = name
		}
	}
}

func WithRules(rules []Rule) Option {
	return func(e *Engine) {
		e.rules = append(e.rules, rules...)
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine. Configured rules are validated and must have unique IDs.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		name: DefaultAssistantName,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	seen := make(map[string]struct{}, len(e.rules))
	for _, r := range e.rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[r.ID]; dup {
			return nil, goerr.New("duplicate rule ID", goerr.V("id", r.ID))
		}
		seen[r.ID] = struct{}{}
	}

	return e, nil
}

// Default returns an Engine with only the built-in rules
func Default() *Engine {
	return &Engine{
		name: DefaultAssistantName,
		now:  time.Now,
	}
}

func (e *Engine) Name() string {
	return e.name
}

// Fallback returns the first applicable canned answer
func (e *Engine) Fallback(question string, intent types.Intent) (string, bool) {
	q := strings.ToLower(question)

	if intent == types.IntentGreeting {
		return fmt.Sprintf("Hello! I am %s, ready to help even without the internet.", e.name), true
	}

	if strings.Contains(q, "time") {
		return e.now().Format("The current time is 15:04."), true
	}

	if strings.Contains(q, "date") || strings.Contains(q, "day") {
		return e.now().Format("Today's date is 02 January 2006."), true
	}

	if strings.Contains(q, "who are you") || strings.Contains(q, "your name") {
		return fmt.Sprintf("My name is %s. I am a Zero-Internet AI Assistant. "+
			"I work offline, learn locally, and sync with nearby devices.", e.name), true
	}

	if strings.Contains(q, "what can you do") {
		return "I can answer questions from my local knowledge, learn new information, " +
			"and synchronize with nearby devices without using the internet.", true
	}

	for _, r := range e.rules {
		if r.matches(q) {
			return r.Answer, true
		}
	}

	return "", false
}
