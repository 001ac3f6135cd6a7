package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/zia/pkg/domain/model"
	"github.com/secmon-lab/zia/pkg/domain/types"
	"github.com/secmon-lab/zia/pkg/repository/memory"
	"github.com/secmon-lab/zia/pkg/service/rules"
	"github.com/secmon-lab/zia/pkg/service/similarity"
	"github.com/secmon-lab/zia/pkg/usecase"
)

func TestAskFromLocalKnowledge(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	_, err := uc.Knowledge.Teach(ctx, usecase.TeachInput{Question: "What is the capital of France?", Answer: "Paris"})
	gt.NoError(t, err).Required()

	answer, err := uc.Ask.Ask(ctx, "what is the capital of france")
	gt.NoError(t, err).Required()
	gt.Value(t, answer.Source).Equal(types.AnswerSourceLocalKnowledge)
	gt.Value(t, answer.Text).Equal("Paris")
	gt.Number(t, answer.Confidence).Equal(model.DefaultConfidence)
	gt.Value(t, answer.Intent).Equal(types.IntentGeneralQA)
}

func TestAskGreetingFallsBackToRules(t *testing.T) {
	uc := usecase.New(memory.New())

	answer, err := uc.Ask.Ask(context.Background(), "hello")
	gt.NoError(t, err).Required()
	gt.Value(t, answer.Source).Equal(types.AnswerSourceRuleEngine)
	gt.Number(t, answer.Confidence).Equal(0.5)
	gt.Value(t, answer.Intent).Equal(types.IntentGreeting)
	gt.Value(t, answer.Text).Equal("Hello! I am ZIA, ready to help even without the internet.")
}

func TestAskUnknown(t *testing.T) {
	uc := usecase.New(memory.New())

	answer, err := uc.Ask.Ask(context.Background(), "xyzzy plugh quux")
	gt.NoError(t, err).Required()
	gt.Value(t, answer.Source).Equal(types.AnswerSourceUnknown)
	gt.Number(t, answer.Confidence).Equal(0.0)
	gt.Value(t, answer.Text).Equal(model.UnknownAnswerText)
	gt.Value(t, answer.Intent).Equal(types.IntentGeneralQA)
}

func TestAskRejectsWeakMatch(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	// "capital" is a substring of the stored question but shares 1 of 6 tokens
	_, err := uc.Knowledge.Teach(ctx, usecase.TeachInput{Question: "What is the capital of France?", Answer: "Paris"})
	gt.NoError(t, err).Required()

	answer, err := uc.Ask.Ask(ctx, "capital")
	gt.NoError(t, err).Required()
	gt.Value(t, answer.Source).Equal(types.AnswerSourceUnknown)
}

func TestAskThresholdIsConfigurable(t *testing.T) {
	ctx := context.Background()
	match := &model.Knowledge{ID: "k_1", Question: "what is go language", Answer: "A programming language.", Confidence: 0.9}

	loose, err := similarity.New(0.5)
	gt.NoError(t, err).Required()
	strict, err := similarity.New(0.9)
	gt.NoError(t, err).Required()

	// score 3/4
	answer, err := usecase.New(memory.New(), usecase.WithMatcher(&stubMatcher{match: match}), usecase.WithScorer(loose)).
		Ask.Ask(ctx, "what is go")
	gt.NoError(t, err).Required()
	gt.Value(t, answer.Source).Equal(types.AnswerSourceLocalKnowledge)
	gt.Number(t, answer.Confidence).Equal(0.9)

	answer, err = usecase.New(memory.New(), usecase.WithMatcher(&stubMatcher{match: match}), usecase.WithScorer(strict)).
		Ask.Ask(ctx, "what is go")
	gt.NoError(t, err).Required()
	gt.Value(t, answer.Source).Equal(types.AnswerSourceUnknown)
}

func TestAskUsesCustomMatcherAndRules(t *testing.T) {
	ctx := context.Background()
	matcher := &stubMatcher{}
	engine, err := rules.New(rules.WithRules([]rules.Rule{
		{ID: "wifi", Contains: []string{"wifi"}, Answer: "Use ZIA-Guest."},
	}))
	gt.NoError(t, err).Required()

	uc := usecase.New(memory.New(), usecase.WithMatcher(matcher), usecase.WithFallbackResponder(engine))
	answer, err := uc.Ask.Ask(ctx, "where is the wifi password")
	gt.NoError(t, err).Required()
	gt.Value(t, answer.Source).Equal(types.AnswerSourceRuleEngine)
	gt.Value(t, answer.Text).Equal("Use ZIA-Guest.")
	gt.Number(t, matcher.calls.Load()).Equal(1)
}

func TestAskDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.New(repo)

	for _, q := range []string{"hello", "what time is it", "xyzzy"} {
		_, err := uc.Ask.Ask(ctx, q)
		gt.NoError(t, err).Required()
	}

	list, err := repo.Knowledge().List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, list).Length(0)
}

func TestAskValidation(t *testing.T) {
	uc := usecase.New(memory.New())
	for _, q := range []string{"", "   \t"} {
		_, err := uc.Ask.Ask(context.Background(), q)
		gt.Error(t, err).Is(usecase.ErrValidation)
	}
}

func TestAskStoreFailure(t *testing.T) {
	uc := usecase.New(brokenRepository{})
	_, err := uc.Ask.Ask(context.Background(), "what is go")
	gt.Error(t, err).Is(usecase.ErrPersistence)
}
