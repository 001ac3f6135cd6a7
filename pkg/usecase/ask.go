package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/domain/interfaces"
	"github.com/secmon-lab/zia/pkg/domain/model"
	"github.com/secmon-lab/zia/pkg/domain/types"
	"github.com/secmon-lab/zia/pkg/service/metrics"
	"github.com/secmon-lab/zia/pkg/service/similarity"
	"github.com/secmon-lab/zia/pkg/utils/logging"
)

// AskUseCase answers a question from stored knowledge, then canned rules,
// then admits ignorance. It never writes to the store.
type AskUseCase struct {
	matcher  interfaces.Matcher
	detector interfaces.IntentDetector
	fallback interfaces.FallbackResponder
	scorer   *similarity.Scorer
	metrics  *metrics.Collector
}

func NewAskUseCase(
	matcher interfaces.Matcher,
	detector interfaces.IntentDetector,
	fallback interfaces.FallbackResponder,
	scorer *similarity.Scorer,
	m *metrics.Collector,
) *AskUseCase {
	return &AskUseCase{
		matcher:  matcher,
		detector: detector,
		fallback: fallback,
		scorer:   scorer,
		metrics:  m,
	}
}

func (uc *AskUseCase) Ask(ctx context.Context, question string) (*model.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, goerr.Wrap(ErrValidation, "question is required")
	}

	logger := logging.From(ctx)
	intent := uc.detector.Detect(question)

	match, err := uc.matcher.FindMatch(ctx, question)
	if err != nil {
		return nil, persistenceError(err, "failed to search knowledge")
	}

	if match != nil {
		score := uc.scorer.Score(question, match.Question)
		logger.Debug("Knowledge candidate found",
			slog.String(KnowledgeIDKey, match.ID.String()),
			slog.Float64("score", score),
			slog.Float64("threshold", uc.scorer.Threshold()))

		if uc.scorer.IsSimilarEnough(question, match.Question) {
			return uc.answer(&model.Answer{
				Text:       match.Answer,
				Source:     types.AnswerSourceLocalKnowledge,
				Confidence: match.Confidence,
				Intent:     intent,
			}), nil
		}
	}

	if text, ok := uc.fallback.Fallback(question, intent); ok {
		return uc.answer(&model.Answer{
			Text:       text,
			Source:     types.AnswerSourceRuleEngine,
			Confidence: model.RuleEngineConfidence,
			Intent:     intent,
		}), nil
	}

	return uc.answer(&model.Answer{
		Text:       model.UnknownAnswerText,
		Source:     types.AnswerSourceUnknown,
		Confidence: 0.0,
		Intent:     intent,
	}), nil
}

func (uc *AskUseCase) answer(a *model.Answer) *model.Answer {
	uc.metrics.ObserveAnswer(a.Source, a.Intent)
	return a
}
