package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/domain/interfaces"
	"github.com/secmon-lab/zia/pkg/domain/model"
	"github.com/secmon-lab/zia/pkg/service/metrics"
	"github.com/secmon-lab/zia/pkg/utils/logging"
)

type KnowledgeUseCase struct {
	repo              interfaces.Repository
	defaultConfidence float64
	metrics           *metrics.Collector
}

func NewKnowledgeUseCase(repo interfaces.Repository, defaultConfidence float64, m *metrics.Collector) *KnowledgeUseCase {
	return &KnowledgeUseCase{
		repo:              repo,
		defaultConfidence: defaultConfidence,
		metrics:           m,
	}
}

// TeachInput is a question/answer pair taught directly on this device
type TeachInput struct {
	Question string
	Answer   string
	Topic    string
}

// Teach stores a new local record. Surrounding whitespace is trimmed and an
// empty topic means no topic.
func (uc *KnowledgeUseCase) Teach(ctx context.Context, input TeachInput) (*model.Knowledge, error) {
	question := strings.TrimSpace(input.Question)
	answer := strings.TrimSpace(input.Answer)
	topic := strings.TrimSpace(input.Topic)

	if question == "" || answer == "" {
		return nil, goerr.Wrap(ErrValidation, "both question and answer are required")
	}

	created, err := uc.repo.Knowledge().Create(ctx, &model.Knowledge{
		Question:   question,
		Answer:     answer,
		Topic:      topic,
		Confidence: uc.defaultConfidence,
		Source:     model.SourceLocal,
	})
	if err != nil {
		return nil, persistenceError(err, "failed to save knowledge")
	}

	uc.metrics.ObserveTeach()
	logging.From(ctx).Info("Knowledge saved",
		slog.String(KnowledgeIDKey, created.ID.String()),
		slog.String("topic", created.Topic))

	return created, nil
}

// List returns every record in enumeration order
func (uc *KnowledgeUseCase) List(ctx context.Context) ([]*model.Knowledge, error) {
	list, err := uc.repo.Knowledge().List(ctx)
	if err != nil {
		return nil, persistenceError(err, "failed to list knowledge")
	}
	return list, nil
}

// ListByTopic returns the records whose topic equals topic
func (uc *KnowledgeUseCase) ListByTopic(ctx context.Context, topic string) ([]*model.Knowledge, error) {
	list, err := uc.repo.Knowledge().ListByTopic(ctx, strings.TrimSpace(topic))
	if err != nil {
		return nil, persistenceError(err, "failed to list knowledge by topic", goerr.V("topic", topic))
	}
	return list, nil
}

// KnowledgeIssue is a stored record that could not be exported to a peer
type KnowledgeIssue struct {
	ID      model.KnowledgeID
	Message string
}

// Check reports records that peers would reject as invalid packets
func (uc *KnowledgeUseCase) Check(ctx context.Context) ([]KnowledgeIssue, error) {
	list, err := uc.List(ctx)
	if err != nil {
		return nil, err
	}

	var issues []KnowledgeIssue
	for _, k := range list {
		p := k.ToPacket()
		if err := p.Validate(); err != nil {
			issues = append(issues, KnowledgeIssue{ID: k.ID, Message: err.Error()})
		}
	}
	return issues, nil
}
