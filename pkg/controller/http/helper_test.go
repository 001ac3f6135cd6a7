package http_test

import (
	"context"
	"errors"

	"github.com/secmon-lab/zia/pkg/domain/interfaces"
	"github.com/secmon-lab/zia/pkg/domain/model"
)

var errStoreDown = errors.New("store is down")

type brokenRepository struct{}

func (brokenRepository) Knowledge() interfaces.KnowledgeRepository { return brokenKnowledge{} }
func (brokenRepository) Close() error                              { return nil }

type brokenKnowledge struct{}

func (brokenKnowledge) Create(context.Context, *model.Knowledge) (*model.Knowledge, error) {
	return nil, errStoreDown
}
func (brokenKnowledge) Get(context.Context, model.KnowledgeID) (*model.Knowledge, error) {
	return nil, errStoreDown
}
func (brokenKnowledge) FindMatch(context.Context, string) (*model.Knowledge, error) {
	return nil, errStoreDown
}
func (brokenKnowledge) List(context.Context) ([]*model.Knowledge, error) {
	return nil, errStoreDown
}
func (brokenKnowledge) ListByTopic(context.Context, string) ([]*model.Knowledge, error) {
	return nil, errStoreDown
}
func (brokenKnowledge) Upsert(context.Context, *model.Knowledge) (model.UpsertResult, error) {
	return "", errStoreDown
}
