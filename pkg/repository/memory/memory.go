package memory

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/domain/interfaces"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = goerr.New("not found")

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is a process-local repository. Contents are lost on exit.
type Memory struct {
	knowledge *knowledgeRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		knowledge: newKnowledgeRepository(),
	}
}

func (m *Memory) Knowledge() interfaces.KnowledgeRepository {
	return m.knowledge
}

func (m *Memory) Close() error {
	return nil
}
