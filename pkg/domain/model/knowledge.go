package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultConfidence is stamped on records taught directly on this device
	DefaultConfidence = 0.6

	MinConfidence = 0.0
	MaxConfidence = 1.0
)

// KnowledgeID is the primary key of a knowledge record
type KnowledgeID string

// NewKnowledgeID generates an ID of the form k_<10 hex chars>
func NewKnowledgeID() KnowledgeID {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return KnowledgeID("k_" + hex[:10])
}

func (id KnowledgeID) String() string {
	return string(id)
}

// KnowledgeSource is the provenance tag of a record
type KnowledgeSource string

const (
	SourceLocal      KnowledgeSource = "local"
	peerSourcePrefix                 = "peer:"
)

// PeerSource returns the provenance tag for records received from peerID.
// An empty peerID yields "peer:".
func PeerSource(peerID DeviceID) KnowledgeSource {
	return KnowledgeSource(peerSourcePrefix + string(peerID))
}

// IsPeer reports whether the record arrived through sync
func (s KnowledgeSource) IsPeer() bool {
	return strings.HasPrefix(string(s), peerSourcePrefix)
}

// PeerID returns the peer part of a peer source, or empty for local records
func (s KnowledgeSource) PeerID() DeviceID {
	if !s.IsPeer() {
		return ""
	}
	return DeviceID(strings.TrimPrefix(string(s), peerSourcePrefix))
}

func (s KnowledgeSource) String() string {
	return string(s)
}

// Knowledge is a stored question/answer pair
type Knowledge struct {
	ID         KnowledgeID
	Question   string
	Answer     string
	Topic      string // empty when absent
	Confidence float64
	Source     KnowledgeSource
	CreatedAt  time.Time // second precision
}

// Copy returns a copy of k
func (k *Knowledge) Copy() *Knowledge {
	copied := *k
	return &copied
}

// ToPacket projects the record into its wire form. Source is dropped.
func (k *Knowledge) ToPacket() KnowledgePacket {
	ts := k.CreatedAt.Unix()
	pkt := KnowledgePacket{
		ID:         k.ID,
		Question:   k.Question,
		Answer:     k.Answer,
		Confidence: k.Confidence,
		Timestamp:  &ts,
	}
	if k.Topic != "" {
		topic := k.Topic
		pkt.Topic = &topic
	}
	return pkt
}

// UpsertResult is the outcome of a conditional write by ID
type UpsertResult string

const (
	UpsertInserted  UpsertResult = "inserted"
	UpsertUpdated   UpsertResult = "updated"
	UpsertUnchanged UpsertResult = "unchanged"
)

// Merged reports whether the write changed the store
func (r UpsertResult) Merged() bool {
	return r == UpsertInserted || r == UpsertUpdated
}
