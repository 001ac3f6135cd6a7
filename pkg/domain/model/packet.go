package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// ErrInvalidPacket marks a packet that cannot be merged
var ErrInvalidPacket = goerr.New("invalid knowledge packet")

// KnowledgePacket is the portable form of a Knowledge record used for sync
type KnowledgePacket struct {
	ID         KnowledgeID `json:"id"`
	Question   string      `json:"question"`
	Answer     string      `json:"answer"`
	Topic      *string     `json:"topic"`
	Confidence float64     `json:"confidence"`
	Timestamp  *int64      `json:"timestamp,omitempty"`
}

// Validate checks that the packet can become a record
func (p *KnowledgePacket) Validate() error {
	if strings.TrimSpace(string(p.ID)) == "" {
		return goerr.Wrap(ErrInvalidPacket, "packet id is required")
	}
	if strings.TrimSpace(p.Question) == "" {
		return goerr.Wrap(ErrInvalidPacket, "packet question is required", goerr.V("id", p.ID))
	}
	if strings.TrimSpace(p.Answer) == "" {
		return goerr.Wrap(ErrInvalidPacket, "packet answer is required", goerr.V("id", p.ID))
	}
	if math.IsNaN(p.Confidence) || p.Confidence < MinConfidence || p.Confidence > MaxConfidence {
		return goerr.Wrap(ErrInvalidPacket, "packet confidence out of range",
			goerr.V("id", p.ID), goerr.V("confidence", p.Confidence))
	}
	return nil
}

// ToKnowledge converts the packet into a record received from peerID.
// A missing timestamp becomes now.
func (p *KnowledgePacket) ToKnowledge(peerID DeviceID, now time.Time) *Knowledge {
	createdAt := now.UTC().Truncate(time.Second)
	if p.Timestamp != nil {
		createdAt = time.Unix(*p.Timestamp, 0).UTC()
	}

	k := &Knowledge{
		ID:         p.ID,
		Question:   p.Question,
		Answer:     p.Answer,
		Confidence: p.Confidence,
		Source:     PeerSource(peerID),
		CreatedAt:  createdAt,
	}
	if p.Topic != nil {
		k.Topic = *p.Topic
	}
	return k
}

// ErrMalformedBatch marks a packets value that is not a JSON list
var ErrMalformedBatch = goerr.New("packets must be a list")

// DecodePackets decodes a JSON list of packets element by element. An absent
// or null list is empty. An element that is not a packet object becomes nil.
func DecodePackets(raw []byte) ([]*KnowledgePacket, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '[' {
		return nil, goerr.Wrap(ErrMalformedBatch, "packets is not a list")
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, goerr.Wrap(ErrMalformedBatch, "failed to split packets", goerr.V("error", err.Error()))
	}

	packets := make([]*KnowledgePacket, len(elements))
	for i, elem := range elements {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || elem[0] != '{' {
			continue
		}
		var pkt KnowledgePacket
		if err := json.Unmarshal(elem, &pkt); err != nil {
			continue
		}
		packets[i] = &pkt
	}
	return packets, nil
}

// PacketList is a packet batch received from outside the process. A malformed
// element decodes as the zero packet, which Validate rejects, so one bad
// element never discards the rest of the batch.
type PacketList []KnowledgePacket

func (l *PacketList) UnmarshalJSON(data []byte) error {
	decoded, err := DecodePackets(data)
	if err != nil {
		return err
	}
	if decoded == nil {
		*l = nil
		return nil
	}

	list := make(PacketList, len(decoded))
	for i, p := range decoded {
		if p != nil {
			list[i] = *p
		}
	}
	*l = list
	return nil
}

// Pointers returns the packets as the batch form taken by Import
func (l PacketList) Pointers() []*KnowledgePacket {
	out := make([]*KnowledgePacket, len(l))
	for i := range l {
		out[i] = &l[i]
	}
	return out
}

// SyncBundle is what a device hands to its peers
type SyncBundle struct {
	DeviceID DeviceID   `json:"device_id"`
	Packets  PacketList `json:"packets"`
}

// ImportResult counts the outcome of merging a batch of packets.
// Invalid and Failed packets are included in Skipped.
type ImportResult struct {
	Merged  int
	Skipped int
	Invalid int
	Failed  int
}

// Add accumulates other into r
func (r *ImportResult) Add(other ImportResult) {
	r.Merged += other.Merged
	r.Skipped += other.Skipped
	r.Invalid += other.Invalid
	r.Failed += other.Failed
}
