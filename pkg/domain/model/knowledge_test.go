package model_test

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/zia/pkg/domain/model"
)

func TestNewKnowledgeID(t *testing.T) {
	id := model.NewKnowledgeID()
	gt.Bool(t, strings.HasPrefix(id.String(), "k_")).True()
	gt.Number(t, len(id)).Equal(12)

	id2 := model.NewKnowledgeID()
	gt.Value(t, id).NotEqual(id2)
}

func TestKnowledgeSource(t *testing.T) {
	gt.Bool(t, model.SourceLocal.IsPeer()).False()
	gt.Value(t, model.SourceLocal.PeerID()).Equal(model.DeviceID(""))

	src := model.PeerSource("a1b2c3d4")
	gt.Value(t, src).Equal(model.KnowledgeSource("peer:a1b2c3d4"))
	gt.Bool(t, src.IsPeer()).True()
	gt.Value(t, src.PeerID()).Equal(model.DeviceID("a1b2c3d4"))

	gt.Value(t, model.PeerSource("")).Equal(model.KnowledgeSource("peer:"))
}

func TestKnowledge_ToPacket(t *testing.T) {
	createdAt := time.Unix(1700000000, 0).UTC()

	t.Run("carries timestamp and topic", func(t *testing.T) {
		k := &model.Knowledge{
			ID:         "k_0123456789",
			Question:   "What is the capital of France?",
			Answer:     "Paris",
			Topic:      "geography",
			Confidence: 0.6,
			Source:     model.SourceLocal,
			CreatedAt:  createdAt,
		}

		pkt := k.ToPacket()
		gt.Value(t, pkt.ID).Equal(k.ID)
		gt.Value(t, pkt.Question).Equal(k.Question)
		gt.Value(t, pkt.Answer).Equal(k.Answer)
		gt.Value(t, pkt.Confidence).Equal(0.6)
		gt.Value(t, pkt.Topic).NotNil()
		gt.Value(t, *pkt.Topic).Equal("geography")
		gt.Value(t, pkt.Timestamp).NotNil()
		gt.Value(t, *pkt.Timestamp).Equal(int64(1700000000))
	})

	t.Run("empty topic becomes nil", func(t *testing.T) {
		k := &model.Knowledge{ID: "k_1", Question: "q", Answer: "a", CreatedAt: createdAt}
		gt.Value(t, k.ToPacket().Topic).Nil()
	})
}

func TestKnowledgePacket_Validate(t *testing.T) {
	valid := func() model.KnowledgePacket {
		return model.KnowledgePacket{ID: "k_1", Question: "q", Answer: "a", Confidence: 0.5}
	}

	tests := []struct {
		name    string
		mutate  func(p *model.KnowledgePacket)
		wantErr bool
	}{
		{name: "valid", mutate: func(p *model.KnowledgePacket) {}},
		{name: "zero confidence", mutate: func(p *model.KnowledgePacket) { p.Confidence = 0 }},
		{name: "full confidence", mutate: func(p *model.KnowledgePacket) { p.Confidence = 1 }},
		{name: "missing id", mutate: func(p *model.KnowledgePacket) { p.ID = "" }, wantErr: true},
		{name: "blank id", mutate: func(p *model.KnowledgePacket) { p.ID = "  " }, wantErr: true},
		{name: "missing question", mutate: func(p *model.KnowledgePacket) { p.Question = "" }, wantErr: true},
		{name: "missing answer", mutate: func(p *model.KnowledgePacket) { p.Answer = "" }, wantErr: true},
		{name: "negative confidence", mutate: func(p *model.KnowledgePacket) { p.Confidence = -0.1 }, wantErr: true},
		{name: "confidence above one", mutate: func(p *model.KnowledgePacket) { p.Confidence = 1.01 }, wantErr: true},
		{name: "NaN confidence", mutate: func(p *model.KnowledgePacket) { p.Confidence = math.NaN() }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				gt.Error(t, err)
				gt.Bool(t, errors.Is(err, model.ErrInvalidPacket)).True()
				return
			}
			gt.NoError(t, err)
		})
	}
}

func TestKnowledgePacket_ToKnowledge(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 30, 45, 999, time.UTC)

	t.Run("missing timestamp defaults to now", func(t *testing.T) {
		p := model.KnowledgePacket{ID: "k_1", Question: "q", Answer: "a", Confidence: 0.7}
		k := p.ToKnowledge("peer-1", now)

		gt.Value(t, k.ID).Equal(model.KnowledgeID("k_1"))
		gt.Value(t, k.Source).Equal(model.KnowledgeSource("peer:peer-1"))
		gt.Value(t, k.Topic).Equal("")
		gt.Value(t, k.Confidence).Equal(0.7)
		gt.Bool(t, k.CreatedAt.Equal(now.Truncate(time.Second))).True()
	})

	t.Run("timestamp and topic are kept", func(t *testing.T) {
		ts := int64(1600000000)
		topic := "science"
		p := model.KnowledgePacket{ID: "k_2", Question: "q", Answer: "a", Topic: &topic, Timestamp: &ts}
		k := p.ToKnowledge("", now)

		gt.Value(t, k.Topic).Equal("science")
		gt.Value(t, k.Source).Equal(model.KnowledgeSource("peer:"))
		gt.Value(t, k.CreatedAt.Unix()).Equal(ts)
	})
}

func TestImportResult_Add(t *testing.T) {
	r := model.ImportResult{Merged: 1, Skipped: 2}
	r.Add(model.ImportResult{Merged: 3, Skipped: 4, Invalid: 1, Failed: 2})
	gt.Value(t, r).Equal(model.ImportResult{Merged: 4, Skipped: 6, Invalid: 1, Failed: 2})
}

func TestUpsertResult_Merged(t *testing.T) {
	gt.Bool(t, model.UpsertInserted.Merged()).True()
	gt.Bool(t, model.UpsertUpdated.Merged()).True()
	gt.Bool(t, model.UpsertUnchanged.Merged()).False()
}

func TestDeviceID(t *testing.T) {
	id := model.NewDeviceID()
	gt.Number(t, len(id)).Equal(8)
	gt.NoError(t, id.Validate())

	gt.Error(t, model.DeviceID("").Validate())
	gt.Error(t, model.DeviceID("has space").Validate())
}
