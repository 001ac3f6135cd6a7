package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/zia/pkg/domain/model"
)

func TestDecodePackets(t *testing.T) {
	t.Run("malformed element becomes nil", func(t *testing.T) {
		packets, err := model.DecodePackets([]byte(`[
			{"id":"k_1","question":"q1","answer":"a1","confidence":0.6},
			{"id":"k_2","question":"q2","answer":"a2","confidence":"high"},
			null,
			7
		]`))
		gt.NoError(t, err).Required()
		gt.Array(t, packets).Length(4).Required()
		gt.Value(t, packets[0].ID).Equal(model.KnowledgeID("k_1"))
		gt.Bool(t, packets[1] == nil).True()
		gt.Bool(t, packets[2] == nil).True()
		gt.Bool(t, packets[3] == nil).True()
	})

	t.Run("absent or null list is empty", func(t *testing.T) {
		for _, raw := range []string{"", " ", "null"} {
			packets, err := model.DecodePackets([]byte(raw))
			gt.NoError(t, err)
			gt.Array(t, packets).Length(0)
		}
	})

	t.Run("non-list is rejected", func(t *testing.T) {
		for _, raw := range []string{`{"id":"k_1"}`, `"text"`, `[1,`} {
			_, err := model.DecodePackets([]byte(raw))
			gt.Bool(t, errors.Is(err, model.ErrMalformedBatch)).True()
		}
	})
}

func TestSyncBundleKeepsValidPackets(t *testing.T) {
	var bundle model.SyncBundle
	gt.NoError(t, json.Unmarshal([]byte(`{
		"device_id": "dev-a",
		"packets": [
			{"id":"k_1","question":"q1","answer":"a1","confidence":0.6},
			{"id":"k_2","question":"q2","answer":"a2","confidence":"high"}
		]
	}`), &bundle)).Required()

	gt.Value(t, bundle.DeviceID).Equal(model.DeviceID("dev-a"))
	gt.Array(t, bundle.Packets).Length(2).Required()
	gt.NoError(t, bundle.Packets[0].Validate())
	gt.Error(t, bundle.Packets[1].Validate())

	ptrs := bundle.Packets.Pointers()
	gt.Array(t, ptrs).Length(2).Required()
	gt.Value(t, ptrs[0].ID).Equal(model.KnowledgeID("k_1"))
}
