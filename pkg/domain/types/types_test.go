package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/zia/pkg/domain/types"
)

func TestIntent_IsValid(t *testing.T) {
	for _, intent := range types.AllIntents() {
		t.Run(intent.String(), func(t *testing.T) {
			gt.Bool(t, intent.IsValid()).True()
		})
	}

	gt.Bool(t, types.Intent("small_talk").IsValid()).False()
	gt.Bool(t, types.Intent("").IsValid()).False()
}

func TestParseAnswerSource(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.AnswerSource
		wantErr bool
	}{
		{name: "local knowledge", input: "local_knowledge", want: types.AnswerSourceLocalKnowledge},
		{name: "rule engine", input: "rule_engine", want: types.AnswerSourceRuleEngine},
		{name: "unknown", input: "unknown", want: types.AnswerSourceUnknown},
		{name: "upper case is rejected", input: "UNKNOWN", wantErr: true},
		{name: "empty is rejected", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseAnswerSource(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}
}
