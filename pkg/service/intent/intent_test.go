package intent_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/zia/pkg/domain/types"
	"github.com/secmon-lab/zia/pkg/service/intent"
)

func TestDetect(t *testing.T) {
	testCases := []struct {
		input    string
		expected types.Intent
	}{
		{input: "What is the capital of France?", expected: types.IntentGeneralQA},
		{input: "who is Ada Lovelace", expected: types.IntentGeneralQA},
		{input: "Why is the sky blue", expected: types.IntentGeneralQA},
		{input: "how does sync work", expected: types.IntentGeneralQA},
		{input: "define entropy", expected: types.IntentGeneralQA},
		{input: "Remember that the meeting is at 3", expected: types.IntentNoteCreate},
		{input: "note that milk is out", expected: types.IntentNoteCreate},
		{input: "save this for later", expected: types.IntentNoteCreate},
		{input: "open the door", expected: types.IntentCommand},
		{input: "Launch   browser", expected: types.IntentCommand},
		{input: "run", expected: types.IntentGeneralQA},
		{input: "opener", expected: types.IntentGeneralQA},
		{input: "hello", expected: types.IntentGreeting},
		{input: "  Hey ", expected: types.IntentGreeting},
		{input: "hi there", expected: types.IntentGeneralQA},
		{input: "", expected: types.IntentUnknown},
		{input: "   ", expected: types.IntentUnknown},
		{input: "xyzzy plugh quux", expected: types.IntentGeneralQA},
	}

	d := intent.New()
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			gt.Value(t, d.Detect(tc.input)).Equal(tc.expected)
		})
	}
}
