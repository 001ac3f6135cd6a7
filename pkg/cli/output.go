package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/secmon-lab/zia/pkg/domain/model"
	"github.com/secmon-lab/zia/pkg/domain/types"
)

// output receives everything commands print for the user
var output io.Writer = os.Stdout

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

func printAnswer(a *model.Answer) {
	switch a.Source {
	case types.AnswerSourceLocalKnowledge:
		_, _ = green.Fprintln(output, a.Text)
	case types.AnswerSourceRuleEngine:
		_, _ = cyan.Fprintln(output, a.Text)
	default:
		_, _ = yellow.Fprintln(output, a.Text)
	}
	_, _ = fmt.Fprintf(output, "  source=%s intent=%s\n", a.Source, a.Intent)
}

func printKnowledge(k *model.Knowledge) {
	_, _ = cyan.Fprintf(output, "[%s]", k.ID)
	_, _ = fmt.Fprintf(output, " %s\n  %s\n", k.Question, k.Answer)
	_, _ = fmt.Fprintf(output, "  topic=%q confidence=%.2f source=%s\n", k.Topic, k.Confidence, k.Source)
}

func printImportResult(label string, r model.ImportResult) {
	_, _ = green.Fprintf(output, "%s: ", label)
	_, _ = fmt.Fprintf(output, "merged=%d skipped=%d invalid=%d failed=%d\n", r.Merged, r.Skipped, r.Invalid, r.Failed)
}

func printPullResult(r model.PullResult) {
	if r.Err != nil {
		_, _ = red.Fprintf(output, "%s: ", r.Peer)
		_, _ = fmt.Fprintf(output, "%v\n", r.Err)
		return
	}
	printImportResult(fmt.Sprintf("%s (%s)", r.Peer, r.DeviceID), r.Result)
}
