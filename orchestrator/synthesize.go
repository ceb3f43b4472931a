package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dedsec995/sage/clients"
	"github.com/dedsec995/sage/session"
)

const synthesisPrompt = `Generate a comprehensive summary report for the following customer service call. The report should be well-structured and include the following sections:
1. **Intent:** The customer's primary reason for calling.
2. **Root Cause:** The underlying issue or problem.
3. **Sentiment Analysis:** A summary of the emotional tone and satisfaction levels throughout the call.
4. **Call Transcript:** A summary of the conversation.

**Intent:** %s
**Root Cause:** %s
**Sentiment Details:** %s
**Transcript:**
%s

Generate a detailed report based on this information.`

// synthesize merges the three analyses into the final narrative report.
// It refuses to run before all three outputs exist, degraded or not.
func (p *Pipeline) synthesize(ctx context.Context, st *session.State) error {
	if !st.Analyzed() {
		return fmt.Errorf("synthesis: analyzer outputs missing: %w", ErrIncompleteAnalysis)
	}

	sentiment, err := json.MarshalIndent(st.Sentiment, "", "  ")
	if err != nil {
		return fmt.Errorf("synthesis: encode sentiment: %w", err)
	}

	lines := make([]string, 0, len(st.Transcript))
	for _, u := range st.Transcript {
		lines = append(lines, u.Speaker+": "+u.Text)
	}

	report, err := p.complete(ctx, []clients.Message{
		{Role: "user", Content: fmt.Sprintf(synthesisPrompt,
			st.Intent, st.RootCause.RootCause, sentiment, strings.Join(lines, "\n"))},
	})
	if err != nil {
		return classify("synthesis", err)
	}

	st.AnalysisReport = strings.TrimSpace(report)
	return nil
}
