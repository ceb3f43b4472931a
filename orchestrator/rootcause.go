package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/dedsec995/sage/clients"
	"github.com/dedsec995/sage/session"
)

const rootCausePrompt = `Analyze the following conversation from a customer service call and identify the root cause of the customer's issue. The root cause should be a concise summary of the underlying problem.

Conversation:
%s

Respond with a JSON object with a single key 'root_cause'.`

// rootCausePlaceholder is written when the model reply cannot be parsed,
// so synthesis always has something to work with.
const rootCausePlaceholder = "Root cause could not be determined from the call."

// diagnoseRootCause summarizes the underlying problem from the
// speaker-agnostic conversation text. A reply that fails the structured
// parse returns the placeholder diagnosis together with
// ErrUnparseableResponse; the raw text is kept for inspection.
func (p *Pipeline) diagnoseRootCause(ctx context.Context, transcript []session.Utterance) (*session.RootCause, error) {
	texts := make([]string, 0, len(transcript))
	for _, u := range transcript {
		texts = append(texts, u.Text)
	}

	raw, err := p.complete(ctx, []clients.Message{
		{Role: "user", Content: fmt.Sprintf(rootCausePrompt, strings.Join(texts, " "))},
	})
	if err != nil {
		return nil, classify("root cause", err)
	}

	var out session.RootCause
	if perr := clients.ParseFencedJSON(raw, &out); perr != nil || out.RootCause == "" {
		return &session.RootCause{RootCause: rootCausePlaceholder, Raw: raw},
			fmt.Errorf("root cause: %w", ErrUnparseableResponse)
	}
	return &out, nil
}
