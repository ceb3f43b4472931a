package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dedsec995/sage/clients"
	"github.com/dedsec995/sage/session"
)

const followupSystemPrompt = `You are Sage, a friendly and intelligent assistant for analyzing bank customer-service calls. Answer the user's question using only the analysis below as grounding context. Be concise and specific.

**Intent:** %s
**Root Cause:** %s
**Sentiment:** %s
**Analysis Report:**
%s`

// Ask answers a follow-up question grounded in the finished analysis. The
// question is recorded before anything else; a session that is not Ready
// is rejected rather than answered ungrounded. The only state mutation is
// the history append.
func (p *Pipeline) Ask(ctx context.Context, id, question string) (string, error) {
	unlock := p.lock(id)
	defer unlock()

	sess, err := p.GetState(id)
	if err != nil {
		return "", err
	}

	if err := p.store.AppendInteraction(id, session.ActionUserQuery, question); err != nil {
		return "", err
	}

	st := sess.State
	if st.Status != session.StatusReady || st.AnalysisReport == "" {
		return "", fmt.Errorf("session %s is %s: %w", id, st.Status, ErrNotReady)
	}

	sentiment, err := json.Marshal(st.Sentiment)
	if err != nil {
		return "", fmt.Errorf("follow-up: encode sentiment: %w", err)
	}

	answer, err := p.complete(ctx, []clients.Message{
		{Role: "system", Content: fmt.Sprintf(followupSystemPrompt,
			st.Intent, st.RootCause.RootCause, sentiment, st.AnalysisReport)},
		{Role: "user", Content: question},
	})
	if err != nil {
		return "", classify("follow-up", err)
	}

	if err := p.store.AppendInteraction(id, session.ActionAgentResponse, answer); err != nil {
		return "", err
	}
	return answer, nil
}
