package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/dedsec995/sage/clients"
	"github.com/dedsec995/sage/session"
)

const intentSystemPrompt = `You are an expert in analyzing banking call transcripts. Identify the primary intent of the customer from the provided transcript.

You must classify the intent into exactly one of the following 14 categories:
%s

Your output MUST be a single value being one of the 14 categories as a string, e.g. "AccountOpening". Do not provide any other explanation or text in your response.`

// classifyIntent resolves the transcript to exactly one of the fixed
// categories. Anything the model returns outside the closed set falls back
// to GeneralInquiry.
func (p *Pipeline) classifyIntent(ctx context.Context, transcript []session.Utterance) (session.Intent, error) {
	var cats strings.Builder
	for _, c := range session.Intents {
		cats.WriteString("- ")
		cats.WriteString(string(c))
		cats.WriteString("\n")
	}

	var convo strings.Builder
	for _, u := range transcript {
		convo.WriteString(u.Speaker)
		convo.WriteString(": ")
		convo.WriteString(u.Text)
		convo.WriteString("\n")
	}

	raw, err := p.complete(ctx, []clients.Message{
		{Role: "system", Content: fmt.Sprintf(intentSystemPrompt, cats.String())},
		{Role: "user", Content: convo.String()},
	})
	if err != nil {
		return "", classify("intent", err)
	}
	return normalizeIntent(raw), nil
}

// normalizeIntent trims fences, quotes, and punctuation from the model
// reply and matches it case-insensitively against the category set.
func normalizeIntent(raw string) session.Intent {
	s := clients.StripFences(raw)
	s = strings.Trim(s, "\"'` .")
	for _, c := range session.Intents {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	return session.IntentGeneralInquiry
}
