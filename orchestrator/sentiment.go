package orchestrator

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dedsec995/sage/clients"
	"github.com/dedsec995/sage/session"
)

const sentimentSystemPrompt = `You are a precise emotion detection model for customer conversations. Analyze the following 1-minute transcript and identify the dominant emotion clearly. Differentiate carefully between: Anger (aggressive, raised voice), Frustration (annoyed or impatient tone), Calm (neutral or polite tone), Apology (expressing regret), and Satisfaction (happy or thankful tone). Return only JSON: {"label": <emotion>, "score": <0-1>}.`

// bucketByMinute groups utterances into non-overlapping, left-closed minute
// windows keyed by floor(start/60), preserving transcript order within each
// bucket. Returns the populated minute indices in ascending order.
func bucketByMinute(utts []session.Utterance) ([]int, map[int][]session.Utterance) {
	buckets := make(map[int][]session.Utterance)
	for _, u := range utts {
		m := int(math.Floor(u.Start / 60))
		buckets[m] = append(buckets[m], u)
	}
	minutes := make([]int, 0, len(buckets))
	for m := range buckets {
		minutes = append(minutes, m)
	}
	sort.Ints(minutes)
	return minutes, buckets
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// scoreSentiment classifies each populated minute of the call and
// aggregates the timeline into an overall verdict: the most frequent label
// wins (ties to the label seen first in minute order), and the overall
// score is the mean of that label's bucket scores.
func (p *Pipeline) scoreSentiment(ctx context.Context, transcript []session.Utterance) (*session.SentimentResult, error) {
	if len(transcript) == 0 {
		return nil, fmt.Errorf("sentiment: empty transcript: %w", ErrMissingInput)
	}

	minutes, buckets := bucketByMinute(transcript)

	timeline := make([]session.TimelineEntry, 0, len(minutes))
	for _, m := range minutes {
		msgs := buckets[m]
		parts := make([]string, 0, len(msgs))
		for _, u := range msgs {
			parts = append(parts, u.Speaker+": "+u.Text)
		}

		raw, err := p.complete(ctx, []clients.Message{
			{Role: "system", Content: sentimentSystemPrompt},
			{Role: "user", Content: strings.Join(parts, " ")},
		})
		if err != nil {
			return nil, classify("sentiment", err)
		}

		var verdict struct {
			Label string  `json:"label"`
			Score float64 `json:"score"`
		}
		label, score := "Calm", 0.5
		if perr := clients.ParseFencedJSON(raw, &verdict); perr == nil && verdict.Label != "" {
			label = verdict.Label
			score = verdict.Score
		}

		timeline = append(timeline, session.TimelineEntry{
			Minute:       fmt.Sprintf("%d to %d", m, m+1),
			Label:        label,
			Score:        round2(score),
			MessageCount: len(msgs),
		})
	}

	overall, overallScore := aggregateTimeline(timeline)
	return &session.SentimentResult{
		Overall:      overall,
		OverallScore: overallScore,
		Granularity:  "1-minute",
		Timeline:     timeline,
	}, nil
}

// aggregateTimeline picks the modal label, breaking ties in favor of the
// first-encountered label, and averages the scores of its buckets.
func aggregateTimeline(timeline []session.TimelineEntry) (string, float64) {
	counts := make(map[string]int)
	sums := make(map[string]float64)
	var order []string
	for _, e := range timeline {
		if counts[e.Label] == 0 {
			order = append(order, e.Label)
		}
		counts[e.Label]++
		sums[e.Label] += e.Score
	}

	var overall string
	for _, l := range order {
		if overall == "" || counts[l] > counts[overall] {
			overall = l
		}
	}
	if overall == "" {
		return "", 0
	}
	return overall, round2(sums[overall] / float64(counts[overall]))
}
