package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/dedsec995/sage/session"
)

func TestBucketByMinute_TwoBuckets(t *testing.T) {
	minutes, buckets := bucketByMinute(testTranscript())

	if len(minutes) != 2 || minutes[0] != 0 || minutes[1] != 1 {
		t.Fatalf("minutes = %v, want [0 1]", minutes)
	}
	if len(buckets[0]) != 1 || len(buckets[1]) != 1 {
		t.Errorf("bucket sizes = %d/%d, want 1/1", len(buckets[0]), len(buckets[1]))
	}
}

func TestBucketByMinute_CoversAllUtterances(t *testing.T) {
	utts := []session.Utterance{
		{Start: 5, Speaker: "A", Text: "a"},
		{Start: 30, Speaker: "B", Text: "b"},
		{Start: 59.9, Speaker: "A", Text: "c"},
		{Start: 60, Speaker: "B", Text: "d"},
		{Start: 200, Speaker: "A", Text: "e"},
	}
	minutes, buckets := bucketByMinute(utts)

	total := 0
	for _, m := range minutes {
		total += len(buckets[m])
	}
	if total != len(utts) {
		t.Errorf("sum(message_count) = %d, want %d", total, len(utts))
	}
	// left-closed: 59.9 belongs to minute 0, 60 to minute 1
	if len(buckets[0]) != 3 {
		t.Errorf("minute 0 holds %d utterances, want 3", len(buckets[0]))
	}
	if len(buckets[1]) != 1 {
		t.Errorf("minute 1 holds %d utterances, want 1", len(buckets[1]))
	}
	// only populated minutes appear
	for _, m := range minutes {
		if len(buckets[m]) == 0 {
			t.Errorf("minute %d present with no utterances", m)
		}
	}
	if _, ok := buckets[2]; ok {
		t.Error("empty minute 2 present in buckets")
	}
	// order within a bucket follows the transcript
	if buckets[0][0].Text != "a" || buckets[0][2].Text != "c" {
		t.Error("bucket lost transcript order")
	}
}

func TestAggregateTimeline_ModeAndMean(t *testing.T) {
	timeline := []session.TimelineEntry{
		{Minute: "0 to 1", Label: "Calm", Score: 0.8},
		{Minute: "1 to 2", Label: "Anger", Score: 0.9},
		{Minute: "2 to 3", Label: "Calm", Score: 0.7},
	}
	overall, score := aggregateTimeline(timeline)
	if overall != "Calm" {
		t.Errorf("overall = %s, want Calm", overall)
	}
	// mean over Calm buckets only: (0.8+0.7)/2
	if score != 0.75 {
		t.Errorf("score = %v, want 0.75", score)
	}
}

func TestAggregateTimeline_TieGoesToFirstSeen(t *testing.T) {
	timeline := []session.TimelineEntry{
		{Minute: "0 to 1", Label: "Frustration", Score: 0.6},
		{Minute: "1 to 2", Label: "Satisfaction", Score: 0.9},
	}
	overall, score := aggregateTimeline(timeline)
	if overall != "Frustration" {
		t.Errorf("overall = %s, want first-seen Frustration on tie", overall)
	}
	if score != 0.6 {
		t.Errorf("score = %v, want 0.6", score)
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0.456, 0.46},
		{0.454, 0.45},
		{1, 1},
		{0.005, 0.01},
	}
	for _, c := range cases {
		if got := round2(c.in); got != c.want {
			t.Errorf("round2(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestScoreSentiment_Timeline(t *testing.T) {
	llm := defaultCompleter()
	llm.sentiment = "```json\n{\"label\": \"Satisfaction\", \"score\": 0.912}\n```"
	p := newTestPipeline(newFakeStore(), &fakeTranscriber{}, llm)

	res, err := p.scoreSentiment(context.Background(), testTranscript())
	if err != nil {
		t.Fatalf("scoreSentiment() error: %v", err)
	}

	if len(res.Timeline) != 2 {
		t.Fatalf("timeline = %d entries, want 2", len(res.Timeline))
	}
	if res.Timeline[0].Minute != "0 to 1" || res.Timeline[1].Minute != "1 to 2" {
		t.Errorf("minute labels = %q, %q", res.Timeline[0].Minute, res.Timeline[1].Minute)
	}
	for _, e := range res.Timeline {
		if e.MessageCount != 1 {
			t.Errorf("%s message_count = %d, want 1", e.Minute, e.MessageCount)
		}
		if e.Label != "Satisfaction" {
			t.Errorf("%s label = %s", e.Minute, e.Label)
		}
		if e.Score != 0.91 {
			t.Errorf("%s score = %v, want 0.91 after rounding", e.Minute, e.Score)
		}
	}
	if res.Overall != "Satisfaction" || res.OverallScore != 0.91 {
		t.Errorf("overall = %s/%v", res.Overall, res.OverallScore)
	}
	if res.Granularity != "1-minute" {
		t.Errorf("granularity = %q", res.Granularity)
	}
}

func TestScoreSentiment_UnparseableBucketDefaults(t *testing.T) {
	llm := defaultCompleter()
	llm.sentiment = "the customer sounded upset"
	p := newTestPipeline(newFakeStore(), &fakeTranscriber{}, llm)

	res, err := p.scoreSentiment(context.Background(), testTranscript())
	if err != nil {
		t.Fatalf("scoreSentiment() error: %v", err)
	}
	for _, e := range res.Timeline {
		if e.Label != "Calm" || e.Score != 0.5 {
			t.Errorf("%s = %s/%v, want Calm/0.5 default", e.Minute, e.Label, e.Score)
		}
	}
}

func TestScoreSentiment_EmptyTranscript(t *testing.T) {
	p := newTestPipeline(newFakeStore(), &fakeTranscriber{}, defaultCompleter())

	_, err := p.scoreSentiment(context.Background(), nil)
	if !errors.Is(err, ErrMissingInput) {
		t.Fatalf("err = %v, want ErrMissingInput", err)
	}
}

func TestScoreSentiment_BackendFailure(t *testing.T) {
	llm := defaultCompleter()
	llm.err = errors.New("boom")
	p := newTestPipeline(newFakeStore(), &fakeTranscriber{}, llm)

	_, err := p.scoreSentiment(context.Background(), testTranscript())
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("err = %v, want ErrBackendUnavailable", err)
	}
}
