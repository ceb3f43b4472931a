package orchestrator

import (
	"context"
	"errors"
	"testing"
)

func TestDiagnoseRootCause_FencedJSON(t *testing.T) {
	llm := defaultCompleter()
	llm.rootCause = "```json\n{\"root_cause\":\"billing error\"}\n```"
	p := newTestPipeline(newFakeStore(), &fakeTranscriber{}, llm)

	rc, err := p.diagnoseRootCause(context.Background(), testTranscript())
	if err != nil {
		t.Fatalf("diagnoseRootCause() error: %v", err)
	}
	if rc.RootCause != "billing error" {
		t.Errorf("root_cause = %q, want fence-stripped value", rc.RootCause)
	}
}

func TestDiagnoseRootCause_UnparseableReturnsPlaceholder(t *testing.T) {
	llm := defaultCompleter()
	llm.rootCause = "the problem was, broadly speaking, everything"
	p := newTestPipeline(newFakeStore(), &fakeTranscriber{}, llm)

	rc, err := p.diagnoseRootCause(context.Background(), testTranscript())
	if !errors.Is(err, ErrUnparseableResponse) {
		t.Fatalf("err = %v, want ErrUnparseableResponse", err)
	}
	if rc == nil || rc.RootCause != rootCausePlaceholder {
		t.Fatalf("rc = %+v, want placeholder diagnosis", rc)
	}
	if rc.Raw == "" {
		t.Error("raw model text not preserved")
	}
}

func TestDiagnoseRootCause_EmptyFieldTreatedUnparseable(t *testing.T) {
	llm := defaultCompleter()
	llm.rootCause = `{"something_else": "x"}`
	p := newTestPipeline(newFakeStore(), &fakeTranscriber{}, llm)

	rc, err := p.diagnoseRootCause(context.Background(), testTranscript())
	if !errors.Is(err, ErrUnparseableResponse) {
		t.Fatalf("err = %v, want ErrUnparseableResponse", err)
	}
	if rc.RootCause != rootCausePlaceholder {
		t.Errorf("root_cause = %q, want placeholder", rc.RootCause)
	}
}

func TestDiagnoseRootCause_BackendFailure(t *testing.T) {
	llm := defaultCompleter()
	llm.err = errors.New("down")
	p := newTestPipeline(newFakeStore(), &fakeTranscriber{}, llm)

	_, err := p.diagnoseRootCause(context.Background(), testTranscript())
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("err = %v, want ErrBackendUnavailable", err)
	}
}
