package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dedsec995/sage/clients"
	cfg "github.com/dedsec995/sage/config"
	"github.com/dedsec995/sage/session"
)

// Store is the session persistence the orchestrator needs. *session.Store
// satisfies it.
type Store interface {
	Get(id string) (*session.Session, error)
	UpdateState(id string, st session.State) error
	AppendInteraction(id, action, payload string) error
}

// Pipeline sequences the analysis workflow for one session at a time and
// answers follow-up questions once a report exists.
type Pipeline struct {
	cfg   *cfg.Root
	store Store
	asr   clients.Transcriber
	llm   clients.Completer
	log   *logrus.Logger

	mu       sync.Mutex
	sessions map[string]*sync.Mutex
}

func NewPipeline(c *cfg.Root, store Store, asr clients.Transcriber, llm clients.Completer, log *logrus.Logger) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{
		cfg:      c,
		store:    store,
		asr:      asr,
		llm:      llm,
		log:      log,
		sessions: make(map[string]*sync.Mutex),
	}
}

// lock serializes all work on one session. Unrelated sessions proceed
// independently.
func (p *Pipeline) lock(id string) func() {
	p.mu.Lock()
	m, ok := p.sessions[id]
	if !ok {
		m = &sync.Mutex{}
		p.sessions[id] = m
	}
	p.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// GetState returns the session with its interaction history.
func (p *Pipeline) GetState(id string) (*session.Session, error) {
	sess, err := p.store.Get(id)
	if errors.Is(err, session.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	return sess, err
}

// complete runs one LLM call under the per-call deadline.
func (p *Pipeline) complete(ctx context.Context, msgs []clients.Message) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout())
	defer cancel()
	return p.llm.Complete(cctx, msgs, p.cfg.Services.LLM.Model)
}

// StartAnalysis runs the full pipeline: transcription, the three parallel
// analyzers, then synthesis, persisting state after every stage. A session
// that already holds a report is returned untouched; a failed session is
// re-run from the top.
func (p *Pipeline) StartAnalysis(ctx context.Context, id, audioPath string) (*session.State, error) {
	unlock := p.lock(id)
	defer unlock()

	sess, err := p.GetState(id)
	if err != nil {
		return nil, err
	}
	st := sess.State

	// the audit trail records the attempt before anything can fail
	if err := p.store.AppendInteraction(id, session.ActionUserQuery, "analyze audio: "+audioPath); err != nil {
		return nil, err
	}

	if st.AnalysisReport != "" && (audioPath == "" || audioPath == st.AudioPath) {
		p.log.WithField("session", id).Info("analysis already complete, returning existing report")
		if err := p.store.AppendInteraction(id, session.ActionAgentResponse, st.AnalysisReport); err != nil {
			return nil, err
		}
		return &st, nil
	}
	if st.AudioPath == "" {
		st.AudioPath = audioPath
	} else if audioPath != "" && audioPath != st.AudioPath {
		err := fmt.Errorf("session %s already references %s: %w", id, st.AudioPath, ErrAudioConflict)
		if st.AnalysisReport != "" {
			// a finished session keeps its report and status; record the refusal
			if aerr := p.store.AppendInteraction(id, session.ActionAgentResponse, "analysis failed: "+err.Error()); aerr != nil {
				p.log.WithError(aerr).Error("recording refusal interaction")
			}
			return nil, err
		}
		return nil, p.fail(id, &st, err)
	}
	if st.AudioPath == "" {
		return nil, p.fail(id, &st, fmt.Errorf("no audio reference: %w", ErrMissingInput))
	}

	log := p.log.WithField("session", id)

	// Transcribing
	st.Status = session.StatusTranscribing
	if err := p.persist(id, &st); err != nil {
		return nil, err
	}
	log.WithField("audio", st.AudioPath).Info("transcribing")
	if err := p.transcribe(ctx, &st); err != nil {
		return nil, p.fail(id, &st, err)
	}
	if err := p.persist(id, &st); err != nil {
		return nil, err
	}

	// Analyzing: fan out the three analyzers, join at the barrier
	st.Status = session.StatusAnalyzing
	if err := p.persist(id, &st); err != nil {
		return nil, err
	}
	log.WithField("utterances", len(st.Transcript)).Info("analyzing")
	if err := p.analyze(ctx, &st); err != nil {
		return nil, p.fail(id, &st, err)
	}
	if err := p.persist(id, &st); err != nil {
		return nil, err
	}

	// Synthesizing
	st.Status = session.StatusSynthesizing
	if err := p.persist(id, &st); err != nil {
		return nil, err
	}
	log.Info("synthesizing report")
	if err := p.synthesize(ctx, &st); err != nil {
		return nil, p.fail(id, &st, err)
	}

	st.Status = session.StatusReady
	if err := p.persist(id, &st); err != nil {
		return nil, err
	}
	if err := p.store.AppendInteraction(id, session.ActionAgentResponse, st.AnalysisReport); err != nil {
		return nil, err
	}
	log.Info("report ready")
	return &st, nil
}

// analyze dispatches intent, sentiment, and root cause concurrently. Each
// analyzer owns one state field; outputs land only after all three return.
// An unparseable root cause degrades to its placeholder instead of failing
// the stage.
func (p *Pipeline) analyze(ctx context.Context, st *session.State) error {
	type intentRes struct {
		val session.Intent
		err error
	}
	type sentimentRes struct {
		val *session.SentimentResult
		err error
	}
	type rootCauseRes struct {
		val *session.RootCause
		err error
	}

	intentCh := make(chan intentRes, 1)
	sentimentCh := make(chan sentimentRes, 1)
	rootCauseCh := make(chan rootCauseRes, 1)

	go func() {
		v, err := p.classifyIntent(ctx, st.Transcript)
		intentCh <- intentRes{v, err}
	}()
	go func() {
		v, err := p.scoreSentiment(ctx, st.Transcript)
		sentimentCh <- sentimentRes{v, err}
	}()
	go func() {
		v, err := p.diagnoseRootCause(ctx, st.Transcript)
		rootCauseCh <- rootCauseRes{v, err}
	}()

	// barrier: every analyzer call carries its own deadline, so each
	// receive is bounded
	ir := <-intentCh
	sr := <-sentimentCh
	rr := <-rootCauseCh

	if ir.err != nil {
		return ir.err
	}
	if sr.err != nil {
		return sr.err
	}
	if rr.err != nil {
		if !errors.Is(rr.err, ErrUnparseableResponse) || rr.val == nil {
			return rr.err
		}
		p.log.WithError(rr.err).Warn("root cause degraded to placeholder")
	}

	st.Intent = ir.val
	st.Sentiment = sr.val
	st.RootCause = rr.val
	return nil
}

func (p *Pipeline) persist(id string, st *session.State) error {
	return p.store.UpdateState(id, *st)
}

// fail marks the session failed, records the failure in the audit trail,
// and returns err unchanged. Partial analysis is never promoted to a
// report; the session can be retried from the top.
func (p *Pipeline) fail(id string, st *session.State, err error) error {
	st.Status = session.StatusFailed
	if perr := p.persist(id, st); perr != nil {
		p.log.WithError(perr).Error("persisting failed state")
	}
	if aerr := p.store.AppendInteraction(id, session.ActionAgentResponse, "analysis failed: "+err.Error()); aerr != nil {
		p.log.WithError(aerr).Error("recording failure interaction")
	}
	p.log.WithField("session", id).WithError(err).Error("pipeline failed")
	return err
}

// Handle applies the manager decision rule: audio present and not yet
// analyzed runs the pipeline; anything else is a follow-up question.
func (p *Pipeline) Handle(ctx context.Context, id, message, audioPath string) (string, error) {
	sess, err := p.GetState(id)
	if err != nil {
		return "", err
	}
	if audioPath != "" || (sess.State.AudioPath != "" && sess.State.AnalysisReport == "") {
		st, err := p.StartAnalysis(ctx, id, audioPath)
		if err != nil {
			return "", err
		}
		return st.AnalysisReport, nil
	}
	return p.Ask(ctx, id, message)
}
