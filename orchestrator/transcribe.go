package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dedsec995/sage/session"
)

// transcribe converts the session audio into the ordered, speaker-labeled
// transcript. Failure here is terminal for the run; no analyzer sees a
// partial transcript.
func (p *Pipeline) transcribe(ctx context.Context, st *session.State) error {
	if st.AudioPath == "" {
		return fmt.Errorf("transcription: no audio reference: %w", ErrMissingInput)
	}

	tctx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout())
	defer cancel()

	segs, err := p.asr.Transcribe(tctx, st.AudioPath)
	if err != nil {
		return classify("transcription", err)
	}

	utts := make([]session.Utterance, 0, len(segs))
	for _, u := range segs {
		u.Text = strings.TrimSpace(u.Text)
		if u.Text == "" {
			continue
		}
		utts = append(utts, u)
	}
	if len(utts) == 0 {
		return fmt.Errorf("transcription: no speech in %s: %w", st.AudioPath, ErrMissingInput)
	}
	sort.SliceStable(utts, func(i, j int) bool { return utts[i].Start < utts[j].Start })

	st.Transcript = utts
	st.IsTranscribed = true
	return nil
}
