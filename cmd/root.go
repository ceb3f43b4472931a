package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dedsec995/sage/clients"
	"github.com/dedsec995/sage/config"
	"github.com/dedsec995/sage/orchestrator"
	"github.com/dedsec995/sage/session"
)

var (
	cfg *config.Root
	log = logrus.New()
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sage",
	Short: "Analyze customer-service call recordings",
	Long: `Sage transcribes bank customer-service calls with speaker attribution,
classifies caller intent, scores sentiment minute by minute, diagnoses the
root cause, and synthesizes a narrative report. Once a report is ready,
follow-up questions are answered grounded in the analysis.

Quick start:
  sage analyze call.wav            # run the full analysis pipeline
  sage ask <session-id> "..."      # ask a follow-up question
  sage show <session-id>           # inspect session state
  sage sessions                    # list analyzed sessions`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if lvl, lerr := logrus.ParseLevel(cfg.Pipeline.LogLvl); lerr == nil {
			log.SetLevel(lvl)
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", friendly(err))
		os.Exit(1)
	}
}

// newPipeline wires the store and service clients into the orchestrator.
func newPipeline() (*orchestrator.Pipeline, *session.Store, error) {
	store, err := session.Open(cfg.Paths.DB)
	if err != nil {
		return nil, nil, err
	}
	h := clients.NewHTTP()
	asr := clients.NewOpenAITranscriber(h,
		cfg.Services.Transcription.URL,
		cfg.Services.Transcription.Model,
		cfg.Services.Transcription.APIKey)
	llm := clients.NewOpenAICompleter(h, cfg.Services.LLM.URL, cfg.Services.LLM.APIKey)
	return orchestrator.NewPipeline(cfg, store, asr, llm, log), store, nil
}

// friendly maps stage failures onto user-facing messages; internals never
// leak raw to the terminal unless verbose logging shows them.
func friendly(err error) string {
	switch {
	case errors.Is(err, orchestrator.ErrMissingInput):
		return "no usable audio or transcript for this session"
	case errors.Is(err, orchestrator.ErrServiceTimeout):
		return "an analysis service took too long to respond; try again"
	case errors.Is(err, orchestrator.ErrBackendUnavailable):
		return "an analysis service is unavailable; check connectivity and API key"
	case errors.Is(err, orchestrator.ErrUnparseableResponse):
		return "the analysis service returned an unreadable result"
	case errors.Is(err, orchestrator.ErrIncompleteAnalysis):
		return "analysis is incomplete; re-run the pipeline for this session"
	case errors.Is(err, orchestrator.ErrNotReady):
		return "the analysis report is not ready yet; run analyze first"
	case errors.Is(err, orchestrator.ErrAudioConflict):
		return "this session already references a different recording; start a new session"
	case errors.Is(err, orchestrator.ErrSessionNotFound):
		return "unknown session id"
	default:
		return err.Error()
	}
}
