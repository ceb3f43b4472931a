package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var analyzeSession string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <audio-file>",
	Short: "Run the full analysis pipeline on a call recording",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, store, err := newPipeline()
		if err != nil {
			return err
		}

		id := analyzeSession
		if id == "" {
			sess, err := store.Create(cfg.Owner)
			if err != nil {
				return err
			}
			id = sess.ID
			log.WithField("session", id).Info("created session")
		}

		audio, err := stageAudio(cfg.Paths.Uploads, id, args[0])
		if err != nil {
			return err
		}

		st, err := p.StartAnalysis(cmd.Context(), id, audio)
		if err != nil {
			return err
		}

		fmt.Printf("session: %s\n\n%s\n", id, st.AnalysisReport)
		return nil
	},
}

// stageAudio copies the recording into the uploads directory under the
// session id, giving the pipeline a stable audio reference that survives
// the source file moving. Re-staging the same session reuses its copy.
func stageAudio(uploadsDir, sessionID, src string) (string, error) {
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("uploads dir: %w", err)
	}
	dst := filepath.Join(uploadsDir, sessionID+filepath.Ext(src))
	if _, err := os.Stat(dst); err == nil {
		return dst, nil
	}

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("stage %s: %w", src, err)
	}
	return dst, nil
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeSession, "session", "s", "", "existing session id to analyze into (retries a failed run)")
	rootCmd.AddCommand(analyzeCmd)
}
