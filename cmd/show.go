package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Display a session's analysis state and interaction history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		sess, err := p.GetState(args[0])
		if err != nil {
			return err
		}

		st := sess.State
		fmt.Printf("Session:     %s (owner %s)\n", sess.ID, sess.Owner)
		fmt.Printf("Status:      %s\n", st.Status)
		fmt.Printf("Audio:       %s\n", orNA(st.AudioPath))
		fmt.Printf("Transcribed: %v (%d utterances)\n", st.IsTranscribed, len(st.Transcript))
		fmt.Printf("Intent:      %s\n", orNA(string(st.Intent)))

		if st.Sentiment != nil {
			fmt.Printf("Sentiment:   %s (%.2f, %s)\n", st.Sentiment.Overall, st.Sentiment.OverallScore, st.Sentiment.Granularity)
			for _, e := range st.Sentiment.Timeline {
				fmt.Printf("  %s: %s (score %.2f, %d messages)\n", e.Minute, e.Label, e.Score, e.MessageCount)
			}
		} else {
			fmt.Println("Sentiment:   not analyzed")
		}

		if st.RootCause != nil {
			fmt.Printf("Root cause:  %s\n", st.RootCause.RootCause)
		} else {
			fmt.Println("Root cause:  not analyzed")
		}

		if st.AnalysisReport != "" {
			fmt.Printf("\n%s\n", st.AnalysisReport)
		}

		if len(sess.History) > 0 {
			fmt.Println("\nInteraction history:")
			for i, h := range sess.History {
				payload := h.Payload
				if len(payload) > 100 {
					payload = payload[:97] + "..."
				}
				fmt.Printf("  %d. %s at %s: %q\n", i+1, h.Action, h.Timestamp.Format("2006-01-02 15:04:05"), payload)
			}
		}
		return nil
	},
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func init() {
	rootCmd.AddCommand(showCmd)
}
