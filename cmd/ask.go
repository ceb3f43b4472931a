package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <session-id> <question...>",
	Short: "Ask a follow-up question about an analyzed call",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		answer, err := p.Ask(cmd.Context(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Println(answer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
