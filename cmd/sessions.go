package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List analysis sessions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := newPipeline()
		if err != nil {
			return err
		}
		all, err := store.List()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tSTATUS\tINTENT\tAUDIO")
		for _, s := range all {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				s.ID,
				s.CreatedAt.Format("2006-01-02 15:04"),
				s.State.Status,
				orNA(string(s.State.Intent)),
				orNA(s.State.AudioPath))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}
