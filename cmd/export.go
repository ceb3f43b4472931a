package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dedsec995/sage/session"
)

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Write a YAML snapshot of a session to the outputs directory",
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
		path, err := session.ExportYAML(cfg.Paths.Outputs, sess)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
