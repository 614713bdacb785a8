package main

import (
	"os"

	"github.com/bastiangx/scriptserve/internal/cli"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// CLI would be mainly used for testing and dbg purposes.
// Any new features or changes should be tested in CLI mode first.
var cliCmd = &cobra.Command{
	Use:   "cli",
	Short: "Try completions interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		log.SetReportTimestamp(false)
		handler := cli.NewInputHandler(env.engineOptions(), os.Stdin, os.Stdout)
		return handler.Start()
	},
}

func init() {
	rootCmd.AddCommand(cliCmd)
}
