package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect or rebuild the node catalog",
}

var catalogRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the node catalog cache from the symbol table and plugin dirs",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		if err := env.catalog.Refresh(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "catalog refreshed: %d nodes\n", env.catalog.Len())
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list [prefix]",
	Short: "List catalog entries with their category",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		out := cmd.OutOrStdout()
		for _, name := range env.catalog.WithPrefix(prefix) {
			category, _ := env.catalog.Category(name)
			fmt.Fprintf(out, "%-32s %s\n", name, strings.ToLower(category))
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogRefreshCmd, catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}
