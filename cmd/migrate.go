package cmd

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(_ *cobra.Command, _ []string) error {
		_, err := openDB(true)
		return err
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
