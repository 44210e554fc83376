package cmd

import (
	"Pantry-Planner/cmd/config"
	migration "Pantry-Planner/cmd/database/migrate"
	"Pantry-Planner/internal/utils"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var flagConfigFile string

var rootCmd = &cobra.Command{
	Use:   "pantry-planner",
	Short: "Budget-constrained shopping planning backend",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		utils.LoadConfigFrom(flagConfigFile)
	},
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfigFile, "config", "c", "config.yaml", "Path to the YAML config file")
}

func openDB(migrate bool) (*gorm.DB, error) {
	db, err := config.ConnectDB()
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := migration.Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}
