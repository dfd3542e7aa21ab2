package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gitlab.com/paramountdax-exchange/affiliate_api/cmd/commands"
	"gitlab.com/paramountdax-exchange/affiliate_api/config"
)

var migrateSteps int

func init() {
	migrateCmd.Flags().IntVar(&migrateSteps, "steps", 0, "number of migrations to apply, negative values roll back (default: all pending)")
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Upgrade the database schema",
	Long:  `Apply the pending migrations from ./db/migrations on the writer database`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig(viper.GetViper())
		if migrateSteps != 0 {
			commands.MigrateSteps(cfg, migrateSteps)
			return
		}
		commands.Migrate(cfg)
	},
}
