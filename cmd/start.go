package cmd

import (
	"github.com/rs/zerolog/log"

	"gitlab.com/paramountdax-exchange/affiliate_api/cmd/commands"
	"gitlab.com/paramountdax-exchange/affiliate_api/config"
	"gitlab.com/paramountdax-exchange/affiliate_api/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var skipMigrations bool

func init() {
	startCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "start without upgrading the database schema")
	rootCmd.AddCommand(startCmd)
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the affiliate api",
	Long:  `Upgrade the database schema, start the background jobs and serve the http api until a termination signal is received`,
	Run: func(cmd *cobra.Command, args []string) {
		// load server configuration from server
		log.Debug().Msg("Loading server configuration")
		if viper.ConfigFileUsed() != "" {
			log.Debug().Str("section", "init").Str("path", viper.ConfigFileUsed()).Msg("Configuration file loaded")
		}
		cfg := config.LoadConfig(viper.GetViper())
		if !skipMigrations {
			log.Debug().Msg("Running migrations")
			commands.Migrate(cfg)
		}

		// start a new server
		log.Debug().Str("section", "init").Msg("Starting new server instance")
		srv := server.NewServer(cfg)
		log.Info().Str("section", "init").Msg("Listening for incoming requests")
		srv.Listen()
	},
}
