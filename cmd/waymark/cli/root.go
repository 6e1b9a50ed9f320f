package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "waymark",
		Short: "Self-hosted GPS location logger for OwnTracks clients",
		Long: `Waymark ingests location pings from OwnTracks-style mobile clients,
persists them in a relational store (SQLite by default, PostgreSQL or MySQL
via DATABASE_URL), and exposes API-key-authenticated history queries.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./waymark.yaml)")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory for the SQLite store (default: ~/.waymark)")

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newKeyCmd())
	cmd.AddCommand(newAdminCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))

	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("waymark")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.waymark")
	}

	viper.SetEnvPrefix("WAYMARK")
	viper.AutomaticEnv()

	// The deployment convention is a bare DATABASE_URL env var; honor it
	// alongside WAYMARK_DATABASE_URL and the config file key.
	viper.BindEnv("database.url", "WAYMARK_DATABASE_URL", "DATABASE_URL")

	viper.ReadInConfig() // Ignore error - config file is optional
}
