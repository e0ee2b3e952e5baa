package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "primerbatch",
	Short: "Batch Primer-BLAST submission orchestrator",
	Long: `Primerbatch reads genomic coordinates from a file, normalizes and
optionally converts them between assemblies, then drives concurrent
Primer-BLAST submissions through headless browser sessions with
retry, backoff, and per-line outcome reporting.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/primerbatch/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("PRIMERBATCH")
	// Replace dots with underscores for nested keys in env vars
	// e.g., PRIMERBATCH_BATCH_WORKERS for batch.workers
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
