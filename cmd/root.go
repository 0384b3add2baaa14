package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dolittle/data-pipeline/cmd/api"
	"github.com/dolittle/data-pipeline/cmd/consumer"
	"github.com/dolittle/data-pipeline/cmd/healthcheck"
)

var rootCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Pipeline",
	Long:  `Entry point to the services making up the data stream pipeline`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	viper.AutomaticEnv()
	rootCmd.AddCommand(api.RootCmd)
	rootCmd.AddCommand(consumer.RootCmd)
	rootCmd.AddCommand(healthcheck.RootCmd)
}
