package consumer

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "consumer",
	Short: "Ingestion consumer",
	Long:  ``,
}

func init() {
	RootCmd.AddCommand(serverCMD)
	RootCmd.AddCommand(produceCMD)
}
