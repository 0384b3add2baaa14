package api

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "api",
	Short: "Query API over the processed data",
	Long:  ``,
}

func init() {
	RootCmd.AddCommand(serverCMD)
}
