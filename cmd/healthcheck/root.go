package healthcheck

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Standalone liveness responder",
	Long:  ``,
}

func init() {
	RootCmd.AddCommand(serverCMD)
}
