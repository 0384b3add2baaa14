package healthcheck

import (
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dolittle/data-pipeline/pkg/healthcheck"
)

var serverCMD = &cobra.Command{
	Use:   "server",
	Short: "Answer orchestration probes with a fixed healthy body",
	Run: func(cmd *cobra.Command, args []string) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetOutput(os.Stdout)

		logContext := logrus.WithField("service", "healthcheck")
		listenOn := viper.GetString("healthcheck.server.listenOn")

		srv := healthcheck.NewServer(listenOn)

		logContext.WithFields(logrus.Fields{
			"listenOn": listenOn,
		}).Info("starting health check server")
		log.Fatal(srv.ListenAndServe())
	},
}

func init() {
	viper.SetDefault("healthcheck.server.listenOn", "0.0.0.0:8080")
	viper.BindEnv("healthcheck.server.listenOn", "HEALTHCHECK_LISTEN_ON")
}
