package api

import (
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dolittle/data-pipeline/pkg/queryapi"
	"github.com/dolittle/data-pipeline/pkg/storage"
)

var serverCMD = &cobra.Command{
	Use:   "server",
	Short: "Server for the data api",
	Run: func(cmd *cobra.Command, args []string) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetOutput(os.Stdout)

		logContext := logrus.WithField("service", "query-api")
		listenOn := viper.GetString("api.server.listenOn")

		repo := storage.NewMongoRepo(storage.Config{
			URI: storage.MongoURI(
				viper.GetString("api.mongodb.username"),
				viper.GetString("api.mongodb.password"),
				viper.GetString("api.mongodb.host"),
				viper.GetInt("api.mongodb.port"),
				viper.GetString("api.mongodb.database"),
			),
			Database: viper.GetString("api.mongodb.database"),
		}, logContext.WithField("context", "store"))

		srv := queryapi.NewServer(listenOn, repo, logContext)

		logContext.WithFields(logrus.Fields{
			"listenOn": listenOn,
		}).Info("starting server")
		log.Fatal(srv.ListenAndServe())
	},
}

func init() {
	viper.SetDefault("api.server.listenOn", "0.0.0.0:8080")
	viper.SetDefault("api.mongodb.host", "mongodb")
	viper.SetDefault("api.mongodb.port", 27017)
	viper.SetDefault("api.mongodb.username", "sparkuser")
	viper.SetDefault("api.mongodb.password", "sparkpass123")
	viper.SetDefault("api.mongodb.database", "sparkdata")

	viper.BindEnv("api.server.listenOn", "LISTEN_ON")
	viper.BindEnv("api.mongodb.host", "MONGODB_HOST")
	viper.BindEnv("api.mongodb.port", "MONGODB_PORT")
	viper.BindEnv("api.mongodb.username", "MONGODB_USERNAME")
	viper.BindEnv("api.mongodb.password", "MONGODB_PASSWORD")
	viper.BindEnv("api.mongodb.database", "MONGODB_DATABASE")
}
