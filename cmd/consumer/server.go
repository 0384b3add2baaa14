package consumer

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dolittle/data-pipeline/pkg/broker"
	"github.com/dolittle/data-pipeline/pkg/pipeline"
	"github.com/dolittle/data-pipeline/pkg/storage"
)

var serverCMD = &cobra.Command{
	Use:   "server",
	Short: "Run the ingestion consumer",
	Run: func(cmd *cobra.Command, args []string) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetOutput(os.Stdout)

		logContext := logrus.WithField("service", "ingestion-consumer")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		repo := storage.NewMongoRepo(storage.Config{
			URI: storage.MongoURI(
				viper.GetString("consumer.mongodb.username"),
				viper.GetString("consumer.mongodb.password"),
				viper.GetString("consumer.mongodb.host"),
				viper.GetInt("consumer.mongodb.port"),
				viper.GetString("consumer.mongodb.database"),
			),
			Database: viper.GetString("consumer.mongodb.database"),
		}, logContext.WithField("context", "store"))

		// Non-fatal: inserts acquire the connection lazily and failed
		// writes are requeued, so the queue buffers until the store is up.
		if !repo.Ready(ctx) {
			logContext.Warn("MongoDB not reachable yet, continuing with lazy connect")
		}

		client, err := broker.Connect(logContext.WithField("context", "broker"), broker.Config{
			Host:     viper.GetString("consumer.rabbitmq.host"),
			Port:     viper.GetInt("consumer.rabbitmq.port"),
			Username: viper.GetString("consumer.rabbitmq.username"),
			Password: viper.GetString("consumer.rabbitmq.password"),
		})
		if err != nil {
			// Standalone mode: stay alive so orchestration sees a degraded
			// process instead of a crash loop.
			logContext.WithFields(logrus.Fields{
				"error": err,
			}).Error("RabbitMQ connection failed, running in standalone mode")
			<-ctx.Done()
			return
		}
		defer client.Close()

		queue := viper.GetString("consumer.rabbitmq.queue")
		if err := client.DeclareQueue(queue); err != nil {
			logContext.WithFields(logrus.Fields{
				"error": err,
				"queue": queue,
			}).Fatal("declaring queue")
		}

		consumerTag := fmt.Sprintf("ingestion-consumer-%s", uuid.New().String())
		deliveries, err := client.Consume(queue, consumerTag)
		if err != nil {
			logContext.WithFields(logrus.Fields{
				"error": err,
				"queue": queue,
			}).Fatal("starting consume")
		}

		go func() {
			if amqpErr := <-client.NotifyClose(); amqpErr != nil {
				logContext.WithFields(logrus.Fields{
					"error": amqpErr,
				}).Error("broker connection lost")
			}
		}()

		logContext.WithFields(logrus.Fields{
			"queue": queue,
		}).Info("Waiting for messages")

		consumer := pipeline.NewConsumer(repo, logContext)
		if err := consumer.Run(ctx, deliveries); err != nil {
			logContext.WithFields(logrus.Fields{
				"error": err,
			}).Fatal("consume loop stopped")
		}

		logContext.Info("Drained, shutting down")
	},
}

func init() {
	viper.SetDefault("consumer.rabbitmq.host", "rabbitmq")
	viper.SetDefault("consumer.rabbitmq.port", 5672)
	viper.SetDefault("consumer.rabbitmq.username", "admin")
	viper.SetDefault("consumer.rabbitmq.password", "rabbitpass123")
	viper.SetDefault("consumer.rabbitmq.queue", "data-stream")
	viper.SetDefault("consumer.mongodb.host", "mongodb")
	viper.SetDefault("consumer.mongodb.port", 27017)
	viper.SetDefault("consumer.mongodb.username", "sparkuser")
	viper.SetDefault("consumer.mongodb.password", "sparkpass123")
	viper.SetDefault("consumer.mongodb.database", "sparkdata")

	viper.BindEnv("consumer.rabbitmq.host", "RABBITMQ_HOST")
	viper.BindEnv("consumer.rabbitmq.port", "RABBITMQ_PORT")
	viper.BindEnv("consumer.rabbitmq.username", "RABBITMQ_USERNAME")
	viper.BindEnv("consumer.rabbitmq.password", "RABBITMQ_PASSWORD")
	viper.BindEnv("consumer.rabbitmq.queue", "RABBITMQ_QUEUE")
	viper.BindEnv("consumer.mongodb.host", "MONGODB_HOST")
	viper.BindEnv("consumer.mongodb.port", "MONGODB_PORT")
	viper.BindEnv("consumer.mongodb.username", "MONGODB_USERNAME")
	viper.BindEnv("consumer.mongodb.password", "MONGODB_PASSWORD")
	viper.BindEnv("consumer.mongodb.database", "MONGODB_DATABASE")
}
