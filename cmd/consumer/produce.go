package consumer

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dolittle/data-pipeline/pkg/broker"
)

var produceCMD = &cobra.Command{
	Use:   "produce",
	Short: "Publish synthetic sensor readings to the queue",
	Long: `

	RABBITMQ_HOST=localhost \
	RABBITMQ_USERNAME=admin \
	RABBITMQ_PASSWORD=rabbitpass123 \
	PRODUCE_COUNT=1000 \
	go run main.go consumer produce
	`,
	Run: func(cmd *cobra.Command, args []string) {
		logrus.SetFormatter(&logrus.JSONFormatter{})

		logContext := logrus.WithField("service", "producer")

		count := viper.GetInt("consumer.produce.count")
		interval := viper.GetDuration("consumer.produce.interval")
		queue := viper.GetString("consumer.rabbitmq.queue")

		client, err := broker.Connect(logContext, broker.Config{
			Host:     viper.GetString("consumer.rabbitmq.host"),
			Port:     viper.GetInt("consumer.rabbitmq.port"),
			Username: viper.GetString("consumer.rabbitmq.username"),
			Password: viper.GetString("consumer.rabbitmq.password"),
		})
		if err != nil {
			logContext.WithFields(logrus.Fields{
				"error": err,
			}).Fatal("connecting to RabbitMQ")
		}
		defer client.Close()

		if err := client.DeclareQueue(queue); err != nil {
			logContext.WithFields(logrus.Fields{
				"error": err,
				"queue": queue,
			}).Fatal("declaring queue")
		}

		locations := []string{"Paris", "London", "Berlin", "Madrid", "Rome"}

		ctx := context.Background()
		for i := 0; i < count; i++ {
			reading := sensorReading{
				ID:          i,
				SensorID:    gofakeit.Numerify("SENSOR_#"),
				Temperature: round2(gofakeit.Float64Range(15, 30)),
				Humidity:    round2(gofakeit.Float64Range(40, 80)),
				Pressure:    round2(gofakeit.Float64Range(990, 1020)),
				Location:    gofakeit.RandomString(locations),
				Timestamp:   time.Now().Unix(),
			}

			body, _ := json.Marshal(reading)
			if err := client.Publish(ctx, queue, body); err != nil {
				logContext.WithFields(logrus.Fields{
					"error": err,
					"queue": queue,
				}).Fatal("publishing reading")
			}

			if i%50 == 0 {
				logContext.WithFields(logrus.Fields{
					"sent":  i,
					"total": count,
					"queue": queue,
				}).Info("progress")
			}

			time.Sleep(interval)
		}

		logContext.WithFields(logrus.Fields{
			"count": count,
			"queue": queue,
		}).Info("done")
	},
}

type sensorReading struct {
	ID          int     `json:"id"`
	SensorID    string  `json:"sensor_id"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`
	Location    string  `json:"location"`
	Timestamp   int64   `json:"timestamp"`
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func init() {
	viper.SetDefault("consumer.produce.count", 1000)
	viper.SetDefault("consumer.produce.interval", 50*time.Millisecond)

	viper.BindEnv("consumer.produce.count", "PRODUCE_COUNT")
	viper.BindEnv("consumer.produce.interval", "PRODUCE_INTERVAL")
}
