package pipeline_test

import (
	"errors"
	"time"

	"github.com/dolittle/data-pipeline/pkg/pipeline"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Processing stage", func() {

	When("decoding a delivery body", func() {
		It("parses a JSON object into an event", func() {
			event, err := pipeline.Decode([]byte(`{"id":1,"sensor_id":"SENSOR_1","temperature":21.5}`))

			Expect(err).To(BeNil())
			Expect(event["sensor_id"]).To(Equal("SENSOR_1"))
			Expect(event["temperature"]).To(Equal(21.5))
		})

		It("fails with a decode error on a non-JSON payload", func() {
			_, err := pipeline.Decode([]byte("not json at all"))

			Expect(errors.Is(err, pipeline.ErrDecode)).To(BeTrue())
		})

		It("fails with a decode error on JSON that is not an object", func() {
			_, err := pipeline.Decode([]byte(`[1,2,3]`))

			Expect(errors.Is(err, pipeline.ErrDecode)).To(BeTrue())
		})

		It("fails with a decode error on an empty payload", func() {
			_, err := pipeline.Decode(nil)

			Expect(errors.Is(err, pipeline.ErrDecode)).To(BeTrue())
		})
	})

	When("processing a decoded event", func() {
		It("wraps the event unchanged and tags it as processed", func() {
			event := pipeline.DecodedEvent{
				"id":        float64(1),
				"sensor_id": "SENSOR_1",
			}

			before := float64(time.Now().UnixNano()) / float64(time.Second)
			record := pipeline.Process(event)
			after := float64(time.Now().UnixNano()) / float64(time.Second)

			Expect(record.Original).To(Equal(event))
			Expect(record.Status).To(Equal(pipeline.StatusProcessed))
			Expect(record.ProcessedAt).To(BeNumerically(">=", before))
			Expect(record.ProcessedAt).To(BeNumerically("<=", after))
		})
	})
})
