package queryapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/dolittle/data-pipeline/pkg/pipeline"
	"github.com/dolittle/data-pipeline/pkg/queryapi"
	"github.com/dolittle/data-pipeline/pkg/storage"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	logrusTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Find(ctx context.Context, skip int64, limit int64) ([]storage.Document, error) {
	args := m.Called(ctx, skip, limit)
	documents, _ := args.Get(0).([]storage.Document)
	return documents, args.Error(1)
}

func (m *mockRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (storage.Document, error) {
	args := m.Called(ctx, id)
	document, _ := args.Get(0).(storage.Document)
	return document, args.Error(1)
}

func (m *mockRepo) Ready(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

var _ = Describe("Query API", func() {
	var (
		repo     *mockRepo
		handler  http.Handler
		recorder *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		logger, _ := logrusTest.NewNullLogger()
		repo = new(mockRepo)
		handler = queryapi.NewServer("localhost:8080", repo, logger).Handler
		recorder = httptest.NewRecorder()
	})

	get := func(target string) {
		request := httptest.NewRequest(http.MethodGet, target, nil)
		handler.ServeHTTP(recorder, request)
	}

	Context("GET /health", func() {
		It("is always healthy, without touching the store", func() {
			get("/health")

			Expect(recorder.Code).To(Equal(http.StatusOK))

			var body map[string]string
			json.Unmarshal(recorder.Body.Bytes(), &body)
			Expect(body["status"]).To(Equal("healthy"))
			Expect(body["timestamp"]).ToNot(BeEmpty())
		})
	})

	Context("GET /ready", func() {
		It("reports ready when the store is reachable", func() {
			repo.On("Ready", mock.Anything).Return(true)

			get("/ready")

			Expect(recorder.Code).To(Equal(http.StatusOK))

			var body map[string]string
			json.Unmarshal(recorder.Body.Bytes(), &body)
			Expect(body["status"]).To(Equal("ready"))
		})

		It("reports not ready with a 200 when the store is down", func() {
			repo.On("Ready", mock.Anything).Return(false)

			get("/ready")

			Expect(recorder.Code).To(Equal(http.StatusOK))

			var body map[string]string
			json.Unmarshal(recorder.Body.Bytes(), &body)
			Expect(body["status"]).To(Equal("not ready"))
			Expect(body["reason"]).To(Equal("MongoDB not connected"))
		})
	})

	Context("GET /data", func() {
		documents := []storage.Document{
			{
				ID:          "61f0c4045cf21a81b74ba9ff",
				Original:    pipeline.DecodedEvent{"sensor_id": "SENSOR_1"},
				ProcessedAt: 1643298820.5,
				Status:      "processed",
			},
		}

		It("defaults to limit 10 and skip 0", func() {
			repo.On("Find", mock.Anything, int64(0), int64(10)).Return(documents, nil)

			get("/data")

			Expect(recorder.Code).To(Equal(http.StatusOK))

			var body queryapi.HTTPDataResponse
			json.Unmarshal(recorder.Body.Bytes(), &body)
			Expect(body.Count).To(Equal(1))
			Expect(body.Data[0].Original["sensor_id"]).To(Equal("SENSOR_1"))
			repo.AssertExpectations(GinkgoT())
		})

		It("passes limit and skip through", func() {
			repo.On("Find", mock.Anything, int64(3), int64(2)).Return([]storage.Document{}, nil)

			get("/data?limit=2&skip=3")

			Expect(recorder.Code).To(Equal(http.StatusOK))
			repo.AssertExpectations(GinkgoT())
		})

		It("returns 503 when the store is unavailable", func() {
			repo.On("Find", mock.Anything, int64(0), int64(10)).Return(nil, storage.ErrUnavailable)

			get("/data")

			Expect(recorder.Code).To(Equal(http.StatusServiceUnavailable))
		})

		It("returns 500 on an unexpected store error", func() {
			repo.On("Find", mock.Anything, int64(0), int64(10)).Return(nil, errors.New("boom"))

			get("/data")

			Expect(recorder.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Context("GET /data/{id}", func() {
		It("returns the document with its id stringified", func() {
			document := storage.Document{
				ID:       "61f0c4045cf21a81b74ba9ff",
				Original: pipeline.DecodedEvent{"sensor_id": "SENSOR_1"},
				Status:   "processed",
			}
			repo.On("GetByID", mock.Anything, "61f0c4045cf21a81b74ba9ff").Return(document, nil)

			get("/data/61f0c4045cf21a81b74ba9ff")

			Expect(recorder.Code).To(Equal(http.StatusOK))

			var body storage.Document
			json.Unmarshal(recorder.Body.Bytes(), &body)
			Expect(body.ID).To(Equal("61f0c4045cf21a81b74ba9ff"))
		})

		It("returns 400 for a malformed id", func() {
			repo.On("GetByID", mock.Anything, "not-a-valid-id").Return(storage.Document{}, storage.ErrInvalidID)

			get("/data/not-a-valid-id")

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 for a well-formed but absent id", func() {
			repo.On("GetByID", mock.Anything, "61f0c4045cf21a81b74ba900").Return(storage.Document{}, storage.ErrNotFound)

			get("/data/61f0c4045cf21a81b74ba900")

			Expect(recorder.Code).To(Equal(http.StatusNotFound))
		})

		It("returns 503 when the store is unavailable", func() {
			repo.On("GetByID", mock.Anything, "61f0c4045cf21a81b74ba9ff").Return(storage.Document{}, storage.ErrUnavailable)

			get("/data/61f0c4045cf21a81b74ba9ff")

			Expect(recorder.Code).To(Equal(http.StatusServiceUnavailable))
		})
	})

	Context("GET /stats", func() {
		It("returns the total record count", func() {
			repo.On("Count", mock.Anything).Return(int64(42), nil)

			get("/stats")

			Expect(recorder.Code).To(Equal(http.StatusOK))

			var body queryapi.HTTPStatsResponse
			json.Unmarshal(recorder.Body.Bytes(), &body)
			Expect(body.TotalRecords).To(Equal(int64(42)))
			Expect(body.Timestamp).ToNot(BeEmpty())
		})

		It("returns 503 when the store is unavailable", func() {
			repo.On("Count", mock.Anything).Return(int64(0), storage.ErrUnavailable)

			get("/stats")

			Expect(recorder.Code).To(Equal(http.StatusServiceUnavailable))
		})
	})

	Context("GET /", func() {
		It("describes the service", func() {
			get("/")

			Expect(recorder.Code).To(Equal(http.StatusOK))

			var body queryapi.HTTPServiceResponse
			json.Unmarshal(recorder.Body.Bytes(), &body)
			Expect(body.Status).To(Equal("running"))
			Expect(body.Endpoints).To(HaveKeyWithValue("data", "/data"))
		})
	})
})
