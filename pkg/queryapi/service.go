package queryapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/dolittle/data-pipeline/pkg/storage"
	"github.com/dolittle/data-pipeline/pkg/utils"
)

const (
	defaultLimit = 10
	defaultSkip  = 0
)

// Repo is the read surface the API needs from the store. No handler ever
// writes.
type Repo interface {
	Find(ctx context.Context, skip int64, limit int64) ([]storage.Document, error)
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id string) (storage.Document, error)
	Ready(ctx context.Context) bool
}

type HTTPDataResponse struct {
	Count int                `json:"count"`
	Data  []storage.Document `json:"data"`
}

type HTTPStatsResponse struct {
	TotalRecords int64  `json:"total_records"`
	Timestamp    string `json:"timestamp"`
}

type HTTPStatusResponse struct {
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type HTTPServiceResponse struct {
	Service   string            `json:"service"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

type service struct {
	repo       Repo
	logContext logrus.FieldLogger
}

func NewService(repo Repo, logContext logrus.FieldLogger) *service {
	return &service{
		repo:       repo,
		logContext: logContext,
	}
}

func (s *service) Root(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, HTTPServiceResponse{
		Service: "Data Processing API",
		Status:  "running",
		Endpoints: map[string]string{
			"health": "/health",
			"ready":  "/ready",
			"data":   "/data",
			"stats":  "/stats",
		},
	})
}

// Health reports process liveness only, it never looks at the store.
func (s *service) Health(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, HTTPStatusResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready reflects real store connectivity. Not ready is still a 200, the
// body carries the verdict.
func (s *service) Ready(w http.ResponseWriter, r *http.Request) {
	if !s.repo.Ready(r.Context()) {
		utils.RespondWithJSON(w, http.StatusOK, HTTPStatusResponse{
			Status: "not ready",
			Reason: "MongoDB not connected",
		})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, HTTPStatusResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *service) GetData(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultLimit)
	skip := queryInt(r, "skip", defaultSkip)

	documents, err := s.repo.Find(r.Context(), skip, limit)
	if err != nil {
		s.respondWithStoreError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, HTTPDataResponse{
		Count: len(documents),
		Data:  documents,
	})
}

func (s *service) GetRecord(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	recordID := vars["recordID"]

	document, err := s.repo.GetByID(r.Context(), recordID)
	if err != nil {
		s.respondWithStoreError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, document)
}

func (s *service) GetStats(w http.ResponseWriter, r *http.Request) {
	total, err := s.repo.Count(r.Context())
	if err != nil {
		s.respondWithStoreError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, HTTPStatsResponse{
		TotalRecords: total,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *service) respondWithStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrUnavailable):
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Database not available")
	case errors.Is(err, storage.ErrInvalidID):
		utils.RespondWithError(w, http.StatusBadRequest, "Malformed record id")
	case errors.Is(err, storage.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Record not found")
	default:
		s.logContext.WithFields(logrus.Fields{
			"error": err,
		}).Error("store query failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "Unexpected store error")
	}
}

func queryInt(r *http.Request, name string, fallback int64) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
