package healthcheck

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dolittle/data-pipeline/pkg/utils"
)

type HTTPHealthResponse struct {
	Status string `json:"status"`
}

// NewServer answers orchestration-level probes for host processes that have
// no HTTP surface of their own. It is intentionally dumb: a fixed healthy
// body on /health and /ready, 404 everywhere else. Real store readiness
// lives on the query API's /ready, not here.
func NewServer(listenOn string) *http.Server {
	router := mux.NewRouter()
	router.HandleFunc("/health", respondHealthy).Methods(http.MethodGet)
	router.HandleFunc("/ready", respondHealthy).Methods(http.MethodGet)

	return &http.Server{
		Handler:      router,
		Addr:         listenOn,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
}

func respondHealthy(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, HTTPHealthResponse{
		Status: "healthy",
	})
}
