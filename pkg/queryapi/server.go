package queryapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/dolittle/data-pipeline/pkg/middleware"
)

// NewServer assembles the query API's router. Handlers are stateless; the
// repo is the only shared resource.
func NewServer(listenOn string, repo Repo, logContext logrus.FieldLogger) *http.Server {
	router := mux.NewRouter()
	service := NewService(repo, logContext)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodOptions,
			http.MethodHead,
			http.MethodGet,
		},
		AllowedHeaders: []string{"*"},
	})

	stdChainBase := alice.New(c.Handler, middleware.LogRequest(logContext))

	router.Handle("/", stdChainBase.ThenFunc(service.Root)).Methods(http.MethodGet)
	router.Handle("/health", stdChainBase.ThenFunc(service.Health)).Methods(http.MethodGet)
	router.Handle("/ready", stdChainBase.ThenFunc(service.Ready)).Methods(http.MethodGet)
	router.Handle("/data", stdChainBase.ThenFunc(service.GetData)).Methods(http.MethodGet)
	router.Handle("/data/{recordID}", stdChainBase.ThenFunc(service.GetRecord)).Methods(http.MethodGet)
	router.Handle("/stats", stdChainBase.ThenFunc(service.GetStats)).Methods(http.MethodGet)

	return &http.Server{
		Handler:      router,
		Addr:         listenOn,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
}
