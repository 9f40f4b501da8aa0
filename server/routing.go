package server

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, _ := url.PathUnescape(r.RequestURI)
		log.Info().
			Str("method", r.Method).
			Str("path", path).
			Msg("request")
		next.ServeHTTP(w, r)
	})
}

// ConfigureRouting builds the router for the evaluation API: a root
// description route plus the versioned /v1/validate and /v1/evaluate
// POST endpoints.
func ConfigureRouting() *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware)
	r.NotFoundHandler = http.HandlerFunc(NotFoundHandler)

	r.HandleFunc("/", RootHandler).Methods(http.MethodGet)

	s := r.PathPrefix("/v1").Subrouter()
	s.HandleFunc("/validate", ValidateHandler).Methods(http.MethodPost)
	s.HandleFunc("/evaluate", EvaluateHandler).Methods(http.MethodPost)

	return r
}
