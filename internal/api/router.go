package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"structwatch/internal/api/handlers"
)

type Dependencies struct {
	HealthHandler *handlers.HealthHandler
	StatusHandler *handlers.StatusHandler
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	router.GET("/health", wrap(deps.HealthHandler.Check))
	router.GET("/status", wrap(deps.StatusHandler.Get))

	return router
}

func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		handler(w, r)
	}
}
