package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"BoltWatch.dashboard/internal/controller"
)

// SetupRouter defines all dashboard routes. proxy may be nil to disable
// the /api passthrough.
func SetupRouter(c *controller.DashboardController, proxy http.Handler, log zerolog.Logger) *mux.Router {
	stack := []mux.MiddlewareFunc{middleware.RequestID, middleware.RealIP, RequestLogger(log), Recoverer(log)}

	router := mux.NewRouter()
	router.Use(stack...)

	router.HandleFunc("/", c.HandleDashboard).Methods(http.MethodGet)
	router.HandleFunc("/chart.svg", c.HandleChart).Methods(http.MethodGet)
	router.HandleFunc("/health", c.HandleHealth).Methods(http.MethodGet)

	// Full paths on the root router: routes of a PathPrefix subrouter lose
	// the method mismatch of earlier siblings and answer 404 instead of 405.
	router.HandleFunc("/v1/view", c.HandleView).Methods(http.MethodGet)
	router.HandleFunc("/v1/floor/{floor}", c.HandleSelectFloor).Methods(http.MethodPut, http.MethodPost)
	router.HandleFunc("/v1/refresh", c.HandleRefresh).Methods(http.MethodPost)

	if proxy != nil {
		router.PathPrefix("/api/").Handler(proxy).Methods(http.MethodGet)
	}

	// mux only runs Use middleware on matched routes.
	router.NotFoundHandler = chain(http.HandlerFunc(c.HandleNotFound), stack)
	router.MethodNotAllowedHandler = chain(http.HandlerFunc(c.HandleMethodNotAllowed), stack)
	return router
}

func chain(h http.Handler, stack []mux.MiddlewareFunc) http.Handler {
	for i := len(stack) - 1; i >= 0; i-- {
		h = stack[i](h)
	}
	return h
}

// WithCORS wraps h with the CORS policy for the given origins.
func WithCORS(h http.Handler, origins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders: []string{"Content-Type", "floor"},
	})
	return c.Handler(h)
}
