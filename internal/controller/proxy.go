package controller

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/rs/zerolog"

	"BoltWatch.dashboard/internal/models"
	"BoltWatch.dashboard/internal/utils"
)

// NewBackendProxy forwards /api/* to the same path on the backend, so the
// dashboard origin also serves the raw bolt and diff endpoints.
func NewBackendProxy(backendURL string, log zerolog.Logger) (http.Handler, error) {
	target, err := url.Parse(backendURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL %q: %w", backendURL, err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		director(req)
		req.Host = target.Host
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("backend proxy error")
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeUpstreamUnavailable, "unable to reach backend", nil, http.StatusBadGateway))
	}
	return proxy, nil
}
