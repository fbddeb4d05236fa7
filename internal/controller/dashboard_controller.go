package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"BoltWatch.dashboard/internal/models"
	"BoltWatch.dashboard/internal/render"
	"BoltWatch.dashboard/internal/service"
	"BoltWatch.dashboard/internal/utils"
)

// DashboardController handles HTTP requests for the floor dashboard.
type DashboardController struct {
	service *service.DashboardService
	log     zerolog.Logger
}

// NewDashboardController creates a new DashboardController.
func NewDashboardController(service *service.DashboardService, log zerolog.Logger) *DashboardController {
	return &DashboardController{
		service: service,
		log:     log,
	}
}

// HandleDashboard renders the HTML page. ?floor switches the floor first
// when it differs from the current one, ?num selects the pager number.
func (c *DashboardController) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	selected, apiErr := parseSelection(r)
	if apiErr != nil {
		utils.RespondWithError(w, *apiErr)
		return
	}

	if raw := r.URL.Query().Get("floor"); raw != "" {
		floor, apiErr := c.parseFloor(raw)
		if apiErr != nil {
			utils.RespondWithError(w, *apiErr)
			return
		}
		if floor != c.service.Floor() {
			// Failures are reflected in the view's fetch status.
			_ = c.selectFloor(r, floor)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := render.Page(w, c.service.View(selected)); err != nil {
		c.log.Error().Err(err).Msg("template error")
	}
}

// HandleChart serves the sampled series of the current floor as SVG.
func (c *DashboardController) HandleChart(w http.ResponseWriter, r *http.Request) {
	view := c.service.View(service.DefaultSelection)
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(render.LineChart(view.Floor, view.Series))
}

// HandleView returns the derived dashboard view as JSON.
func (c *DashboardController) HandleView(w http.ResponseWriter, r *http.Request) {
	selected, apiErr := parseSelection(r)
	if apiErr != nil {
		utils.RespondWithError(w, *apiErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, c.service.View(selected))
}

// HandleSelectFloor switches to the floor in the path and returns the view.
func (c *DashboardController) HandleSelectFloor(w http.ResponseWriter, r *http.Request) {
	floor, apiErr := c.parseFloor(mux.Vars(r)["floor"])
	if apiErr != nil {
		utils.RespondWithError(w, *apiErr)
		return
	}
	selected, apiErr := parseSelection(r)
	if apiErr != nil {
		utils.RespondWithError(w, *apiErr)
		return
	}

	_ = c.selectFloor(r, floor)
	utils.RespondWithJSON(w, http.StatusOK, c.service.View(selected))
}

// HandleRefresh fetches the current floor again and returns the view.
func (c *DashboardController) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	selected, apiErr := parseSelection(r)
	if apiErr != nil {
		utils.RespondWithError(w, *apiErr)
		return
	}
	_ = c.selectFloor(r, c.service.Floor())
	utils.RespondWithJSON(w, http.StatusOK, c.service.View(selected))
}

// HandleHealth answers liveness probes.
func (c *DashboardController) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// HandleNotFound answers unknown routes with the JSON error envelope.
func (c *DashboardController) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeNotFound, fmt.Sprintf("no route for %s", r.URL.Path), nil, http.StatusNotFound))
}

// HandleMethodNotAllowed answers known routes called with the wrong method.
func (c *DashboardController) HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeMethodNotAllowed, fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path), nil, http.StatusMethodNotAllowed))
}

func (c *DashboardController) selectFloor(r *http.Request, floor int) error {
	err := c.service.SelectFloor(r.Context(), floor)
	if err != nil && !errors.Is(err, service.ErrSupersededRound) {
		c.log.Warn().Err(err).Int("floor", floor).Msg("floor fetch incomplete, serving previous data")
	}
	return err
}

func (c *DashboardController) parseFloor(raw string) (int, *models.APIError) {
	floor, err := strconv.Atoi(raw)
	if err != nil {
		apiErr := models.NewAPIError(models.ErrorCodeInvalidFormat, fmt.Sprintf("floor must be an integer, got %q", raw), nil, http.StatusBadRequest)
		return 0, &apiErr
	}
	if !c.service.ValidFloor(floor) {
		apiErr := models.NewAPIError(models.ErrorCodeInvalidFloor, fmt.Sprintf("floor %d is not available", floor), map[string][]int{"floors": c.service.Floors()}, http.StatusBadRequest)
		return 0, &apiErr
	}
	return floor, nil
}

// parseSelection reads ?num, defaulting to service.DefaultSelection.
// Negative selections are rejected.
func parseSelection(r *http.Request) (int, *models.APIError) {
	raw := r.URL.Query().Get("num")
	if raw == "" {
		return service.DefaultSelection, nil
	}
	num, err := strconv.Atoi(raw)
	if err != nil {
		apiErr := models.NewAPIError(models.ErrorCodeInvalidFormat, fmt.Sprintf("num must be an integer, got %q", raw), nil, http.StatusBadRequest)
		return 0, &apiErr
	}
	if num < 0 {
		apiErr := models.NewAPIError(models.ErrorCodeBadRequest, fmt.Sprintf("num must not be negative, got %d", num), nil, http.StatusBadRequest)
		return 0, &apiErr
	}
	return num, nil
}
