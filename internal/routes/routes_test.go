package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BoltWatch.dashboard/internal/controller"
	"BoltWatch.dashboard/internal/models"
	"BoltWatch.dashboard/internal/service"
)

type stubRepo struct {
	mu      sync.Mutex
	floors  []int
	diffErr error
}

func (s *stubRepo) FetchReadings(ctx context.Context, floor int) ([]models.Reading, error) {
	s.mu.Lock()
	s.floors = append(s.floors, floor)
	s.mu.Unlock()
	return []models.Reading{
		{Num: 1, Distance: float64(floor), Temperature: 20, Date: 2000},
		{Num: 2, Distance: 99, Temperature: 99, Date: 1000},
		{Num: 1, Distance: float64(floor) + 1, Temperature: 21, Date: 1000},
	}, nil
}

func (s *stubRepo) FetchDiffs(ctx context.Context, floor int) ([]models.DiffRecord, error) {
	s.mu.Lock()
	s.floors = append(s.floors, floor)
	err := s.diffErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]models.DiffRecord, 30)
	for i := range out {
		out[i] = models.DiffRecord{Num: i + 1, Ref: 1, Las: 1.5, Diff: 0.5}
	}
	return out, nil
}

func (s *stubRepo) Floors() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.floors...)
}

type fixture struct {
	repo    *stubRepo
	svc     *service.DashboardService
	handler http.Handler
}

func newFixture(t *testing.T, proxy http.Handler) fixture {
	t.Helper()
	repo := &stubRepo{}
	svc := service.NewDashboardService(repo, service.Options{Floors: []int{1, 2, 3}, DefaultFloor: 1, RequestTimeout: time.Second}, zerolog.Nop())
	ctrl := controller.NewDashboardController(svc, zerolog.Nop())
	router := SetupRouter(ctrl, proxy, zerolog.Nop())
	return fixture{repo: repo, svc: svc, handler: WithCORS(router, []string{"http://localhost:3000"})}
}

func (f fixture) do(method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) models.DashboardView {
	t.Helper()
	var view models.DashboardView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	return view
}

func TestDashboardPage(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.svc.SelectFloor(context.Background(), 1))

	rec := f.do(http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Floor 1 - Distance and Temperature")
	assert.Equal(t, []int{1, 1}, f.repo.Floors())
}

func TestDashboardFloorSwitch(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/?floor=2&num=3")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="active">floor2</a>`)
	assert.Equal(t, []int{2, 2}, f.repo.Floors())

	// Same floor again does not refetch.
	f.do(http.MethodGet, "/?floor=2")
	assert.Len(t, f.repo.Floors(), 2)
}

func TestDashboardRejectsBadParams(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		target string
		code   models.ErrorCode
	}{
		{"/?floor=7", models.ErrorCodeInvalidFloor},
		{"/?floor=two", models.ErrorCodeInvalidFormat},
		{"/?num=x", models.ErrorCodeInvalidFormat},
		{"/v1/view?num=1.5", models.ErrorCodeInvalidFormat},
		{"/v1/view?num=-1", models.ErrorCodeBadRequest},
	}
	for _, tt := range tests {
		rec := f.do(http.MethodGet, tt.target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tt.target)
		var body models.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tt.code, body.Code, tt.target)
	}
	assert.Empty(t, f.repo.Floors())
}

func TestViewJSON(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.svc.SelectFloor(context.Background(), 3))

	rec := f.do(http.MethodGet, "/v1/view?num=15")

	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeView(t, rec)
	assert.Equal(t, 3, view.Floor)
	assert.Equal(t, 15, view.Selected)
	require.Len(t, view.Series, 2)
	assert.Equal(t, float64(4), view.Series[0].Distance)
	assert.Len(t, view.Tables[0], 24)
	assert.Len(t, view.Tables[1], 5)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.JSONEq(t, `[1,"...",9,10,11,12,13,14,15,16,17,18,19,20,21,22,"...",30]`, string(raw["pager"]))
}

func TestSelectFloorEndpoint(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPut, "/v1/floor/2")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decodeView(t, rec).Floor)
	assert.Equal(t, []int{2, 2}, f.repo.Floors())

	rec = f.do(http.MethodPut, "/v1/floor/8")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshKeepsDataOnFailure(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.svc.SelectFloor(context.Background(), 1))
	f.repo.mu.Lock()
	f.repo.diffErr = errors.New("backend down")
	f.repo.mu.Unlock()

	rec := f.do(http.MethodPost, "/v1/refresh")

	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeView(t, rec)
	assert.Len(t, view.Tables[0], 24)
	assert.Equal(t, models.FetchFailed, view.Diff.State)
	assert.Equal(t, "backend down", view.Diff.Error)
	assert.Equal(t, models.FetchLoaded, view.Bolt.State)
}

func TestHealthAndChart(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = f.do(http.MethodGet, "/chart.svg")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<svg"))
}

func TestUnknownRouteAndMethod(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"not_found"`)

	for _, tt := range []struct{ method, target string }{
		{http.MethodDelete, "/v1/view"},
		{http.MethodPost, "/v1/view"},
		{http.MethodGet, "/v1/floor/2"},
		{http.MethodGet, "/v1/refresh"},
		{http.MethodDelete, "/health"},
	} {
		rec = f.do(tt.method, tt.target)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, tt.method+" "+tt.target)
		assert.Contains(t, rec.Body.String(), `"code":"method_not_allowed"`, tt.method+" "+tt.target)
	}

	rec = f.do(http.MethodGet, "/api/bolt")
	assert.Equal(t, http.StatusNotFound, rec.Code, "proxy disabled")
}

func TestBackendProxy(t *testing.T) {
	var (
		mu                sync.Mutex
		gotPath, gotFloor string
	)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath, gotFloor = r.URL.Path, r.Header.Get("floor")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer backend.Close()

	proxy, err := controller.NewBackendProxy(backend.URL, zerolog.Nop())
	require.NoError(t, err)
	f := newFixture(t, proxy)

	req := httptest.NewRequest(http.MethodGet, "/api/diff", nil)
	req.Header.Set("floor", "3")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/api/diff", gotPath)
	assert.Equal(t, "3", gotFloor)
}

func TestBackendProxyUnreachable(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	url := backend.URL
	backend.Close()

	proxy, err := controller.NewBackendProxy(url, zerolog.Nop())
	require.NoError(t, err)
	f := newFixture(t, proxy)

	rec := f.do(http.MethodGet, "/api/bolt")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"upstream_unavailable"`)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/v1/floor/2", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, f.repo.Floors())
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	var buf strings.Builder
	log := zerolog.New(&buf)
	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"path":"/x"`)
}

func TestUnmatchedRequestsAreLogged(t *testing.T) {
	var buf strings.Builder
	svc := service.NewDashboardService(&stubRepo{}, service.Options{Floors: []int{1}}, zerolog.Nop())
	router := SetupRouter(controller.NewDashboardController(svc, zerolog.Nop()), nil, zerolog.New(&buf))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/v1/view", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"status":404`)
	assert.Contains(t, lines[0], `"path":"/nope"`)
	assert.Contains(t, lines[1], `"status":405`)
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.NotEmpty(t, entry["request_id"])
	}
}

func TestRecovererWritesErrorEnvelope(t *testing.T) {
	var buf strings.Builder
	log := zerolog.New(&buf)
	h := RequestLogger(log)(Recoverer(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/view", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body models.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.ErrorCodeInternalServerError, body.Code)
	assert.Contains(t, buf.String(), `"panic":"boom"`)
	assert.Contains(t, buf.String(), `"status":500`)
}

func TestRecovererReraisesAbort(t *testing.T) {
	h := Recoverer(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
