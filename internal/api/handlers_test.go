package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"customerdash/internal/engine"
	"customerdash/internal/models"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testStore(t *testing.T) *engine.RecordStore {
	t.Helper()
	store, err := engine.NewRecordStore(
		[]models.CustomerRecord{
			{Profession: "Engineer", Gender: "Male", Age: 30, Generation: "Y", AnnualIncome: 50000, Province: "Jakarta", WorkExperience: 5},
			{Profession: "Engineer", Gender: "Female", Age: 45, Generation: "X", AnnualIncome: 60000, Province: "Jakarta", WorkExperience: 15},
			{Profession: "Artist", Gender: "Female", Age: 22, Generation: "Z", AnnualIncome: 12000, Province: "Bali", WorkExperience: 1},
		},
		[]models.ProvinceCoordinate{
			{Province: "Jakarta", Latitude: -6.2, Longitude: 106.8},
			{Province: "Bali", Latitude: -8.4, Longitude: 115.2},
		},
		engine.Options{},
	)
	require.NoError(t, err)
	return store
}

func newTestServer(store *engine.RecordStore) (*echo.Echo, *Handler) {
	e := NewEcho(ServerOptions{}, zap.NewNop())
	h := NewHandler(store, Defaults{MinAge: 25, MaxAge: 55})
	h.RegisterRoutes(e)
	return e, h
}

func get(e *echo.Echo, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestLoadingUntilStoreIsSet(t *testing.T) {
	e, h := newTestServer(nil)

	rec := get(e, "/api/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "loading", decode[map[string]string](t, rec)["status"])

	assert.Equal(t, http.StatusServiceUnavailable, get(e, "/api/professions").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(e, "/api/dashboard").Code)

	h.SetStore(testStore(t))

	rec = get(e, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
	assert.Equal(t, http.StatusOK, get(e, "/api/professions").Code)
}

func TestGetProfessionVolumeETag(t *testing.T) {
	e, _ := newTestServer(testStore(t))

	rec := get(e, "/api/professions")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.ProfessionVolume{
		{Profession: "Engineer", Count: 2, IncomeSum: 110000},
		{Profession: "Artist", Count: 1, IncomeSum: 12000},
	}, decode[[]models.ProfessionVolume](t, rec))

	etag := rec.Header().Get(headerETag)
	require.NotEmpty(t, etag)
	assert.Equal(t, etag, get(e, "/api/professions").Header().Get(headerETag))

	rec = get(e, "/api/professions", headerIfNoneMatch, etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.Bytes())

	rec = get(e, "/api/professions", headerIfNoneMatch, `"stale"`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetControls(t *testing.T) {
	e, _ := newTestServer(testStore(t))

	rec := get(e, "/api/controls")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.Controls{
		Professions:       []string{"Artist", "Engineer"},
		DefaultProfession: "Artist",
		MinAge:            22,
		MaxAge:            45,
		DefaultAgeRange:   [2]int{25, 45},
	}, decode[models.Controls](t, rec))
}

func TestGetGenerations(t *testing.T) {
	e, _ := newTestServer(testStore(t))

	rec := get(e, "/api/generations?profession=Engineer")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.GenerationCount{{Generation: "Y", Count: 1}, {Generation: "X", Count: 1}},
		decode[[]models.GenerationCount](t, rec))

	// default profession is the first in sorted order
	rec = get(e, "/api/generations")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.GenerationCount{{Generation: "Z", Count: 1}}, decode[[]models.GenerationCount](t, rec))

	assert.Equal(t, http.StatusBadRequest, get(e, "/api/generations?profession=Astronaut").Code)
}

func TestGetGeographicDemand(t *testing.T) {
	e, _ := newTestServer(testStore(t))

	rec := get(e, "/api/provinces")
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]models.ProvinceDemand](t, rec)
	require.Len(t, rows, 2)
	assert.Equal(t, models.ProvinceDemand{Province: "Jakarta", Male: 1, Female: 1, Total: 2, Latitude: -6.2, Longitude: 106.8}, rows[0])
}

func TestGetGeographicDemandJoinMismatch(t *testing.T) {
	store, err := engine.NewRecordStore(
		[]models.CustomerRecord{{Profession: "Artist", Gender: "Male", Province: "Atlantis", Generation: "X"}},
		nil, engine.Options{},
	)
	require.NoError(t, err)
	e, _ := newTestServer(store)

	rec := get(e, "/api/provinces")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Atlantis")
}

func TestGetIncomeExperience(t *testing.T) {
	e, _ := newTestServer(testStore(t))

	rec := get(e, "/api/income-experience?min_age=25&max_age=40")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.IncomeExperiencePoint{{WorkExperience: 5, AnnualIncome: 50000, Profession: "Engineer"}},
		decode[[]models.IncomeExperiencePoint](t, rec))
	assert.Equal(t, "1", rec.Header().Get(headerTotalCount))

	// defaults [25, 55] clamp to [25, 45]
	rec = get(e, "/api/income-experience")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.IncomeExperiencePoint](t, rec), 2)

	rec = get(e, "/api/income-experience?min_age=0&max_age=100&limit=2&offset=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", rec.Header().Get(headerTotalCount))
	points := decode[[]models.IncomeExperiencePoint](t, rec)
	require.Len(t, points, 2)
	assert.Equal(t, 15, points[0].WorkExperience)

	rec = get(e, "/api/income-experience?min_age=0&max_age=100&offset=1&limit=9223372036854775807")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.IncomeExperiencePoint](t, rec), 2)

	rec = get(e, "/api/income-experience?min_age=0&max_age=100&offset=10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.IncomeExperiencePoint](t, rec))

	assert.Equal(t, http.StatusBadRequest, get(e, "/api/income-experience?min_age=50&max_age=20").Code)
	assert.Equal(t, http.StatusBadRequest, get(e, "/api/income-experience?min_age=abc").Code)
}

func TestGetDashboard(t *testing.T) {
	e, _ := newTestServer(testStore(t))

	rec := get(e, "/api/dashboard?profession=Engineer&min_age=20&max_age=40")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decode[models.DashboardData](t, rec)
	assert.Equal(t, "Engineer", data.Profession)
	assert.Equal(t, [2]int{20, 40}, data.AgeRange)
	assert.Len(t, data.ProfessionVolume, 2)
	assert.Len(t, data.GeographicDemand, 2)
	assert.Len(t, data.Generations, 2)
	assert.Len(t, data.ProfessionGender, 3)
	assert.Len(t, data.IncomeExperience, 2)

	assert.Equal(t, http.StatusBadRequest, get(e, "/api/dashboard?profession=Astronaut").Code)
}

func TestGetStats(t *testing.T) {
	e, _ := newTestServer(testStore(t))
	get(e, "/api/professions")
	get(e, "/api/professions")

	rec := get(e, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var found bool
	for _, r := range decode[[]RouteLatency](t, rec) {
		if r.Route == "/api/professions" {
			found = true
			assert.Equal(t, int64(2), r.Count)
			assert.LessOrEqual(t, r.P50, r.Max)
		}
	}
	assert.True(t, found)
}
