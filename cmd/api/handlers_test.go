package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aoideee/vacation-rentals/internal/cache"
	"github.com/aoideee/vacation-rentals/internal/data"
)

type testApp struct {
	app *applicationDependencies
	db  *gorm.DB
	srv *httptest.Server
}

// newTestApp serves the routes over an in-memory database loaded with the
// sample catalogue.
func newTestApp(t *testing.T, withCache bool) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, data.Migrate(db))
	cat, err := data.SampleCatalogue()
	require.NoError(t, err)
	_, err = data.Seed(t.Context(), db, cat)
	require.NoError(t, err)

	var cfg serverConfig
	cfg.environment = "development"
	cfg.requestTimeout = 5 * time.Second
	cfg.limiter.enabled = false

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app := &applicationDependencies{
		config: cfg,
		logger: logger,
		models: data.NewModels(db, "/placeholder.jpg"),
	}
	if withCache {
		app.cache = cache.New(cache.Config{}, nil, logger)
		t.Cleanup(func() { app.cache.Close() })
	}

	srv := httptest.NewServer(app.routes())
	t.Cleanup(srv.Close)

	return &testApp{app: app, db: db, srv: srv}
}

func (ta *testApp) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	res, err := ta.srv.Client().Get(ta.srv.URL + path)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, body
}

func (ta *testApp) propertyID(t *testing.T, title string) string {
	t.Helper()
	var p data.Property
	require.NoError(t, ta.db.Where("title = ?", title).First(&p).Error)
	return p.ID.String()
}

func (ta *testApp) closeDB(t *testing.T) {
	t.Helper()
	sqlDB, err := ta.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestListProperties(t *testing.T) {
	ta := newTestApp(t, false)

	res, body := ta.get(t, "/api/properties")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	assert.Equal(t, "6", res.Header.Get(headerTotalCount))
	assert.Equal(t, "1", res.Header.Get(headerPage))
	assert.Equal(t, "20", res.Header.Get(headerPerPage))
	assert.Equal(t, "1", res.Header.Get(headerLastPage))
	assert.NotEmpty(t, res.Header.Get(traceIDHeader))

	var properties []map[string]any
	require.NoError(t, json.Unmarshal(body, &properties))
	assert.Len(t, properties, 6)
}

func TestListPropertiesFilters(t *testing.T) {
	ta := newTestApp(t, false)

	res, body := ta.get(t, "/api/properties?location=MALIBU&guests=2&minPrice=400&maxPrice=500")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var properties []map[string]any
	require.NoError(t, json.Unmarshal(body, &properties))
	require.Len(t, properties, 1)

	p := properties[0]
	assert.Equal(t, "Oceanfront Villa with Private Beach", p["title"])
	assert.Equal(t, 4.5, p["averageRating"])
	assert.Equal(t, "sarah.johnson@example.com", p["host"].(map[string]any)["email"])
	assert.Len(t, p["images"], 2)

	reviews := p["reviews"].([]any)
	require.Len(t, reviews, 2)
	assert.Contains(t, reviews[0].(map[string]any), "user")

	res, body = ta.get(t, "/api/properties?propertyType=tropical")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
	assert.Equal(t, "0", res.Header.Get(headerTotalCount))

	res, body = ta.get(t, "/api/properties?limit=2&page=3")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal(body, &properties))
	assert.Len(t, properties, 2)
	assert.Equal(t, "3", res.Header.Get(headerPage))
	assert.Equal(t, "3", res.Header.Get(headerLastPage))

	// Blank values are ignored rather than matched.
	res, body = ta.get(t, "/api/properties?location=&propertyType=&minPrice=")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal(body, &properties))
	assert.Len(t, properties, 6)
}

func TestListPropertiesValidation(t *testing.T) {
	ta := newTestApp(t, false)

	tests := []struct {
		query string
		field string
	}{
		{"minPrice=cheap", "minPrice"},
		{"maxPrice=NaN", "maxPrice"},
		{"guests=two", "guests"},
		{"guests=-1", "guests"},
		{"page=0", "page"},
		{"page=x", "page"},
		{"limit=0", "limit"},
		{"limit=101", "limit"},
		{"location=%FF", "location"},
		{"propertyType=beach%C3", "propertyType"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res, body := ta.get(t, "/api/properties?"+tt.query)
			require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

			var resp struct {
				Error map[string]string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(body, &resp))
			assert.Contains(t, resp.Error, tt.field)
		})
	}
}

func TestShowProperty(t *testing.T) {
	ta := newTestApp(t, false)
	id := ta.propertyID(t, "Lakeside Cottage")

	res, body := ta.get(t, "/api/properties/"+id)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var p map[string]any
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, id, p["id"])
	assert.Equal(t, 4.0, p["averageRating"])
	assert.Equal(t, "/placeholder.jpg", p["primaryImage"].(map[string]any)["url"])

	for _, path := range []string{
		"/api/properties/0b0c7a52-8c39-4c1e-9d61-1f7f2b0d3a11",
		"/api/properties/not-a-uuid",
	} {
		res, body = ta.get(t, path)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.JSONEq(t, `{"error": "Property not found"}`, string(body))
	}
}

func TestQuoteProperty(t *testing.T) {
	ta := newTestApp(t, false)
	id := ta.propertyID(t, "Cozy Mountain Cabin")

	res, body := ta.get(t, "/api/properties/"+id+"/quote?checkIn=2026-12-20&checkOut=2026-12-23&guests=2")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var q map[string]any
	require.NoError(t, json.Unmarshal(body, &q))
	assert.Equal(t, 3.0, q["nights"])
	assert.Equal(t, 540.0, q["totalPrice"])
	assert.Equal(t, "2026-12-20", q["checkIn"])

	tests := []struct {
		name  string
		query string
		field string
	}{
		{"missing dates", "guests=2", "checkIn"},
		{"bad date", "checkIn=20-12-2026&checkOut=2026-12-23", "checkIn"},
		{"reversed", "checkIn=2026-12-23&checkOut=2026-12-20", "checkOut"},
		{"too many guests", "checkIn=2026-12-20&checkOut=2026-12-23&guests=9", "guests"},
		{"no guests", "checkIn=2026-12-20&checkOut=2026-12-23&guests=0", "guests"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, body := ta.get(t, "/api/properties/"+id+"/quote?"+tt.query)
			require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
			var resp struct {
				Error map[string]string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(body, &resp))
			assert.Contains(t, resp.Error, tt.field)
		})
	}

	res, _ = ta.get(t, "/api/properties/0b0c7a52-8c39-4c1e-9d61-1f7f2b0d3a11/quote?checkIn=2026-12-20&checkOut=2026-12-23")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestListPropertyTypes(t *testing.T) {
	ta := newTestApp(t, false)

	res, body := ta.get(t, "/api/property-types")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var types []propertyType
	require.NoError(t, json.Unmarshal(body, &types))
	require.Len(t, types, 6)
	assert.Equal(t, propertyType{ID: "beach", Name: "Beach", Count: 1}, types[0])
}

func TestHealthcheckAndRouting(t *testing.T) {
	ta := newTestApp(t, false)

	res, body := ta.get(t, "/api/healthcheck")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `"available"`)

	res, _ = ta.get(t, "/api/nothing-here")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	post, err := ta.srv.Client().Post(ta.srv.URL+"/api/properties", "application/json", nil)
	require.NoError(t, err)
	post.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, post.StatusCode)
}

func TestStoreFailureIsolation(t *testing.T) {
	ta := newTestApp(t, false)
	id := ta.propertyID(t, "Cozy Mountain Cabin")
	ta.closeDB(t)

	res, body := ta.get(t, "/api/properties?location=aspen")
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.JSONEq(t, `{"error": "Failed to fetch properties"}`, string(body))
	assert.Empty(t, res.Header.Get(headerTotalCount))

	res, body = ta.get(t, "/api/properties/"+id)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.JSONEq(t, `{"error": "Failed to fetch property"}`, string(body))
}

func TestSearchCache(t *testing.T) {
	ta := newTestApp(t, true)

	res, first := ta.get(t, "/api/properties?guests=4&location=california")
	require.Equal(t, http.StatusOK, res.StatusCode)

	ta.closeDB(t)

	// Same criteria in a different order is answered from the cache.
	res, second := ta.get(t, "/api/properties?location=california&guests=4")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, first, second)
	assert.Equal(t, "2", res.Header.Get(headerTotalCount))

	res, _ = ta.get(t, "/api/properties?location=california")
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
}

func TestSearchCacheKeepsCriteriaApart(t *testing.T) {
	ta := newTestApp(t, true)

	// An encoded '&' is part of the location, not a second parameter.
	res, body := ta.get(t, "/api/properties?location=california%26propertyType%3Dbeach")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	res, body = ta.get(t, "/api/properties?location=california&propertyType=beach")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var properties []map[string]any
	require.NoError(t, json.Unmarshal(body, &properties))
	require.Len(t, properties, 1)
	assert.Equal(t, "Oceanfront Villa with Private Beach", properties[0]["title"])
}

func TestSearchCacheIgnoresBlankParams(t *testing.T) {
	ta := newTestApp(t, true)

	res, first := ta.get(t, "/api/properties?location=aspen")
	require.Equal(t, http.StatusOK, res.StatusCode)

	ta.closeDB(t)

	res, second := ta.get(t, "/api/properties?location=aspen&propertyType=&page=1&utm_source=mail")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, first, second)
}

func TestRateLimit(t *testing.T) {
	ta := newTestApp(t, false)
	ta.app.config.limiter.enabled = true
	ta.app.config.limiter.rps = 1
	ta.app.config.limiter.burst = 2
	srv := httptest.NewServer(ta.app.routes())
	defer srv.Close()

	statuses := make([]int, 3)
	for i := range statuses {
		res, err := srv.Client().Get(srv.URL + "/api/healthcheck")
		require.NoError(t, err)
		res.Body.Close()
		statuses[i] = res.StatusCode
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
}
