package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"ade/internal/controllers"
	"ade/internal/structures"
	"ade/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoutesUnderTest(t *testing.T) []structures.Route {
	t.Helper()
	ac := controllers.NewApiController(&testutil.MockLogger{}, &testutil.MockEngineService{}, testutil.NewMockCache())
	router := InitRoutes(ac, &structures.Config{})
	return router.GetRoutes()
}

func TestInitRoutes_RegistersFiveRoutes(t *testing.T) {
	routes := newRoutesUnderTest(t)
	require.Len(t, routes, 5)

	type key struct{ method, url string }
	seen := make(map[key]bool, len(routes))
	for _, r := range routes {
		seen[key{r.Method, r.Url}] = true
	}

	assert.True(t, seen[key{http.MethodPost, "/session"}])
	assert.True(t, seen[key{http.MethodPost, "/event"}])
	assert.True(t, seen[key{http.MethodGet, "/session"}])
	assert.True(t, seen[key{http.MethodGet, "/interests"}])
	assert.True(t, seen[key{http.MethodGet, "/visitors"}])
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	routes := newRoutesUnderTest(t)

	mux := http.NewServeMux()
	for _, r := range routes {
		mux.Handle(r.Method+" "+r.Url, r.Handler)
	}

	// POST-only /event refuses GET
	req := httptest.NewRequest(http.MethodGet, "/event", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	// GET-only /visitors refuses POST
	req = httptest.NewRequest(http.MethodPost, "/visitors", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestInitRoutes_SessionCarriesBothMethods(t *testing.T) {
	routes := newRoutesUnderTest(t)

	mux := http.NewServeMux()
	for _, r := range routes {
		mux.Handle(r.Method+" "+r.Url, r.Handler)
	}

	req := httptest.NewRequest(http.MethodGet, "/session?v=ghost", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/session", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
