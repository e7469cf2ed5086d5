package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRouterProvider_GetAddsRoute(t *testing.T) {
	router := NewRouterProvider()
	router.Get("/session", okHandler())

	routes := router.GetRoutes()
	require.Len(t, routes, 1)
	assert.Equal(t, http.MethodGet, routes[0].Method)
	assert.Equal(t, "/session", routes[0].Url)
	assert.NotNil(t, routes[0].Handler)
}

func TestRouterProvider_PostAddsRoute(t *testing.T) {
	router := NewRouterProvider()
	router.Post("/event", okHandler())

	routes := router.GetRoutes()
	require.Len(t, routes, 1)
	assert.Equal(t, http.MethodPost, routes[0].Method)
	assert.Equal(t, "/event", routes[0].Url)
}

func TestRouterProvider_MultipleRoutes(t *testing.T) {
	router := NewRouterProvider()
	router.Post("/session", okHandler())
	router.Post("/event", okHandler())
	router.Get("/visitors", okHandler())

	routes := router.GetRoutes()
	require.Len(t, routes, 3)
	assert.Equal(t, "/session", routes[0].Url)
	assert.Equal(t, "/event", routes[1].Url)
	assert.Equal(t, "/visitors", routes[2].Url)
}

func TestMethodHandler_CorrectMethod(t *testing.T) {
	h := methodHandler(http.MethodPost, okHandler())

	req := httptest.NewRequest(http.MethodPost, "/event", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMethodHandler_WrongMethod(t *testing.T) {
	h := methodHandler(http.MethodPost, okHandler())

	req := httptest.NewRequest(http.MethodGet, "/event", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRouterProvider_RouteHandlerRejectsWrongMethod(t *testing.T) {
	router := NewRouterProvider()
	router.Get("/interests", okHandler())

	routes := router.GetRoutes()
	require.Len(t, routes, 1)

	req := httptest.NewRequest(http.MethodDelete, "/interests", nil)
	rr := httptest.NewRecorder()
	routes[0].Handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
