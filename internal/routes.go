package internal

import (
	"net/http"

	"ade/internal/controllers"
	"ade/internal/providers"
	"ade/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/session", http.HandlerFunc(apiController.StartSession))
	routers.Post("/event", http.HandlerFunc(apiController.ReceiveEvent))
	routers.Get("/session", http.HandlerFunc(apiController.GetSession))
	routers.Get("/interests", http.HandlerFunc(apiController.GetInterests))
	routers.Get("/visitors", http.HandlerFunc(apiController.GetVisitors))
	return routers
}
