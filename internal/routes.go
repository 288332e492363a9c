package internal

import (
	"net/http"
	"streakd/internal/controllers"
	"streakd/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/record", http.HandlerFunc(apiController.Record))
	routers.Get("/streak", http.HandlerFunc(apiController.GetStreak))
	routers.Get("/leaderboard", http.HandlerFunc(apiController.Leaderboard))
	routers.Get("/tracking", http.HandlerFunc(apiController.GetTracking))
	routers.Post("/tracking", http.HandlerFunc(apiController.UpdateTracking))
	return routers
}
