package internal

import (
	"net/http"
	"susrolld/internal/controllers"
	"susrolld/internal/providers"
	"susrolld/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/roll", http.HandlerFunc(apiController.Roll))
	routers.Post("/roll/batch", http.HandlerFunc(apiController.RollBatch))
	routers.Post("/claim", http.HandlerFunc(apiController.Claim))
	routers.Get("/session", http.HandlerFunc(apiController.GetSession))
	routers.Get("/collection", http.HandlerFunc(apiController.GetCollection))
	routers.Post("/collection/remove", http.HandlerFunc(apiController.RemoveFromCollection))
	routers.Get("/accounts", http.HandlerFunc(apiController.ListAccounts))
	routers.Post("/accounts", http.HandlerFunc(apiController.CreateAccount))
	routers.Post("/accounts/switch", http.HandlerFunc(apiController.SwitchAccount))
	routers.Get("/friends", http.HandlerFunc(apiController.GetFriends))
	routers.Post("/friends", http.HandlerFunc(apiController.AddFriend))
	routers.Post("/wipe", http.HandlerFunc(apiController.Wipe))
	return routers
}
