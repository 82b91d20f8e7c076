// handlers/player.go
package handlers

import (
	"football-match-system/middleware"
	"football-match-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPlayerRoutes(app *fiber.App, playerService *services.PlayerService) {
	// 🔓 Public routes — *no user context*, but **still require Gateway auth**
	app.Get("/players", playerService.SearchPlayers)
	app.Get("/players/leaderboard", playerService.Leaderboard)
	app.Get("/players/:id", playerService.GetProfileByID)
	app.Get("/players/:id/badges", playerService.GetBadges)

	// 🔐 Secured routes — require user context (userID, roles)
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/me", playerService.GetMyProfile)
	secured.Patch("/me", playerService.UpdateMyProfile)
	secured.Post("/me/avatar", playerService.UploadAvatar)
}
