// handlers/match.go
package handlers

import (
	"football-match-system/middleware"
	"football-match-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMatchRoutes(app *fiber.App, matchService *services.MatchService, authClient *services.AuthServiceClient) {
	// 🔓 Public routes — *no user context*, but **still require Gateway auth**
	app.Get("/matches", matchService.ListMatches)
	app.Get("/matches/:id", matchService.GetMatch)

	// 📡 SSE feed authenticates from the query string — EventSource cannot set headers
	app.Get("/matches/:id/feed", middleware.SSEAuthMiddleware(authClient), matchService.StreamMatchFeedSSE)

	// 🔐 Secured routes — require user context (userID, roles), enforced via middleware
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Post("/matches", matchService.CreateMatch)
	secured.Post("/matches/:id/photo", matchService.UploadPhoto)
	secured.Put("/matches/:id/assignments", matchService.AssignTeam)
	secured.Post("/matches/:id/goals", matchService.AddGoal)
	secured.Post("/matches/:id/challenges", matchService.CreateChallenge)
	secured.Post("/matches/:id/ratings", matchService.RatePlayer)
	secured.Post("/matches/:id/mvp-vote", matchService.CastMvpVote)

	// ✅ Recording the final score runs settlement — once per match
	secured.Post("/matches/:id/score", matchService.RecordScore)
}
