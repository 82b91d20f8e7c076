// handlers/admin.go
package handlers

import (
	"errors"

	"football-match-system/middleware"
	"football-match-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupAdminRoutes(app *fiber.App, reversalService *services.ReversalService, challengeService *services.ChallengeService) {
	// 🔐 Admin routes — user context plus the admin role
	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	// ↩️ Reset undoes a settlement and wipes the match's records. The report
	// carries warnings for anything that could not be cleanly reversed.
	admin.Post("/matches/:id/reset", func(c *fiber.Ctx) error {
		report, err := reversalService.Reverse(c.Params("id"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "match not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":  "match reset failed",
				"cause":  err.Error(),
				"report": report,
			})
		}
		return c.JSON(report)
	})

	// ✅ Specialist challenges are never auto-evaluated; an admin confirms them
	admin.Post("/challenges/:id/confirm", func(c *fiber.Ctx) error {
		challenge, err := challengeService.ConfirmManually(c.Params("id"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "challenge not found"})
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(challenge)
	})
}
