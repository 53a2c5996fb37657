package handlers

import (
	"learning-progression-system/middleware"
	"learning-progression-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupReferralRoutes(app *fiber.App, referralService *services.ReferralService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	securedGroup.Post("/referrals", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		displayName := c.Get("X-User-Name")

		ref, err := referralService.CreateReferral(userID, displayName)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(ref)
	})

	securedGroup.Get("/referrals", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		refs, err := referralService.ListReferrals(userID)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(fiber.Map{"referrals": refs})
	})

	securedGroup.Post("/referrals/:id/claim", func(c *fiber.Ctx) error {
		res, err := referralService.ClaimReward(c.Params("id"))
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(fiber.Map{
			"message":      "referral reward claimed",
			"xp_awarded":   services.ReferralRewardXP,
			"new_total_xp": res.NewTotalXP,
			"new_level":    res.NewLevel,
			"leveled_up":   res.LeveledUp,
		})
	})

	securedGroup.Post("/referrals/:id/cancel", func(c *fiber.Ctx) error {
		if err := referralService.CancelReferral(c.Params("id")); err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(fiber.Map{"message": "referral cancelled"})
	})

	// Called by the platform when the referee finishes their qualifying first
	// lesson; gateway-authenticated, no user context required.
	app.Post("/referrals/:code/complete", func(c *fiber.Ctx) error {
		type Req struct {
			RefereeID string `json:"referee_id" validate:"required"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}

		ref, err := referralService.CompleteReferral(c.Params("code"), req.RefereeID)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(ref)
	})
}
