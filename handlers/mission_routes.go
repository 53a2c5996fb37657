package handlers

import (
	"time"

	"learning-progression-system/middleware"
	"learning-progression-system/models"
	"learning-progression-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMissionRoutes(
	app *fiber.App,
	missionService *services.MissionService,
	lessonService *services.LessonService,
	polisher *services.ContentPolisher,
) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	// The daily mission is deterministic per (day, path): every user on a path
	// sees the same template. This endpoint also materializes the user's row.
	securedGroup.Get("/missions/daily", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		path := models.LearningPath(c.Query("path", "none"))
		if !path.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown path"})
		}

		mission, err := missionService.EnsureDailyMission(userID, time.Now(), path)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(mission)
	})

	securedGroup.Get("/missions", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		missions, err := missionService.OpenMissions(userID)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(fiber.Map{"missions": missions})
	})

	securedGroup.Post("/missions/:id/complete", func(c *fiber.Ctx) error {
		type Req struct {
			AmazingnessRating int `json:"amazingness_rating"` // 1-5, defaults to 5
		}
		var req Req
		if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}

		result, err := missionService.CompleteMission(c.Params("id"), req.AmazingnessRating)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(result)
	})

	securedGroup.Post("/lessons/complete", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		type Req struct {
			LessonID           string                   `json:"lesson_id" validate:"required"`
			MissionID          *string                  `json:"mission_id"`
			BaseXP             int64                    `json:"base_xp"`
			CompletionTimeSec  int                      `json:"completion_time_sec"`
			AmazingnessRating  int                      `json:"amazingness_rating"` // 1-10
			PerformanceScore   int                      `json:"performance_score"`
			SatisfactionRating *int                     `json:"satisfaction_rating"`
			EngagementScore    *int                     `json:"engagement_score"`
			QualityMetrics     *services.QualityMetrics `json:"quality_metrics"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}

		result, err := lessonService.RecordCompletion(services.LessonCompletionInput{
			ExternalUserID:    userID,
			LessonID:          req.LessonID,
			MissionID:         req.MissionID,
			BaseXP:            req.BaseXP,
			CompletionTimeSec: req.CompletionTimeSec,
			AmazingnessRating: req.AmazingnessRating,
			Score: services.CompletionScoreInput{
				PerformanceScore:   req.PerformanceScore,
				SatisfactionRating: req.SatisfactionRating,
				EngagementScore:    req.EngagementScore,
				Quality:            req.QualityMetrics,
			},
		})
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(result)
	})

	// Score preview: pure computation, no persistence.
	securedGroup.Post("/lessons/score", func(c *fiber.Ctx) error {
		var in services.CompletionScoreInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		score, err := services.ScoreCompletion(in)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(fiber.Map{
			"amazingness_score": score,
			"quality_tier":      services.QualityTier(score),
		})
	})

	securedGroup.Post("/shoutouts/polish", func(c *fiber.Ctx) error {
		type Req struct {
			Text string `json:"text" validate:"required"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if req.Text == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "text is required"})
		}
		return c.JSON(fiber.Map{"text": polisher.Polish(c.Context(), req.Text)})
	})
}
