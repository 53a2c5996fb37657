package handlers

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"learning-progression-system/middleware"
	"learning-progression-system/models"
	"learning-progression-system/services"
	"learning-progression-system/utils"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressionRoutes(
	app *fiber.App,
	progressionService *services.ProgressionService,
	streakService *services.StreakService,
	leaderboardService *services.LeaderboardService,
	achievementService *services.AchievementService,
	objectStore *utils.ObjectStore,
) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	securedGroup.Get("/user/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		displayName := c.Get("X-User-Name")
		path := models.LearningPath(c.Query("path", ""))

		prof, err := progressionService.EnsureProfile(userID, displayName, path)
		if err != nil {
			return errorJSON(c, err)
		}

		return c.JSON(fiber.Map{
			"id":                 prof.ID,
			"external_user_id":   prof.ExternalUserID,
			"display_name":       prof.DisplayName,
			"path":               prof.Path,
			"total_xp":           prof.TotalXP,
			"weekly_xp":          prof.WeeklyXP,
			"daily_xp":           prof.DailyXP,
			"level":              prof.Level,
			"level_progress":     services.LevelProgress(prof.TotalXP),
			"xp_to_next_level":   services.BaseXPPerLevel - services.LevelProgress(prof.TotalXP),
			"streak_days":        prof.StreakDays,
			"last_activity_date": prof.LastActivityDate,
			"total_missions":     prof.TotalMissions,
			"total_lessons":      prof.TotalLessons,
			"total_referrals":    prof.TotalReferrals,
			"last_level_up_at":   prof.LastLevelUpAt,
		})
	})

	securedGroup.Get("/user/events", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		events, err := progressionService.RecentEvents(userID, limit)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(fiber.Map{"events": events})
	})

	securedGroup.Post("/user/activity", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		type Req struct {
			Date string `json:"date"` // YYYY-MM-DD, defaults to today
		}
		var req Req
		if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}

		activityDate := time.Now()
		if req.Date != "" {
			parsed, err := time.Parse("2006-01-02", req.Date)
			if err != nil {
				return errorJSON(c, fmt.Errorf("%w: date must be YYYY-MM-DD", services.ErrInvalidInput))
			}
			activityDate = parsed
		}

		streak, err := streakService.RecordActivity(userID, activityDate)
		if err != nil {
			return errorJSON(c, err)
		}

		_, _ = achievementService.UnlockEligible(userID)
		return c.JSON(fiber.Map{"streak_days": streak})
	})

	securedGroup.Get("/leaderboard", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		window := services.LeaderboardWindow(c.Query("window", "global"))
		limit, _ := strconv.Atoi(c.Query("limit", "25"))

		board, err := leaderboardService.Rank(window, userID, limit)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(board)
	})

	securedGroup.Get("/user/achievements", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		achievements, err := achievementService.ListAchievements(userID)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(fiber.Map{"achievements": achievements})
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/xp/grant", func(c *fiber.Ctx) error {
		if !middleware.HasRole(c, "admin") {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin role required"})
		}
		type Req struct {
			UserID string `json:"user_id" validate:"required"`
			XP     int64  `json:"xp" validate:"required"`
			Reason string `json:"reason" validate:"max=255"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if req.Reason == "" {
			req.Reason = "admin_grant"
		}

		res, err := progressionService.ApplyXP(req.UserID, req.XP, req.Reason)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(fiber.Map{
			"message":      "XP granted successfully",
			"user_id":      req.UserID,
			"new_total_xp": res.NewTotalXP,
			"new_level":    res.NewLevel,
			"leveled_up":   res.LeveledUp,
		})
	})

	adminGroup.Post("/achievements/:code/icon", func(c *fiber.Ctx) error {
		if !middleware.HasRole(c, "admin") {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin role required"})
		}
		if objectStore == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "object store not configured"})
		}
		code := c.Params("code")

		fileHeader, err := c.FormFile("icon")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "icon file is required"})
		}

		key := fmt.Sprintf("achievements/%s%s", code, filepath.Ext(fileHeader.Filename))
		iconURL, err := objectStore.UploadIcon(c.Context(), fileHeader, key)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "icon upload failed", "cause": err.Error()})
		}

		if err := achievementService.SetIconURL(code, iconURL); err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(fiber.Map{"code": code, "icon_url": iconURL})
	})
}
