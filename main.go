package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"learning-progression-system/handlers"
	"learning-progression-system/metrics"
	"learning-progression-system/middleware"
	"learning-progression-system/models"
	"learning-progression-system/services"
	"learning-progression-system/utils"
	"learning-progression-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB, enough for icon uploads
	})

	// Only Gateway requests allowed, no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles, X-User-Name",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Profile{},
		&models.XPEvent{},
		&models.Event{},
		&models.Mission{},
		&models.LessonCompletion{},
		&models.Referral{},
		&models.AchievementType{},
		&models.UserAchievement{},
		&models.NotificationOutbox{},
		&models.NotificationDLQ{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	metrics.Register()

	objectStore, err := utils.NewObjectStore()
	if err != nil {
		log.Fatal("failed to initialize object store:", err)
	}

	progressionService := services.NewProgressionService(db)
	streakService := services.NewStreakService(db)
	achievementService := services.NewAchievementService(db)
	leaderboardService := services.NewLeaderboardService(db)
	missionService := services.NewMissionService(db, progressionService, achievementService)
	lessonService := services.NewLessonService(db, progressionService, streakService, achievementService)
	referralService := services.NewReferralService(db, progressionService)
	polisher := services.NewContentPolisher()

	if err := achievementService.SeedAchievementTypes(); err != nil {
		log.Fatal("failed to seed achievement types:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifyWorker := workers.NewNotifyWorker(db, utils.HTTPClient)
	go notifyWorker.Run(ctx)
	go notifyWorker.RetryDLQ(ctx)

	progressionService.StartRolloverScheduler()

	handlers.SetupProgressionRoutes(app, progressionService, streakService, leaderboardService, achievementService, objectStore)
	handlers.SetupMissionRoutes(app, missionService, lessonService, polisher)
	handlers.SetupReferralRoutes(app, referralService)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Notification outbox worker running (every 10s)")
	log.Println("✅ Period rollover scheduler running (daily/weekly XP resets)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
