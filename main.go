package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"football-match-system/handlers"
	"football-match-system/middleware"
	"football-match-system/models"
	"football-match-system/services"
	"football-match-system/utils"
	"football-match-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024, // 32MB — match photos and avatars only
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	// Load allowed origins from environment variable
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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Session-Token, X-Service-Token, X-Device-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.PlayerProfile{},
		&models.Match{},
		&models.TeamAssignment{},
		&models.GoalEvent{},
		&models.Challenge{},
		&models.RatingEntry{},
		&models.MatchRating{},
		&models.MvpVote{},
		&models.BadgeType{},
		&models.PlayerBadge{},
		&models.BaseRatingMirror{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	ratingServiceURL := os.Getenv("RATING_SERVICE_URL")
	if ratingServiceURL == "" {
		log.Fatal("RATING_SERVICE_URL environment variable not set")
	}
	matchServiceToken := os.Getenv("MATCH_SERVICE_TOKEN")
	if matchServiceToken == "" {
		log.Fatal("MATCH_SERVICE_TOKEN environment variable not set")
	}
	authServiceURL := os.Getenv("AUTH_SERVICE_URL")
	if authServiceURL == "" {
		log.Fatal("AUTH_SERVICE_URL environment variable not set")
	}
	syncServiceURL := os.Getenv("SYNC_SERVICE_URL")
	if syncServiceURL == "" {
		log.Fatal("SYNC_SERVICE_URL environment variable not set")
	}

	ratingClient := services.NewRatingFormulaClient(ratingServiceURL, matchServiceToken)
	authClient := services.NewAuthServiceClient(authServiceURL, matchServiceToken)

	bonusService := services.NewBonusService(db)
	badgeService := services.NewBadgeService(db)
	challengeService := services.NewChallengeService(db, bonusService)
	settlementService := services.NewSettlementService(db, ratingClient, bonusService, challengeService, badgeService)
	reversalService := services.NewReversalService(db)
	matchService := services.NewMatchService(db, settlementService)
	playerService := services.NewPlayerService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	playerSyncWorker := workers.NewPlayerSyncWorker(db, syncServiceURL, "/api/v1/public/profiles", matchServiceToken)
	playerSyncWorker.Start(ctx)

	baseRatingClient := workers.NewBaseRatingSyncClient(db)
	go workers.PollBaseRatings(ctx, baseRatingClient, 30*time.Second)

	matchService.StartKickoffScheduler()

	// ✅ Setup routes — now with enforced Gateway auth + consistent /s/ prefix
	handlers.SetupMatchRoutes(app, matchService, authClient)
	handlers.SetupPlayerRoutes(app, playerService)
	handlers.SetupAdminRoutes(app, reversalService, challengeService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Player Sync Worker running")
	log.Println("✅ Base rating polling running (every 30s)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
