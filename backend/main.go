package main

import (
	"log"

	"viadocs/backend/config"
	"viadocs/backend/mailer"
	"viadocs/backend/middleware"
	"viadocs/backend/otp"
	"viadocs/backend/routes"
	"viadocs/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// OTP challenge store: redis when configured, process memory otherwise
	var otpStore otp.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		otpStore = otp.NewRedisStore(client)
	} else {
		otpStore = otp.NewMemoryStore()
	}

	mail := mailer.NewSMTPMailer(cfg)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024, // uploaded PDFs
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.FrontendOrigin,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))
	app.Use(middleware.MetricsMiddleware())

	// Setup routes
	routes.SetupRoutes(app, db, cfg, otpStore, mail)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
