package routes

import (
	"viadocs/backend/config"
	"viadocs/backend/controllers"
	"viadocs/backend/mailer"
	"viadocs/backend/middleware"
	"viadocs/backend/otp"
	"viadocs/backend/utils"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, otpStore otp.Store, mail mailer.Mailer) {
	// Health and metrics
	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":       "ok",
			"db_connected": utils.DBConnected(db),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Viadocs Backend Running Successfully"})
	})

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(cfg)

	// Auth routes (OTP endpoints are unauthenticated by design; identity is
	// re-established through the emailed code, not a token)
	authController := controllers.NewAuthController(db, cfg, otpStore, mail)
	auth := app.Group("/api/auth")
	auth.Get("/check-username", authController.CheckUsername)
	auth.Get("/check-email", authController.CheckEmail)
	auth.Get("/check-referral", authController.CheckReferral)
	auth.Post("/register", authController.Register)
	auth.Post("/login", authController.Login)
	auth.Get("/verify", authController.Verify)
	auth.Post("/send-otp", authController.SendOTP)
	auth.Post("/verify-otp", authController.VerifyOTP)
	auth.Post("/reset-password", authController.ResetPassword)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/profile", authMiddleware, userController.UpdateProfile)
	app.Put("/api/profile/upload", authMiddleware, userController.UploadProfileImage)
	app.Post("/api/profile/role", authMiddleware, userController.SetRole)

	// Document routes
	docsController := controllers.NewDocsController(db, cfg)
	docs := app.Group("/api/docs", authMiddleware)
	docs.Post("/check-name", docsController.CheckName)
	docs.Post("/my-docs", docsController.CreateDoc)
	docs.Get("/my-docs", docsController.ListDocs)
	docs.Get("/my-docs/:id", docsController.GetDoc)
	docs.Put("/my-docs/:id", docsController.UpdateDoc)
	docs.Delete("/my-docs/:id", docsController.DeleteDoc)
	docs.Patch("/my-docs/:id/favorite", docsController.ToggleFavorite)
	docs.Post("/upload-image", docsController.UploadImage)
	docs.Get("/summary", docsController.Summary)

	// Feedback / contact (token optional)
	feedbackController := controllers.NewFeedbackController(db, cfg)
	app.Post("/api/feedback", feedbackController.SubmitFeedback)
	app.Post("/api/contact", feedbackController.SubmitContact)

	// Activity ingestion
	activityController := controllers.NewActivityController(db, cfg)
	app.Post("/api/activity/ping", authMiddleware, activityController.Ping)

	// Admin routes
	adminController := controllers.NewAdminController(db, cfg)
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Get("/dashboard", adminController.Dashboard)
	admin.Get("/feedbacks", adminController.ListFeedbacks)
	admin.Delete("/feedbacks/:id", adminController.DeleteFeedback)
	admin.Get("/contacts", adminController.ListContacts)
	admin.Delete("/contacts/:id", adminController.DeleteContact)
	admin.Get("/visitors", adminController.Visitors)

	// Conversion tools
	toolsController := controllers.NewToolsController(cfg)
	tools := app.Group("/api/tools")
	tools.Post("/pdf-compress", toolsController.CompressPDF)
	tools.Post("/pdf-to-image", toolsController.PDFToImage)

	// Uploaded assets
	app.Static("/uploads", cfg.UploadDir)
}
