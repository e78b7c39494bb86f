package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/swcms/internal/config"
	"github.com/example/swcms/internal/handlers"
	"github.com/example/swcms/internal/middleware"
	"github.com/example/swcms/internal/models"
	"github.com/example/swcms/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	gateway := services.NewRazorpayService(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayEnabled)

	rewardService := services.NewRewardService(db)
	pickupService := services.NewPickupService(db, rewardService)
	paymentService := services.NewPaymentService(db, gateway, cfg.PickupFee)
	feedbackService := services.NewFeedbackService(db)
	panchayathService := services.NewPanchayathService(db)
	receiptService := services.NewReceiptService()

	authHandler := handlers.NewAuthHandler(db, cfg)
	profileHandler := handlers.NewProfileHandler(db)
	pickupHandler := handlers.NewPickupHandler(db, pickupService, telegramService, cfg.UploadDir)
	paymentHandler := handlers.NewPaymentHandler(db, paymentService, receiptService, telegramService, cfg.RazorpayKeyID)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	workerHandler := handlers.NewWorkerHandler(pickupService, feedbackService, paymentService)
	adminHandler := handlers.NewAdminHandler(db, panchayathService, rewardService, feedbackService)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.RegisterUser)
	auth.Post("/register/worker", authHandler.RegisterWorker)
	auth.Post("/register/admin", authHandler.RegisterAdmin)
	auth.Post("/login", authHandler.Login)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg, db))

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)

	protected.Post("/pickups", pickupHandler.Create)
	protected.Get("/pickups", pickupHandler.List)
	protected.Get("/pickups/:id", pickupHandler.Get)
	protected.Post("/pickups/:id/cancel", pickupHandler.Cancel)
	protected.Post("/pickups/:id/image", pickupHandler.UploadImage)

	protected.Post("/pickups/:id/payment", paymentHandler.Prepare)
	protected.Post("/pickups/:id/payment/confirm", paymentHandler.Confirm)
	protected.Get("/pickups/:id/receipt", paymentHandler.Receipt)

	protected.Post("/feedback", feedbackHandler.Submit)
	protected.Get("/feedback", feedbackHandler.ListMine)

	// Worker routes
	worker := protected.Group("/worker", middleware.RequireRole(models.RoleWorker, models.RoleAdmin))
	worker.Get("/pickups", workerHandler.ListPickups)
	worker.Post("/pickups/:id/picked", workerHandler.MarkPicked)
	worker.Post("/pickups/:id/completed", workerHandler.MarkCompleted)
	worker.Post("/pickups/:id/cash", workerHandler.CollectCash)
	worker.Get("/feedback", workerHandler.ListFeedback)
	worker.Post("/feedback/:id/resolve", workerHandler.ResolveFeedback)

	// Admin routes
	admin := protected.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	admin.Get("/panchayaths", adminHandler.ListPanchayaths)
	admin.Post("/panchayaths", adminHandler.CreatePanchayath)
	admin.Put("/panchayaths/:id", adminHandler.UpdatePanchayath)
	admin.Delete("/panchayaths/:id", adminHandler.DeletePanchayath)
	admin.Get("/wards", adminHandler.ListWards)
	admin.Post("/wards", adminHandler.CreateWard)
	admin.Delete("/wards/:id", adminHandler.DeleteWard)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Put("/users/:id/role", adminHandler.AssignRole)
	admin.Get("/pickups", adminHandler.ListAllPickups)
	admin.Get("/stats", adminHandler.DashboardStats)
	admin.Post("/rewards/recalculate", adminHandler.RecalculateRewards)
	admin.Post("/rewards/bonus", adminHandler.AwardBonus)
	admin.Get("/feedback", adminHandler.ListAllFeedback)
	admin.Post("/feedback/:id/respond", adminHandler.RespondFeedback)
}
