package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/stripe/stripe-go/v74"

	"cteskills_backend/internal/controller"
	"cteskills_backend/internal/middleware"
	"cteskills_backend/internal/model"
	"cteskills_backend/pkg/config"
	"cteskills_backend/pkg/cron"
	"cteskills_backend/pkg/database"
	"cteskills_backend/pkg/email"
	"cteskills_backend/pkg/seed"
	"cteskills_backend/pkg/subscription"
	"cteskills_backend/pkg/utils/cloudflare"
	"cteskills_backend/pkg/utils/jwt"
)

func setupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Auth Routes
	auth := api.Group("/auth")
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)

	// Public catalog routes
	api.Get("/videos", controller.GetVideos)
	api.Get("/videos/:slug", middleware.OptionalAuthMiddleware(), controller.GetVideoBySlug)
	api.Post("/videos/:slug/view", middleware.OptionalAuthMiddleware(), controller.RecordVideoView)
	api.Get("/pathways", controller.GetPathways)
	api.Get("/pathways/:slug/videos", controller.GetPathwayVideos)
	api.Get("/categories", controller.GetCategories)

	// School licensing inquiries
	api.Post("/inquiries", controller.CreateInquiry)

	// Stripe webhook
	api.Post("/webhook", controller.HandleStripeWebhook)

	// Protected Routes
	protected := api.Group("/", middleware.AuthMiddleware())
	protected.Get("/me", controller.GetMe)
	protected.Get("/orders/my", controller.GetMyOrders)

	subscriptions := protected.Group("/subscriptions")
	subscriptions.Get("/check", controller.CheckSubscription)
	subscriptions.Post("/sync", controller.SyncSubscription)
	subscriptions.Get("/my", controller.GetMySubscription)
	subscriptions.Post("/create-checkout-session", controller.CreateCheckoutSession)
	subscriptions.Post("/create-portal-session", controller.CreatePortalSession)
	subscriptions.Post("/cancel", controller.CancelMySubscription)

	// Admin back office
	admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.RequireAdmin())
	admin.Get("/stats", controller.GetAdminDashboardStats)
	admin.Get("/customers", controller.AdminListCustomers)
	admin.Post("/refunds", controller.AdminRefund)
	admin.Post("/subscriptions/cancel", controller.AdminCancelSubscription)
	admin.Get("/orders", controller.AdminListOrders)

	admin.Post("/videos", controller.CreateVideo)
	admin.Put("/videos/:id", controller.UpdateVideo)
	admin.Delete("/videos/:id", controller.DeleteVideo)
	admin.Post("/videos/:id/thumbnail", controller.UploadVideoThumbnail)

	admin.Post("/pathways", controller.CreatePathway)
	admin.Put("/pathways/:id", controller.UpdatePathway)
	admin.Delete("/pathways/:id", controller.DeletePathway)

	admin.Post("/categories", controller.CreateCategory)
	admin.Delete("/categories/:id", controller.DeleteCategory)

	admin.Get("/inquiries", controller.GetInquiries)
	admin.Put("/inquiries/:id/status", controller.UpdateInquiryStatus)
	admin.Put("/inquiries/:id/read", controller.MarkInquiryRead)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.Load()

	if cfg.JWT.Secret != "" {
		jwt.Init(cfg.JWT.Secret)
	}
	stripe.Key = cfg.Stripe.SecretKey
	subscription.ConfigurePlans(cfg.Stripe.MonthlyPriceID, cfg.Stripe.AnnualPriceID)
	cloudflare.Init(cloudflare.Config{
		AccountID:  cfg.R2.AccountID,
		AccessKey:  cfg.R2.AccessKey,
		SecretKey:  cfg.R2.SecretKey,
		BucketName: cfg.R2.BucketName,
		PublicURL:  cfg.R2.PublicURL,
	})

	if err := email.InitEmailService(os.Getenv("RESEND_API_KEY")); err != nil {
		log.Printf("Email service disabled: %v", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set in .env")
	}

	database.InitDB(dbURL)
	err := database.MigrateDatabase(
		&model.User{},
		&model.UserRole{},
		&model.Subscription{},
		&model.Order{},
		&model.Pathway{},
		&model.Category{},
		&model.Video{},
		&model.VideoAccess{},
		&model.VideoView{},
		&model.VideoStats{},
		&model.SchoolInquiry{},
	)
	if err != nil {
		log.Printf("Migration warning: %v", err)
	}

	seed.SeedPathways(database.GetDB())
	seed.SeedCategories(database.GetDB())

	controller.InitSubscriptionController(cfg)
	cron.InitSubscriptionExpiryCron()
	cron.InitVideoStatsCron()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New())

	setupRoutes(app)

	log.Printf("Server is running on port %s", cfg.Server.Port)
	log.Fatal(app.Listen(":" + cfg.Server.Port))
}
