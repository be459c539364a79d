package api

import (
	"log"

	"github.com/glowdesk/business_service/config"
	"github.com/glowdesk/business_service/infra/queue"
	"github.com/glowdesk/business_service/internal/api/rest/handlers"
	"github.com/glowdesk/business_service/internal/clients/payments"
	"github.com/glowdesk/business_service/internal/domain"
	"github.com/glowdesk/business_service/internal/helper"
	"github.com/glowdesk/business_service/internal/repository"
	"github.com/glowdesk/business_service/internal/services"
	"github.com/glowdesk/business_service/pkg/cloudinary"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func StartServer(cfg config.Config) {
	app := fiber.New()

	// ---------- CORS ----------
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.BaseURL,
		AllowHeaders:     "Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// ---------- DB ----------
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	log.Println("database connected")

	// ---------- MIGRATION (guarded by advisory lock) ----------
	const migrateLockID int64 = 20260311

	if err := db.Exec("SELECT pg_advisory_lock(?)", migrateLockID).Error; err != nil {
		log.Fatalf("migration lock error: %v", err)
	}
	defer func() {
		_ = db.Exec("SELECT pg_advisory_unlock(?)", migrateLockID).Error
	}()

	if err := db.AutoMigrate(
		&domain.Business{},
		&domain.Keyword{},
		&domain.Subscription{},
	); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	log.Println("migration successful")

	// ---------- Infra ----------
	kafkaProducer := queue.NewProducer(
		cfg.KafkaBroker,
		cfg.KafkaTopic,
		cfg.KafkaUsername,
		cfg.KafkaPassword,
	)
	cld, err := cloudinary.New()
	if err != nil {
		log.Fatalf("cloudinary init error: %v", err)
	}
	up := cloudinary.NewCloudinaryUploader(cld)
	paymentClient := payments.New(cfg.PaymentAPIKey, cfg.PaymentAPIBase)

	authHelper := helper.SetupAuth(cfg.AccessSecret)

	// ---------- Repositories ----------
	businessRepo := repository.NewBusinessRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	// ---------- Services ----------
	businessSvc := services.NewBusinessService(
		businessRepo,
		kafkaProducer,
		up,
		authHelper,
		cfg.MarkUnverifiedOnResend,
	)
	subscriptionSvc := services.NewSubscriptionService(
		businessRepo,
		subscriptionRepo,
		paymentClient,
	)

	// ---------- Handlers ----------
	handlers.NewBusinessHandler(businessSvc, authHelper).SetupRoutes(app)
	handlers.NewSubscriptionHandler(subscriptionSvc, authHelper).SetupRoutes(app)

	// ---------- Health ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// ---------- Listen ----------
	addr := cfg.ServerPort
	log.Println("listening on", addr)
	log.Fatal(app.Listen(addr))
}
