package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	config "github.com/scifunedu/scifun_backend/configs"
	"github.com/scifunedu/scifun_backend/database"
	"github.com/scifunedu/scifun_backend/exports"
	"github.com/scifunedu/scifun_backend/handlers"
	"github.com/scifunedu/scifun_backend/jobs"
	"github.com/scifunedu/scifun_backend/notifications"
	"github.com/scifunedu/scifun_backend/receipts"
	"github.com/scifunedu/scifun_backend/routes"
	"github.com/scifunedu/scifun_backend/services"
	"github.com/scifunedu/scifun_backend/websocket"
)

func main() {
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	if err := database.SeedAdmin(db); err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
	}
	notifications.InitEmailService()

	receiptService := receipts.NewService()
	feeService := services.NewFeeService(db, receiptService)
	referralService := services.NewReferralService(db)
	exporter := exports.NewSheetExporter(config.Config("REGISTRATION_SHEET_URL"))

	authHandler := handlers.NewAuthHandler(db, referralService, exporter)
	studentHandler := handlers.NewStudentHandler(db, feeService, referralService)
	profileHandler := handlers.NewProfileHandler(db)
	feeHandler := handlers.NewFeeHandler(db, feeService)
	referralHandler := handlers.NewReferralHandler(db, referralService)
	adminHandler := handlers.NewAdminHandler(db)
	attendanceHandler := handlers.NewAttendanceHandler(db)

	c := cron.New()
	c.AddFunc("30 2 * * *", func() { jobs.ReconcileReferralPoints(db) })
	c.AddFunc("0 9 1 * *", func() { jobs.SendFeeReminders(db) })
	go c.Start()
	log.Println("✅ Cron jobs scheduled successfully.")

	app := fiber.New(fiber.Config{
		AppName:       "SciFun Portal",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to the SciFun Portal API",
		})
	})

	routes.AuthRoutes(app, authHandler)
	routes.StudentRoutes(app, studentHandler, profileHandler, attendanceHandler)
	routes.AdminRoutes(app, feeHandler, referralHandler, adminHandler, attendanceHandler)
	routes.UploadRoutes(app)
	routes.WebsocketRoutes(app)

	go websocket.RunHub()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	port := config.Config("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("✅ Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
