package main

import (
	"backend-penjemputan/internal/config"
	"backend-penjemputan/internal/http/handler"
	"backend-penjemputan/internal/http/middleware"
	"backend-penjemputan/internal/models"
	"backend-penjemputan/internal/realtime"
	"log"
	"os"
	"runtime"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	app := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: true,
	})

	config.LoadEnv()
	config.InitClock()
	config.InitRedis()
	config.InitDB()
	defer config.CloseDB()

	go realtime.RunEventsBroadcaster()

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Penjemputan API jalan",
		})
	})

	app.Post("/san/login", handler.Login)
	app.Get("/san/export/transfers", middleware.BasicAuth(), handler.ExportTransfers)

	// Realtime events (JWT via query, browser tidak bisa set header di WS)
	app.Get("/ws/events", handler.WSUpgrade(), websocket.New(handler.EventsWebSocket))

	// Base API (semua wajib login)
	api := app.Group("/api", middleware.JWTAuth())

	// Auth
	api.Post("/logout", handler.Logout)

	// Notifikasi (semua role, scoped ke recipient)
	api.Get("/notifications", handler.GetNotifications)
	api.Patch("/notifications/:id/read", handler.MarkNotificationRead)

	// ===== GUARDIAN ROUTES =====
	api.Post("/pass", middleware.RoleAuth(models.RoleGuardian), handler.IssuePass)
	api.Post("/queue", middleware.RoleAuth(models.RoleGuardian), handler.DeclareQueue)

	// ===== GATE OPERATOR ROUTES (teacher & super_admin) =====
	api.Get("/pass/:token", middleware.RoleAuth(models.RoleTeacher, models.RoleSuperAdmin), handler.ResolvePass)
	api.Get("/queue", middleware.RoleAuth(models.RoleTeacher, models.RoleSuperAdmin), handler.GetQueue)
	api.Post("/transfer", middleware.RoleAuth(models.RoleTeacher, models.RoleSuperAdmin), handler.CommitTransfer)
	api.Get("/transfers/today", middleware.RoleAuth(models.RoleTeacher, models.RoleSuperAdmin), handler.GetTodayTransfers)
	api.Post("/transfer/override", middleware.RoleAuth(models.RoleTeacher, models.RoleSuperAdmin), handler.RequestOverride)

	// ===== SUPER ADMIN ROUTES =====
	api.Get("/transfer/override", middleware.RoleAuth(models.RoleSuperAdmin), handler.GetOverrides)
	api.Patch("/transfer/override/:id/approve", middleware.RoleAuth(models.RoleSuperAdmin), handler.ApproveOverride)
	api.Patch("/transfer/override/:id/reject", middleware.RoleAuth(models.RoleSuperAdmin), handler.RejectOverride)
	api.Get("/audits", middleware.RoleAuth(models.RoleSuperAdmin), handler.GetAudits)

	addr := os.Getenv("APP_HOST") + ":" + os.Getenv("APP_PORT")
	log.Println("Server jalan di", addr)
	log.Fatal(app.Listen(addr))
}
