package routes

import (
	"educators_academy_go/controllers"
	"educators_academy_go/middleware"
	"educators_academy_go/services"
	"educators_academy_go/services/websocket"
	"educators_academy_go/storage"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, academy *services.Academy, storageService *storage.StorageService, wsHub *websocket.Hub) {
	authController := &controllers.AuthController{}
	publicController := controllers.NewPublicController(academy)
	adminController := controllers.NewAdminController(academy, storageService)
	assistantController := controllers.NewAssistantController(academy)
	exportController := controllers.NewExportController(academy)
	wsController := controllers.NewWebSocketController(wsHub)

	api := app.Group("/api")

	// Public browsing surface (no authentication required)
	public := api.Group("/public")
	public.Get("/stages", publicController.GetStages)
	public.Get("/grades", publicController.GetGrades)
	public.Get("/grades/:id", publicController.GetGrade)
	public.Get("/teachers", publicController.GetTeachers)
	public.Get("/courses", publicController.GetCourses)
	public.Get("/data", publicController.GetData)

	// Authentication routes
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)
	auth.Post("/logout", middleware.JWTMiddleware(), authController.Logout)

	// Admin editing surface
	admin := api.Group("/admin", middleware.JWTMiddleware(), middleware.RequireAdmin(), middleware.LogActivityMiddleware())

	grades := admin.Group("/grades")
	grades.Put("/", adminController.UpsertGrade)
	grades.Put("/collection", adminController.ReplaceGrades)
	grades.Put("/:id/schedule", adminController.UpdateGradeSchedule)
	grades.Get("/:id/schedule/export", exportController.ExportGradeSchedule)
	grades.Delete("/:id", adminController.DeleteGrade)

	teachers := admin.Group("/teachers")
	teachers.Put("/", adminController.UpsertTeacher)
	teachers.Put("/collection", adminController.ReplaceTeachers)
	teachers.Post("/:id/avatar", adminController.UploadTeacherAvatar)
	teachers.Delete("/:id", adminController.DeleteTeacher)

	courses := admin.Group("/courses")
	courses.Put("/", adminController.UpsertCourse)
	courses.Put("/collection", adminController.ReplaceCourses)
	courses.Post("/:id/thumbnail", adminController.UploadCourseThumbnail)
	courses.Delete("/:id", adminController.DeleteCourse)

	// Voice assistant surface
	assistant := admin.Group("/assistant")
	assistant.Post("/schedule", assistantController.UpdateSchedule)
	assistant.Post("/teachers", assistantController.AddTeachers)

	admin.Get("/ws/stats", wsController.Stats)

	// WebSocket connection endpoint - use websocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", wsController.Handler())
}
