package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/handler"
	"github.com/noah-isme/coaching-center-api/internal/middleware"
	"github.com/noah-isme/coaching-center-api/internal/models"
)

type handlers struct {
	auth       *handler.AuthHandler
	users      *handler.UserHandler
	students   *handler.StudentHandler
	teachers   *handler.TeacherHandler
	rooms      *handler.RoomHandler
	batches    *handler.BatchHandler
	attendance *handler.AttendanceHandler
	exams      *handler.ExamHandler
	payments   *handler.PaymentHandler
	documents  *handler.DocumentHandler
	analytics  *handler.AnalyticsHandler
	dashboard  *handler.DashboardHandler
	reports    *handler.ReportHandler
	metrics    *handler.MetricsHandler
}

type routeDeps struct {
	jwt          gin.HandlerFunc
	loginLimiter gin.HandlerFunc
	audit        middleware.AuditWriter
	logger       *zap.Logger
}

var (
	managers    = middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)
	finance     = middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleAccountant)
	instructors = middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher)
)

func registerRoutes(r *gin.Engine, prefix string, h handlers, deps routeDeps) {
	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	api := r.Group(prefix)
	audited := func(resource string) gin.HandlerFunc {
		return middleware.Audit(deps.audit, resource, deps.logger)
	}

	auth := api.Group("/auth")
	auth.POST("/login", deps.loginLimiter, h.auth.Login)
	auth.POST("/refresh", h.auth.Refresh)
	auth.POST("/logout", deps.jwt, h.auth.Logout)
	auth.POST("/change-password", deps.jwt, h.auth.ChangePassword)
	auth.GET("/me", deps.jwt, h.auth.Me)

	api.GET("/export/:token", h.reports.DownloadReport)

	secured := api.Group("", deps.jwt)

	users := secured.Group("/users", audited("users"))
	users.GET("", managers, h.users.List)
	users.GET("/:id", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, middleware.RoleSelf), h.users.Get)
	users.POST("", managers, h.users.Create)
	users.PUT("/:id", managers, h.users.Update)
	users.PATCH("/:id/toggle-active", managers, h.users.ToggleActive)
	users.DELETE("/:id", managers, h.users.Delete)

	students := secured.Group("/students", audited("students"))
	students.GET("", h.students.List)
	students.GET("/:id", h.students.Get)
	students.POST("", managers, h.students.Create)
	students.PUT("/:id", managers, h.students.Update)
	students.PATCH("/:id/toggle-status", managers, h.students.ToggleStatus)
	students.DELETE("/:id", managers, h.students.Delete)

	teachers := secured.Group("/teachers", audited("teachers"))
	teachers.GET("", h.teachers.List)
	teachers.GET("/:id", h.teachers.Get)
	teachers.GET("/:id/availability", h.teachers.Availability)
	teachers.POST("", managers, h.teachers.Create)
	teachers.PUT("/:id", managers, h.teachers.Update)
	teachers.PATCH("/:id/toggle-active", managers, h.teachers.ToggleActive)
	teachers.DELETE("/:id", managers, h.teachers.Delete)

	rooms := secured.Group("/rooms", audited("rooms"))
	rooms.GET("", h.rooms.List)
	rooms.GET("/:id", h.rooms.Get)
	rooms.GET("/:id/slots", h.rooms.Slots)
	rooms.POST("", managers, h.rooms.Create)
	rooms.PUT("/:id", managers, h.rooms.Update)
	rooms.DELETE("/:id", managers, h.rooms.Delete)

	batches := secured.Group("/batches", audited("batches"))
	batches.GET("", h.batches.List)
	batches.GET("/schedule", h.batches.Schedule)
	batches.GET("/available-teachers", h.batches.AvailableTeachers)
	batches.GET("/:id", h.batches.Get)
	batches.POST("", managers, h.batches.Create)
	batches.PUT("/:id", managers, h.batches.Update)
	batches.PATCH("/:id/toggle-status", managers, h.batches.ToggleStatus)
	batches.DELETE("/:id", managers, h.batches.Delete)

	attendance := secured.Group("/attendance", audited("attendance"))
	attendance.GET("", h.attendance.List)
	attendance.GET("/students/:id/summary", h.attendance.Summary)
	attendance.POST("", instructors, h.attendance.Record)

	exams := secured.Group("/exams", audited("exams"))
	exams.GET("", h.exams.List)
	exams.GET("/:id", h.exams.Get)
	exams.GET("/:id/results", h.exams.Results)
	exams.POST("", instructors, h.exams.Create)
	exams.PUT("/:id", instructors, h.exams.Update)
	exams.POST("/:id/results", instructors, h.exams.RecordResults)
	exams.POST("/:id/publish", managers, h.exams.Publish)
	exams.DELETE("/:id", managers, h.exams.Delete)

	payments := secured.Group("/payments", finance, audited("payments"))
	payments.GET("", h.payments.List)
	payments.GET("/:id", h.payments.Get)
	payments.POST("", h.payments.Create)
	payments.PUT("/:id", h.payments.Update)
	payments.PATCH("/:id/status", h.payments.ChangeStatus)
	payments.DELETE("/:id", managers, h.payments.Delete)

	documents := secured.Group("/documents", audited("documents"))
	documents.GET("", h.documents.List)
	documents.GET("/:id", h.documents.Get)
	documents.POST("", h.documents.Create)
	documents.PUT("/:id", h.documents.Update)
	documents.PATCH("/:id/status", h.documents.ChangeStatus)
	documents.DELETE("/:id", managers, h.documents.Delete)

	reports := secured.Group("/reports")
	reports.GET("/dashboard", h.dashboard.Summary)
	reports.GET("/finance", finance, h.analytics.Finance)
	reports.GET("/system", middleware.RequireRoles(models.RoleSuperAdmin), h.analytics.System)
	reports.POST("/exports", finance, h.reports.GenerateReport)
	reports.GET("/exports/:id", finance, h.reports.ReportStatus)
}
