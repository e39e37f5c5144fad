package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/academix/gradebook-api/internal/middleware"
	"github.com/academix/gradebook-api/internal/models"
	"github.com/academix/gradebook-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth         *AuthHandler
	Scheme       *SchemeHandler
	AcademicYear *AcademicYearHandler
	Grade        *GradeHandler
	ReportCard   *ReportCardHandler
	Transcript   *TranscriptHandler
	Export       *ExportHandler
}

// RegisterRoutes mounts the API under the given router group.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, authService *service.AuthService) {
	staff := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher)
	admins := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", middleware.JWT(authService), h.Auth.Logout)
		auth.GET("/me", middleware.JWT(authService), h.Auth.Me)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	schemes := protected.Group("/grading-schemes")
	{
		schemes.POST("", admins, h.Scheme.Create)
		schemes.GET("", staff, h.Scheme.List)
		schemes.GET("/:id", staff, h.Scheme.Get)
		schemes.PUT("/:id", admins, h.Scheme.Update)
		schemes.DELETE("/:id", admins, h.Scheme.Delete)
		schemes.PUT("/:id/default", admins, h.Scheme.SetDefault)
		schemes.POST("/:id/boundaries", admins, h.Scheme.AddBoundary)
		schemes.DELETE("/:id/boundaries/:boundaryId", admins, h.Scheme.DeleteBoundary)
	}

	years := protected.Group("/academic-years")
	{
		years.POST("", admins, h.AcademicYear.Create)
		years.GET("", staff, h.AcademicYear.List)
		years.GET("/current", staff, h.AcademicYear.Current)
		years.PUT("/:id/current", admins, h.AcademicYear.SetCurrent)
	}

	grades := protected.Group("/grades")
	{
		grades.POST("/compute", staff, h.Grade.Compute)
		grades.POST("/compute-term", staff, h.Grade.ComputeTerm)
		grades.GET("", staff, h.Grade.List)
	}

	cards := protected.Group("/report-cards")
	{
		cards.POST("/generate", staff, h.ReportCard.Generate)
		cards.GET("", h.ReportCard.Get)
		cards.POST("/:id/publish", admins, h.ReportCard.Publish)
		cards.GET("/:id/pdf", h.Export.ReportCardPDF)
	}

	transcripts := protected.Group("/transcripts")
	{
		transcripts.GET("/:studentId", h.Transcript.Get)
		transcripts.POST("/:studentId/refresh", staff, h.Transcript.Refresh)
	}

	protected.GET("/classes/:id/grades.csv", staff, h.Export.ClassGradesCSV)
}
