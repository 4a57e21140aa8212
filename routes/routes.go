package routes

import (
	"github.com/gin-gonic/gin"

	"heartcare-backend/config"
	"heartcare-backend/controllers"
	"heartcare-backend/models"
	"heartcare-backend/security"
)

// AuthRoutes mounts registration, login and session management.
func AuthRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", controllers.Register)
	rg.POST("/auth/login", controllers.Login)
	rg.POST("/auth/refresh", controllers.Refresh)
	rg.POST("/auth/logout", controllers.Logout)

	protected := rg.Group("")
	protected.Use(security.AuthMiddleware(config.UsersDB))
	{
		protected.GET("/auth/profile", controllers.GetProfile)
		protected.POST("/auth/change-password", controllers.ChangePassword)
	}
}

// PortalRoutes mounts the doctor directory, consultation ledger and chat.
// Everything here requires an authenticated user.
func PortalRoutes(parent *gin.RouterGroup) {
	rg := parent.Group("")
	rg.Use(security.AuthMiddleware(config.UsersDB))

	doctors := rg.Group("/doctors")
	{
		doctors.POST("", security.RequireRole(config.UsersDB, models.RoleDoctor), controllers.RegisterDoctor)
		doctors.GET("", controllers.FindDoctors)
		doctors.GET("/:id", controllers.GetDoctor)
		doctors.GET("/by-user/:user_id", controllers.GetDoctorByUser)
		doctors.POST("/:id/reviews", security.RequireRole(config.UsersDB, models.RolePatient), controllers.AddReview)
		doctors.GET("/:id/consultations", security.RequireRole(config.UsersDB, models.RoleDoctor), controllers.ListDoctorConsultations)
	}

	consultations := rg.Group("/consultations")
	{
		consultations.POST("", security.RequireRole(config.UsersDB, models.RolePatient), controllers.BookConsultation)
		consultations.GET("/patient/:patient_id", controllers.ListPatientConsultations)
		consultations.PUT("/:id/status", security.RequireRole(config.UsersDB, models.RoleDoctor, models.RolePatient), controllers.UpdateConsultationStatus)
		consultations.POST("/:id/video-link", controllers.EnsureVideoLink)
		consultations.POST("/:id/messages", controllers.SendChatMessage)
		consultations.GET("/:id/messages", controllers.GetChatMessages)
	}
}

// PredictRoutes mounts the risk scoring endpoints.
func PredictRoutes(rg *gin.RouterGroup, pc *controllers.PredictController) {
	rg.POST("/predict", pc.Predict)
	rg.POST("/predict/report", pc.PredictReport)
	rg.GET("/predict/features", pc.FeatureImportances)
}
