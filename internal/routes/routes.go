package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-server/internal/auth"
	"hospital-admin-server/internal/config"
	"hospital-admin-server/internal/handlers"
	"hospital-admin-server/internal/middleware"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/notify"
	"hospital-admin-server/internal/realtime"
	"hospital-admin-server/internal/storage"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, svc *auth.Service, hub *realtime.Hub, store *storage.Store, notifier *notify.Notifier) {
	authHandler := handlers.NewAuthHandler(svc, cfg)
	userHandler := handlers.NewUserHandler(db, svc)
	departmentHandler := handlers.NewDepartmentHandler(db)
	doctorHandler := handlers.NewDoctorHandler(db)
	patientHandler := handlers.NewPatientHandler(db)
	catalogHandler := handlers.NewTestCatalogHandler(db)
	patientTestHandler := handlers.NewPatientTestHandler(db)
	reportHandler := handlers.NewReportHandler(db, store, hub, notifier)
	notificationHandler := handlers.NewNotificationHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg, svc))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
		}

		// Department management (admin); staff can read the list
		departmentRoutes := private.Group("/departments")
		{
			departmentRoutes.GET("",
				middleware.RequireRoles(svc, models.RoleAdmin, models.RoleDepartment, models.RoleRegistration),
				departmentHandler.GetDepartments)
			departmentRoutes.GET("/:id",
				middleware.RequireRoles(svc, models.RoleAdmin, models.RoleDepartment, models.RoleRegistration),
				departmentHandler.GetDepartmentByID)

			adminOnly := departmentRoutes.Group("")
			adminOnly.Use(middleware.RequireRoles(svc, models.RoleAdmin))
			{
				adminOnly.POST("", departmentHandler.CreateDepartment)
				adminOnly.PUT("/:id", departmentHandler.UpdateDepartment)
				adminOnly.DELETE("/:id", departmentHandler.DeleteDepartment)
			}
		}

		// User account management (admin-only)
		userRoutes := private.Group("/users")
		userRoutes.Use(middleware.RequireRoles(svc, models.RoleAdmin))
		{
			userRoutes.POST("", userHandler.CreateUser)
			userRoutes.GET("", userHandler.GetUsers)
			userRoutes.GET("/:id", userHandler.GetUserByID)
			userRoutes.PUT("/:id", userHandler.UpdateUser)
			userRoutes.PATCH("/:id/password", userHandler.UpdatePassword)
			userRoutes.DELETE("/:id", userHandler.DeleteUser)
		}

		// Doctor records (managed by department staff and admins)
		doctorRoutes := private.Group("/doctors")
		doctorRoutes.Use(middleware.RequireRoles(svc, models.RoleAdmin, models.RoleDepartment))
		{
			doctorRoutes.GET("", doctorHandler.GetDoctors)
			doctorRoutes.GET("/:id", doctorHandler.GetDoctorByID)
			doctorRoutes.PUT("/:id", doctorHandler.UpdateDoctor)
		}

		// Patient registration and lookup
		patientRoutes := private.Group("/patients")
		{
			staff := middleware.RequireRoles(svc, models.RoleAdmin, models.RoleDepartment, models.RoleRegistration)
			patientRoutes.POST("", staff, patientHandler.RegisterPatient)
			patientRoutes.GET("", staff, patientHandler.GetPatients)
			patientRoutes.GET("/export",
				middleware.RequireRoles(svc, models.RoleAdmin, models.RoleDepartment),
				patientHandler.ExportPatients)
			patientRoutes.GET("/assigned",
				middleware.RequireRoles(svc, models.RoleDoctor),
				patientHandler.GetAssignedPatients)
			patientRoutes.GET("/:id",
				middleware.RequireRoles(svc, models.RoleAdmin, models.RoleDepartment, models.RoleRegistration, models.RoleDoctor),
				patientHandler.GetPatientByID)
			patientRoutes.PUT("/:id", staff, patientHandler.UpdatePatient)
		}

		// Test catalog (department staff and admins)
		testRoutes := private.Group("/tests")
		testRoutes.Use(middleware.RequireRoles(svc, models.RoleAdmin, models.RoleDepartment))
		{
			testRoutes.POST("/types", catalogHandler.CreateTestType)
			testRoutes.GET("/types", catalogHandler.GetTestTypes)
			testRoutes.PUT("/types/:id", catalogHandler.UpdateTestType)
			testRoutes.DELETE("/types/:id", catalogHandler.DeleteTestType)
			testRoutes.POST("/subtypes", catalogHandler.CreateTestSubtype)
			testRoutes.DELETE("/subtypes/:id", catalogHandler.DeleteTestSubtype)
		}

		// Ordered tests
		patientTestRoutes := private.Group("/patient-tests")
		{
			orderers := middleware.RequireRoles(svc, models.RoleAdmin, models.RoleDepartment, models.RoleDoctor)
			patientTestRoutes.POST("", orderers, patientTestHandler.OrderTest)
			patientTestRoutes.GET("/patient/:patientId", orderers, patientTestHandler.GetTestsForPatient)
			patientTestRoutes.PATCH("/:id/status",
				middleware.RequireRoles(svc, models.RoleAdmin, models.RoleDepartment),
				patientTestHandler.UpdateTestStatus)
		}

		// Patient reports and the realtime stream
		reportRoutes := private.Group("/reports")
		{
			readers := middleware.RequireRoles(svc, models.RoleAdmin, models.RoleDepartment, models.RoleDoctor)
			writers := middleware.RequireRoles(svc, models.RoleAdmin, models.RoleDepartment)
			reportRoutes.POST("", writers, reportHandler.CreateReport)
			reportRoutes.GET("/patient/:patientId", readers, reportHandler.GetReportsForPatient)
			reportRoutes.GET("/:id/file", readers, reportHandler.GetReportFile)
			reportRoutes.PATCH("/:id/status", writers, reportHandler.UpdateReportStatus)
			reportRoutes.DELETE("/:id", writers, reportHandler.DeleteReport)
			reportRoutes.GET("/stream", readers, reportHandler.StreamReports)
		}

		// Notifications (any authenticated role)
		notificationRoutes := private.Group("/notifications")
		{
			notificationRoutes.GET("", notificationHandler.GetNotifications)
			notificationRoutes.PATCH("/:id/read", notificationHandler.MarkNotificationRead)
			notificationRoutes.PATCH("/read-all", notificationHandler.MarkAllNotificationsRead)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
