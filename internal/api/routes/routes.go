// internal/api/routes/routes.go
package routes

import (
	"log/slog"
	"net/http"

	"construction-site-api-server/config"
	"construction-site-api-server/internal/api/handlers"
	"construction-site-api-server/internal/api/middleware"
	"construction-site-api-server/internal/auth"
	"construction-site-api-server/internal/database"
	"construction-site-api-server/internal/inventory"
	"construction-site-api-server/internal/models"
	"construction-site-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
)

// Deps are the components the router wires into its handlers.
type Deps struct {
	Config   config.Config
	DB       *mongo.Database
	Store    inventory.Store
	JWT      *auth.JWTManager
	Uploader handlers.FileUploader // nil disables uploads
	Hub      *socket.Hub
	Log      *slog.Logger
	// Metrics is nil when metrics are disabled.
	Metrics *prometheus.Registry
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	return cfg
}

// SetupRouter builds the gin engine with every route of the API.
func SetupRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(corsConfig(d.Config.Server.AllowedOrigins)))

	if d.Metrics != nil {
		router.Use(middleware.NewMetrics(d.Metrics).Handler())
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	users := database.NewUserStore(d.DB)
	employees := database.NewEmployeeStore(d.DB)
	attendance := database.NewAttendanceStore(d.DB)

	authHandler := &handlers.AuthHandler{Users: users, OTPs: database.NewOTPStore(d.DB), JWT: d.JWT, OTP: d.Config.OTP, Uploader: d.Uploader, Log: d.Log}
	materialHandler := &handlers.MaterialHandler{Store: d.Store, Uploader: d.Uploader, Hub: d.Hub, Log: d.Log}
	projectHandler := &handlers.ProjectHandler{Projects: database.NewProjectStore(d.DB), Log: d.Log}
	employeeHandler := &handlers.EmployeeHandler{Employees: employees, Attendance: attendance, Log: d.Log}
	attendanceHandler := &handlers.AttendanceHandler{Employees: employees, Attendance: attendance, Log: d.Log}
	userHandler := &handlers.UserHandler{Users: users, Uploader: d.Uploader, Log: d.Log}
	dprHandler := &handlers.DPRHandler{Employees: employees, Attendance: attendance, Store: d.Store, Log: d.Log}
	webSocketHandler := &handlers.WebSocketHandler{Hub: d.Hub, JWT: d.JWT, Log: d.Log}

	api := router.Group("/api")
	{
		api.GET("/ws", webSocketHandler.ServeWs)

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/verify-otp", authHandler.VerifyOTP)
			authRoutes.POST("/resend-otp", authHandler.ResendOTP)
		}

		protected := api.Group("/")
		protected.Use(middleware.Authenticate(d.JWT))
		adminOnly := middleware.Authorize(models.RoleAdmin)

		materials := protected.Group("/materials")
		{
			materials.POST("/add", materialHandler.AddMaterial)
			materials.GET("", materialHandler.ListMaterials)
			materials.POST("/take", materialHandler.TakeMaterial)
			materials.GET("/total-availability", materialHandler.TotalAvailability)
			materials.GET("/total-consumed", materialHandler.TotalConsumed)
			materials.GET("/all-details-grouped", materialHandler.AllDetailsGrouped)
			materials.GET("/live-availability", materialHandler.LiveAvailability)
			materials.DELETE("/by-code/:matCode", adminOnly, materialHandler.DeleteByCode)
			materials.DELETE("/:id", adminOnly, materialHandler.DeleteMaterial)
		}

		projects := protected.Group("/projects")
		{
			projects.GET("", projectHandler.GetAllProjects)
			projects.GET("/:id", projectHandler.GetProjectByID)
			projects.POST("", adminOnly, projectHandler.CreateProject)
			projects.PUT("/:id", adminOnly, projectHandler.UpdateProject)
			projects.PATCH("/:id/status", adminOnly, projectHandler.UpdateProjectStatus)
			projects.DELETE("/:id", adminOnly, projectHandler.DeleteProject)
		}

		employeesRoutes := protected.Group("/employees")
		{
			employeesRoutes.POST("", employeeHandler.CreateEmployee)
			employeesRoutes.GET("", employeeHandler.GetEmployees)
			employeesRoutes.PUT("/:id", employeeHandler.UpdateEmployee)
			employeesRoutes.DELETE("/:id", employeeHandler.DeleteEmployee)
		}

		attendanceRoutes := protected.Group("/attendance")
		{
			attendanceRoutes.POST("", attendanceHandler.MarkAttendance)
			attendanceRoutes.GET("/grouped", attendanceHandler.GetGroupedAttendance)
		}

		usersRoutes := protected.Group("/users")
		{
			usersRoutes.PUT("/update-profile", userHandler.UpdateProfile)
			usersRoutes.POST("", adminOnly, userHandler.CreateUser)
			usersRoutes.GET("", adminOnly, userHandler.GetUsers)
			usersRoutes.DELETE("/:id", adminOnly, userHandler.DeleteUser)
		}

		dpr := protected.Group("/dpr")
		{
			dpr.GET("/attendance-report/:projectId", dprHandler.AttendanceReport)
			dpr.GET("/material-report/:projectId", dprHandler.MaterialReport)
			dpr.GET("/material-report/:projectId/export", dprHandler.ExportMaterialReport)
			dpr.GET("/stats/:projectId", dprHandler.Stats)
		}
	}

	return router
}
