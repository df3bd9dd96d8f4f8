package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jfarango/user-upload-be/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		if err := deps.DBClient.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "user-upload-api",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "user-upload-api",
		})
	})

	userHandler := handler.NewUserHandler(deps)
	uploadHandler := handler.NewUploadHandler(deps)
	progressHandler := handler.NewProgressHandler(deps)

	// Progress channel lives outside the versioned API group
	r.GET("/ws/upload-progress", progressHandler.UploadProgress)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.GET("/:user_id", userHandler.GetUser)
		}

		excel := v1.Group("/excel")
		{
			excel.POST("/validate-file", uploadHandler.ValidateFile)
			excel.POST("/sheets", uploadHandler.Sheets)
			excel.POST("/preview", uploadHandler.Preview)
			excel.POST("/upload", uploadHandler.Upload)
			excel.GET("/stats", uploadHandler.Stats)
			excel.GET("/logs", uploadHandler.ListUploadLogs)
			excel.GET("/logs/:upload_id", uploadHandler.GetUploadLog)
		}
	}

	return r
}
