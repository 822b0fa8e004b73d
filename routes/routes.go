// File: /routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"afisha-api/config"
	"afisha-api/controllers"
	"afisha-api/services"
	"afisha-api/statsclient"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, stats *statsclient.Client, emailService *services.EmailService) {
	// Controllers
	userController := controllers.NewUserController(services.NewUserService(db))
	categoryController := controllers.NewCategoryController(services.NewCategoryService(db))
	eventController := controllers.NewEventController(services.NewEventService(db, stats, emailService))
	requestController := controllers.NewRequestController(services.NewRequestService(db, emailService))
	compilationController := controllers.NewCompilationController(services.NewCompilationService(db))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Admin API
	admin := r.Group("/admin")
	{
		adminUsers := admin.Group("/users")
		{
			adminUsers.POST("", userController.CreateUser)
			adminUsers.GET("", userController.GetUsers)
			adminUsers.DELETE("/:userId", userController.DeleteUser)
		}

		adminCategories := admin.Group("/categories")
		{
			adminCategories.POST("", categoryController.CreateCategory)
			adminCategories.PATCH("/:catId", categoryController.UpdateCategory)
			adminCategories.DELETE("/:catId", categoryController.DeleteCategory)
		}

		adminEvents := admin.Group("/events")
		{
			adminEvents.GET("", eventController.GetEventsAdmin)
			adminEvents.PATCH("/:eventId", eventController.UpdateEventAdmin)
		}

		adminCompilations := admin.Group("/compilations")
		{
			adminCompilations.POST("", compilationController.CreateCompilation)
			adminCompilations.PATCH("/:compId", compilationController.UpdateCompilation)
			adminCompilations.DELETE("/:compId", compilationController.DeleteCompilation)
		}
	}

	// Private API
	users := r.Group("/users/:userId")
	{
		userEvents := users.Group("/events")
		{
			userEvents.GET("", eventController.GetOwnEvents)
			userEvents.POST("", eventController.CreateEvent)
			userEvents.GET("/:eventId", eventController.GetOwnEvent)
			userEvents.PATCH("/:eventId", eventController.UpdateOwnEvent)
			userEvents.GET("/:eventId/requests", requestController.GetEventRequests)
			userEvents.PATCH("/:eventId/requests", requestController.ReviewRequests)
		}

		userRequests := users.Group("/requests")
		{
			userRequests.GET("", requestController.GetOwnRequests)
			userRequests.POST("", requestController.CreateRequest)
			userRequests.PATCH("/:requestId/cancel", requestController.CancelRequest)
		}
	}

	// Public API
	events := r.Group("/events")
	{
		events.GET("", eventController.GetPublicEvents)
		events.GET("/:id", eventController.GetPublicEvent)
	}

	categories := r.Group("/categories")
	{
		categories.GET("", categoryController.GetCategories)
		categories.GET("/:catId", categoryController.GetCategory)
	}

	compilations := r.Group("/compilations")
	{
		compilations.GET("", compilationController.GetCompilations)
		compilations.GET("/:compId", compilationController.GetCompilation)
	}
}

// SetupCORS allows browser clients from any origin.
func SetupCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
