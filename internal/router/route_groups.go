package router

import (
	"catering_backend/internal/handlers"
	"catering_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupOrderRoutes sets up the order lifecycle routes.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := authenticatedGroup.Group("/orders")
	{
		bookerRoutes := orderRoutes.Group("")
		bookerRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Booker"))
		{
			bookerRoutes.PUT("/:id/start-picking", orderHandler.StartPicking)
			bookerRoutes.POST("/:id/review", orderHandler.SubmitReview)
			bookerRoutes.GET("/:id/quantity-check", orderHandler.QuantityCheck)
		}

		// settlement entry: the scheduled job and the fulfillment webhook
		adminRoutes := orderRoutes.Group("")
		adminRoutes.Use(middleware.RoleAuthMiddleware("Admin"))
		{
			adminRoutes.POST("/:id/evaluate", orderHandler.EvaluateTransition)
		}
	}
}

// SetupPlanRoutes sets up the plan attendance routes.
func SetupPlanRoutes(authenticatedGroup *gin.RouterGroup, attendanceHandler *handlers.AttendanceHandler) {
	planRoutes := authenticatedGroup.Group("/plans")
	planRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Partner"))
	{
		planRoutes.PUT("/:id/scan-mode", attendanceHandler.ToggleScanMode)
		planRoutes.GET("/:id/attendance/:code", attendanceHandler.ResolveCode)
	}
}
