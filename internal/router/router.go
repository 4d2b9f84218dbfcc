package router

import (
	"database/sql"

	"catering_backend/internal/handlers"
	"catering_backend/internal/middleware"
	"catering_backend/internal/repositories"
	"catering_backend/internal/services"
	"catering_backend/internal/services/fulfillment"
	"catering_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	recordRepo := repositories.NewRecordRepository(db)

	// Initialize external collaborators
	fulfillmentAddr := utils.Getenv("FULFILLMENT_ADDR", "http://localhost:8090")
	fulfillmentClient := fulfillment.NewClient(fulfillmentAddr)
	notifier := services.NewLogNotifier()

	// Initialize Services
	lifecycleService := services.NewLifecycleService(recordRepo, fulfillmentClient, notifier)
	pickingService := services.NewPickingService()
	attendanceService := services.NewAttendanceService(recordRepo)

	// Initialize Handlers
	orderHandler := handlers.NewOrderHandler(lifecycleService, pickingService, recordRepo)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)

	apiV1 := engine.Group("/api/v1")

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupOrderRoutes(authenticated, orderHandler)
		SetupPlanRoutes(authenticated, attendanceHandler)
	}
}
