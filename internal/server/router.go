package server

import (
	"github.com/gin-gonic/gin"

	handler "auction-engine/services/lifecycle/handler"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(service handler.LifecycleService) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	lifecycleHandler := handler.NewLifecycleHandler(service)

	router.GET("/healthz", lifecycleHandler.HealthHandler)

	cycles := router.Group("/cycles")
	{
		cycles.POST("/bots", lifecycleHandler.RunBotCycleHandler)
		cycles.POST("/finalization", lifecycleHandler.RunFinalizationHandler)
	}

	auctions := router.Group("/auctions")
	{
		auctions.GET("/:auction_id/bids", lifecycleHandler.GetBidsHandler)
		auctions.GET("/:auction_id/winning", lifecycleHandler.GetWinningBidHandler)
	}

	return router
}
