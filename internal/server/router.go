package server

import (
	"github.com/MaxLisniak/commerce/internal/auth"
	"github.com/MaxLisniak/commerce/internal/config"
	biddingHandler "github.com/MaxLisniak/commerce/services/bidding/handler"
	catalogHandler "github.com/MaxLisniak/commerce/services/catalog/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(biddingService biddingHandler.BiddingServiceInterface, catalogService catalogHandler.CatalogServiceInterface, authCfg config.AuthConfig) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	secret := []byte(authCfg.Secret)

	router.Use(gin.Recovery())             // recover from panics
	router.Use(RequestLoggerMiddleware)    // custom request logging
	router.Use(IdentityMiddleware(secret)) // optional bearer identity

	bidsH := biddingHandler.NewBiddingHandler(biddingService)
	catalogH := catalogHandler.NewCatalogHandler(catalogService, func(userID, username string) (string, error) {
		return auth.GenerateToken(userID, username, secret, authCfg.TokenTTL)
	})

	router.POST("/login", catalogH.LoginHandler)

	users := router.Group("/users")
	{
		users.POST("", catalogH.RegisterUserHandler)
		users.DELETE("/me", RequireUser, catalogH.DeleteCurrentUserHandler)
	}

	categories := router.Group("/categories")
	{
		categories.GET("", catalogH.ListCategoriesHandler)
		categories.POST("", RequireUser, catalogH.CreateCategoryHandler)
		categories.DELETE("/:category_id", RequireUser, catalogH.DeleteCategoryHandler)
	}

	listings := router.Group("/listings")
	{
		listings.GET("", catalogH.ListListingsHandler)
		listings.POST("", RequireUser, catalogH.CreateListingHandler)
		listings.GET("/:listing_id", catalogH.GetListingHandler)

		listings.POST("/:listing_id/bids", RequireUser, bidsH.PlaceBidHandler)
		listings.GET("/:listing_id/bids", bidsH.GetBidsByListingHandler)
		listings.GET("/:listing_id/price", bidsH.GetCurrentPriceHandler)
		listings.GET("/:listing_id/highest", bidsH.GetHighestBidHandler)
		listings.POST("/:listing_id/close", RequireUser, bidsH.CloseListingHandler)

		listings.POST("/:listing_id/comments", RequireUser, catalogH.AddCommentHandler)
		listings.GET("/:listing_id/comments", catalogH.ListCommentsHandler)

		listings.POST("/:listing_id/watch", RequireUser, catalogH.WatchHandler)
		listings.DELETE("/:listing_id/watch", RequireUser, catalogH.UnwatchHandler)
	}

	me := router.Group("", RequireUser)
	{
		me.GET("/watchlist", catalogH.WatchlistHandler)
		me.GET("/notifications", catalogH.NotificationsHandler)
		me.POST("/notifications/:notification_id/seen", catalogH.MarkNotificationSeenHandler)
	}

	return router
}
