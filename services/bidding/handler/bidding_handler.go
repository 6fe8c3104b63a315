package handler

import (
	"context"
	"net/http"

	bidding "github.com/MaxLisniak/commerce/internal/biddingService"
	model "github.com/MaxLisniak/commerce/internal/models"
	"github.com/MaxLisniak/commerce/services/bidding/helpers"
	"github.com/MaxLisniak/commerce/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -destination=mock_bidding_service.go -package=handler github.com/MaxLisniak/commerce/services/bidding/handler BiddingServiceInterface

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, listingID, userID string, value int64) (model.Bid, error)
	CloseListing(ctx context.Context, listingID, userID string) (bidding.CloseResult, error)
	CurrentPrice(ctx context.Context, listingID string) (int64, error)
	HighestBid(ctx context.Context, listingID string) (*model.Bid, error)
	GetBidsForListing(ctx context.Context, listingID string) ([]model.Bid, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// PlaceBidHandler handles POST /listings/:listing_id/bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	userID := helpers.CurrentUserID(c)

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	value := *req.Value
	bid, err := h.service.PlaceBid(c.Request.Context(), listingID, userID, value)
	if err != nil {
		helpers.RespondError(c, "PlaceBidHandler", "failed to place bid", err, map[string]any{
			"listing_id": listingID,
			"user_id":    userID,
			"value":      value,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"bid_id":     bid.BidID,
		"listing_id": bid.ListingID,
		"user_id":    userID,
		"value":      bid.Value,
	})
}

// GetBidsByListingHandler handles GET /listings/:listing_id/bids
func (h *BiddingHandler) GetBidsByListingHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	bids, err := h.service.GetBidsForListing(c.Request.Context(), listingID)
	if err != nil {
		helpers.RespondError(c, "GetBidsByListingHandler", "error retrieving bids", err, map[string]any{"listing_id": listingID})
		return
	}

	resp := make([]helpers.BidResponse, 0, len(bids))
	for _, bid := range bids {
		resp = append(resp, helpers.NewBidResponse(bid))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByListingHandler", "bids retrieved successfully", map[string]any{
		"listing_id": listingID,
		"count":      len(resp),
	})
}

// GetCurrentPriceHandler handles GET /listings/:listing_id/price
func (h *BiddingHandler) GetCurrentPriceHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	price, err := h.service.CurrentPrice(c.Request.Context(), listingID)
	if err != nil {
		helpers.RespondError(c, "GetCurrentPriceHandler", "error retrieving price", err, map[string]any{"listing_id": listingID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.PriceResponse{ListingID: listingID, CurrentPrice: price}, "price retrieved successfully")
}

// GetHighestBidHandler handles GET /listings/:listing_id/highest
func (h *BiddingHandler) GetHighestBidHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	bid, err := h.service.HighestBid(c.Request.Context(), listingID)
	if err != nil {
		helpers.RespondError(c, "GetHighestBidHandler", "highest bid error", err, map[string]any{"listing_id": listingID})
		return
	}

	if bid == nil {
		utils.JSONResponse(c, http.StatusOK, nil, "no bids for listing yet")
		utils.Info("GetHighestBidHandler: no bids yet", map[string]any{"listing_id": listingID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(*bid), "highest bid retrieved successfully")
	helpers.LogSuccess("GetHighestBidHandler", "highest bid retrieved successfully", map[string]any{
		"bid_id":     bid.BidID,
		"listing_id": bid.ListingID,
		"user_id":    bid.UserID,
		"value":      bid.Value,
	})
}

// CloseListingHandler handles POST /listings/:listing_id/close
func (h *BiddingHandler) CloseListingHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	userID := helpers.CurrentUserID(c)

	result, err := h.service.CloseListing(c.Request.Context(), listingID, userID)
	if err != nil {
		helpers.RespondError(c, "CloseListingHandler", "failed to close listing", err, map[string]any{
			"listing_id": listingID,
			"user_id":    userID,
		})
		return
	}

	resp := helpers.CloseResponse{
		ListingID: result.Listing.ListingID,
		Active:    result.Listing.Active,
	}
	fields := map[string]any{"listing_id": listingID, "user_id": userID}
	if result.Notification != nil {
		n := helpers.NewNotificationResponse(*result.Notification)
		resp.Notification = &n
		fields["winner_id"] = n.UserID
	}

	utils.JSONResponse(c, http.StatusOK, resp, "listing closed successfully")
	helpers.LogSuccess("CloseListingHandler", "listing closed successfully", fields)
}
