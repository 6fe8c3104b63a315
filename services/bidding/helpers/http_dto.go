package helpers

import (
	"time"

	model "github.com/MaxLisniak/commerce/internal/models"
)

// Request/Response DTOs
// PlaceBidRequest only checks shape; the value itself is judged by the bid rules
type PlaceBidRequest struct {
	Value *int64 `json:"value" binding:"required"`
}

type RegisterUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateListingRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	StartingPrice int64  `json:"starting_price"`
	Photo         string `json:"photo"`
	CategoryID    string `json:"category_id"`
}

type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type BidResponse struct {
	BidID     string `json:"bid_id"`
	ListingID string `json:"listing_id"`
	UserID    string `json:"user_id"`
	Value     int64  `json:"value"`
	CreatedAt string `json:"created_at"`
}

type PriceResponse struct {
	ListingID    string `json:"listing_id"`
	CurrentPrice int64  `json:"current_price"`
}

type NotificationResponse struct {
	NotificationID string `json:"notification_id"`
	UserID         string `json:"user_id"`
	Text           string `json:"text"`
	Link           string `json:"link"`
	Seen           bool   `json:"seen"`
	CreatedAt      string `json:"created_at"`
}

type CloseResponse struct {
	ListingID    string                `json:"listing_id"`
	Active       bool                  `json:"active"`
	Notification *NotificationResponse `json:"notification"`
}

type UserResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// NewBidResponse formats a bid for the wire
func NewBidResponse(bid model.Bid) BidResponse {
	return BidResponse{
		BidID:     bid.BidID,
		ListingID: bid.ListingID,
		UserID:    bid.UserID,
		Value:     bid.Value,
		CreatedAt: bid.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func NewNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		NotificationID: n.NotificationID,
		UserID:         n.UserID,
		Text:           n.Text,
		Link:           n.Link,
		Seen:           n.Seen,
		CreatedAt:      n.CreatedAt.UTC().Format(time.RFC3339),
	}
}
