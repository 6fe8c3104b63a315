package repository

import (
	"context"

	model "github.com/MaxLisniak/commerce/internal/models"
)

//go:generate mockgen -destination=mock_repository.go -package=repository github.com/MaxLisniak/commerce/internal/repository AuctionDB

// AuctionDB defines the storage the bidding core runs against. Every write
// the core performs goes through InTx so that the read it depends on and the
// write itself commit or roll back together.
type AuctionDB interface {
	InTx(ctx context.Context, fn func(tx AuctionDB) error) error

	GetListing(ctx context.Context, listingID string) (model.Listing, error)
	// LockListing reads a listing and holds it against concurrent writers until the transaction ends
	LockListing(ctx context.Context, listingID string) (model.Listing, error)
	SetListingActive(ctx context.Context, listingID string, active bool) error

	RecordBidForListing(ctx context.Context, bid model.Bid) error
	GetBidsByListing(ctx context.Context, listingID string) ([]model.Bid, error)
	GetHighestBid(ctx context.Context, listingID string) (model.Bid, error)

	CreateNotification(ctx context.Context, notification model.Notification) error
}

// ListingFilter narrows ListListings
type ListingFilter struct {
	CategoryID string
	ActiveOnly bool
}

// CatalogDB covers the plain CRUD around the auction core.
//
// Deletes follow these rules: deleting a user removes the user's listings,
// bids, notifications and watchlist and clears authorship of the user's
// comments; deleting a category clears the category of its listings.
type CatalogDB interface {
	CreateUser(ctx context.Context, user model.User) error
	GetUser(ctx context.Context, userID string) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	DeleteUser(ctx context.Context, userID string) error

	CreateCategory(ctx context.Context, category model.Category) error
	GetCategory(ctx context.Context, categoryID string) (model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error

	CreateListing(ctx context.Context, listing model.Listing) error
	GetListing(ctx context.Context, listingID string) (model.Listing, error)
	ListListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error)

	AddComment(ctx context.Context, comment model.Comment) error
	GetCommentsByListing(ctx context.Context, listingID string) ([]model.Comment, error)

	AddToWatchlist(ctx context.Context, userID, listingID string) error
	RemoveFromWatchlist(ctx context.Context, userID, listingID string) error
	GetWatchlist(ctx context.Context, userID string) ([]model.Listing, error)
	IsWatching(ctx context.Context, userID, listingID string) (bool, error)

	GetNotificationsByUser(ctx context.Context, userID string) ([]model.Notification, error)
	GetNotification(ctx context.Context, notificationID string) (model.Notification, error)
	MarkNotificationSeen(ctx context.Context, notificationID string) error
}

// Store is implemented by both backends
type Store interface {
	AuctionDB
	CatalogDB
}
