package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/MaxLisniak/commerce/internal/biddingerrors"
	"github.com/MaxLisniak/commerce/internal/models"
	"github.com/MaxLisniak/commerce/internal/repository"
	"github.com/MaxLisniak/commerce/utils"
)

// BidReader is the read side of the bidding core the catalog displays
type BidReader interface {
	CurrentPrice(ctx context.Context, listingID string) (int64, error)
	HighestBid(ctx context.Context, listingID string) (*models.Bid, error)
	GetBidsForListing(ctx context.Context, listingID string) ([]models.Bid, error)
}

// CatalogService handles users, categories, listings, comments, watchlists and the notification inbox
type CatalogService struct {
	repo     repository.CatalogDB
	bids     BidReader
	now      func() time.Time
	admins   map[string]struct{}
	hashCost int
}

// Option configures a CatalogService
type Option func(*CatalogService)

// WithAdmins names the users allowed to manage categories
func WithAdmins(usernames ...string) Option {
	return func(s *CatalogService) {
		for _, name := range usernames {
			if name = strings.TrimSpace(name); name != "" {
				s.admins[name] = struct{}{}
			}
		}
	}
}

// WithHashCost sets the bcrypt cost for new passwords
func WithHashCost(cost int) Option {
	return func(s *CatalogService) { s.hashCost = cost }
}

// NewCatalogService creates a new CatalogService instance
func NewCatalogService(repo repository.CatalogDB, bids BidReader, opts ...Option) *CatalogService {
	s := &CatalogService{
		repo:     repo,
		bids:     bids,
		now:      func() time.Time { return time.Now().UTC() },
		admins:   map[string]struct{}{},
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewListingInput is what an owner submits to open an auction
type NewListingInput struct {
	Title         string `json:"title" validate:"required,max=64"`
	Description   string `json:"description" validate:"required,max=1000"`
	StartingPrice int64  `json:"starting_price" validate:"gte=1"`
	Photo         string `json:"photo" validate:"omitempty,max=1000,http_url"`
	CategoryID    string `json:"category_id" validate:"omitempty,uuid"`
}

// ListingSummary is a listing as shown on the index
type ListingSummary struct {
	models.Listing
	CurrentPrice int64 `json:"current_price"`
}

// ListingDetail is a listing as shown on its own page
type ListingDetail struct {
	Listing      models.Listing   `json:"listing"`
	CurrentPrice int64            `json:"current_price"`
	HighestBid   *models.Bid      `json:"highest_bid"`
	BidCount     int              `json:"bid_count"`
	Comments     []models.Comment `json:"comments"`
	Watching     bool             `json:"watching"`
	IsOwner      bool             `json:"is_owner"`
}

type credentialsInput struct {
	Username string `json:"username" validate:"required,max=150"`
	// bcrypt ignores anything past 72 bytes
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type categoryInput struct {
	Name string `json:"name" validate:"required,max=32"`
}

type commentInput struct {
	Text string `json:"text" validate:"required,max=500"`
}

// RegisterUser creates a user with a unique username and a hashed password
func (s *CatalogService) RegisterUser(ctx context.Context, username, password string) (models.User, error) {
	in := credentialsInput{Username: strings.TrimSpace(username), Password: password}
	if err := validateInput(in); err != nil {
		return models.User{}, fmt.Errorf("service: register user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return models.User{}, fmt.Errorf("service: failed to hash password: %w", err)
	}

	user := models.User{
		UserID:       utils.GenerateID(),
		Username:     in.Username,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return models.User{}, fmt.Errorf("service: failed to register user %s: %w", in.Username, err)
	}
	return user, nil
}

// Login checks a username and password pair
func (s *CatalogService) Login(ctx context.Context, username, password string) (models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, biddingerrors.ErrUserNotFound) {
		return models.User{}, fmt.Errorf("service: login %q: %w", username, biddingerrors.ErrInvalidCredentials)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("service: login %q: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, fmt.Errorf("service: login %q: %w", username, biddingerrors.ErrInvalidCredentials)
	}
	return user, nil
}

// DeleteUser removes an account. Users may only delete themselves.
func (s *CatalogService) DeleteUser(ctx context.Context, requesterID, userID string) error {
	if requesterID == "" || requesterID != userID {
		return fmt.Errorf("service: %w - user %q cannot delete user %q", biddingerrors.ErrForbidden, requesterID, userID)
	}
	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("service: failed to delete user %s: %w", userID, err)
	}
	return nil
}

// requireAdmin lets through only users named in the admin list
func (s *CatalogService) requireAdmin(ctx context.Context, requesterID string) error {
	if requesterID == "" {
		return fmt.Errorf("%w - missing user", biddingerrors.ErrForbidden)
	}
	user, err := s.repo.GetUser(ctx, requesterID)
	if errors.Is(err, biddingerrors.ErrUserNotFound) {
		return fmt.Errorf("%w - unknown user %q", biddingerrors.ErrForbidden, requesterID)
	}
	if err != nil {
		return err
	}
	if _, ok := s.admins[user.Username]; !ok {
		return fmt.Errorf("%w - user %q is not an admin", biddingerrors.ErrForbidden, user.Username)
	}
	return nil
}

// CreateCategory adds a category with a unique name. Admins only.
func (s *CatalogService) CreateCategory(ctx context.Context, requesterID, name string) (models.Category, error) {
	if err := s.requireAdmin(ctx, requesterID); err != nil {
		return models.Category{}, fmt.Errorf("service: create category: %w", err)
	}
	in := categoryInput{Name: strings.TrimSpace(name)}
	if err := validateInput(in); err != nil {
		return models.Category{}, fmt.Errorf("service: create category: %w", err)
	}

	category := models.Category{CategoryID: utils.GenerateID(), Name: in.Name}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return models.Category{}, fmt.Errorf("service: failed to create category %s: %w", in.Name, err)
	}
	return category, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}
	return categories, nil
}

// DeleteCategory removes a category; its listings stay, uncategorized. Admins only.
func (s *CatalogService) DeleteCategory(ctx context.Context, requesterID, categoryID string) error {
	if err := s.requireAdmin(ctx, requesterID); err != nil {
		return fmt.Errorf("service: delete category: %w", err)
	}
	if err := s.repo.DeleteCategory(ctx, categoryID); err != nil {
		return fmt.Errorf("service: failed to delete category %s: %w", categoryID, err)
	}
	return nil
}

// CreateListing opens a new active auction owned by ownerID
func (s *CatalogService) CreateListing(ctx context.Context, ownerID string, in NewListingInput) (models.Listing, error) {
	if ownerID == "" {
		return models.Listing{}, fmt.Errorf("service: %w - missing owner", biddingerrors.ErrForbidden)
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Photo = strings.TrimSpace(in.Photo)
	if err := validateInput(in); err != nil {
		return models.Listing{}, fmt.Errorf("service: create listing: %w", err)
	}

	listing := models.Listing{
		ListingID:     utils.GenerateID(),
		Title:         in.Title,
		Description:   in.Description,
		StartingPrice: in.StartingPrice,
		Photo:         in.Photo,
		OwnerID:       ownerID,
		Active:        true,
		CreatedAt:     s.now(),
	}
	if in.CategoryID != "" {
		if _, err := s.repo.GetCategory(ctx, in.CategoryID); err != nil {
			return models.Listing{}, fmt.Errorf("service: create listing: %w", err)
		}
		categoryID := in.CategoryID
		listing.CategoryID = &categoryID
	}

	if err := s.repo.CreateListing(ctx, listing); err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to create listing: %w", err)
	}
	return listing, nil
}

// ListListings returns listings with their current price, oldest first
func (s *CatalogService) ListListings(ctx context.Context, filter repository.ListingFilter) ([]ListingSummary, error) {
	listings, err := s.repo.ListListings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list listings: %w", err)
	}

	summaries := make([]ListingSummary, 0, len(listings))
	for _, l := range listings {
		price, err := s.bids.CurrentPrice(ctx, l.ListingID)
		if err != nil {
			return nil, fmt.Errorf("service: failed to list listings: %w", err)
		}
		summaries = append(summaries, ListingSummary{Listing: l, CurrentPrice: price})
	}
	return summaries, nil
}

// GetListing assembles the listing page as seen by viewerID, who may be empty
func (s *CatalogService) GetListing(ctx context.Context, listingID, viewerID string) (ListingDetail, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return ListingDetail{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}

	bids, err := s.bids.GetBidsForListing(ctx, listingID)
	if err != nil {
		return ListingDetail{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}
	highest, ok := models.HighestBid(bids)
	var highestPtr *models.Bid
	if ok {
		highestPtr = &highest
	}

	comments, err := s.repo.GetCommentsByListing(ctx, listingID)
	if err != nil {
		return ListingDetail{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}

	detail := ListingDetail{
		Listing:      listing,
		CurrentPrice: listing.CurrentPrice(highestPtr),
		HighestBid:   highestPtr,
		BidCount:     len(bids),
		Comments:     comments,
		IsOwner:      listing.IsOwnedBy(viewerID),
	}
	if viewerID != "" {
		watching, err := s.repo.IsWatching(ctx, viewerID, listingID)
		if err != nil {
			return ListingDetail{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
		}
		detail.Watching = watching
	}
	return detail, nil
}

// AddComment posts text on a listing as userID
func (s *CatalogService) AddComment(ctx context.Context, listingID, userID, text string) (models.Comment, error) {
	if userID == "" {
		return models.Comment{}, fmt.Errorf("service: %w - anonymous comment", biddingerrors.ErrForbidden)
	}
	in := commentInput{Text: strings.TrimSpace(text)}
	if err := validateInput(in); err != nil {
		return models.Comment{}, fmt.Errorf("service: add comment: %w", err)
	}

	author := userID
	comment := models.Comment{
		CommentID: utils.GenerateID(),
		ListingID: listingID,
		UserID:    &author,
		Text:      in.Text,
		CreatedAt: s.now(),
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return models.Comment{}, fmt.Errorf("service: failed to add comment to listing %s: %w", listingID, err)
	}
	return comment, nil
}

func (s *CatalogService) ListComments(ctx context.Context, listingID string) ([]models.Comment, error) {
	comments, err := s.repo.GetCommentsByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list comments for listing %s: %w", listingID, err)
	}
	return comments, nil
}

// Watch adds a listing to the user's watchlist. Watching twice is a no-op.
func (s *CatalogService) Watch(ctx context.Context, userID, listingID string) error {
	if err := s.repo.AddToWatchlist(ctx, userID, listingID); err != nil {
		return fmt.Errorf("service: failed to watch listing %s: %w", listingID, err)
	}
	return nil
}

func (s *CatalogService) Unwatch(ctx context.Context, userID, listingID string) error {
	if err := s.repo.RemoveFromWatchlist(ctx, userID, listingID); err != nil {
		return fmt.Errorf("service: failed to unwatch listing %s: %w", listingID, err)
	}
	return nil
}

// Watchlist returns the user's watched listings with their current price
func (s *CatalogService) Watchlist(ctx context.Context, userID string) ([]ListingSummary, error) {
	listings, err := s.repo.GetWatchlist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get watchlist for user %s: %w", userID, err)
	}

	summaries := make([]ListingSummary, 0, len(listings))
	for _, l := range listings {
		price, err := s.bids.CurrentPrice(ctx, l.ListingID)
		if err != nil {
			return nil, fmt.Errorf("service: failed to get watchlist for user %s: %w", userID, err)
		}
		summaries = append(summaries, ListingSummary{Listing: l, CurrentPrice: price})
	}
	return summaries, nil
}

// Notifications returns the user's inbox, newest first
func (s *CatalogService) Notifications(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, err := s.repo.GetNotificationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get notifications for user %s: %w", userID, err)
	}
	return notifications, nil
}

// MarkNotificationSeen flags a notification as read. Only its recipient may do so.
func (s *CatalogService) MarkNotificationSeen(ctx context.Context, notificationID, userID string) (models.Notification, error) {
	n, err := s.repo.GetNotification(ctx, notificationID)
	if err != nil {
		return models.Notification{}, fmt.Errorf("service: failed to mark notification %s seen: %w", notificationID, err)
	}
	if n.UserID != userID {
		return models.Notification{}, fmt.Errorf("service: %w - notification %s belongs to another user", biddingerrors.ErrForbidden, notificationID)
	}
	if n.Seen {
		return n, nil
	}

	if err := s.repo.MarkNotificationSeen(ctx, notificationID); err != nil {
		return models.Notification{}, fmt.Errorf("service: failed to mark notification %s seen: %w", notificationID, err)
	}
	n.Seen = true
	return n, nil
}
