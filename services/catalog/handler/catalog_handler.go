package handler

import (
	"context"
	"net/http"
	"strconv"

	catalog "github.com/MaxLisniak/commerce/internal/catalogService"
	model "github.com/MaxLisniak/commerce/internal/models"
	"github.com/MaxLisniak/commerce/internal/repository"
	"github.com/MaxLisniak/commerce/services/bidding/helpers"
	"github.com/MaxLisniak/commerce/utils"

	"github.com/gin-gonic/gin"
)

type CatalogServiceInterface interface {
	RegisterUser(ctx context.Context, username, password string) (model.User, error)
	Login(ctx context.Context, username, password string) (model.User, error)
	DeleteUser(ctx context.Context, requesterID, userID string) error

	CreateCategory(ctx context.Context, requesterID, name string) (model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	DeleteCategory(ctx context.Context, requesterID, categoryID string) error

	CreateListing(ctx context.Context, ownerID string, in catalog.NewListingInput) (model.Listing, error)
	ListListings(ctx context.Context, filter repository.ListingFilter) ([]catalog.ListingSummary, error)
	GetListing(ctx context.Context, listingID, viewerID string) (catalog.ListingDetail, error)

	AddComment(ctx context.Context, listingID, userID, text string) (model.Comment, error)
	ListComments(ctx context.Context, listingID string) ([]model.Comment, error)

	Watch(ctx context.Context, userID, listingID string) error
	Unwatch(ctx context.Context, userID, listingID string) error
	Watchlist(ctx context.Context, userID string) ([]catalog.ListingSummary, error)

	Notifications(ctx context.Context, userID string) ([]model.Notification, error)
	MarkNotificationSeen(ctx context.Context, notificationID, userID string) (model.Notification, error)
}

// TokenIssuer signs a bearer token for a registered or logged-in user
type TokenIssuer func(userID, username string) (string, error)

type CatalogHandler struct {
	service CatalogServiceInterface
	issue   TokenIssuer
}

func NewCatalogHandler(service CatalogServiceInterface, issue TokenIssuer) *CatalogHandler {
	return &CatalogHandler{service: service, issue: issue}
}

// RegisterUserHandler handles POST /users
func (h *CatalogHandler) RegisterUserHandler(c *gin.Context) {
	var req helpers.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterUserHandler", err)
		return
	}

	user, err := h.service.RegisterUser(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		helpers.RespondError(c, "RegisterUserHandler", "failed to register user", err, map[string]any{"username": req.Username})
		return
	}

	token, err := h.issue(user.UserID, user.Username)
	if err != nil {
		helpers.RespondError(c, "RegisterUserHandler", "failed to issue token", err, map[string]any{"user_id": user.UserID})
		return
	}

	resp := helpers.UserResponse{UserID: user.UserID, Username: user.Username, Token: token}
	utils.JSONResponse(c, http.StatusCreated, resp, "user registered successfully")
	helpers.LogSuccess("RegisterUserHandler", "user registered successfully", map[string]any{"user_id": user.UserID})
}

// LoginHandler handles POST /login and issues a fresh token
func (h *CatalogHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	user, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		helpers.RespondError(c, "LoginHandler", "login failed", err, map[string]any{"username": req.Username})
		return
	}

	token, err := h.issue(user.UserID, user.Username)
	if err != nil {
		helpers.RespondError(c, "LoginHandler", "failed to issue token", err, map[string]any{"user_id": user.UserID})
		return
	}

	resp := helpers.UserResponse{UserID: user.UserID, Username: user.Username, Token: token}
	utils.JSONResponse(c, http.StatusOK, resp, "logged in successfully")
	helpers.LogSuccess("LoginHandler", "logged in successfully", map[string]any{"user_id": user.UserID})
}

// DeleteCurrentUserHandler handles DELETE /users/me
func (h *CatalogHandler) DeleteCurrentUserHandler(c *gin.Context) {
	userID := helpers.CurrentUserID(c)
	if err := h.service.DeleteUser(c.Request.Context(), userID, userID); err != nil {
		helpers.RespondError(c, "DeleteCurrentUserHandler", "failed to delete user", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "user deleted successfully")
	helpers.LogSuccess("DeleteCurrentUserHandler", "user deleted successfully", map[string]any{"user_id": userID})
}

// ListCategoriesHandler handles GET /categories
func (h *CatalogHandler) ListCategoriesHandler(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		helpers.RespondError(c, "ListCategoriesHandler", "error retrieving categories", err, nil)
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}

	utils.JSONResponse(c, http.StatusOK, categories, "categories retrieved successfully")
}

// CreateCategoryHandler handles POST /categories
func (h *CatalogHandler) CreateCategoryHandler(c *gin.Context) {
	var req helpers.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateCategoryHandler", err)
		return
	}

	userID := helpers.CurrentUserID(c)
	category, err := h.service.CreateCategory(c.Request.Context(), userID, req.Name)
	if err != nil {
		helpers.RespondError(c, "CreateCategoryHandler", "failed to create category", err, map[string]any{"name": req.Name})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, category, "category created successfully")
	helpers.LogSuccess("CreateCategoryHandler", "category created successfully", map[string]any{
		"category_id": category.CategoryID,
		"user_id":     userID,
	})
}

// DeleteCategoryHandler handles DELETE /categories/:category_id
func (h *CatalogHandler) DeleteCategoryHandler(c *gin.Context) {
	categoryID := c.Param("category_id")
	userID := helpers.CurrentUserID(c)
	if err := h.service.DeleteCategory(c.Request.Context(), userID, categoryID); err != nil {
		helpers.RespondError(c, "DeleteCategoryHandler", "failed to delete category", err, map[string]any{
			"category_id": categoryID,
			"user_id":     userID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "category deleted successfully")
	helpers.LogSuccess("DeleteCategoryHandler", "category deleted successfully", map[string]any{"category_id": categoryID})
}

// ListListingsHandler handles GET /listings?category_id=&active=
func (h *CatalogHandler) ListListingsHandler(c *gin.Context) {
	filter := repository.ListingFilter{CategoryID: c.Query("category_id")}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			helpers.HandleBindError(c, "ListListingsHandler", err)
			return
		}
		filter.ActiveOnly = active
	}

	listings, err := h.service.ListListings(c.Request.Context(), filter)
	if err != nil {
		helpers.RespondError(c, "ListListingsHandler", "error retrieving listings", err, map[string]any{"category_id": filter.CategoryID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, listings, "listings retrieved successfully")
	helpers.LogSuccess("ListListingsHandler", "listings retrieved successfully", map[string]any{"count": len(listings)})
}

// CreateListingHandler handles POST /listings
func (h *CatalogHandler) CreateListingHandler(c *gin.Context) {
	userID := helpers.CurrentUserID(c)

	var req helpers.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateListingHandler", err)
		return
	}

	listing, err := h.service.CreateListing(c.Request.Context(), userID, catalog.NewListingInput{
		Title:         req.Title,
		Description:   req.Description,
		StartingPrice: req.StartingPrice,
		Photo:         req.Photo,
		CategoryID:    req.CategoryID,
	})
	if err != nil {
		helpers.RespondError(c, "CreateListingHandler", "failed to create listing", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, listing, "listing created successfully")
	helpers.LogSuccess("CreateListingHandler", "listing created successfully", map[string]any{
		"listing_id": listing.ListingID,
		"user_id":    userID,
	})
}

// GetListingHandler handles GET /listings/:listing_id
func (h *CatalogHandler) GetListingHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	detail, err := h.service.GetListing(c.Request.Context(), listingID, helpers.CurrentUserID(c))
	if err != nil {
		helpers.RespondError(c, "GetListingHandler", "error retrieving listing", err, map[string]any{"listing_id": listingID})
		return
	}
	if detail.Comments == nil {
		detail.Comments = []model.Comment{}
	}

	utils.JSONResponse(c, http.StatusOK, detail, "listing retrieved successfully")
}

// AddCommentHandler handles POST /listings/:listing_id/comments
func (h *CatalogHandler) AddCommentHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	userID := helpers.CurrentUserID(c)

	var req helpers.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "AddCommentHandler", err)
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), listingID, userID, req.Text)
	if err != nil {
		helpers.RespondError(c, "AddCommentHandler", "failed to add comment", err, map[string]any{
			"listing_id": listingID,
			"user_id":    userID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, comment, "comment added successfully")
	helpers.LogSuccess("AddCommentHandler", "comment added successfully", map[string]any{
		"comment_id": comment.CommentID,
		"listing_id": listingID,
	})
}

// ListCommentsHandler handles GET /listings/:listing_id/comments
func (h *CatalogHandler) ListCommentsHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	comments, err := h.service.ListComments(c.Request.Context(), listingID)
	if err != nil {
		helpers.RespondError(c, "ListCommentsHandler", "error retrieving comments", err, map[string]any{"listing_id": listingID})
		return
	}
	if comments == nil {
		comments = []model.Comment{}
	}

	utils.JSONResponse(c, http.StatusOK, comments, "comments retrieved successfully")
}

// WatchHandler handles POST /listings/:listing_id/watch
func (h *CatalogHandler) WatchHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	userID := helpers.CurrentUserID(c)
	if err := h.service.Watch(c.Request.Context(), userID, listingID); err != nil {
		helpers.RespondError(c, "WatchHandler", "failed to watch listing", err, map[string]any{
			"listing_id": listingID,
			"user_id":    userID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "listing added to watchlist")
}

// UnwatchHandler handles DELETE /listings/:listing_id/watch
func (h *CatalogHandler) UnwatchHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	userID := helpers.CurrentUserID(c)
	if err := h.service.Unwatch(c.Request.Context(), userID, listingID); err != nil {
		helpers.RespondError(c, "UnwatchHandler", "failed to unwatch listing", err, map[string]any{
			"listing_id": listingID,
			"user_id":    userID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "listing removed from watchlist")
}

// WatchlistHandler handles GET /watchlist
func (h *CatalogHandler) WatchlistHandler(c *gin.Context) {
	userID := helpers.CurrentUserID(c)
	listings, err := h.service.Watchlist(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "WatchlistHandler", "error retrieving watchlist", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, listings, "watchlist retrieved successfully")
}

// NotificationsHandler handles GET /notifications
func (h *CatalogHandler) NotificationsHandler(c *gin.Context) {
	userID := helpers.CurrentUserID(c)
	notifications, err := h.service.Notifications(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "NotificationsHandler", "error retrieving notifications", err, map[string]any{"user_id": userID})
		return
	}

	resp := make([]helpers.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp = append(resp, helpers.NewNotificationResponse(n))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "notifications retrieved successfully")
	helpers.LogSuccess("NotificationsHandler", "notifications retrieved successfully", map[string]any{
		"user_id": userID,
		"count":   len(resp),
	})
}

// MarkNotificationSeenHandler handles POST /notifications/:notification_id/seen
func (h *CatalogHandler) MarkNotificationSeenHandler(c *gin.Context) {
	notificationID := c.Param("notification_id")
	userID := helpers.CurrentUserID(c)

	n, err := h.service.MarkNotificationSeen(c.Request.Context(), notificationID, userID)
	if err != nil {
		helpers.RespondError(c, "MarkNotificationSeenHandler", "failed to mark notification seen", err, map[string]any{
			"notification_id": notificationID,
			"user_id":         userID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewNotificationResponse(n), "notification marked as seen")
}
