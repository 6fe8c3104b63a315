package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MaxLisniak/commerce/internal/biddingerrors"
	model "github.com/MaxLisniak/commerce/internal/models"
)

const watchlistTable = "watchlist"

// GormRepo implements Store on top of a relational database through GORM.
// The connection should be opened with TranslateError so that constraint
// violations surface as gorm.ErrDuplicatedKey and gorm.ErrForeignKeyViolated.
type GormRepo struct {
	db *gorm.DB
}

// NewGormRepo wraps an open GORM connection
func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

// Migrate creates or updates the schema
func (r *GormRepo) Migrate(ctx context.Context) error {
	err := r.db.WithContext(ctx).AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Listing{},
		&model.Bid{},
		&model.Comment{},
		&model.Notification{},
	)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// InTx runs fn inside a database transaction. Nested calls become savepoints.
func (r *GormRepo) InTx(ctx context.Context, fn func(tx AuctionDB) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{db: tx})
	})
}

// translate maps driver-level outcomes onto domain errors
func translate(err error, op string, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil:
		return fmt.Errorf("%s: %w", op, notFound)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s: %w: %v", op, biddingerrors.ErrInvalidInput, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// Users

func (r *GormRepo) CreateUser(ctx context.Context, user model.User) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("create user %s: %w", user.Username, biddingerrors.ErrUsernameTaken)
	}
	return translate(err, "create user", nil)
}

func (r *GormRepo) GetUser(ctx context.Context, userID string) (model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	return user, translate(err, "get user "+userID, biddingerrors.ErrUserNotFound)
}

func (r *GormRepo) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	return user, translate(err, "get user "+username, biddingerrors.ErrUserNotFound)
}

// DeleteUser applies the cascade rules explicitly so they hold on every backend
func (r *GormRepo) DeleteUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&model.User{}).Error; err != nil {
			return translate(err, "delete user "+userID, biddingerrors.ErrUserNotFound)
		}

		owned := tx.Model(&model.Listing{}).Select("listing_id").Where("owner_id = ?", userID)

		steps := []struct {
			op  string
			run func() error
		}{
			{"delete bids", func() error {
				return tx.Where("user_id = ? OR listing_id IN (?)", userID, owned).Delete(&model.Bid{}).Error
			}},
			{"delete comments on owned listings", func() error {
				return tx.Where("listing_id IN (?)", owned).Delete(&model.Comment{}).Error
			}},
			{"orphan comments", func() error {
				return tx.Model(&model.Comment{}).Where("user_id = ?", userID).Update("user_id", nil).Error
			}},
			{"delete notifications", func() error {
				return tx.Where("user_id = ?", userID).Delete(&model.Notification{}).Error
			}},
			{"delete watchlist", func() error {
				return tx.Exec("DELETE FROM "+watchlistTable+" WHERE user_id = ? OR listing_id IN (?)", userID, owned).Error
			}},
			{"delete listings", func() error {
				return tx.Where("owner_id = ?", userID).Delete(&model.Listing{}).Error
			}},
			{"delete user", func() error {
				return tx.Where("user_id = ?", userID).Delete(&model.User{}).Error
			}},
		}
		for _, step := range steps {
			if err := step.run(); err != nil {
				return fmt.Errorf("delete user %s: %s: %w", userID, step.op, err)
			}
		}
		return nil
	})
}

// Categories

func (r *GormRepo) CreateCategory(ctx context.Context, category model.Category) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&category).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("create category %s: %w", category.Name, biddingerrors.ErrCategoryExists)
	}
	return translate(err, "create category", nil)
}

func (r *GormRepo) GetCategory(ctx context.Context, categoryID string) (model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).First(&category).Error
	return category, translate(err, "get category "+categoryID, biddingerrors.ErrCategoryNotFound)
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	err := r.db.WithContext(ctx).Order("name").Find(&categories).Error
	return categories, translate(err, "list categories", nil)
}

// DeleteCategory removes a category and leaves its listings uncategorized
func (r *GormRepo) DeleteCategory(ctx context.Context, categoryID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Listing{}).Where("category_id = ?", categoryID).Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("delete category %s: detach listings: %w", categoryID, err)
		}
		result := tx.Where("category_id = ?", categoryID).Delete(&model.Category{})
		if result.Error != nil {
			return fmt.Errorf("delete category %s: %w", categoryID, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("delete category %s: %w", categoryID, biddingerrors.ErrCategoryNotFound)
		}
		return nil
	})
}

// Listings

func (r *GormRepo) CreateListing(ctx context.Context, listing model.Listing) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&listing).Error
	return translate(err, "create listing", nil)
}

func (r *GormRepo) GetListing(ctx context.Context, listingID string) (model.Listing, error) {
	var listing model.Listing
	err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).First(&listing).Error
	return listing, translate(err, "get listing "+listingID, biddingerrors.ErrListingNotFound)
}

// LockListing issues SELECT ... FOR UPDATE. Dialects without row locks ignore the clause.
func (r *GormRepo) LockListing(ctx context.Context, listingID string) (model.Listing, error) {
	var listing model.Listing
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("listing_id = ?", listingID).
		First(&listing).Error
	return listing, translate(err, "lock listing "+listingID, biddingerrors.ErrListingNotFound)
}

func (r *GormRepo) SetListingActive(ctx context.Context, listingID string, active bool) error {
	result := r.db.WithContext(ctx).Model(&model.Listing{}).Where("listing_id = ?", listingID).Update("active", active)
	if result.Error != nil {
		return fmt.Errorf("set listing %s active: %w", listingID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("set listing %s active: %w", listingID, biddingerrors.ErrListingNotFound)
	}
	return nil
}

// ListListings returns listings in creation order
func (r *GormRepo) ListListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error) {
	query := r.db.WithContext(ctx).Model(&model.Listing{})
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}

	listings := []model.Listing{}
	err := query.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: "created_at"}},
		{Column: clause.Column{Name: "listing_id"}},
	}}).Find(&listings).Error
	return listings, translate(err, "list listings", nil)
}

// Bids

func (r *GormRepo) RecordBidForListing(ctx context.Context, bid model.Bid) error {
	err := r.db.WithContext(ctx).Create(&bid).Error
	return translate(err, fmt.Sprintf("record bid for listing %s", bid.ListingID), nil)
}

func (r *GormRepo) GetBidsByListing(ctx context.Context, listingID string) ([]model.Bid, error) {
	if _, err := r.GetListing(ctx, listingID); err != nil {
		return nil, fmt.Errorf("get bids: %w", err)
	}

	bids := []model.Bid{}
	err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).Order("created_at").Find(&bids).Error
	return bids, translate(err, "get bids for listing "+listingID, nil)
}

// GetHighestBid returns the highest bid; ties go to the most recent one
func (r *GormRepo) GetHighestBid(ctx context.Context, listingID string) (model.Bid, error) {
	var bid model.Bid
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "value"}, Desc: true},
			{Column: clause.Column{Name: "created_at"}, Desc: true},
		}}).
		First(&bid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if _, lerr := r.GetListing(ctx, listingID); lerr != nil {
			return model.Bid{}, fmt.Errorf("get highest bid: %w", lerr)
		}
		return model.Bid{}, fmt.Errorf("get highest bid for listing %s: %w", listingID, biddingerrors.ErrNoBids)
	}
	return bid, translate(err, "get highest bid for listing "+listingID, nil)
}

// Comments

func (r *GormRepo) AddComment(ctx context.Context, comment model.Comment) error {
	if _, err := r.GetListing(ctx, comment.ListingID); err != nil {
		return fmt.Errorf("add comment: %w", err)
	}
	err := r.db.WithContext(ctx).Create(&comment).Error
	return translate(err, "add comment", nil)
}

func (r *GormRepo) GetCommentsByListing(ctx context.Context, listingID string) ([]model.Comment, error) {
	if _, err := r.GetListing(ctx, listingID); err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}

	comments := []model.Comment{}
	err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).Order("created_at").Find(&comments).Error
	return comments, translate(err, "get comments for listing "+listingID, nil)
}

// Watchlist

func (r *GormRepo) AddToWatchlist(ctx context.Context, userID, listingID string) error {
	if _, err := r.GetListing(ctx, listingID); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if _, err := r.GetUser(ctx, userID); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	err := r.db.WithContext(ctx).
		Table(watchlistTable).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]any{"user_id": userID, "listing_id": listingID}).Error
	return translate(err, "watch listing "+listingID, nil)
}

func (r *GormRepo) RemoveFromWatchlist(ctx context.Context, userID, listingID string) error {
	if _, err := r.GetListing(ctx, listingID); err != nil {
		return fmt.Errorf("unwatch: %w", err)
	}
	err := r.db.WithContext(ctx).
		Exec("DELETE FROM "+watchlistTable+" WHERE user_id = ? AND listing_id = ?", userID, listingID).Error
	return translate(err, "unwatch listing "+listingID, nil)
}

func (r *GormRepo) GetWatchlist(ctx context.Context, userID string) ([]model.Listing, error) {
	listings := []model.Listing{}
	err := r.db.WithContext(ctx).
		Joins("JOIN "+watchlistTable+" ON "+watchlistTable+".listing_id = listings.listing_id").
		Where(watchlistTable+".user_id = ?", userID).
		Order("listings.created_at").
		Find(&listings).Error
	return listings, translate(err, "get watchlist for user "+userID, nil)
}

func (r *GormRepo) IsWatching(ctx context.Context, userID, listingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table(watchlistTable).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Count(&count).Error
	return count > 0, translate(err, "check watchlist", nil)
}

// Notifications

func (r *GormRepo) CreateNotification(ctx context.Context, notification model.Notification) error {
	err := r.db.WithContext(ctx).Create(&notification).Error
	return translate(err, "create notification for user "+notification.UserID, nil)
}

// GetNotificationsByUser returns a user's notifications, newest first
func (r *GormRepo) GetNotificationsByUser(ctx context.Context, userID string) ([]model.Notification, error) {
	notifications := []model.Notification{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&notifications).Error
	return notifications, translate(err, "get notifications for user "+userID, nil)
}

func (r *GormRepo) GetNotification(ctx context.Context, notificationID string) (model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).Where("notification_id = ?", notificationID).First(&n).Error
	return n, translate(err, "get notification "+notificationID, biddingerrors.ErrNotificationNotFound)
}

func (r *GormRepo) MarkNotificationSeen(ctx context.Context, notificationID string) error {
	result := r.db.WithContext(ctx).Model(&model.Notification{}).Where("notification_id = ?", notificationID).Update("seen", true)
	if result.Error != nil {
		return fmt.Errorf("mark notification %s seen: %w", notificationID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("mark notification %s seen: %w", notificationID, biddingerrors.ErrNotificationNotFound)
	}
	return nil
}
