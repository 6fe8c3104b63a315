package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/MaxLisniak/commerce/internal/biddingerrors"
	model "github.com/MaxLisniak/commerce/internal/models"
)

// MemoryRepo is a concurrency-safe in-memory implementation of Store.
//
// Writers are serialized by txMu for their whole duration, including the
// reads made inside InTx; readers only take mu.
type MemoryRepo struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	users         map[string]model.User
	categories    map[string]model.Category
	listings      map[string]model.Listing
	listingOrder  []string
	bids          map[string][]model.Bid         // key: listingID -> bids in insertion order
	comments      map[string][]model.Comment     // key: listingID -> comments
	notifications map[string]model.Notification  // key: notificationID
	userInbox     map[string][]string            // key: userID -> notificationIDs
	watchlists    map[string]map[string]struct{} // key: userID -> set of listingIDs
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:         make(map[string]model.User),
		categories:    make(map[string]model.Category),
		listings:      make(map[string]model.Listing),
		bids:          make(map[string][]model.Bid),
		comments:      make(map[string][]model.Comment),
		notifications: make(map[string]model.Notification),
		userInbox:     make(map[string][]string),
		watchlists:    make(map[string]map[string]struct{}),
	}
}

// write runs fn as a single-statement transaction
func (r *MemoryRepo) write(fn func() error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn()
}

// InTx runs fn against a staging view of the repository. Staged writes are
// applied only when fn returns nil.
func (r *MemoryRepo) InTx(ctx context.Context, fn func(tx AuctionDB) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	tx := newMemoryTx(r)
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit memory transaction: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	tx.apply()
	return nil
}

// Users

func (r *MemoryRepo) CreateUser(_ context.Context, user model.User) error {
	return r.write(func() error {
		if _, ok := r.users[user.UserID]; ok {
			return fmt.Errorf("create user %s: %w", user.UserID, biddingerrors.ErrUsernameTaken)
		}
		for _, u := range r.users {
			if u.Username == user.Username {
				return fmt.Errorf("create user %s: %w", user.Username, biddingerrors.ErrUsernameTaken)
			}
		}
		r.users[user.UserID] = user
		return nil
	})
}

func (r *MemoryRepo) GetUser(_ context.Context, userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, biddingerrors.ErrUserNotFound)
	}
	return user, nil
}

func (r *MemoryRepo) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("get user %s: %w", username, biddingerrors.ErrUserNotFound)
}

// DeleteUser removes the user and applies the cascade rules documented on CatalogDB
func (r *MemoryRepo) DeleteUser(_ context.Context, userID string) error {
	return r.write(func() error {
		if _, ok := r.users[userID]; !ok {
			return fmt.Errorf("delete user %s: %w", userID, biddingerrors.ErrUserNotFound)
		}

		for id, listing := range r.listings {
			if listing.OwnerID == userID {
				r.deleteListingLocked(id)
			}
		}

		for listingID, bids := range r.bids {
			kept := bids[:0]
			for _, b := range bids {
				if b.UserID != userID {
					kept = append(kept, b)
				}
			}
			r.bids[listingID] = kept
		}

		for listingID, comments := range r.comments {
			for i := range comments {
				if comments[i].UserID != nil && *comments[i].UserID == userID {
					comments[i].UserID = nil
				}
			}
			r.comments[listingID] = comments
		}

		for _, id := range r.userInbox[userID] {
			delete(r.notifications, id)
		}
		delete(r.userInbox, userID)
		delete(r.watchlists, userID)
		delete(r.users, userID)
		return nil
	})
}

// deleteListingLocked drops a listing with its bids and comments. Caller holds mu.
func (r *MemoryRepo) deleteListingLocked(listingID string) {
	delete(r.listings, listingID)
	delete(r.bids, listingID)
	delete(r.comments, listingID)
	for _, watched := range r.watchlists {
		delete(watched, listingID)
	}
	for i, id := range r.listingOrder {
		if id == listingID {
			r.listingOrder = append(r.listingOrder[:i], r.listingOrder[i+1:]...)
			break
		}
	}
}

// Categories

func (r *MemoryRepo) CreateCategory(_ context.Context, category model.Category) error {
	return r.write(func() error {
		for _, c := range r.categories {
			if c.Name == category.Name || c.CategoryID == category.CategoryID {
				return fmt.Errorf("create category %s: %w", category.Name, biddingerrors.ErrCategoryExists)
			}
		}
		r.categories[category.CategoryID] = category
		return nil
	})
}

func (r *MemoryRepo) GetCategory(_ context.Context, categoryID string) (model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.categories[categoryID]
	if !ok {
		return model.Category{}, fmt.Errorf("get category %s: %w", categoryID, biddingerrors.ErrCategoryNotFound)
	}
	return category, nil
}

func (r *MemoryRepo) ListCategories(_ context.Context) ([]model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make([]model.Category, 0, len(r.categories))
	for _, c := range r.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

// DeleteCategory removes a category and leaves its listings uncategorized
func (r *MemoryRepo) DeleteCategory(_ context.Context, categoryID string) error {
	return r.write(func() error {
		if _, ok := r.categories[categoryID]; !ok {
			return fmt.Errorf("delete category %s: %w", categoryID, biddingerrors.ErrCategoryNotFound)
		}
		for id, listing := range r.listings {
			if listing.CategoryID != nil && *listing.CategoryID == categoryID {
				listing.CategoryID = nil
				r.listings[id] = listing
			}
		}
		delete(r.categories, categoryID)
		return nil
	})
}

// Listings

func (r *MemoryRepo) CreateListing(_ context.Context, listing model.Listing) error {
	return r.write(func() error {
		if _, ok := r.users[listing.OwnerID]; !ok {
			return fmt.Errorf("create listing owner %s: %w", listing.OwnerID, biddingerrors.ErrUserNotFound)
		}
		if listing.CategoryID != nil {
			if _, ok := r.categories[*listing.CategoryID]; !ok {
				return fmt.Errorf("create listing category %s: %w", *listing.CategoryID, biddingerrors.ErrCategoryNotFound)
			}
		}
		if _, ok := r.listings[listing.ListingID]; !ok {
			r.listingOrder = append(r.listingOrder, listing.ListingID)
		}
		r.listings[listing.ListingID] = listing
		return nil
	})
}

func (r *MemoryRepo) GetListing(_ context.Context, listingID string) (model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getListingLocked(listingID)
}

func (r *MemoryRepo) getListingLocked(listingID string) (model.Listing, error) {
	listing, ok := r.listings[listingID]
	if !ok {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, biddingerrors.ErrListingNotFound)
	}
	return listing, nil
}

// LockListing outside a transaction is a plain read; writers are already serialized.
func (r *MemoryRepo) LockListing(ctx context.Context, listingID string) (model.Listing, error) {
	return r.GetListing(ctx, listingID)
}

func (r *MemoryRepo) SetListingActive(ctx context.Context, listingID string, active bool) error {
	return r.InTx(ctx, func(tx AuctionDB) error {
		return tx.SetListingActive(ctx, listingID, active)
	})
}

// ListListings returns listings in creation order
func (r *MemoryRepo) ListListings(_ context.Context, filter ListingFilter) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listings := make([]model.Listing, 0, len(r.listingOrder))
	for _, id := range r.listingOrder {
		listing := r.listings[id]
		if filter.ActiveOnly && !listing.Active {
			continue
		}
		if filter.CategoryID != "" && (listing.CategoryID == nil || *listing.CategoryID != filter.CategoryID) {
			continue
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

// Bids

// RecordBidForListing appends a bid. It performs no value check; that belongs to the caller.
func (r *MemoryRepo) RecordBidForListing(ctx context.Context, bid model.Bid) error {
	return r.InTx(ctx, func(tx AuctionDB) error {
		return tx.RecordBidForListing(ctx, bid)
	})
}

// GetBidsByListing returns all bids for a listing in insertion order
func (r *MemoryRepo) GetBidsByListing(_ context.Context, listingID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, err := r.getListingLocked(listingID); err != nil {
		return nil, fmt.Errorf("get bids: %w", err)
	}
	return append([]model.Bid{}, r.bids[listingID]...), nil
}

// GetHighestBid returns the highest bid for a listing
func (r *MemoryRepo) GetHighestBid(ctx context.Context, listingID string) (model.Bid, error) {
	bids, err := r.GetBidsByListing(ctx, listingID)
	if err != nil {
		return model.Bid{}, err
	}
	highest, ok := model.HighestBid(bids)
	if !ok {
		return model.Bid{}, fmt.Errorf("get highest bid for listing %s: %w", listingID, biddingerrors.ErrNoBids)
	}
	return highest, nil
}

// Comments

func (r *MemoryRepo) AddComment(_ context.Context, comment model.Comment) error {
	return r.write(func() error {
		if _, err := r.getListingLocked(comment.ListingID); err != nil {
			return fmt.Errorf("add comment: %w", err)
		}
		if comment.UserID != nil {
			if _, ok := r.users[*comment.UserID]; !ok {
				return fmt.Errorf("add comment author %s: %w", *comment.UserID, biddingerrors.ErrUserNotFound)
			}
		}
		r.comments[comment.ListingID] = append(r.comments[comment.ListingID], comment)
		return nil
	})
}

func (r *MemoryRepo) GetCommentsByListing(_ context.Context, listingID string) ([]model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, err := r.getListingLocked(listingID); err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}
	return append([]model.Comment{}, r.comments[listingID]...), nil
}

// Watchlist

func (r *MemoryRepo) AddToWatchlist(_ context.Context, userID, listingID string) error {
	return r.write(func() error {
		if _, ok := r.users[userID]; !ok {
			return fmt.Errorf("watch: user %s: %w", userID, biddingerrors.ErrUserNotFound)
		}
		if _, err := r.getListingLocked(listingID); err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		if r.watchlists[userID] == nil {
			r.watchlists[userID] = make(map[string]struct{})
		}
		r.watchlists[userID][listingID] = struct{}{}
		return nil
	})
}

func (r *MemoryRepo) RemoveFromWatchlist(_ context.Context, userID, listingID string) error {
	return r.write(func() error {
		if _, err := r.getListingLocked(listingID); err != nil {
			return fmt.Errorf("unwatch: %w", err)
		}
		delete(r.watchlists[userID], listingID)
		return nil
	})
}

// GetWatchlist returns watched listings in creation order
func (r *MemoryRepo) GetWatchlist(_ context.Context, userID string) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	watched := r.watchlists[userID]
	listings := make([]model.Listing, 0, len(watched))
	for _, id := range r.listingOrder {
		if _, ok := watched[id]; ok {
			listings = append(listings, r.listings[id])
		}
	}
	return listings, nil
}

func (r *MemoryRepo) IsWatching(_ context.Context, userID, listingID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.watchlists[userID][listingID]
	return ok, nil
}

// Notifications

func (r *MemoryRepo) CreateNotification(ctx context.Context, notification model.Notification) error {
	return r.InTx(ctx, func(tx AuctionDB) error {
		return tx.CreateNotification(ctx, notification)
	})
}

// GetNotificationsByUser returns a user's notifications, newest first
func (r *MemoryRepo) GetNotificationsByUser(_ context.Context, userID string) ([]model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.userInbox[userID]
	notifications := make([]model.Notification, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		notifications = append(notifications, r.notifications[ids[i]])
	}
	return notifications, nil
}

func (r *MemoryRepo) GetNotification(_ context.Context, notificationID string) (model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.notifications[notificationID]
	if !ok {
		return model.Notification{}, fmt.Errorf("get notification %s: %w", notificationID, biddingerrors.ErrNotificationNotFound)
	}
	return n, nil
}

func (r *MemoryRepo) MarkNotificationSeen(_ context.Context, notificationID string) error {
	return r.write(func() error {
		n, ok := r.notifications[notificationID]
		if !ok {
			return fmt.Errorf("mark notification %s seen: %w", notificationID, biddingerrors.ErrNotificationNotFound)
		}
		n.Seen = true
		r.notifications[notificationID] = n
		return nil
	})
}
