package repository

import (
	"context"
	"fmt"

	"github.com/MaxLisniak/commerce/internal/biddingerrors"
	model "github.com/MaxLisniak/commerce/internal/models"
)

// memoryTx stages writes on top of a MemoryRepo until InTx commits them
type memoryTx struct {
	repo *MemoryRepo

	active        map[string]bool
	bids          []model.Bid
	notifications []model.Notification
}

func newMemoryTx(repo *MemoryRepo) *memoryTx {
	return &memoryTx{
		repo:   repo,
		active: make(map[string]bool),
	}
}

// apply publishes staged writes. Caller holds repo.mu.
func (t *memoryTx) apply() {
	r := t.repo
	for id, active := range t.active {
		if listing, ok := r.listings[id]; ok {
			listing.Active = active
			r.listings[id] = listing
		}
	}
	for _, b := range t.bids {
		r.bids[b.ListingID] = append(r.bids[b.ListingID], b)
	}
	for _, n := range t.notifications {
		r.notifications[n.NotificationID] = n
		r.userInbox[n.UserID] = append(r.userInbox[n.UserID], n.NotificationID)
	}
}

// InTx joins the enclosing transaction
func (t *memoryTx) InTx(_ context.Context, fn func(tx AuctionDB) error) error {
	return fn(t)
}

func (t *memoryTx) GetListing(_ context.Context, listingID string) (model.Listing, error) {
	t.repo.mu.RLock()
	listing, err := t.repo.getListingLocked(listingID)
	t.repo.mu.RUnlock()
	if err != nil {
		return model.Listing{}, err
	}

	if active, ok := t.active[listingID]; ok {
		listing.Active = active
	}
	return listing, nil
}

func (t *memoryTx) LockListing(ctx context.Context, listingID string) (model.Listing, error) {
	return t.GetListing(ctx, listingID)
}

func (t *memoryTx) SetListingActive(ctx context.Context, listingID string, active bool) error {
	if _, err := t.GetListing(ctx, listingID); err != nil {
		return fmt.Errorf("set listing active: %w", err)
	}
	t.active[listingID] = active
	return nil
}

func (t *memoryTx) RecordBidForListing(ctx context.Context, bid model.Bid) error {
	if _, err := t.GetListing(ctx, bid.ListingID); err != nil {
		return fmt.Errorf("record bid: %w", err)
	}
	if err := t.requireUser(bid.UserID); err != nil {
		return fmt.Errorf("record bid: %w", err)
	}
	t.bids = append(t.bids, bid)
	return nil
}

func (t *memoryTx) GetBidsByListing(ctx context.Context, listingID string) ([]model.Bid, error) {
	bids, err := t.repo.GetBidsByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	for _, b := range t.bids {
		if b.ListingID == listingID {
			bids = append(bids, b)
		}
	}
	return bids, nil
}

func (t *memoryTx) GetHighestBid(ctx context.Context, listingID string) (model.Bid, error) {
	bids, err := t.GetBidsByListing(ctx, listingID)
	if err != nil {
		return model.Bid{}, err
	}
	highest, ok := model.HighestBid(bids)
	if !ok {
		return model.Bid{}, fmt.Errorf("get highest bid for listing %s: %w", listingID, biddingerrors.ErrNoBids)
	}
	return highest, nil
}

func (t *memoryTx) CreateNotification(_ context.Context, notification model.Notification) error {
	if err := t.requireUser(notification.UserID); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	t.notifications = append(t.notifications, notification)
	return nil
}

func (t *memoryTx) requireUser(userID string) error {
	t.repo.mu.RLock()
	defer t.repo.mu.RUnlock()

	if _, ok := t.repo.users[userID]; !ok {
		return fmt.Errorf("user %s: %w", userID, biddingerrors.ErrUserNotFound)
	}
	return nil
}
