package bidding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MaxLisniak/commerce/internal/biddingerrors"
	"github.com/MaxLisniak/commerce/internal/models"
	"github.com/MaxLisniak/commerce/internal/repository"
	"github.com/MaxLisniak/commerce/utils"
)

// BiddingService defines the business logic for bidding and closing auctions
type BiddingService struct {
	repo repository.AuctionDB
	now  func() time.Time
}

// CloseResult describes a closed listing. Notification is nil when nobody bid.
type CloseResult struct {
	Listing      models.Listing
	Notification *models.Notification
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB) *BiddingService {
	return &BiddingService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// PlaceBid validates and records a user's bid for a listing. The read of the
// current highest bid and the insert happen in one transaction.
func (s *BiddingService) PlaceBid(ctx context.Context, listingID, userID string, value int64) (models.Bid, error) {
	if listingID == "" || userID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - missing listingID or userID", biddingerrors.ErrInvalidBid)
	}

	var bid models.Bid
	err := s.repo.InTx(ctx, func(tx repository.AuctionDB) error {
		listing, err := tx.LockListing(ctx, listingID)
		if err != nil {
			return err
		}
		if !listing.Active {
			return fmt.Errorf("%w - listing %s is closed", biddingerrors.ErrForbidden, listingID)
		}

		highest, err := highestBid(ctx, tx, listingID)
		if err != nil {
			return err
		}
		if err := ValidateBid(listing, highest, value); err != nil {
			return err
		}

		bid = models.Bid{
			BidID:     utils.GenerateID(),
			ListingID: listingID,
			UserID:    userID,
			Value:     value,
			CreatedAt: s.now(),
		}
		return tx.RecordBidForListing(ctx, bid)
	})
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to place bid on listing %s by user %s: %w", listingID, userID, err)
	}

	return bid, nil
}

// CloseListing deactivates a listing on behalf of its owner and notifies the
// highest bidder. Closing an inactive listing, or someone else's, is forbidden.
func (s *BiddingService) CloseListing(ctx context.Context, listingID, userID string) (CloseResult, error) {
	var result CloseResult
	err := s.repo.InTx(ctx, func(tx repository.AuctionDB) error {
		listing, err := tx.LockListing(ctx, listingID)
		if err != nil {
			return err
		}
		if !listing.Active {
			return fmt.Errorf("%w - listing %s is already closed", biddingerrors.ErrForbidden, listingID)
		}
		if !listing.IsOwnedBy(userID) {
			return fmt.Errorf("%w - user %q does not own listing %s", biddingerrors.ErrForbidden, userID, listingID)
		}

		highest, err := highestBid(ctx, tx, listingID)
		if err != nil {
			return err
		}

		if err := tx.SetListingActive(ctx, listingID, false); err != nil {
			return err
		}
		listing.Active = false
		result = CloseResult{Listing: listing}

		if highest == nil {
			return nil
		}

		notification := models.Notification{
			NotificationID: utils.GenerateID(),
			UserID:         highest.UserID,
			Text:           WinnerNotificationText(listing),
			Link:           listing.Path(),
			Seen:           false,
			CreatedAt:      s.now(),
		}
		if err := tx.CreateNotification(ctx, notification); err != nil {
			return err
		}
		result.Notification = &notification
		return nil
	})
	if err != nil {
		return CloseResult{}, fmt.Errorf("service: failed to close listing %s: %w", listingID, err)
	}

	return result, nil
}

// CurrentPrice returns the highest bid value, or the starting price when there are no bids
func (s *BiddingService) CurrentPrice(ctx context.Context, listingID string) (int64, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return 0, fmt.Errorf("service: failed to get price for listing %s: %w", listingID, err)
	}

	highest, err := highestBid(ctx, s.repo, listingID)
	if err != nil {
		return 0, fmt.Errorf("service: failed to get price for listing %s: %w", listingID, err)
	}

	return listing.CurrentPrice(highest), nil
}

// HighestBid returns the highest bid for a listing, or nil when nobody has bid
func (s *BiddingService) HighestBid(ctx context.Context, listingID string) (*models.Bid, error) {
	highest, err := highestBid(ctx, s.repo, listingID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get highest bid for listing %s: %w", listingID, err)
	}
	return highest, nil
}

// GetBidsForListing returns all bids for a specific listing
func (s *BiddingService) GetBidsForListing(ctx context.Context, listingID string) ([]models.Bid, error) {
	if listingID == "" {
		return nil, fmt.Errorf("service: %w - empty listing ID", biddingerrors.ErrListingNotFound)
	}

	bids, err := s.repo.GetBidsByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for listing %s: %w", listingID, err)
	}

	return bids, nil
}

// highestBid treats "no bids" as a nil bid rather than an error
func highestBid(ctx context.Context, db repository.AuctionDB, listingID string) (*models.Bid, error) {
	bid, err := db.GetHighestBid(ctx, listingID)
	if errors.Is(err, biddingerrors.ErrNoBids) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bid, nil
}
