package bidding

import (
	"github.com/MaxLisniak/commerce/internal/biddingerrors"
	"github.com/MaxLisniak/commerce/internal/models"
)

// ValidateBid decides whether value may be bid on listing given its current
// highest bid (nil when there is none). It has no side effects.
func ValidateBid(listing models.Listing, highest *models.Bid, value int64) error {
	if highest != nil {
		if value <= highest.Value {
			return biddingerrors.ErrBidNotHigher
		}
		return nil
	}

	if value < listing.StartingPrice {
		return biddingerrors.ErrBidBelowStarting
	}
	return nil
}

// WinnerNotificationText is the message sent to the winner of a closed listing
func WinnerNotificationText(listing models.Listing) string {
	return "Congratulations! You won the bid '" + listing.Title + "'!"
}
