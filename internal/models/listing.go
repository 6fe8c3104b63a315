package models

import "fmt"

// HighestBid returns the bid with the maximum value. On equal values the most
// recently created bid wins, and on equal timestamps the one appearing later in bids.
func HighestBid(bids []Bid) (Bid, bool) {
	if len(bids) == 0 {
		return Bid{}, false
	}

	highest := bids[0]
	for _, b := range bids[1:] {
		if b.Value > highest.Value || (b.Value == highest.Value && !b.CreatedAt.Before(highest.CreatedAt)) {
			highest = b
		}
	}
	return highest, true
}

// CurrentPrice is the highest bid value, or the starting price when nobody has bid yet.
func (l Listing) CurrentPrice(highest *Bid) int64 {
	if highest == nil {
		return l.StartingPrice
	}
	return highest.Value
}

// IsOwnedBy reports whether userID created the listing
func (l Listing) IsOwnedBy(userID string) bool {
	return userID != "" && l.OwnerID == userID
}

// Path is the link used to reach the listing from a notification
func (l Listing) Path() string {
	return fmt.Sprintf("/listings/%s", l.ListingID)
}
