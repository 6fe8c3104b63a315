package models

import "time"

// User represents a participant in the auction
type User struct {
	UserID       string    `json:"user_id" gorm:"primaryKey;type:varchar(36)"`
	Username     string    `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(72);not null"`
	CreatedAt    time.Time `json:"created_at"`

	Listings      []Listing      `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Bids          []Bid          `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Comments      []Comment      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	Notifications []Notification `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Watchlist     []Listing      `json:"-" gorm:"many2many:watchlist;joinForeignKey:UserID;joinReferences:ListingID;constraint:OnDelete:CASCADE"`
}

// Category groups listings. Deleting one leaves its listings uncategorized.
type Category struct {
	CategoryID string `json:"category_id" gorm:"primaryKey;type:varchar(36)"`
	Name       string `json:"name" gorm:"type:varchar(32);uniqueIndex;not null"`

	Listings []Listing `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}

// Listing represents an auctioned item
type Listing struct {
	ListingID     string    `json:"listing_id" gorm:"primaryKey;type:varchar(36)"`
	Title         string    `json:"title" gorm:"type:varchar(64);not null"`
	Description   string    `json:"description" gorm:"type:varchar(1000);not null"`
	StartingPrice int64     `json:"starting_price" gorm:"not null;check:starting_price >= 1"`
	Photo         string    `json:"photo,omitempty" gorm:"type:varchar(1000)"`
	CategoryID    *string   `json:"category_id,omitempty" gorm:"type:varchar(36);index"`
	OwnerID       string    `json:"owner_id" gorm:"type:varchar(36);not null;index"`
	Active        bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt     time.Time `json:"created_at"`

	Bids     []Bid     `json:"-" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
	Comments []Comment `json:"-" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
}

// Bid represents a user's bid on a listing. Bids are never updated.
type Bid struct {
	BidID     string    `json:"bid_id" gorm:"primaryKey;type:varchar(36)"`
	ListingID string    `json:"listing_id" gorm:"type:varchar(36);not null;index:idx_bids_listing_value,priority:1"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);not null;index"`
	Value     int64     `json:"value" gorm:"not null;<-:create;index:idx_bids_listing_value,priority:2"`
	CreatedAt time.Time `json:"created_at" gorm:"<-:create"`
}

// Comment is a remark left on a listing. The author is nil once the user is gone.
type Comment struct {
	CommentID string    `json:"comment_id" gorm:"primaryKey;type:varchar(36)"`
	ListingID string    `json:"listing_id" gorm:"type:varchar(36);not null;index"`
	UserID    *string   `json:"user_id" gorm:"type:varchar(36);index"`
	Text      string    `json:"text" gorm:"type:varchar(500);not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification is delivered to the winner of a closed auction
type Notification struct {
	NotificationID string    `json:"notification_id" gorm:"primaryKey;type:varchar(36)"`
	UserID         string    `json:"user_id" gorm:"type:varchar(36);not null;index"`
	Text           string    `json:"text" gorm:"type:text;not null"`
	Link           string    `json:"link" gorm:"type:varchar(255);not null"`
	Seen           bool      `json:"seen" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at"`
}
