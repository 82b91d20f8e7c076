package models

import "time"

// BaseRatingMirror mirrors base-rating placements from the rating service.
// Profile creation seeds Rating/RatingBase from here when a row exists.
// Table name: base_rating_mirror
type BaseRatingMirror struct {
	ID             string    `gorm:"primaryKey;type:uuid;not null" json:"id"`
	ExternalUserID string    `gorm:"type:uuid;not null;uniqueIndex" json:"external_user_id"` // primary lookup key
	BaseRating     int       `gorm:"not null" json:"base_rating"`
	Source         string    `gorm:"type:varchar(32)" json:"source"` // e.g., "placement", "seasonal_reset"
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (BaseRatingMirror) TableName() string {
	return "base_rating_mirror"
}
