package models

import (
	"time"

	"gorm.io/gorm"
)

// PlayerProfile tracks rating and career counters for each player (denormalized for performance).
// Identity fields are mirrored from the profile service; rating and counters are owned here and
// mutated only by settlement and reversal.
type PlayerProfile struct {
	ID             string  `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string  `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service
	Username       string  `gorm:"index;not null" json:"username"`
	AvatarURL      *string `json:"avatar_url,omitempty"`
	Position       string  `gorm:"size:32" json:"position"` // preferred position, free text

	// RatingGain only accumulates base match results (win/loss/draw).
	// MVP and challenge bonuses move Rating without touching RatingGain.
	Rating     int `json:"rating" gorm:"default:1000"`
	RatingBase int `json:"rating_base" gorm:"default:1000"`
	RatingGain int `json:"rating_gain" gorm:"default:0"`

	// Career counters
	MatchesPlayed int `json:"matches_played" gorm:"default:0"`
	Wins          int `json:"wins" gorm:"default:0"`
	Losses        int `json:"losses" gorm:"default:0"`
	Draws         int `json:"draws" gorm:"default:0"`
	MvpCount      int `json:"mvp_count" gorm:"default:0"`
	OwnGoals      int `json:"own_goals" gorm:"default:0"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
