package models

import (
	"strings"
	"time"
)

// BadgeType: static config for career milestone badges
type BadgeType struct {
	ID          string           `gorm:"primaryKey;type:uuid"`
	Code        string           `gorm:"uniqueIndex;not null"` // e.g., "FIRST_WIN", "TEN_WINS"
	Name        string           `gorm:"not null"`
	Description string
	IconURL     string           `gorm:"type:text"`
	Rarity      string           `gorm:"type:varchar(16);default:'common'"` // common, rare, epic, legendary
	Threshold   map[string]int64 `gorm:"serializer:json;type:jsonb"`        // e.g., {"wins": 10}
	CreatedAt   time.Time        `gorm:"autoCreateTime"`
}

// PlayerBadge: awarded instance. MatchID is set only for badges earned inside
// a single match (challenge completions) so an admin match reset can sweep
// them; career milestone badges carry no match and survive resets.
type PlayerBadge struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	PlayerID  string    `gorm:"index;not null"`
	Code      string    `gorm:"index;not null"`
	MatchID   *string   `gorm:"index"`
	AwardedAt time.Time `gorm:"autoCreateTime"`
	Metadata  string    `gorm:"type:jsonb"`
}

// ChallengeBadgeCode returns the badge code dropped when a challenge of the
// given type is completed.
func ChallengeBadgeCode(t ChallengeType) string {
	return "CHALLENGE_" + strings.ToUpper(string(t))
}

// Predefined milestone badge triggers, checked against profile counters after
// every settlement.
var BadgeTriggers = []BadgeType{
	{
		Code:        "FIRST_MATCH",
		Name:        "First Cap",
		Description: "Played your first match",
		Rarity:      "common",
		Threshold:   map[string]int64{"matches_played": 1},
	},
	{
		Code:        "FIRST_WIN",
		Name:        "Off the Mark",
		Description: "Won your first match",
		Rarity:      "common",
		Threshold:   map[string]int64{"wins": 1},
	},
	{
		Code:        "TEN_WINS",
		Name:        "Serial Winner",
		Description: "Won 10 matches",
		Rarity:      "rare",
		Threshold:   map[string]int64{"wins": 10},
	},
	{
		Code:        "CROWD_FAVOURITE",
		Name:        "Crowd Favourite",
		Description: "Voted MVP 3 times",
		Rarity:      "epic",
		Threshold:   map[string]int64{"mvp_count": 3},
	},
	{
		Code:        "IRON_LEGS",
		Name:        "Iron Legs",
		Description: "Played 50 matches",
		Rarity:      "epic",
		Threshold:   map[string]int64{"matches_played": 50},
	},
	{
		Code:        "WRONG_WAY",
		Name:        "Wrong Way",
		Description: "Put 3 past your own keeper",
		Rarity:      "common",
		Threshold:   map[string]int64{"own_goals": 3},
	},
}
