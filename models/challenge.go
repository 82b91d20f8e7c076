package models

import "time"

// ChallengeType is the closed catalog of per-match behavioral challenges.
// Adding a type here means adding a matching arm to the evaluator.
type ChallengeType string

const (
	ChallengeAltruist   ChallengeType = "altruist"    // assisted at least twice
	ChallengeFox        ChallengeType = "fox"         // scored at least three
	ChallengePivot      ChallengeType = "pivot"       // scored and assisted
	ChallengeClutch     ChallengeType = "clutch"      // scored the last goal
	ChallengeSoldier    ChallengeType = "soldier"     // average teammate mark above 8
	ChallengeLock       ChallengeType = "lock"        // nothing conceded in the first 15 minutes
	ChallengeCleanSheet ChallengeType = "clean_sheet" // nothing conceded late, no own goal
	ChallengeUnsinkable ChallengeType = "unsinkable"  // won after trailing by three
	ChallengeBinome     ChallengeType = "binome"      // assisted the target teammate's goal
	ChallengeSpecialist ChallengeType = "specialist"  // confirmed by hand, never auto-evaluated
)

// AllChallengeTypes, for request validation.
var AllChallengeTypes = []ChallengeType{
	ChallengeAltruist,
	ChallengeFox,
	ChallengePivot,
	ChallengeClutch,
	ChallengeSoldier,
	ChallengeLock,
	ChallengeCleanSheet,
	ChallengeUnsinkable,
	ChallengeBinome,
	ChallengeSpecialist,
}

// ValidChallengeType reports whether t is part of the catalog.
func ValidChallengeType(t ChallengeType) bool {
	for _, known := range AllChallengeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Challenge is one player's behavioral goal for one match, assigned before
// settlement. Binome additionally names a target teammate. Rows are hard
// deleted on match reset.
type Challenge struct {
	ID             string        `gorm:"primaryKey;type:uuid" json:"id"`
	MatchID        string        `gorm:"uniqueIndex:idx_challenge_match_player;not null" json:"match_id"`
	PlayerID       string        `gorm:"uniqueIndex:idx_challenge_match_player;not null" json:"player_id"`
	Type           ChallengeType `gorm:"type:varchar(24);not null" json:"type"`
	TargetPlayerID *string       `json:"target_player_id,omitempty"` // binome only
	Completed      bool          `gorm:"default:false;index" json:"completed"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}
