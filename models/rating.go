package models

import "time"

// ReasonTag classifies a rating ledger entry. Once a match has been settled
// the tag is the only surviving record of what kind of change an entry was,
// so it has to be written exactly — reversal reads nothing else to decide
// which counters to restore.
type ReasonTag string

const (
	ReasonWin            ReasonTag = "win"
	ReasonLoss           ReasonTag = "loss"
	ReasonDraw           ReasonTag = "draw"
	ReasonMvpBonus       ReasonTag = "mvp_bonus"
	ReasonChallengeBonus ReasonTag = "challenge_bonus"
)

// IsBaseResult reports whether the tag is a base match result, as opposed to
// a bonus on top of one.
func (r ReasonTag) IsBaseResult() bool {
	return r == ReasonWin || r == ReasonLoss || r == ReasonDraw
}

// RatingEntry is the append-only audit ledger of rating changes. Rows live
// from settlement until the reversal that consumes them deletes them.
// ChallengeType is set only on challenge bonuses.
type RatingEntry struct {
	ID            string         `gorm:"primaryKey;type:uuid" json:"id"`
	PlayerID      string         `gorm:"index;not null" json:"player_id"`
	MatchID       string         `gorm:"index;not null" json:"match_id"`
	RatingBefore  int            `gorm:"not null" json:"rating_before"`
	RatingAfter   int            `gorm:"not null" json:"rating_after"`
	Delta         int            `gorm:"not null" json:"delta"`
	Reason        ReasonTag      `gorm:"type:varchar(24);not null" json:"reason"`
	ChallengeType *ChallengeType `gorm:"type:varchar(24)" json:"challenge_type,omitempty"`
	CreatedAt     time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// MatchRating is one player's 1–10 mark of another player for one match.
// Purged on match reset.
type MatchRating struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	MatchID   string    `gorm:"uniqueIndex:idx_rating_match_rater_ratee;not null" json:"match_id"`
	RaterID   string    `gorm:"uniqueIndex:idx_rating_match_rater_ratee;not null" json:"rater_id"`
	RateeID   string    `gorm:"index;uniqueIndex:idx_rating_match_rater_ratee;not null" json:"ratee_id"`
	Score     int       `gorm:"not null;check:score >= 1 AND score <= 10" json:"score"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// MvpVote is one voter's MVP pick for one match. One vote per voter per match.
type MvpVote struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	MatchID    string    `gorm:"uniqueIndex:idx_vote_match_voter;not null" json:"match_id"`
	VoterID    string    `gorm:"uniqueIndex:idx_vote_match_voter;not null" json:"voter_id"`
	VotedForID string    `gorm:"index;not null" json:"voted_for_id"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}
