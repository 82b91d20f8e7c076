package models

import "time"

// Team sides within a match
const (
	TeamHome       = "home"
	TeamAway       = "away"
	TeamUnassigned = "unassigned"
)

// Match statuses
const (
	MatchStatusUpcoming  = "upcoming"
	MatchStatusOngoing   = "ongoing"
	MatchStatusCompleted = "completed"
	MatchStatusCancelled = "cancelled"
)

// Match is one organized game. Scores stay null until the live-scoring client
// records the final result; SettledAt is stamped by settlement and cleared by
// an admin reset.
type Match struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	Slug         string    `gorm:"uniqueIndex;not null" json:"slug"`
	HomeTeamName string    `gorm:"not null" json:"home_team_name"`
	AwayTeamName string    `gorm:"not null" json:"away_team_name"`
	Location     string    `gorm:"size:255" json:"location"`
	PhotoURL     string    `gorm:"type:text" json:"photo_url"`
	KickoffAt    time.Time `gorm:"index;not null" json:"kickoff_at"`

	ScoreHome       *int `json:"score_home,omitempty"`
	ScoreAway       *int `json:"score_away,omitempty"`
	DurationSeconds *int `json:"duration_seconds,omitempty"`

	Status    string     `gorm:"type:varchar(16);default:'upcoming';check:status IN ('upcoming','ongoing','completed','cancelled')" json:"status"`
	SettledAt *time.Time `json:"settled_at,omitempty"`

	Timestamps
}

// TeamAssignment places a player on one side of a match. Players left
// unassigned are excluded from settlement entirely.
type TeamAssignment struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	MatchID   string    `gorm:"uniqueIndex:idx_assignment_match_player;not null" json:"match_id"`
	PlayerID  string    `gorm:"uniqueIndex:idx_assignment_match_player;not null" json:"player_id"`
	Team      string    `gorm:"type:varchar(16);default:'unassigned';check:team IN ('home','away','unassigned')" json:"team"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// GoalEvent is one entry of a match's goal timeline, appended by the
// live-scoring client. BenefitingTeam is the side credited with the goal; for
// an own goal that is the opposing side of the player who put it in.
// Sequence is strictly increasing per match and orders the timeline.
type GoalEvent struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	MatchID        string    `gorm:"index;not null" json:"match_id"`
	ScorerID       *string   `gorm:"index" json:"scorer_id,omitempty"`
	AssistID       *string   `json:"assist_id,omitempty"`
	BenefitingTeam string    `gorm:"type:varchar(8);not null" json:"benefiting_team"`
	OffsetSeconds  int       `gorm:"not null" json:"offset_seconds"` // seconds since kickoff
	Sequence       int       `gorm:"not null" json:"sequence"`
	IsOwnGoal      bool      `gorm:"default:false" json:"is_own_goal"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// OpposingTeam flips a side.
func OpposingTeam(team string) string {
	if team == TeamHome {
		return TeamAway
	}
	return TeamHome
}
