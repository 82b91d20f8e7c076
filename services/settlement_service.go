package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"football-match-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrAlreadySettled: a settled match is refused a second settlement pass,
// which would double-apply every delta.
var ErrAlreadySettled = errors.New("match already settled")

// SettlementReport is handed back to the caller that recorded the score.
// Warnings carry per-player failures; the pass itself never aborts on them.
type SettlementReport struct {
	MatchID             string             `json:"match_id"`
	Outcomes            map[string]Outcome `json:"outcomes"`
	MvpPlayerIDs        []string           `json:"mvp_player_ids,omitempty"`
	CompletedChallenges []models.Challenge `json:"completed_challenges,omitempty"`
	Warnings            []string           `json:"warnings,omitempty"`
}

type SettlementService struct {
	DB         *gorm.DB
	Rating     BaseRatingSource
	Bonus      *BonusService
	Challenges *ChallengeService
	Badges     *BadgeService
}

func NewSettlementService(db *gorm.DB, rating BaseRatingSource, bonus *BonusService, challenges *ChallengeService, badges *BadgeService) *SettlementService {
	return &SettlementService{DB: db, Rating: rating, Bonus: bonus, Challenges: challenges, Badges: badges}
}

// SettleMatch turns a recorded final score into permanent rating and counter
// changes, one ledger entry per change: base results first, then the MVP
// bonus, then challenge fulfillment. Players settle independently — a failure
// on one becomes a warning and the rest still settle.
func (s *SettlementService) SettleMatch(matchID string) (*SettlementReport, error) {
	mu := lockMatch(matchID)
	defer mu.Unlock()

	var match models.Match
	if err := s.DB.Where("id = ?", matchID).First(&match).Error; err != nil {
		return nil, err
	}
	if match.SettledAt != nil {
		return nil, ErrAlreadySettled
	}
	if match.ScoreHome == nil || match.ScoreAway == nil {
		return nil, ErrIncompleteScore
	}

	var assignments []models.TeamAssignment
	if err := s.DB.Where("match_id = ?", matchID).Find(&assignments).Error; err != nil {
		return nil, err
	}

	outcomes, err := ResolveOutcomes(&match, assignments)
	if err != nil {
		return nil, err
	}

	report := &SettlementReport{MatchID: matchID, Outcomes: outcomes}

	// Deterministic order, mostly for reproducible logs — players are
	// independent of each other here.
	playerIDs := make([]string, 0, len(outcomes))
	for playerID := range outcomes {
		playerIDs = append(playerIDs, playerID)
	}
	sort.Strings(playerIDs)

	for _, playerID := range playerIDs {
		if err := s.applyBaseResult(playerID, matchID, outcomes[playerID]); err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("base result for %s: %v", playerID, err))
		}
	}

	if err := s.applyOwnGoalCounters(matchID); err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("own goal counters: %v", err))
	}

	mvps, mvpWarnings := s.awardMvpBonus(matchID)
	report.MvpPlayerIDs = mvps
	report.Warnings = append(report.Warnings, mvpWarnings...)

	completed, challengeWarnings, err := s.Challenges.EvaluateMatch(matchID)
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("challenge evaluation: %v", err))
	}
	report.CompletedChallenges = completed
	report.Warnings = append(report.Warnings, challengeWarnings...)

	now := time.Now()
	if err := s.DB.Model(&models.Match{}).Where("id = ?", matchID).
		Update("settled_at", &now).Error; err != nil {
		return report, err
	}

	// Milestone badges follow the fresh counters; fire-and-forget
	if s.Badges != nil {
		for _, playerID := range playerIDs {
			_ = s.Badges.AutoAwardBadges(playerID)
		}
	}

	log.Printf("✅ Match settled: %s (%d players, %d warnings)", matchID, len(outcomes), len(report.Warnings))
	return report, nil
}

// applyBaseResult runs the external formula once for the player and persists
// what it reports. The formula only understands win/lose, so a draw goes over
// the wire as won=false, lands as a loss, and the loss bookkeeping is
// corrected right after — while the ledger keeps the truthful draw tag.
// Reversal trusts the ledger, not the formula.
func (s *SettlementService) applyBaseResult(playerID, matchID string, outcome Outcome) error {
	delta, err := s.Rating.ApplyResult(playerID, matchID, outcome == OutcomeWin)
	if err != nil {
		return fmt.Errorf("rating service: %w", err)
	}

	mu := lockPlayer(playerID)
	defer mu.Unlock()

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var profile models.PlayerProfile
		if err := tx.Where("id = ?", playerID).First(&profile).Error; err != nil {
			return fmt.Errorf("profile not found for %s: %w", playerID, err)
		}

		change := delta.RatingAfter - delta.RatingBefore
		profile.Rating = delta.RatingAfter
		profile.RatingGain += change
		profile.MatchesPlayed++

		switch outcome {
		case OutcomeWin:
			profile.Wins++
		case OutcomeLoss, OutcomeDraw:
			profile.Losses++
		}
		if outcome == OutcomeDraw {
			// the loss the formula just recorded was really a draw
			profile.Losses--
			profile.Draws++
		}

		if err := tx.Save(&profile).Error; err != nil {
			return err
		}

		entry := models.RatingEntry{
			ID:           uuid.NewString(),
			PlayerID:     playerID,
			MatchID:      matchID,
			RatingBefore: delta.RatingBefore,
			RatingAfter:  delta.RatingAfter,
			Delta:        change,
			Reason:       outcome.Reason(),
		}
		return tx.Create(&entry).Error
	})
}

// applyOwnGoalCounters bumps OwnGoals from the goal timeline. No ledger entry
// is written for these — reversal recounts the same timeline to take them
// back before purging it.
func (s *SettlementService) applyOwnGoalCounters(matchID string) error {
	var goals []models.GoalEvent
	if err := s.DB.Where("match_id = ? AND is_own_goal = ?", matchID, true).
		Find(&goals).Error; err != nil {
		return err
	}

	perPlayer := make(map[string]int)
	for _, g := range goals {
		if g.ScorerID != nil {
			perPlayer[*g.ScorerID]++
		}
	}

	for playerID, n := range perPlayer {
		if err := s.DB.Model(&models.PlayerProfile{}).Where("id = ?", playerID).
			UpdateColumn("own_goals", gorm.Expr("own_goals + ?", n)).Error; err != nil {
			return err
		}
	}
	return nil
}

// awardMvpBonus pays the fixed MVP bonus to the vote leader; a tie pays every
// leader.
func (s *SettlementService) awardMvpBonus(matchID string) ([]string, []string) {
	var votes []models.MvpVote
	if err := s.DB.Where("match_id = ?", matchID).Find(&votes).Error; err != nil {
		return nil, []string{fmt.Sprintf("mvp votes: %v", err)}
	}
	if len(votes) == 0 {
		return nil, nil
	}

	tally := make(map[string]int)
	best := 0
	for _, v := range votes {
		tally[v.VotedForID]++
		if tally[v.VotedForID] > best {
			best = tally[v.VotedForID]
		}
	}

	var leaders []string
	for playerID, n := range tally {
		if n == best {
			leaders = append(leaders, playerID)
		}
	}
	sort.Strings(leaders)

	var warnings []string
	for _, playerID := range leaders {
		if err := s.Bonus.Award(playerID, matchID, DefaultBonusAmounts.Mvp, models.ReasonMvpBonus, nil); err != nil {
			warnings = append(warnings, fmt.Sprintf("mvp bonus for %s: %v", playerID, err))
		}
	}
	return leaders, warnings
}
