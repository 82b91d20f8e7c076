package services

import (
	"errors"
	"fmt"
	"log"

	"football-match-system/models"

	"gorm.io/gorm"
)

// ReversalReport summarizes one admin match reset.
type ReversalReport struct {
	MatchID         string   `json:"match_id"`
	EntriesReversed int      `json:"entries_reversed"`
	Warnings        []string `json:"warnings,omitempty"`
}

type ReversalService struct {
	DB *gorm.DB
}

func NewReversalService(db *gorm.DB) *ReversalService {
	return &ReversalService{DB: db}
}

// Reverse undoes a match settlement by replaying its rating ledger, then
// purges every match-scoped record and resets the match to its pre-settlement
// state. Ledger entries are independent of each other, so replay order does
// not matter. Safe on a match that was never settled — the cleanup and reset
// still run, since a partial settlement can leave artifacts behind without a
// ledger. The reset always runs last no matter what failed before it: a match
// must never stay completed-but-unscored.
func (s *ReversalService) Reverse(matchID string) (*ReversalReport, error) {
	mu := lockMatch(matchID)
	defer mu.Unlock()

	var match models.Match
	if err := s.DB.Where("id = ?", matchID).First(&match).Error; err != nil {
		return nil, err
	}

	report := &ReversalReport{MatchID: matchID}

	var entries []models.RatingEntry
	if err := s.DB.Where("match_id = ?", matchID).Find(&entries).Error; err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("loading ledger: %v", err))
	}

	for i := range entries {
		if err := s.reverseEntry(&entries[i]); err != nil {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("entry %s (%s for %s): %v", entries[i].ID, entries[i].Reason, entries[i].PlayerID, err))
			continue
		}
		report.EntriesReversed++
	}

	if len(entries) > 0 {
		if err := s.DB.Where("match_id = ?", matchID).Delete(&models.RatingEntry{}).Error; err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("deleting ledger: %v", err))
		}
	}

	// Own-goal counters came from the timeline, not the ledger, so they are
	// given back by recounting it — but only if settlement ever applied them.
	if match.SettledAt != nil || len(entries) > 0 {
		s.restoreOwnGoalCounters(matchID, report)
	}

	s.purgeMatchRecords(matchID, report)

	resetErr := s.DB.Model(&models.Match{}).Where("id = ?", matchID).
		Updates(map[string]interface{}{
			"score_home":       nil,
			"score_away":       nil,
			"duration_seconds": nil,
			"status":           models.MatchStatusUpcoming,
			"settled_at":       nil,
		}).Error
	if resetErr != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("match reset: %v", resetErr))
		return report, resetErr
	}

	log.Printf("↩️  Match reset: %s (%d ledger entries reversed, %d warnings)",
		matchID, report.EntriesReversed, len(report.Warnings))
	return report, nil
}

// reverseEntry undoes one ledger entry. The reason tag is the only record of
// which counters the entry moved; counter decrements floor at zero.
func (s *ReversalService) reverseEntry(entry *models.RatingEntry) error {
	mu := lockPlayer(entry.PlayerID)
	defer mu.Unlock()

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var profile models.PlayerProfile
		if err := tx.Where("id = ?", entry.PlayerID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("profile missing, entry skipped")
			}
			return err
		}

		profile.Rating -= entry.Delta
		if entry.Reason.IsBaseResult() {
			profile.RatingGain -= entry.Delta
		}

		switch entry.Reason {
		case models.ReasonWin:
			profile.MatchesPlayed = floorDec(profile.MatchesPlayed)
			profile.Wins = floorDec(profile.Wins)
		case models.ReasonLoss:
			profile.MatchesPlayed = floorDec(profile.MatchesPlayed)
			profile.Losses = floorDec(profile.Losses)
		case models.ReasonDraw:
			profile.MatchesPlayed = floorDec(profile.MatchesPlayed)
			profile.Draws = floorDec(profile.Draws)
		case models.ReasonMvpBonus:
			profile.MvpCount = floorDec(profile.MvpCount)
		case models.ReasonChallengeBonus:
			// rating only; the badge goes in the purge sweep
		}

		return tx.Save(&profile).Error
	})
}

// floorDec decrements without going negative.
func floorDec(n int) int {
	if n <= 0 {
		return 0
	}
	return n - 1
}

func (s *ReversalService) restoreOwnGoalCounters(matchID string, report *ReversalReport) {
	var goals []models.GoalEvent
	if err := s.DB.Where("match_id = ? AND is_own_goal = ?", matchID, true).
		Find(&goals).Error; err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("own goal recount: %v", err))
		return
	}

	perPlayer := make(map[string]int)
	for _, g := range goals {
		if g.ScorerID != nil {
			perPlayer[*g.ScorerID]++
		}
	}

	for playerID, n := range perPlayer {
		mu := lockPlayer(playerID)
		var profile models.PlayerProfile
		if err := s.DB.Where("id = ?", playerID).First(&profile).Error; err != nil {
			mu.Unlock()
			report.Warnings = append(report.Warnings, fmt.Sprintf("own goals for %s: %v", playerID, err))
			continue
		}
		profile.OwnGoals -= n
		if profile.OwnGoals < 0 {
			profile.OwnGoals = 0
		}
		if err := s.DB.Save(&profile).Error; err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("own goals for %s: %v", playerID, err))
		}
		mu.Unlock()
	}
}

// purgeMatchRecords hard-deletes the per-match artifacts. Unconditional: they
// can exist without a surviving ledger and must not be left orphaned.
func (s *ReversalService) purgeMatchRecords(matchID string, report *ReversalReport) {
	purges := []struct {
		name  string
		model interface{}
	}{
		{"ratings", &models.MatchRating{}},
		{"mvp votes", &models.MvpVote{}},
		{"goal events", &models.GoalEvent{}},
		{"challenges", &models.Challenge{}},
		{"match badges", &models.PlayerBadge{}},
	}
	for _, p := range purges {
		if err := s.DB.Where("match_id = ?", matchID).Delete(p.model).Error; err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("purging %s: %v", p.name, err))
		}
	}
}
