package services

import (
	"fmt"
	"log"

	"football-match-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BonusAmounts define the fixed rating bonuses (tunable via config/env later)
type BonusAmounts struct {
	Mvp       int
	Challenge int
}

var DefaultBonusAmounts = BonusAmounts{
	Mvp:       15,
	Challenge: 10,
}

type BonusService struct {
	DB *gorm.DB
}

func NewBonusService(db *gorm.DB) *BonusService {
	return &BonusService{DB: db}
}

// Award adds a fixed bonus on top of a player's rating and appends one ledger
// entry for it. RatingGain is left alone: only base match results count toward
// gain. An MVP bonus bumps MvpCount; a challenge bonus drops a match-scoped
// badge so a later match reset can sweep it.
func (s *BonusService) Award(playerID, matchID string, amount int, reason models.ReasonTag, challengeType *models.ChallengeType) error {
	mu := lockPlayer(playerID)
	defer mu.Unlock()

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var profile models.PlayerProfile
		if err := tx.Where("id = ?", playerID).First(&profile).Error; err != nil {
			return fmt.Errorf("profile not found for %s: %w", playerID, err)
		}

		before := profile.Rating
		profile.Rating += amount
		if reason == models.ReasonMvpBonus {
			profile.MvpCount++
		}
		if err := tx.Save(&profile).Error; err != nil {
			return err
		}

		entry := models.RatingEntry{
			ID:            uuid.NewString(),
			PlayerID:      playerID,
			MatchID:       matchID,
			RatingBefore:  before,
			RatingAfter:   profile.Rating,
			Delta:         amount,
			Reason:        reason,
			ChallengeType: challengeType,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		if challengeType != nil {
			badge := models.PlayerBadge{
				ID:       uuid.NewString(),
				PlayerID: playerID,
				Code:     models.ChallengeBadgeCode(*challengeType),
				MatchID:  &matchID,
			}
			if err := tx.Create(&badge).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("💠 Bonus applied: %s +%d (%s) on match %s", playerID, amount, reason, matchID)
	return nil
}
