package services

import (
	"fmt"

	"football-match-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BadgeService struct {
	DB *gorm.DB
}

func NewBadgeService(db *gorm.DB) *BadgeService {
	return &BadgeService{DB: db}
}

// AutoAwardBadges checks every milestone trigger for a player after their
// counters change
func (s *BadgeService) AutoAwardBadges(playerID string) error {
	var profile models.PlayerProfile
	if err := s.DB.Where("id = ?", playerID).First(&profile).Error; err != nil {
		return err
	}

	var awarded []string
	for _, trigger := range models.BadgeTriggers {
		if s.meetsThreshold(&profile, trigger.Threshold) {
			// Check if already awarded
			var count int64
			s.DB.Model(&models.PlayerBadge{}).
				Where("player_id = ? AND code = ?", playerID, trigger.Code).
				Count(&count)
			if count == 0 {
				badge := models.PlayerBadge{
					ID:       uuid.NewString(),
					PlayerID: playerID,
					Code:     trigger.Code,
				}
				if err := s.DB.Create(&badge).Error; err != nil {
					return err
				}
				awarded = append(awarded, trigger.Name)
				fmt.Printf("🎖️ Badge awarded: %s → %s\n", trigger.Name, profile.Username)
			}
		}
	}

	if len(awarded) > 0 {
		// Optional: emit event for push notification: "🎉 You earned: 'Serial Winner'!"
	}
	return nil
}

func (s *BadgeService) meetsThreshold(profile *models.PlayerProfile, req map[string]int64) bool {
	for key, required := range req {
		switch key {
		case "matches_played":
			if int64(profile.MatchesPlayed) < required {
				return false
			}
		case "wins":
			if int64(profile.Wins) < required {
				return false
			}
		case "draws":
			if int64(profile.Draws) < required {
				return false
			}
		case "mvp_count":
			if int64(profile.MvpCount) < required {
				return false
			}
		case "own_goals":
			if int64(profile.OwnGoals) < required {
				return false
			}
		case "rating":
			if int64(profile.Rating) < required {
				return false
			}
		}
	}
	return true
}
