// services/player_service.go
package services

import (
	"errors"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"football-match-system/models"
	"football-match-system/utils"
	"football-match-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlayerService struct {
	DB *gorm.DB
}

func NewPlayerService(db *gorm.DB) *PlayerService {
	return &PlayerService{DB: db}
}

// EnsureProfile finds or creates the local profile for the authenticated user.
// New profiles take their starting rating from the base rating mirror when the
// sync worker has seen the user, otherwise the 1000 default stands.
func (s *PlayerService) EnsureProfile(externalUserID, username string) (*models.PlayerProfile, error) {
	var profile models.PlayerProfile
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile = models.PlayerProfile{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		Username:       username,
		Rating:         1000,
		RatingBase:     1000,
	}

	if mirror, found, err := workers.GetBaseRating(s.DB, externalUserID); err == nil && found {
		profile.Rating = mirror.BaseRating
		profile.RatingBase = mirror.BaseRating
	}

	if err := s.DB.Create(&profile).Error; err != nil {
		return nil, err
	}
	log.Printf("👟 Profile created for %s (rating %d)", username, profile.Rating)
	return &profile, nil
}

// GetMyProfile returns the caller's profile with their recent rating history.
func (s *PlayerService) GetMyProfile(c *fiber.Ctx) error {
	externalUserID := c.Locals("user_id").(string)

	profile, err := s.EnsureProfile(externalUserID, c.Get("X-User-Name", "player"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load profile", "cause": err.Error()})
	}

	var history []models.RatingEntry
	s.DB.Where("player_id = ?", profile.ID).
		Order("created_at DESC").Limit(20).Find(&history)

	return c.JSON(fiber.Map{
		"profile":        profile,
		"rating_history": history,
	})
}

// GetProfileByID returns any player's public profile.
func (s *PlayerService) GetProfileByID(c *fiber.Ctx) error {
	var profile models.PlayerProfile
	err := s.DB.Where("id = ?", c.Params("id")).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "player not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error fetching player", "cause": err.Error()})
	}
	return c.JSON(profile)
}

// SearchPlayers searches local profiles by username.
func (s *PlayerService) SearchPlayers(c *fiber.Ctx) error {
	query := c.Query("q", "")
	limitStr := c.Query("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	var players []models.PlayerProfile
	db := s.DB.Model(&models.PlayerProfile{}).Limit(limit)
	if query != "" {
		searchTerm := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
		db = db.Where("LOWER(username) LIKE ?", searchTerm)
	}
	if err := db.Find(&players).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "search failed", "cause": err.Error()})
	}

	type PlayerSummary struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Position string `json:"position"`
		Rating   int    `json:"rating"`
	}
	res := make([]PlayerSummary, len(players))
	for i, p := range players {
		res[i] = PlayerSummary{ID: p.ID, Username: p.Username, Position: p.Position, Rating: p.Rating}
	}
	return c.JSON(res)
}

// Leaderboard returns players ordered by rating.
func (s *PlayerService) Leaderboard(c *fiber.Ctx) error {
	limitStr := c.Query("limit", "25")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 25
	}

	var players []models.PlayerProfile
	if err := s.DB.Order("rating DESC, username ASC").Limit(limit).Find(&players).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load leaderboard", "cause": err.Error()})
	}
	return c.JSON(players)
}

// GetBadges lists a player's badges.
func (s *PlayerService) GetBadges(c *fiber.Ctx) error {
	var badges []models.PlayerBadge
	if err := s.DB.Where("player_id = ?", c.Params("id")).
		Order("awarded_at DESC").Find(&badges).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load badges", "cause": err.Error()})
	}
	return c.JSON(badges)
}

// UpdateMyProfile lets the caller change their display fields. Rating and the
// career counters are never writable from here.
func (s *PlayerService) UpdateMyProfile(c *fiber.Ctx) error {
	externalUserID := c.Locals("user_id").(string)

	type Req struct {
		Username *string `json:"username"`
		Position *string `json:"position"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}

	updates := map[string]interface{}{}
	if req.Username != nil && *req.Username != "" {
		updates["username"] = *req.Username
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "nothing to update"})
	}

	if err := s.DB.Model(&models.PlayerProfile{}).
		Where("external_user_id = ?", externalUserID).
		Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update profile", "cause": err.Error()})
	}

	var profile models.PlayerProfile
	s.DB.Where("external_user_id = ?", externalUserID).First(&profile)
	return c.JSON(profile)
}

// UploadAvatar stores the caller's avatar in R2.
func (s *PlayerService) UploadAvatar(c *fiber.Ctx) error {
	externalUserID := c.Locals("user_id").(string)

	avatarFile, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar is required"})
	}

	ext := filepath.Ext(avatarFile.Filename)
	if ext == "" {
		ext = ".png"
	}
	key := "avatars/" + uuid.NewString() + ext
	avatarURL, err := utils.UploadFileToR2(avatarFile, key)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload avatar to R2"})
	}

	if err := s.DB.Model(&models.PlayerProfile{}).
		Where("external_user_id = ?", externalUserID).
		Update("avatar_url", avatarURL).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save avatar URL", "cause": err.Error()})
	}

	return c.JSON(fiber.Map{"avatar_url": avatarURL})
}
