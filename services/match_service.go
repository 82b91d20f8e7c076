package services

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"football-match-system/models"
	"football-match-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MatchService struct {
	DB         *gorm.DB
	Settlement *SettlementService
}

func NewMatchService(db *gorm.DB, settlement *SettlementService) *MatchService {
	return &MatchService{DB: db, Settlement: settlement}
}

var titleCaser = cases.Title(language.Und)

// CreateMatch creates a new **upcoming** match between two named sides.
func (s *MatchService) CreateMatch(c *fiber.Ctx) error {
	type Req struct {
		HomeTeamName string    `json:"home_team_name"`
		AwayTeamName string    `json:"away_team_name"`
		Location     string    `json:"location"`
		KickoffAt    time.Time `json:"kickoff_at"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if req.HomeTeamName == "" || req.AwayTeamName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "home_team_name and away_team_name are required"})
	}
	if req.KickoffAt.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "kickoff_at is required"})
	}

	match := &models.Match{
		ID:           uuid.NewString(),
		HomeTeamName: titleCaser.String(strings.TrimSpace(req.HomeTeamName)),
		AwayTeamName: titleCaser.String(strings.TrimSpace(req.AwayTeamName)),
		Location:     req.Location,
		KickoffAt:    req.KickoffAt,
		Status:       models.MatchStatusUpcoming,
	}
	match.Slug = s.uniqueSlug(match)

	if err := s.DB.Create(match).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create match", "cause": err.Error()})
	}

	log.Printf("⚽ Match created: %s (%s)", match.Slug, match.ID)
	return c.Status(fiber.StatusCreated).JSON(match)
}

func (s *MatchService) uniqueSlug(match *models.Match) string {
	base := slug.Make(fmt.Sprintf("%s vs %s %s",
		match.HomeTeamName, match.AwayTeamName, match.KickoffAt.Format("2006-01-02")))

	var count int64
	s.DB.Model(&models.Match{}).Where("slug = ?", base).Count(&count)
	if count == 0 {
		return base
	}
	return base + "-" + match.ID[:8]
}

// findMatch resolves :id as either a uuid or a slug.
func (s *MatchService) findMatch(idOrSlug string) (*models.Match, error) {
	var match models.Match
	err := s.DB.Where("id = ?", idOrSlug).Or("slug = ?", idOrSlug).First(&match).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// GetMatch returns a match with its assignments and goal timeline.
func (s *MatchService) GetMatch(c *fiber.Ctx) error {
	match, err := s.findMatch(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "match not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error fetching match", "cause": err.Error()})
	}

	var assignments []models.TeamAssignment
	s.DB.Where("match_id = ?", match.ID).Find(&assignments)

	var goals []models.GoalEvent
	s.DB.Where("match_id = ?", match.ID).Order("sequence ASC").Find(&goals)

	return c.JSON(fiber.Map{
		"match":       match,
		"assignments": assignments,
		"goals":       goals,
	})
}

// ListMatches returns matches, optionally filtered by status.
func (s *MatchService) ListMatches(c *fiber.Ctx) error {
	q := s.DB.Model(&models.Match{}).Order("kickoff_at DESC").Limit(100)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var matches []models.Match
	if err := q.Find(&matches).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error listing matches", "cause": err.Error()})
	}
	return c.JSON(matches)
}

// AssignTeam puts a player on a side (or back to unassigned). Locked once the
// match has been settled.
func (s *MatchService) AssignTeam(c *fiber.Ctx) error {
	match, err := s.findMatch(c.Params("id"))
	if err != nil {
		return matchLookupError(c, err)
	}
	if match.SettledAt != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "match already settled"})
	}

	type Req struct {
		PlayerID string `json:"player_id"`
		Team     string `json:"team"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if req.Team != models.TeamHome && req.Team != models.TeamAway && req.Team != models.TeamUnassigned {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "team must be home, away or unassigned"})
	}

	assignment := models.TeamAssignment{
		ID:       uuid.NewString(),
		MatchID:  match.ID,
		PlayerID: req.PlayerID,
		Team:     req.Team,
	}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "match_id"}, {Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"team", "updated_at"}),
	}).Create(&assignment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to assign team", "cause": err.Error()})
	}

	return c.JSON(assignment)
}

// AddGoal appends one event to the goal timeline. The live-scoring client is
// the producer here; sequence numbers are handed out server-side so they stay
// strictly increasing per match.
func (s *MatchService) AddGoal(c *fiber.Ctx) error {
	match, err := s.findMatch(c.Params("id"))
	if err != nil {
		return matchLookupError(c, err)
	}
	if match.Status != models.MatchStatusOngoing {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "goals can only be recorded on an ongoing match"})
	}

	type Req struct {
		ScorerID       *string `json:"scorer_id"`
		AssistID       *string `json:"assist_id"`
		BenefitingTeam string  `json:"benefiting_team"` // required only when the scorer is unknown
		OffsetSeconds  int     `json:"offset_seconds"`
		IsOwnGoal      bool    `json:"is_own_goal"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if req.OffsetSeconds < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "offset_seconds must not be negative"})
	}

	benefiting := req.BenefitingTeam
	if req.ScorerID != nil {
		var assignment models.TeamAssignment
		err := s.DB.Where("match_id = ? AND player_id = ?", match.ID, *req.ScorerID).First(&assignment).Error
		if err != nil || (assignment.Team != models.TeamHome && assignment.Team != models.TeamAway) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "scorer is not assigned to a side of this match"})
		}
		benefiting = assignment.Team
		if req.IsOwnGoal {
			// an own goal is credited to the other side
			benefiting = models.OpposingTeam(assignment.Team)
		}
	}
	if benefiting != models.TeamHome && benefiting != models.TeamAway {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "benefiting_team must be home or away"})
	}

	var event *models.GoalEvent
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var maxSeq int
		if err := tx.Model(&models.GoalEvent{}).Where("match_id = ?", match.ID).
			Select("COALESCE(MAX(sequence), 0)").Scan(&maxSeq).Error; err != nil {
			return err
		}

		event = &models.GoalEvent{
			ID:             uuid.NewString(),
			MatchID:        match.ID,
			ScorerID:       req.ScorerID,
			AssistID:       req.AssistID,
			BenefitingTeam: benefiting,
			OffsetSeconds:  req.OffsetSeconds,
			Sequence:       maxSeq + 1,
			IsOwnGoal:      req.IsOwnGoal,
		}
		return tx.Create(event).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to record goal", "cause": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(event)
}

// CreateChallenge assigns a player their challenge for the match — one per
// player, fixed before settlement. Binome needs a target teammate.
func (s *MatchService) CreateChallenge(c *fiber.Ctx) error {
	match, err := s.findMatch(c.Params("id"))
	if err != nil {
		return matchLookupError(c, err)
	}
	if match.SettledAt != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "match already settled"})
	}

	type Req struct {
		PlayerID       string               `json:"player_id"`
		Type           models.ChallengeType `json:"type"`
		TargetPlayerID *string              `json:"target_player_id"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if !models.ValidChallengeType(req.Type) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown challenge type"})
	}
	if req.Type == models.ChallengeBinome && req.TargetPlayerID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "binome requires target_player_id"})
	}

	challenge := models.Challenge{
		ID:             uuid.NewString(),
		MatchID:        match.ID,
		PlayerID:       req.PlayerID,
		Type:           req.Type,
		TargetPlayerID: req.TargetPlayerID,
	}
	if err := s.DB.Create(&challenge).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "player already has a challenge for this match", "cause": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(challenge)
}

// RatePlayer records the caller's 1–10 mark of another player for the match.
func (s *MatchService) RatePlayer(c *fiber.Ctx) error {
	match, err := s.findMatch(c.Params("id"))
	if err != nil {
		return matchLookupError(c, err)
	}
	raterID := c.Locals("user_id").(string)

	type Req struct {
		RateeID string `json:"ratee_id"`
		Score   int    `json:"score"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if req.Score < 1 || req.Score > 10 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "score must be between 1 and 10"})
	}
	if req.RateeID == raterID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "players cannot rate themselves"})
	}

	rating := models.MatchRating{
		ID:      uuid.NewString(),
		MatchID: match.ID,
		RaterID: raterID,
		RateeID: req.RateeID,
		Score:   req.Score,
	}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "match_id"}, {Name: "rater_id"}, {Name: "ratee_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score"}),
	}).Create(&rating).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to record rating", "cause": err.Error()})
	}

	return c.JSON(rating)
}

// CastMvpVote records the caller's MVP pick for the match; voting again
// replaces the earlier pick.
func (s *MatchService) CastMvpVote(c *fiber.Ctx) error {
	match, err := s.findMatch(c.Params("id"))
	if err != nil {
		return matchLookupError(c, err)
	}
	voterID := c.Locals("user_id").(string)

	type Req struct {
		VotedForID string `json:"voted_for_id"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if req.VotedForID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "voted_for_id is required"})
	}

	vote := models.MvpVote{
		ID:         uuid.NewString(),
		MatchID:    match.ID,
		VoterID:    voterID,
		VotedForID: req.VotedForID,
	}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "match_id"}, {Name: "voter_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"voted_for_id"}),
	}).Create(&vote).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to record vote", "cause": err.Error()})
	}

	return c.JSON(vote)
}

// RecordScore closes the match with its final score and runs settlement —
// once. A second call is rejected instead of double-applying every delta.
func (s *MatchService) RecordScore(c *fiber.Ctx) error {
	match, err := s.findMatch(c.Params("id"))
	if err != nil {
		return matchLookupError(c, err)
	}
	if match.SettledAt != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "match already settled"})
	}
	if match.Status == models.MatchStatusCancelled {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "match is cancelled"})
	}

	type Req struct {
		ScoreHome       *int `json:"score_home"`
		ScoreAway       *int `json:"score_away"`
		DurationSeconds *int `json:"duration_seconds"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if req.ScoreHome == nil || req.ScoreAway == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "score_home and score_away are both required"})
	}
	if *req.ScoreHome < 0 || *req.ScoreAway < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "scores must not be negative"})
	}

	if err := s.DB.Model(&models.Match{}).Where("id = ?", match.ID).
		Updates(map[string]interface{}{
			"score_home":       req.ScoreHome,
			"score_away":       req.ScoreAway,
			"duration_seconds": req.DurationSeconds,
			"status":           models.MatchStatusCompleted,
		}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to record score", "cause": err.Error()})
	}

	report, err := s.Settlement.SettleMatch(match.ID)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadySettled):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "match already settled"})
		case errors.Is(err, ErrIncompleteScore):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "settlement failed", "cause": err.Error()})
		}
	}

	return c.JSON(fiber.Map{
		"message":  fmt.Sprintf("match settled with %d warning(s)", len(report.Warnings)),
		"report":   report,
		"match_id": match.ID,
	})
}

// UploadPhoto stores the match photo in R2 and keeps the public URL.
func (s *MatchService) UploadPhoto(c *fiber.Ctx) error {
	match, err := s.findMatch(c.Params("id"))
	if err != nil {
		return matchLookupError(c, err)
	}

	photoFile, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "photo is required"})
	}

	ext := filepath.Ext(photoFile.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	key := "match-photos/" + uuid.NewString() + ext
	photoURL, err := utils.UploadFileToR2(photoFile, key)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload photo to R2"})
	}

	if err := s.DB.Model(&models.Match{}).Where("id = ?", match.ID).
		Update("photo_url", photoURL).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save photo URL", "cause": err.Error()})
	}

	return c.JSON(fiber.Map{"photo_url": photoURL})
}

func matchLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "match not found"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error fetching match", "cause": err.Error()})
}
