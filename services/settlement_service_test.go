package services

import (
	"fmt"
	"testing"
	"time"

	"football-match-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeRatingSource stands in for the rating service: +25 for a win, -20
// otherwise, reading the current rating from the local profile.
type fakeRatingSource struct {
	db   *gorm.DB
	fail map[string]bool // playerIDs whose call should error
}

func (f *fakeRatingSource) ApplyResult(playerID, matchID string, won bool) (*ResultDelta, error) {
	if f.fail[playerID] {
		return nil, fmt.Errorf("rating service unavailable")
	}
	var profile models.PlayerProfile
	if err := f.db.Where("id = ?", playerID).First(&profile).Error; err != nil {
		return nil, err
	}
	delta := -20
	if won {
		delta = 25
	}
	return &ResultDelta{RatingBefore: profile.Rating, RatingAfter: profile.Rating + delta}, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.PlayerProfile{},
		&models.Match{},
		&models.TeamAssignment{},
		&models.GoalEvent{},
		&models.Challenge{},
		&models.RatingEntry{},
		&models.MatchRating{},
		&models.MvpVote{},
		&models.PlayerBadge{},
		&models.BaseRatingMirror{},
	))
	return db
}

func newServices(t *testing.T, db *gorm.DB) (*SettlementService, *ReversalService, *fakeRatingSource) {
	t.Helper()
	rating := &fakeRatingSource{db: db, fail: map[string]bool{}}
	bonus := NewBonusService(db)
	badges := NewBadgeService(db)
	challenges := NewChallengeService(db, bonus)
	settlement := NewSettlementService(db, rating, bonus, challenges, badges)
	reversal := NewReversalService(db)
	return settlement, reversal, rating
}

func seedPlayer(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	require.NoError(t, db.Create(&models.PlayerProfile{
		ID:             id,
		ExternalUserID: "ext-" + id,
		Username:       id,
		Rating:         1000,
		RatingBase:     1000,
	}).Error)
}

func seedMatch(t *testing.T, db *gorm.DB, scoreHome, scoreAway int) *models.Match {
	t.Helper()
	duration := 3600
	match := &models.Match{
		ID:              uuid.NewString(),
		Slug:            "test-" + uuid.NewString()[:8],
		HomeTeamName:    "Reds",
		AwayTeamName:    "Blues",
		KickoffAt:       time.Now().Add(-2 * time.Hour),
		ScoreHome:       &scoreHome,
		ScoreAway:       &scoreAway,
		DurationSeconds: &duration,
		Status:          models.MatchStatusCompleted,
	}
	require.NoError(t, db.Create(match).Error)
	return match
}

func assign(t *testing.T, db *gorm.DB, matchID, playerID, team string) {
	t.Helper()
	require.NoError(t, db.Create(&models.TeamAssignment{
		ID: uuid.NewString(), MatchID: matchID, PlayerID: playerID, Team: team,
	}).Error)
}

func addGoal(t *testing.T, db *gorm.DB, matchID string, seq int, g models.GoalEvent) {
	t.Helper()
	g.ID = uuid.NewString()
	g.MatchID = matchID
	g.Sequence = seq
	require.NoError(t, db.Create(&g).Error)
}

func loadProfile(t *testing.T, db *gorm.DB, id string) models.PlayerProfile {
	t.Helper()
	var p models.PlayerProfile
	require.NoError(t, db.Where("id = ?", id).First(&p).Error)
	return p
}

func TestSettleMatchAppliesResultsAndLedger(t *testing.T) {
	db := setupTestDB(t)
	settlement, _, _ := newServices(t, db)

	for _, id := range []string{"ana", "bruno", "karim", "leo"} {
		seedPlayer(t, db, id)
	}
	match := seedMatch(t, db, 3, 1)
	assign(t, db, match.ID, "ana", models.TeamHome)
	assign(t, db, match.ID, "bruno", models.TeamHome)
	assign(t, db, match.ID, "karim", models.TeamAway)
	assign(t, db, match.ID, "leo", models.TeamUnassigned)

	addGoal(t, db, match.ID, 1, models.GoalEvent{ScorerID: strPtr("ana"), BenefitingTeam: models.TeamHome, OffsetSeconds: 60})
	addGoal(t, db, match.ID, 2, models.GoalEvent{ScorerID: strPtr("ana"), BenefitingTeam: models.TeamHome, OffsetSeconds: 300})
	addGoal(t, db, match.ID, 3, models.GoalEvent{ScorerID: strPtr("bruno"), BenefitingTeam: models.TeamAway, OffsetSeconds: 600, IsOwnGoal: true})
	addGoal(t, db, match.ID, 4, models.GoalEvent{ScorerID: strPtr("ana"), BenefitingTeam: models.TeamHome, OffsetSeconds: 1200})

	report, err := settlement.SettleMatch(match.ID)
	require.NoError(t, err)
	require.Empty(t, report.Warnings)
	require.Len(t, report.Outcomes, 3) // leo never took a side

	ana := loadProfile(t, db, "ana")
	require.Equal(t, 1025, ana.Rating)
	require.Equal(t, 25, ana.RatingGain)
	require.Equal(t, 1, ana.MatchesPlayed)
	require.Equal(t, 1, ana.Wins)

	karim := loadProfile(t, db, "karim")
	require.Equal(t, 980, karim.Rating)
	require.Equal(t, -20, karim.RatingGain)
	require.Equal(t, 1, karim.Losses)

	bruno := loadProfile(t, db, "bruno")
	require.Equal(t, 1, bruno.OwnGoals)

	leo := loadProfile(t, db, "leo")
	require.Equal(t, 1000, leo.Rating)
	require.Equal(t, 0, leo.MatchesPlayed)

	var entries []models.RatingEntry
	require.NoError(t, db.Where("match_id = ?", match.ID).Find(&entries).Error)
	require.Len(t, entries, 3)
	for _, e := range entries {
		require.Equal(t, e.Delta, e.RatingAfter-e.RatingBefore)
		require.True(t, e.Reason.IsBaseResult())
	}

	var settled models.Match
	require.NoError(t, db.Where("id = ?", match.ID).First(&settled).Error)
	require.NotNil(t, settled.SettledAt)

	// the gate: a second pass must not double-apply anything
	_, err = settlement.SettleMatch(match.ID)
	require.ErrorIs(t, err, ErrAlreadySettled)
	require.Equal(t, 1025, loadProfile(t, db, "ana").Rating)
}

func TestSettleMatchDrawKeepsTruthfulLedger(t *testing.T) {
	db := setupTestDB(t)
	settlement, _, _ := newServices(t, db)

	seedPlayer(t, db, "ana")
	seedPlayer(t, db, "karim")
	match := seedMatch(t, db, 2, 2)
	assign(t, db, match.ID, "ana", models.TeamHome)
	assign(t, db, match.ID, "karim", models.TeamAway)

	report, err := settlement.SettleMatch(match.ID)
	require.NoError(t, err)
	require.Empty(t, report.Warnings)

	// the formula knows no draw: both land on the losing branch (-20), but the
	// counters and the ledger say draw
	for _, id := range []string{"ana", "karim"} {
		p := loadProfile(t, db, id)
		require.Equal(t, 980, p.Rating)
		require.Equal(t, -20, p.RatingGain)
		require.Equal(t, 1, p.MatchesPlayed)
		require.Equal(t, 1, p.Draws)
		require.Equal(t, 0, p.Losses)
		require.Equal(t, 0, p.Wins)

		var entry models.RatingEntry
		require.NoError(t, db.Where("match_id = ? AND player_id = ?", match.ID, id).First(&entry).Error)
		require.Equal(t, models.ReasonDraw, entry.Reason)
	}
}

func TestSettleMatchRatingServiceFailureIsAWarning(t *testing.T) {
	db := setupTestDB(t)
	settlement, _, rating := newServices(t, db)

	seedPlayer(t, db, "ana")
	seedPlayer(t, db, "karim")
	match := seedMatch(t, db, 1, 0)
	assign(t, db, match.ID, "ana", models.TeamHome)
	assign(t, db, match.ID, "karim", models.TeamAway)

	rating.fail["karim"] = true

	report, err := settlement.SettleMatch(match.ID)
	require.NoError(t, err)
	require.Len(t, report.Warnings, 1)
	require.Contains(t, report.Warnings[0], "karim")

	// ana settled anyway, karim stayed untouched
	require.Equal(t, 1025, loadProfile(t, db, "ana").Rating)
	karim := loadProfile(t, db, "karim")
	require.Equal(t, 1000, karim.Rating)
	require.Equal(t, 0, karim.MatchesPlayed)
}

func TestSettleMatchMvpTiePaysEveryLeader(t *testing.T) {
	db := setupTestDB(t)
	settlement, reversal, _ := newServices(t, db)

	seedPlayer(t, db, "ana")
	seedPlayer(t, db, "bruno")
	seedPlayer(t, db, "karim")
	match := seedMatch(t, db, 1, 0)
	assign(t, db, match.ID, "ana", models.TeamHome)
	assign(t, db, match.ID, "bruno", models.TeamHome)
	assign(t, db, match.ID, "karim", models.TeamAway)

	votes := []models.MvpVote{
		{ID: uuid.NewString(), MatchID: match.ID, VoterID: "karim", VotedForID: "ana"},
		{ID: uuid.NewString(), MatchID: match.ID, VoterID: "ana", VotedForID: "bruno"},
	}
	for i := range votes {
		require.NoError(t, db.Create(&votes[i]).Error)
	}

	report, err := settlement.SettleMatch(match.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"ana", "bruno"}, report.MvpPlayerIDs)

	for _, id := range []string{"ana", "bruno"} {
		p := loadProfile(t, db, id)
		require.Equal(t, 1025+DefaultBonusAmounts.Mvp, p.Rating)
		require.Equal(t, 25, p.RatingGain) // bonuses never touch gain
		require.Equal(t, 1, p.MvpCount)
	}
	require.Equal(t, 0, loadProfile(t, db, "karim").MvpCount)

	// reversing a tied match takes the bonus back from every leader
	revReport, err := reversal.Reverse(match.ID)
	require.NoError(t, err)
	require.Empty(t, revReport.Warnings)
	require.Equal(t, 5, revReport.EntriesReversed) // 3 base results + 2 mvp bonuses

	for _, id := range []string{"ana", "bruno", "karim"} {
		p := loadProfile(t, db, id)
		require.Equal(t, 1000, p.Rating, id)
		require.Equal(t, 0, p.RatingGain, id)
		require.Equal(t, 0, p.MvpCount, id)
		require.Equal(t, 0, p.MatchesPlayed, id)
	}
}

func TestSettleMatchChallengeBonusAndBadge(t *testing.T) {
	db := setupTestDB(t)
	settlement, _, _ := newServices(t, db)

	seedPlayer(t, db, "ana")
	seedPlayer(t, db, "karim")
	match := seedMatch(t, db, 3, 0)
	assign(t, db, match.ID, "ana", models.TeamHome)
	assign(t, db, match.ID, "karim", models.TeamAway)

	for i := 1; i <= 3; i++ {
		addGoal(t, db, match.ID, i, models.GoalEvent{ScorerID: strPtr("ana"), BenefitingTeam: models.TeamHome, OffsetSeconds: i * 200})
	}
	require.NoError(t, db.Create(&models.Challenge{
		ID: uuid.NewString(), MatchID: match.ID, PlayerID: "ana", Type: models.ChallengeFox,
	}).Error)

	report, err := settlement.SettleMatch(match.ID)
	require.NoError(t, err)
	require.Len(t, report.CompletedChallenges, 1)
	require.Equal(t, models.ChallengeFox, report.CompletedChallenges[0].Type)

	ana := loadProfile(t, db, "ana")
	require.Equal(t, 1025+DefaultBonusAmounts.Challenge, ana.Rating)
	require.Equal(t, 25, ana.RatingGain)

	var badge models.PlayerBadge
	require.NoError(t, db.Where("player_id = ? AND match_id = ?", "ana", match.ID).First(&badge).Error)
	require.Equal(t, models.ChallengeBadgeCode(models.ChallengeFox), badge.Code)

	var entry models.RatingEntry
	require.NoError(t, db.Where("match_id = ? AND reason = ?", match.ID, models.ReasonChallengeBonus).First(&entry).Error)
	require.NotNil(t, entry.ChallengeType)
	require.Equal(t, models.ChallengeFox, *entry.ChallengeType)
}

func TestReverseRestoresExactPreSettlementState(t *testing.T) {
	db := setupTestDB(t)
	settlement, reversal, _ := newServices(t, db)

	for _, id := range []string{"ana", "bruno", "karim"} {
		seedPlayer(t, db, id)
	}
	match := seedMatch(t, db, 2, 2)
	assign(t, db, match.ID, "ana", models.TeamHome)
	assign(t, db, match.ID, "bruno", models.TeamHome)
	assign(t, db, match.ID, "karim", models.TeamAway)

	addGoal(t, db, match.ID, 1, models.GoalEvent{ScorerID: strPtr("bruno"), BenefitingTeam: models.TeamAway, OffsetSeconds: 100, IsOwnGoal: true})
	addGoal(t, db, match.ID, 2, models.GoalEvent{ScorerID: strPtr("ana"), BenefitingTeam: models.TeamHome, OffsetSeconds: 500})

	// an MVP vote and a fulfilled challenge so every bonus path is exercised;
	// ana scored last, which fulfills clutch
	require.NoError(t, db.Create(&models.MvpVote{
		ID: uuid.NewString(), MatchID: match.ID, VoterID: "karim", VotedForID: "ana",
	}).Error)
	require.NoError(t, db.Create(&models.Challenge{
		ID: uuid.NewString(), MatchID: match.ID, PlayerID: "ana", Type: models.ChallengeClutch,
	}).Error)

	before := map[string]models.PlayerProfile{}
	for _, id := range []string{"ana", "bruno", "karim"} {
		before[id] = loadProfile(t, db, id)
	}

	_, err := settlement.SettleMatch(match.ID)
	require.NoError(t, err)
	require.NotEqual(t, before["ana"].Rating, loadProfile(t, db, "ana").Rating)

	report, err := reversal.Reverse(match.ID)
	require.NoError(t, err)
	require.Empty(t, report.Warnings)
	require.Equal(t, 5, report.EntriesReversed) // 3 draws + mvp + challenge

	for id, want := range before {
		got := loadProfile(t, db, id)
		require.Equal(t, want.Rating, got.Rating, id)
		require.Equal(t, want.RatingGain, got.RatingGain, id)
		require.Equal(t, want.MatchesPlayed, got.MatchesPlayed, id)
		require.Equal(t, want.Wins, got.Wins, id)
		require.Equal(t, want.Losses, got.Losses, id)
		require.Equal(t, want.Draws, got.Draws, id)
		require.Equal(t, want.MvpCount, got.MvpCount, id)
		require.Equal(t, want.OwnGoals, got.OwnGoals, id)
	}

	// every match-scoped record is gone
	for _, model := range []interface{}{
		&models.RatingEntry{}, &models.MatchRating{}, &models.MvpVote{},
		&models.GoalEvent{}, &models.Challenge{}, &models.PlayerBadge{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Where("match_id = ?", match.ID).Count(&count).Error)
		require.Zero(t, count)
	}

	// and the match itself is back to a fresh upcoming state
	var reset models.Match
	require.NoError(t, db.Where("id = ?", match.ID).First(&reset).Error)
	require.Nil(t, reset.ScoreHome)
	require.Nil(t, reset.ScoreAway)
	require.Nil(t, reset.DurationSeconds)
	require.Nil(t, reset.SettledAt)
	require.Equal(t, models.MatchStatusUpcoming, reset.Status)

	// reset match settles again cleanly once a new score is recorded
	two := 2
	require.NoError(t, db.Model(&models.Match{}).Where("id = ?", match.ID).
		Updates(map[string]interface{}{"score_home": &two, "score_away": &two, "status": models.MatchStatusCompleted}).Error)
	addGoal(t, db, match.ID, 1, models.GoalEvent{ScorerID: strPtr("ana"), BenefitingTeam: models.TeamHome, OffsetSeconds: 100})
	_, err = settlement.SettleMatch(match.ID)
	require.NoError(t, err)
}

func TestReverseNeverSettledMatchIsSafe(t *testing.T) {
	db := setupTestDB(t)
	_, reversal, _ := newServices(t, db)

	seedPlayer(t, db, "ana")
	match := seedMatch(t, db, 1, 0)
	assign(t, db, match.ID, "ana", models.TeamHome)

	// stray artifacts from an aborted flow
	require.NoError(t, db.Create(&models.MvpVote{
		ID: uuid.NewString(), MatchID: match.ID, VoterID: "ana", VotedForID: "ana",
	}).Error)

	report, err := reversal.Reverse(match.ID)
	require.NoError(t, err)
	require.Zero(t, report.EntriesReversed)

	require.Equal(t, 1000, loadProfile(t, db, "ana").Rating)

	var votes int64
	require.NoError(t, db.Model(&models.MvpVote{}).Where("match_id = ?", match.ID).Count(&votes).Error)
	require.Zero(t, votes)

	var reset models.Match
	require.NoError(t, db.Where("id = ?", match.ID).First(&reset).Error)
	require.Equal(t, models.MatchStatusUpcoming, reset.Status)
	require.Nil(t, reset.ScoreHome)
}

func TestReverseMissingProfileIsAWarning(t *testing.T) {
	db := setupTestDB(t)
	settlement, reversal, _ := newServices(t, db)

	seedPlayer(t, db, "ana")
	seedPlayer(t, db, "karim")
	match := seedMatch(t, db, 1, 0)
	assign(t, db, match.ID, "ana", models.TeamHome)
	assign(t, db, match.ID, "karim", models.TeamAway)

	_, err := settlement.SettleMatch(match.ID)
	require.NoError(t, err)

	// karim's profile disappears between settlement and the reset
	require.NoError(t, db.Unscoped().Where("id = ?", "karim").Delete(&models.PlayerProfile{}).Error)

	report, err := reversal.Reverse(match.ID)
	require.NoError(t, err)
	require.Equal(t, 1, report.EntriesReversed)
	require.Len(t, report.Warnings, 1)
	require.Contains(t, report.Warnings[0], "karim")

	// ana still reversed cleanly
	require.Equal(t, 1000, loadProfile(t, db, "ana").Rating)
}

func TestReverseFloorsCountersAtZero(t *testing.T) {
	db := setupTestDB(t)
	_, reversal, _ := newServices(t, db)

	seedPlayer(t, db, "ana")
	match := seedMatch(t, db, 1, 0)
	now := time.Now()
	require.NoError(t, db.Model(&models.Match{}).Where("id = ?", match.ID).
		Update("settled_at", &now).Error)

	// a hand-edited ledger entry for a player whose counters were zeroed by a
	// support script; the decrement must not go negative
	require.NoError(t, db.Create(&models.RatingEntry{
		ID: uuid.NewString(), PlayerID: "ana", MatchID: match.ID,
		RatingBefore: 1000, RatingAfter: 1025, Delta: 25, Reason: models.ReasonWin,
	}).Error)

	report, err := reversal.Reverse(match.ID)
	require.NoError(t, err)
	require.Equal(t, 1, report.EntriesReversed)

	ana := loadProfile(t, db, "ana")
	require.Equal(t, 975, ana.Rating)
	require.Equal(t, 0, ana.MatchesPlayed)
	require.Equal(t, 0, ana.Wins)
}
