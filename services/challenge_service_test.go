package services

import (
	"testing"

	"football-match-system/models"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// goal builds one timeline event; sequence is assigned by position in the slice.
func goal(scorerID, assistID, benefiting string, offset int, ownGoal bool) models.GoalEvent {
	g := models.GoalEvent{BenefitingTeam: benefiting, OffsetSeconds: offset, IsOwnGoal: ownGoal}
	if scorerID != "" {
		g.ScorerID = strPtr(scorerID)
	}
	if assistID != "" {
		g.AssistID = strPtr(assistID)
	}
	return g
}

func buildContext(match *models.Match, teams map[string]string, goals []models.GoalEvent, marks map[string][]int) *matchContext {
	for i := range goals {
		goals[i].Sequence = i + 1
	}
	if marks == nil {
		marks = map[string][]int{}
	}
	return &matchContext{match: match, goals: goals, teams: teams, marks: marks}
}

// The recurring fixture: home wins 3–1. Ana scores three times, Bruno assists
// twice, Diego puts one into his own net at the 10 minute mark.
func homeWinContext() *matchContext {
	return buildContext(
		&models.Match{ID: "m1", ScoreHome: intPtr(3), ScoreAway: intPtr(1), DurationSeconds: intPtr(3600)},
		map[string]string{
			"ana":   models.TeamHome,
			"bruno": models.TeamHome,
			"diego": models.TeamHome,
			"karim": models.TeamAway,
		},
		[]models.GoalEvent{
			goal("ana", "bruno", models.TeamHome, 60, false),
			goal("ana", "", models.TeamHome, 300, false),
			goal("diego", "", models.TeamAway, 600, true), // own goal
			goal("ana", "bruno", models.TeamHome, 1200, false),
		},
		map[string][]int{
			"ana":   {9, 9, 8},
			"bruno": {8, 8},
		},
	)
}

func challengeFor(playerID string, t models.ChallengeType) *models.Challenge {
	return &models.Challenge{ID: "c1", MatchID: "m1", PlayerID: playerID, Type: t}
}

func TestFulfilledFoxAndAltruist(t *testing.T) {
	mc := homeWinContext()

	require.True(t, fulfilled(challengeFor("ana", models.ChallengeFox), mc))
	require.True(t, fulfilled(challengeFor("bruno", models.ChallengeAltruist), mc))

	// two real goals are not enough, and the own goal never counts as one
	require.False(t, fulfilled(challengeFor("bruno", models.ChallengeFox), mc))
	require.False(t, fulfilled(challengeFor("diego", models.ChallengeFox), mc))
	require.False(t, fulfilled(challengeFor("ana", models.ChallengeAltruist), mc))
}

func TestFulfilledPivot(t *testing.T) {
	mc := homeWinContext()

	// ana has goals but no assist, bruno assists but never scores
	require.False(t, fulfilled(challengeFor("ana", models.ChallengePivot), mc))
	require.False(t, fulfilled(challengeFor("bruno", models.ChallengePivot), mc))

	mc.goals = append(mc.goals, goal("bruno", "ana", models.TeamHome, 2000, false))
	require.True(t, fulfilled(challengeFor("bruno", models.ChallengePivot), mc))
	require.True(t, fulfilled(challengeFor("ana", models.ChallengePivot), mc))
}

func TestFulfilledClutch(t *testing.T) {
	mc := homeWinContext()

	// ana scored the last goal of the match
	require.True(t, fulfilled(challengeFor("ana", models.ChallengeClutch), mc))
	require.False(t, fulfilled(challengeFor("bruno", models.ChallengeClutch), mc))

	// an own goal as the final event fulfills clutch for nobody
	mc.goals = append(mc.goals, goal("diego", "", models.TeamAway, 3000, true))
	mc.goals[len(mc.goals)-1].Sequence = len(mc.goals)
	require.False(t, fulfilled(challengeFor("diego", models.ChallengeClutch), mc))
	require.False(t, fulfilled(challengeFor("ana", models.ChallengeClutch), mc))
}

func TestFulfilledClutchGoallessMatch(t *testing.T) {
	mc := buildContext(
		&models.Match{ID: "m1", ScoreHome: intPtr(0), ScoreAway: intPtr(0)},
		map[string]string{"ana": models.TeamHome},
		nil, nil,
	)
	require.False(t, fulfilled(challengeFor("ana", models.ChallengeClutch), mc))
}

func TestFulfilledSoldier(t *testing.T) {
	mc := homeWinContext()

	// ana averages 8.67, bruno exactly 8.0 — the threshold is strict
	require.True(t, fulfilled(challengeFor("ana", models.ChallengeSoldier), mc))
	require.False(t, fulfilled(challengeFor("bruno", models.ChallengeSoldier), mc))

	// a player nobody rated cannot fulfill soldier
	require.False(t, fulfilled(challengeFor("diego", models.ChallengeSoldier), mc))
}

func TestFulfilledLockBoundary(t *testing.T) {
	tests := []struct {
		name          string
		concededAt    int
		wantFulfilled bool
	}{
		{name: "conceded at 899s", concededAt: 899, wantFulfilled: false},
		{name: "conceded exactly at 900s still counts", concededAt: 900, wantFulfilled: false},
		{name: "conceded at 901s is outside the window", concededAt: 901, wantFulfilled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mc := buildContext(
				&models.Match{ID: "m1", ScoreHome: intPtr(2), ScoreAway: intPtr(1)},
				map[string]string{"ana": models.TeamHome, "karim": models.TeamAway},
				[]models.GoalEvent{
					goal("karim", "", models.TeamAway, tt.concededAt, false),
				},
				nil,
			)
			require.Equal(t, tt.wantFulfilled, fulfilled(challengeFor("ana", models.ChallengeLock), mc))
		})
	}
}

func TestFulfilledLockCountsOwnGoalsConceded(t *testing.T) {
	// diego's own goal benefits away, so home conceded inside the window
	mc := buildContext(
		&models.Match{ID: "m1", ScoreHome: intPtr(1), ScoreAway: intPtr(1)},
		map[string]string{"ana": models.TeamHome, "diego": models.TeamHome},
		[]models.GoalEvent{
			goal("diego", "", models.TeamAway, 400, true),
		},
		nil,
	)
	require.False(t, fulfilled(challengeFor("ana", models.ChallengeLock), mc))
}

func TestFulfilledCleanSheet(t *testing.T) {
	duration := 3600

	base := func() *matchContext {
		return buildContext(
			&models.Match{ID: "m1", ScoreHome: intPtr(2), ScoreAway: intPtr(1), DurationSeconds: &duration},
			map[string]string{"ana": models.TeamHome, "diego": models.TeamHome, "karim": models.TeamAway},
			[]models.GoalEvent{
				goal("karim", "", models.TeamAway, 1000, false),
			},
			nil,
		)
	}

	require.True(t, fulfilled(challengeFor("ana", models.ChallengeCleanSheet), base()))

	// conceding inside the final five minutes breaks it
	mc := base()
	mc.goals = append(mc.goals, goal("karim", "", models.TeamAway, duration-120, false))
	require.False(t, fulfilled(challengeFor("ana", models.ChallengeCleanSheet), mc))

	// conceding exactly at duration-300 is inside the window
	mc = base()
	mc.goals = append(mc.goals, goal("karim", "", models.TeamAway, duration-300, false))
	require.False(t, fulfilled(challengeFor("ana", models.ChallengeCleanSheet), mc))

	// an own goal anywhere in the match disqualifies that player
	mc = base()
	mc.goals = append(mc.goals, goal("diego", "", models.TeamAway, 200, true))
	require.False(t, fulfilled(challengeFor("diego", models.ChallengeCleanSheet), mc))

	// without a recorded duration the window cannot be placed
	mc = base()
	mc.match.DurationSeconds = nil
	require.False(t, fulfilled(challengeFor("ana", models.ChallengeCleanSheet), mc))
}

func TestFulfilledUnsinkable(t *testing.T) {
	// away goes 0–3 down, then wins 4–3
	comeback := []models.GoalEvent{
		goal("ana", "", models.TeamHome, 100, false),
		goal("ana", "", models.TeamHome, 200, false),
		goal("ana", "", models.TeamHome, 300, false),
		goal("karim", "", models.TeamAway, 900, false),
		goal("karim", "", models.TeamAway, 1500, false),
		goal("karim", "", models.TeamAway, 2000, false),
		goal("karim", "", models.TeamAway, 2500, false),
	}
	mc := buildContext(
		&models.Match{ID: "m1", ScoreHome: intPtr(3), ScoreAway: intPtr(4)},
		map[string]string{"ana": models.TeamHome, "karim": models.TeamAway},
		comeback, nil,
	)
	require.True(t, fulfilled(challengeFor("karim", models.ChallengeUnsinkable), mc))

	// home never trailed, winning alone is not enough
	require.False(t, fulfilled(challengeFor("ana", models.ChallengeUnsinkable), mc))

	// a two-goal hole is one short
	shallow := []models.GoalEvent{
		goal("ana", "", models.TeamHome, 100, false),
		goal("ana", "", models.TeamHome, 200, false),
		goal("karim", "", models.TeamAway, 900, false),
		goal("karim", "", models.TeamAway, 1500, false),
		goal("karim", "", models.TeamAway, 2000, false),
	}
	mc = buildContext(
		&models.Match{ID: "m1", ScoreHome: intPtr(2), ScoreAway: intPtr(3)},
		map[string]string{"ana": models.TeamHome, "karim": models.TeamAway},
		shallow, nil,
	)
	require.False(t, fulfilled(challengeFor("karim", models.ChallengeUnsinkable), mc))

	// digging out of the hole but only drawing level is not unsinkable
	mc = buildContext(
		&models.Match{ID: "m1", ScoreHome: intPtr(3), ScoreAway: intPtr(3)},
		map[string]string{"ana": models.TeamHome, "karim": models.TeamAway},
		comeback[:6], nil,
	)
	require.False(t, fulfilled(challengeFor("karim", models.ChallengeUnsinkable), mc))
}

func TestFulfilledBinome(t *testing.T) {
	mc := homeWinContext()

	ch := challengeFor("bruno", models.ChallengeBinome)
	ch.TargetPlayerID = strPtr("ana")
	require.True(t, fulfilled(ch, mc))

	// the link is directional: ana never assisted bruno
	ch = challengeFor("ana", models.ChallengeBinome)
	ch.TargetPlayerID = strPtr("bruno")
	require.False(t, fulfilled(ch, mc))

	// a missing target can never be fulfilled
	ch = challengeFor("bruno", models.ChallengeBinome)
	require.False(t, fulfilled(ch, mc))
}

func TestFulfilledSpecialistNeverAutomatic(t *testing.T) {
	mc := homeWinContext()
	require.False(t, fulfilled(challengeFor("ana", models.ChallengeSpecialist), mc))
}

func TestFulfilledUnassignedPlayer(t *testing.T) {
	mc := homeWinContext()
	// defensive challenges need a side to defend
	require.False(t, fulfilled(challengeFor("ghost", models.ChallengeLock), mc))
	require.False(t, fulfilled(challengeFor("ghost", models.ChallengeCleanSheet), mc))
	require.False(t, fulfilled(challengeFor("ghost", models.ChallengeUnsinkable), mc))
}
