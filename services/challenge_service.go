package services

import (
	"fmt"
	"log"
	"time"

	"football-match-system/models"

	"gorm.io/gorm"
)

const (
	lockWindowSeconds       = 900 // first 15 minutes, boundary inclusive
	cleanSheetWindowSeconds = 300 // final 5 minutes
	soldierMinAverage       = 8.0
	unsinkableDeficit       = 3
)

type ChallengeService struct {
	DB    *gorm.DB
	Bonus *BonusService
}

func NewChallengeService(db *gorm.DB, bonus *BonusService) *ChallengeService {
	return &ChallengeService{DB: db, Bonus: bonus}
}

// matchContext bundles the immutable per-match data the predicates read:
// the goal timeline in sequence order, each player's side, and the 1–10 marks.
type matchContext struct {
	match *models.Match
	goals []models.GoalEvent
	teams map[string]string
	marks map[string][]int
}

// EvaluateMatch runs the challenge catalog over every not-yet-completed
// challenge of the match and pays out the fulfilled ones. Safe to run again:
// completed rows are never revisited, and the predicates only read per-match
// data, so evaluation order between challenges cannot change the result.
func (s *ChallengeService) EvaluateMatch(matchID string) ([]models.Challenge, []string, error) {
	var match models.Match
	if err := s.DB.Where("id = ?", matchID).First(&match).Error; err != nil {
		return nil, nil, err
	}

	mc, err := s.loadContext(&match)
	if err != nil {
		return nil, nil, err
	}

	var challenges []models.Challenge
	if err := s.DB.Where("match_id = ? AND completed = ?", matchID, false).
		Find(&challenges).Error; err != nil {
		return nil, nil, err
	}

	var completed []models.Challenge
	var warnings []string
	for i := range challenges {
		ch := &challenges[i]
		if ch.Type == models.ChallengeSpecialist {
			// only ever confirmed by hand
			continue
		}
		if !fulfilled(ch, mc) {
			continue
		}

		if err := s.Bonus.Award(ch.PlayerID, matchID, DefaultBonusAmounts.Challenge,
			models.ReasonChallengeBonus, &ch.Type); err != nil {
			warnings = append(warnings, fmt.Sprintf("challenge %s for %s: bonus failed: %v", ch.Type, ch.PlayerID, err))
			continue
		}

		if err := s.markCompleted(ch); err != nil {
			warnings = append(warnings, fmt.Sprintf("challenge %s for %s: %v", ch.Type, ch.PlayerID, err))
			continue
		}

		completed = append(completed, *ch)
		log.Printf("🏅 Challenge completed: %s by %s (match %s)", ch.Type, ch.PlayerID, matchID)
	}
	return completed, warnings, nil
}

// ConfirmManually completes a challenge outside the automatic catalog — the
// path for specialist, which the evaluator always skips.
func (s *ChallengeService) ConfirmManually(challengeID string) (*models.Challenge, error) {
	var ch models.Challenge
	if err := s.DB.Where("id = ?", challengeID).First(&ch).Error; err != nil {
		return nil, err
	}
	if ch.Completed {
		return &ch, fmt.Errorf("challenge %s already completed", challengeID)
	}

	if err := s.Bonus.Award(ch.PlayerID, ch.MatchID, DefaultBonusAmounts.Challenge,
		models.ReasonChallengeBonus, &ch.Type); err != nil {
		return nil, err
	}
	if err := s.markCompleted(&ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (s *ChallengeService) markCompleted(ch *models.Challenge) error {
	now := time.Now()
	ch.Completed = true
	ch.CompletedAt = &now
	return s.DB.Save(ch).Error
}

func (s *ChallengeService) loadContext(match *models.Match) (*matchContext, error) {
	var goals []models.GoalEvent
	if err := s.DB.Where("match_id = ?", match.ID).
		Order("sequence ASC").Find(&goals).Error; err != nil {
		return nil, err
	}

	var assignments []models.TeamAssignment
	if err := s.DB.Where("match_id = ?", match.ID).Find(&assignments).Error; err != nil {
		return nil, err
	}
	teams := make(map[string]string, len(assignments))
	for _, a := range assignments {
		if a.Team == models.TeamHome || a.Team == models.TeamAway {
			teams[a.PlayerID] = a.Team
		}
	}

	var ratings []models.MatchRating
	if err := s.DB.Where("match_id = ?", match.ID).Find(&ratings).Error; err != nil {
		return nil, err
	}
	marks := make(map[string][]int)
	for _, r := range ratings {
		marks[r.RateeID] = append(marks[r.RateeID], r.Score)
	}

	return &matchContext{match: match, goals: goals, teams: teams, marks: marks}, nil
}

// fulfilled evaluates one challenge against the match data.
func fulfilled(ch *models.Challenge, mc *matchContext) bool {
	switch ch.Type {
	case models.ChallengeAltruist:
		return mc.assistCount(ch.PlayerID) >= 2
	case models.ChallengeFox:
		return mc.goalCount(ch.PlayerID) >= 3
	case models.ChallengePivot:
		return mc.goalCount(ch.PlayerID) >= 1 && mc.assistCount(ch.PlayerID) >= 1
	case models.ChallengeClutch:
		last := mc.lastGoal()
		return last != nil && !last.IsOwnGoal && last.ScorerID != nil && *last.ScorerID == ch.PlayerID
	case models.ChallengeSoldier:
		avg, rated := mc.averageMark(ch.PlayerID)
		return rated && avg > soldierMinAverage
	case models.ChallengeLock:
		team, ok := mc.teamOf(ch.PlayerID)
		return ok && mc.concededUpTo(team, lockWindowSeconds) == 0
	case models.ChallengeCleanSheet:
		team, ok := mc.teamOf(ch.PlayerID)
		if !ok || mc.match.DurationSeconds == nil {
			return false
		}
		from := *mc.match.DurationSeconds - cleanSheetWindowSeconds
		return mc.concededFrom(team, from) == 0 && mc.ownGoalsBy(ch.PlayerID) == 0
	case models.ChallengeUnsinkable:
		team, ok := mc.teamOf(ch.PlayerID)
		return ok && mc.teamWon(team) && mc.maxDeficit(team) >= unsinkableDeficit
	case models.ChallengeBinome:
		if ch.TargetPlayerID == nil {
			return false
		}
		return mc.linkedGoal(ch.PlayerID, *ch.TargetPlayerID)
	}
	return false
}

func (mc *matchContext) teamOf(playerID string) (string, bool) {
	team, ok := mc.teams[playerID]
	return team, ok
}

// goalCount counts real goals scored by the player. Own goals never count.
func (mc *matchContext) goalCount(playerID string) int {
	n := 0
	for _, g := range mc.goals {
		if !g.IsOwnGoal && g.ScorerID != nil && *g.ScorerID == playerID {
			n++
		}
	}
	return n
}

func (mc *matchContext) assistCount(playerID string) int {
	n := 0
	for _, g := range mc.goals {
		if !g.IsOwnGoal && g.AssistID != nil && *g.AssistID == playerID {
			n++
		}
	}
	return n
}

func (mc *matchContext) ownGoalsBy(playerID string) int {
	n := 0
	for _, g := range mc.goals {
		if g.IsOwnGoal && g.ScorerID != nil && *g.ScorerID == playerID {
			n++
		}
	}
	return n
}

// lastGoal is the event with the highest sequence, nil on a goalless match.
func (mc *matchContext) lastGoal() *models.GoalEvent {
	if len(mc.goals) == 0 {
		return nil
	}
	return &mc.goals[len(mc.goals)-1]
}

func (mc *matchContext) averageMark(playerID string) (float64, bool) {
	scores := mc.marks[playerID]
	if len(scores) == 0 {
		return 0, false
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores)), true
}

// concededUpTo counts goals against the team no later than cutoff seconds
// into the match. Own goals benefiting the opponent count: BenefitingTeam
// already carries who gained.
func (mc *matchContext) concededUpTo(team string, cutoff int) int {
	opponent := models.OpposingTeam(team)
	n := 0
	for _, g := range mc.goals {
		if g.BenefitingTeam == opponent && g.OffsetSeconds <= cutoff {
			n++
		}
	}
	return n
}

// concededFrom counts goals against the team at or after `from` seconds.
func (mc *matchContext) concededFrom(team string, from int) int {
	opponent := models.OpposingTeam(team)
	n := 0
	for _, g := range mc.goals {
		if g.BenefitingTeam == opponent && g.OffsetSeconds >= from {
			n++
		}
	}
	return n
}

func (mc *matchContext) teamWon(team string) bool {
	if mc.match.ScoreHome == nil || mc.match.ScoreAway == nil {
		return false
	}
	if team == models.TeamHome {
		return *mc.match.ScoreHome > *mc.match.ScoreAway
	}
	return *mc.match.ScoreAway > *mc.match.ScoreHome
}

// maxDeficit walks the timeline in sequence order and returns the largest
// goals-against minus goals-for the team ever sat at.
func (mc *matchContext) maxDeficit(team string) int {
	goalsFor, goalsAgainst, worst := 0, 0, 0
	for _, g := range mc.goals {
		if g.BenefitingTeam == team {
			goalsFor++
		} else {
			goalsAgainst++
		}
		if d := goalsAgainst - goalsFor; d > worst {
			worst = d
		}
	}
	return worst
}

// linkedGoal reports whether any real goal was scored by target off an assist
// by the player.
func (mc *matchContext) linkedGoal(assistID, targetID string) bool {
	for _, g := range mc.goals {
		if g.IsOwnGoal {
			continue
		}
		if g.AssistID != nil && *g.AssistID == assistID &&
			g.ScorerID != nil && *g.ScorerID == targetID {
			return true
		}
	}
	return false
}
