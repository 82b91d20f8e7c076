package services

import (
	"errors"

	"football-match-system/models"
)

// Outcome is one player's result of a settled match.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
)

// Reason maps an outcome to its ledger tag.
func (o Outcome) Reason() models.ReasonTag {
	switch o {
	case OutcomeWin:
		return models.ReasonWin
	case OutcomeLoss:
		return models.ReasonLoss
	default:
		return models.ReasonDraw
	}
}

// ErrIncompleteScore: settlement was attempted before both scores were recorded.
var ErrIncompleteScore = errors.New("both scores must be recorded before settlement")

// ResolveOutcomes maps every assigned player of the match to win/loss/draw
// from the final score. Players without a side are skipped and take no part
// in anything downstream. Pure: no reads or writes beyond its arguments.
func ResolveOutcomes(match *models.Match, assignments []models.TeamAssignment) (map[string]Outcome, error) {
	if match.ScoreHome == nil || match.ScoreAway == nil {
		return nil, ErrIncompleteScore
	}

	winner := ""
	switch {
	case *match.ScoreHome > *match.ScoreAway:
		winner = models.TeamHome
	case *match.ScoreAway > *match.ScoreHome:
		winner = models.TeamAway
	}

	outcomes := make(map[string]Outcome, len(assignments))
	for _, a := range assignments {
		if a.Team != models.TeamHome && a.Team != models.TeamAway {
			continue
		}
		switch {
		case winner == "":
			outcomes[a.PlayerID] = OutcomeDraw
		case a.Team == winner:
			outcomes[a.PlayerID] = OutcomeWin
		default:
			outcomes[a.PlayerID] = OutcomeLoss
		}
	}
	return outcomes, nil
}
