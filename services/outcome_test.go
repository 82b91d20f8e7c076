package services

import (
	"testing"

	"football-match-system/models"

	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestResolveOutcomes(t *testing.T) {
	assignments := []models.TeamAssignment{
		{PlayerID: "p-home-1", Team: models.TeamHome},
		{PlayerID: "p-home-2", Team: models.TeamHome},
		{PlayerID: "p-away-1", Team: models.TeamAway},
		{PlayerID: "p-bench", Team: models.TeamUnassigned},
	}

	tests := []struct {
		name      string
		scoreHome *int
		scoreAway *int
		want      map[string]Outcome
		wantErr   error
	}{
		{
			name:      "home win",
			scoreHome: intPtr(3),
			scoreAway: intPtr(1),
			want: map[string]Outcome{
				"p-home-1": OutcomeWin,
				"p-home-2": OutcomeWin,
				"p-away-1": OutcomeLoss,
			},
		},
		{
			name:      "away win",
			scoreHome: intPtr(0),
			scoreAway: intPtr(2),
			want: map[string]Outcome{
				"p-home-1": OutcomeLoss,
				"p-home-2": OutcomeLoss,
				"p-away-1": OutcomeWin,
			},
		},
		{
			name:      "draw",
			scoreHome: intPtr(2),
			scoreAway: intPtr(2),
			want: map[string]Outcome{
				"p-home-1": OutcomeDraw,
				"p-home-2": OutcomeDraw,
				"p-away-1": OutcomeDraw,
			},
		},
		{
			name:      "goalless draw",
			scoreHome: intPtr(0),
			scoreAway: intPtr(0),
			want: map[string]Outcome{
				"p-home-1": OutcomeDraw,
				"p-home-2": OutcomeDraw,
				"p-away-1": OutcomeDraw,
			},
		},
		{
			name:      "missing away score",
			scoreHome: intPtr(1),
			wantErr:   ErrIncompleteScore,
		},
		{
			name:    "missing both scores",
			wantErr: ErrIncompleteScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := &models.Match{ID: "m1", ScoreHome: tt.scoreHome, ScoreAway: tt.scoreAway}
			got, err := ResolveOutcomes(match, assignments)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			// unassigned players never settle
			require.NotContains(t, got, "p-bench")
		})
	}
}

func TestOutcomeReason(t *testing.T) {
	require.Equal(t, models.ReasonWin, OutcomeWin.Reason())
	require.Equal(t, models.ReasonLoss, OutcomeLoss.Reason())
	require.Equal(t, models.ReasonDraw, OutcomeDraw.Reason())
}
