package services

import (
	"testing"

	"football-match-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestEnsureProfileSeedsFromMirror(t *testing.T) {
	db := setupTestDB(t)
	players := NewPlayerService(db)

	require.NoError(t, db.Create(&models.BaseRatingMirror{
		ID:             uuid.NewString(),
		ExternalUserID: "ext-ana",
		BaseRating:     1150,
		Source:         "placement",
	}).Error)

	profile, err := players.EnsureProfile("ext-ana", "ana")
	require.NoError(t, err)
	require.Equal(t, 1150, profile.Rating)
	require.Equal(t, 1150, profile.RatingBase)
	require.Equal(t, 0, profile.MatchesPlayed)

	// second call returns the same profile instead of re-seeding
	again, err := players.EnsureProfile("ext-ana", "ana")
	require.NoError(t, err)
	require.Equal(t, profile.ID, again.ID)

	// without a mirror row the default starting rating stands
	fresh, err := players.EnsureProfile("ext-bruno", "bruno")
	require.NoError(t, err)
	require.Equal(t, 1000, fresh.Rating)
	require.Equal(t, 1000, fresh.RatingBase)
}
