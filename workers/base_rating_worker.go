package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"football-match-system/models"
	"football-match-system/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BaseRatingSyncClient pulls base-rating placements from the rating service
// into the local mirror table.
type BaseRatingSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewBaseRatingSyncClient(db *gorm.DB) *BaseRatingSyncClient {
	baseURL := os.Getenv("RATING_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("RATING_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("MATCH_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("MATCH_SERVICE_TOKEN environment variable is required for base rating sync")
	}

	return &BaseRatingSyncClient{
		BaseURL:    baseURL,
		Token:      token,
		DB:         db,
		HTTPClient: utils.HTTPClient,
	}
}

func (c *BaseRatingSyncClient) GetChangedRatings(ctx context.Context, since time.Time) ([]models.BaseRatingMirror, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/public/base-ratings", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call rating service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("rating service returned status %d: %s", resp.StatusCode, string(body))
	}

	// Decode directly into []models.BaseRatingMirror (reuse same struct)
	var response struct {
		Ratings []models.BaseRatingMirror `json:"ratings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode rating service response: %w", err)
	}

	return response.Ratings, nil
}

// PollBaseRatings keeps the mirror table fresh.
func PollBaseRatings(ctx context.Context, client *BaseRatingSyncClient, pollInterval time.Duration) {
	log.Println("Starting base rating polling (DB-backed)...")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Base rating polling stopped.")
			return
		case <-ticker.C:
			logTime := time.Now().UTC()
			log.Printf("Polling for base rating changes since %s...", lastSyncTime.Format(time.RFC3339))

			ratings, err := client.GetChangedRatings(ctx, lastSyncTime)
			if err != nil {
				log.Printf("❌ Error polling base ratings: %v", err)
				continue
			}

			count := len(ratings)
			if count == 0 {
				log.Println("➡️ No new base rating changes.")
				continue
			}

			// Bulk upsert in one statement
			if err := client.DB.Clauses(
				clause.OnConflict{
					Columns: []clause.Column{{Name: "external_user_id"}},
					DoUpdates: clause.AssignmentColumns([]string{
						"base_rating",
						"source",
						"created_at",
						"updated_at",
					}),
				},
			).Create(&ratings).Error; err != nil {
				log.Printf("❌ Failed to upsert %d rating(s) into base_rating_mirror: %v", count, err)
				// Do NOT update lastSyncTime on failure — retry same window next tick
				continue
			}

			lastSyncTime = logTime
			log.Printf("✅ Upserted %d rating(s) into base_rating_mirror table.", count)
		}
	}
}

// GetBaseRating looks up one player's mirrored placement.
func GetBaseRating(db *gorm.DB, externalUserID string) (models.BaseRatingMirror, bool, error) {
	var mirror models.BaseRatingMirror
	if err := db.Where("external_user_id = ?", externalUserID).First(&mirror).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return mirror, false, nil
		}
		return mirror, false, err
	}
	return mirror, true, nil
}
