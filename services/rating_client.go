// football-match-system/services/rating_client.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ResultDelta is what the rating service reports for one applied result.
type ResultDelta struct {
	RatingBefore int `json:"rating_before"`
	RatingAfter  int `json:"rating_after"`
}

// BaseRatingSource is the external base-delta formula. The formula itself is
// opaque to this service; only the before/after it reports is used. It has no
// draw notion — callers pass won=false for a draw and correct the bookkeeping
// themselves.
type BaseRatingSource interface {
	ApplyResult(playerID, matchID string, won bool) (*ResultDelta, error)
}

// RatingFormulaClient calls the rating service over HTTP.
type RatingFormulaClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewRatingFormulaClient(baseURL, token string) *RatingFormulaClient {
	return &RatingFormulaClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ApplyResult calls /rating/apply on the rating service.
func (c *RatingFormulaClient) ApplyResult(playerID, matchID string, won bool) (*ResultDelta, error) {
	url := fmt.Sprintf("%s/rating/apply", c.BaseURL)

	reqBody := map[string]interface{}{
		"player_id": playerID,
		"match_id":  matchID,
		"won":       won,
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("RatingService /rating/apply returned %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("rating apply failed: %d", resp.StatusCode)
	}

	var out ResultDelta
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
