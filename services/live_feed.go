package services

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"football-match-system/models"

	"github.com/gofiber/fiber/v2"
)

// StreamMatchFeedSSE streams the goal timeline of one match in real time.
// Clients reconnecting mid-match get every event already recorded, then new
// ones as the live-scoring client adds them.
func (s *MatchService) StreamMatchFeedSSE(c *fiber.Ctx) error {
	match, err := s.findMatch(c.Params("id"))
	if err != nil {
		return matchLookupError(c, err)
	}
	matchID := match.ID

	// SSE headers
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	// Use fasthttp stream writer (THIS replaces Flush)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		// Sequence is strictly increasing per match, so it doubles as the
		// stream cursor.
		lastSequence := 0

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		w.Flush()

		for {
			select {
			case <-ticker.C:
				var newGoals []models.GoalEvent

				err := s.DB.
					Where("match_id = ? AND sequence > ?", matchID, lastSequence).
					Order("sequence ASC").
					Find(&newGoals).Error

				if err != nil {
					log.Printf("SSE query error for match %s: %v", matchID, err)
					continue
				}

				if len(newGoals) == 0 {
					continue
				}

				lastSequence = newGoals[len(newGoals)-1].Sequence

				for _, g := range newGoals {
					payload, _ := json.Marshal(g)

					fmt.Fprintf(w,
						"event: goal\ndata: %s\n\n",
						payload,
					)
				}

				// This is the REAL "flush"
				if err := w.Flush(); err != nil {
					// Client disconnected
					return
				}

			case <-c.Context().Done():
				// Client closed connection
				return
			}
		}
	})

	return nil
}
