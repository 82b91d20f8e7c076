// services/scheduler.go
package services

import (
	"log"
	"time"

	"football-match-system/models"

	"github.com/go-co-op/gocron/v2"
)

func (s *MatchService) StartKickoffScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: flip upcoming matches to ongoing once kickoff has passed
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var matches []models.Match
			now := time.Now()
			err := s.DB.Where("status = ? AND kickoff_at <= ?", models.MatchStatusUpcoming, now).
				Find(&matches).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, m := range matches {
				m.Status = models.MatchStatusOngoing
				if err := s.DB.Save(&m).Error; err != nil {
					log.Printf("[Scheduler] Failed to start match %s: %v", m.ID, err)
				} else {
					log.Printf("🟢 Match kicked off: %s", m.Slug)
				}
			}
		}),
	)
}
