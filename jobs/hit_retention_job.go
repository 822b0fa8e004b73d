// File: /jobs/hit_retention_job.go
package jobs

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"afisha-api/stats"
)

// HitRetentionJob periodically drops endpoint hits older than the retention
// window.
type HitRetentionJob struct {
	service       *stats.Service
	retentionDays int
	ticker        *time.Ticker
	done          chan bool
}

// NewHitRetentionJob creates a new hit retention job
func NewHitRetentionJob(db *gorm.DB, retentionDays int, interval time.Duration) *HitRetentionJob {
	return &HitRetentionJob{
		service:       stats.NewService(db),
		retentionDays: retentionDays,
		ticker:        time.NewTicker(interval),
		done:          make(chan bool),
	}
}

// Start begins the retention job
func (j *HitRetentionJob) Start() {
	fmt.Println("Hit retention job started")

	go func() {
		// Run immediately on start
		j.cleanup()

		for {
			select {
			case <-j.ticker.C:
				j.cleanup()
			case <-j.done:
				fmt.Println("Hit retention job stopped")
				return
			}
		}
	}()
}

// Stop stops the retention job
func (j *HitRetentionJob) Stop() {
	j.ticker.Stop()
	j.done <- true
}

func (j *HitRetentionJob) cleanup() {
	cutoff := time.Now().AddDate(0, 0, -j.retentionDays)

	deleted, err := j.service.DeleteOlderThan(cutoff)
	if err != nil {
		fmt.Printf("Error during hit retention cleanup: %v\n", err)
		return
	}

	if deleted > 0 {
		fmt.Printf("Hit retention cleanup removed %d rows\n", deleted)
	}
}
