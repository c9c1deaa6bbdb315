package jobs

import (
	"log"
	"time"

	"gorm.io/gorm"

	"rewards-backend/internal/models"
)

// EarningsResetJob zeroes the rolling earnings aggregates on user statistics
// when a day, ISO week or month boundary passes.
type EarningsResetJob struct {
	db      *gorm.DB
	lastRun time.Time
}

func NewEarningsResetJob(db *gorm.DB) *EarningsResetJob {
	return &EarningsResetJob{db: db, lastRun: time.Now()}
}

// Start begins the periodic reset job
func (j *EarningsResetJob) Start(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			if err := j.runOnce(time.Now()); err != nil {
				log.Printf("Earnings reset error: %v", err)
			}
		}
	}()
}

func (j *EarningsResetJob) runOnce(now time.Time) error {
	updates := map[string]interface{}{}

	if dayOf(now) != dayOf(j.lastRun) {
		updates["daily_earnings"] = 0
	}
	yearNow, weekNow := now.ISOWeek()
	yearLast, weekLast := j.lastRun.ISOWeek()
	if yearNow != yearLast || weekNow != weekLast {
		updates["weekly_earnings"] = 0
	}
	if now.Month() != j.lastRun.Month() || now.Year() != j.lastRun.Year() {
		updates["monthly_earnings"] = 0
	}

	if len(updates) == 0 {
		return nil
	}

	res := j.db.Model(&models.UserStatistics{}).Where("1 = 1").Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	log.Printf("Earnings reset: cleared %v on %d rows", keys(updates), res.RowsAffected)
	j.lastRun = now
	return nil
}

func dayOf(t time.Time) string {
	return t.Format("2006-01-02")
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
