package tracker

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// markLog inserts (habit, date) unless present. inserted reports whether a new
// row was written; gamification only runs when it was.
func markLog(tx *gorm.DB, habitID uint64, date string, now time.Time) (inserted bool, err error) {
	row := CompletionLog{HabitID: habitID, LogDate: date, CreatedAt: now}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func unmarkLog(tx *gorm.DB, habitID uint64, date string) (removed bool, err error) {
	res := tx.Where("habit_id = ? AND log_date = ?", habitID, date).Delete(&CompletionLog{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func datesFor(tx *gorm.DB, habitID uint64) ([]string, error) {
	var out []string
	err := tx.Model(&CompletionLog{}).
		Where("habit_id = ?", habitID).
		Pluck("log_date", &out).Error
	return out, err
}

// logsInRange maps habit id to the set of logged dates in [start, end].
func logsInRange(db *gorm.DB, start, end string) (map[uint64]map[string]bool, error) {
	var rows []CompletionLog
	if err := db.Select("habit_id", "log_date").
		Where("log_date BETWEEN ? AND ?", start, end).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := map[uint64]map[string]bool{}
	for _, r := range rows {
		if out[r.HabitID] == nil {
			out[r.HabitID] = map[string]bool{}
		}
		out[r.HabitID][r.LogDate] = true
	}
	return out, nil
}
