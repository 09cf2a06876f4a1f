package tracker

import (
	"math"
	"sort"

	"gorm.io/gorm"
)

const (
	analyticsWindowDays = 30
	forecastHorizon     = 3
	forecastMinPoints   = 6
)

type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// activity counts habit and routine completions per date in [start, end].
// Dates without activity are omitted.
func activity(db *gorm.DB, start, end string) ([]DayCount, error) {
	var habitRows, routineRows []DayCount
	if err := db.Model(&CompletionLog{}).
		Select("log_date as date, count(*) as count").
		Where("log_date BETWEEN ? AND ?", start, end).
		Group("log_date").
		Scan(&habitRows).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&RoutineLog{}).
		Select("log_date as date, count(*) as count").
		Where("log_date BETWEEN ? AND ?", start, end).
		Group("log_date").
		Scan(&routineRows).Error; err != nil {
		return nil, err
	}

	sum := map[string]int64{}
	for _, r := range append(habitRows, routineRows...) {
		sum[r.Date] += r.Count
	}
	out := make([]DayCount, 0, len(sum))
	for d, c := range sum {
		if c > 0 {
			out = append(out, DayCount{Date: d, Count: c})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// Forecast fits an ordinary least squares line to counts (x = index) and
// projects the next three points, floored at zero. It returns nil for fewer
// than six points.
func Forecast(counts []int64) []int64 {
	n := len(counts)
	if n < forecastMinPoints {
		return nil
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, c := range counts {
		x, y := float64(i), float64(c)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	slope := (fn*sumXY - sumX*sumY) / (fn*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / fn

	out := make([]int64, 0, forecastHorizon)
	for i := 0; i < forecastHorizon; i++ {
		v := math.Floor(slope*float64(n+i) + intercept + 0.5)
		out = append(out, int64(math.Max(0, v)))
	}
	return out
}
