package tracker

import "math"

type Progress struct {
	CompletedCount int `json:"completedCount"`
	RequiredCount  int `json:"requiredCount"`
	Percent        int `json:"percent"`
}

// WeekProgress scores a habit over the visible week. Daily habits need every
// day; weekly habits need any one.
func WeekProgress(freq Frequency, week [7]string, logged map[string]bool) Progress {
	hits := 0
	for _, d := range week {
		if logged[d] {
			hits++
		}
	}

	p := Progress{RequiredCount: 7, CompletedCount: hits}
	if freq == Weekly {
		p.RequiredCount = 1
		p.CompletedCount = 0
		if hits > 0 {
			p.CompletedCount = 1
		}
	}
	if p.RequiredCount > 0 {
		p.Percent = int(math.Round(100 * float64(p.CompletedCount) / float64(p.RequiredCount)))
	}
	return p
}
