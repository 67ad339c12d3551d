package attendance

import "github.com/trezcool/academia/core"

// Aggregate counts the records per status. Late days count as attended.
// Days without a record are not inferred as absences.
// Only present, absent and late records count towards TotalDays.
func Aggregate(records []Record) Statistics {
	var stats Statistics
	for _, rec := range records {
		switch rec.Status {
		case StatusPresent:
			stats.PresentDays++
		case StatusAbsent:
			stats.AbsentDays++
		case StatusLate:
			stats.LateDays++
		default:
			continue
		}
		stats.TotalDays++
	}
	stats.AttendancePercentage = core.Percentage(float64(stats.PresentDays+stats.LateDays), float64(stats.TotalDays))
	return stats
}
