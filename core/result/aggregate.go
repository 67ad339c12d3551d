package result

import "github.com/trezcool/academia/core"

// Aggregate computes the statistics of an exam's results.
// A result passes when its marks reach passingMarks. The pass percentage is relative to
// the enrolled students count, so students without a result count as non-passers.
func Aggregate(records []Record, passingMarks float64, enrolled int) Statistics {
	stats := Statistics{ResultsCount: len(records)}
	if len(records) == 0 {
		return stats
	}

	var sumMarks, sumPct float64
	stats.HighestMarks = records[0].MarksObtained
	stats.LowestMarks = records[0].MarksObtained
	for _, rec := range records {
		if rec.MarksObtained >= passingMarks {
			stats.PassCount++
		} else {
			stats.FailCount++
		}
		sumMarks += rec.MarksObtained
		sumPct += rec.ScorePercentage()
		if rec.MarksObtained > stats.HighestMarks {
			stats.HighestMarks = rec.MarksObtained
		}
		if rec.MarksObtained < stats.LowestMarks {
			stats.LowestMarks = rec.MarksObtained
		}
	}

	n := float64(len(records))
	stats.AverageMarks = core.Round2(sumMarks / n)
	stats.AveragePercentage = core.Round2(sumPct / n)
	stats.PassPercentage = core.Percentage(float64(stats.PassCount), float64(enrolled))
	return stats
}
