package student

import (
	"math"
	"sort"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/result"
)

const (
	DefaultThreshold  = 60.0
	DefaultMaxGapDays = 30
)

const (
	skipNoResults = "no results for the academic year"
	skipMalformed = "malformed results"
	skipTopClass  = "already in the highest class"
)

// Promote plans the promotion of candidates to the academic year following targetYear.
// Only results of targetYear are considered; candidates without any are skipped.
// A candidate whose average percentage reaches the threshold moves to the next class
// (the class with the smallest id greater than theirs); others repeat their class in the new year.
func Promote(candidates []Candidate, classes []Class, targetYear AcademicYear, opts PromotionOptions) (PromotionPlan, error) {
	nextYear, err := targetYear.Next()
	if err != nil {
		return PromotionPlan{}, targetYear.Validate()
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}

	classIDs := make([]int, 0, len(classes))
	for _, c := range classes {
		classIDs = append(classIDs, c.ID)
	}
	sort.Ints(classIDs)

	var plan PromotionPlan
	for _, cand := range candidates {
		stdID := cand.Student.ID
		avg, ok, valid := averagePercentage(cand.Results, string(targetYear))
		if !valid {
			plan.Skipped = append(plan.Skipped, Skip{StudentID: stdID, Reason: skipMalformed})
			continue
		}
		if !ok {
			plan.Skipped = append(plan.Skipped, Skip{StudentID: stdID, Reason: skipNoResults})
			continue
		}

		year := string(nextYear)
		mut := Mutation{StudentID: stdID, AcademicYear: &year}

		if avg >= opts.Threshold {
			if next, found := nextClass(classIDs, cand.Student.ClassID); found {
				mut.ClassID = &next
				mut.Promoted = true
			} else if opts.TopClassPolicy == core.TopClassGraduate {
				graduated := StatusGraduated
				mut.Status = &graduated
				mut.Promoted = true
			} else {
				plan.Skipped = append(plan.Skipped, Skip{StudentID: stdID, Reason: skipTopClass})
				continue
			}
			plan.Promoted++
		}
		plan.Mutations = append(plan.Mutations, mut)
	}
	return plan, nil
}

// averagePercentage returns the mean percentage of the year's results.
// ok is false when there are none, valid is false when one of them is malformed.
func averagePercentage(results []result.Record, year string) (avg float64, ok, valid bool) {
	var sum float64
	var n int
	for _, res := range results {
		if res.AcademicYear != year {
			continue
		}
		if !validMarks(res) {
			return 0, false, false
		}
		sum += res.Percentage()
		n++
	}
	if n == 0 {
		return 0, false, true
	}
	return sum / float64(n), true, true
}

func validMarks(res result.Record) bool {
	if math.IsNaN(res.MarksObtained) || math.IsInf(res.MarksObtained, 0) || res.MarksObtained < 0 {
		return false
	}
	return !(math.IsNaN(res.TotalMarks) || math.IsInf(res.TotalMarks, 0))
}

// nextClass returns the smallest id strictly greater than current. ids must be sorted.
func nextClass(ids []int, current int) (int, bool) {
	i := sort.SearchInts(ids, current+1)
	if i < len(ids) {
		return ids[i], true
	}
	return 0, false
}

// Sweep plans the status changes of students given the date of their latest attendance.
// Students not seen for more than maxGapDays (or never) become inactive, the others active.
// Graduated students are left alone.
func Sweep(students []Student, latest map[int]core.Date, today core.Date, maxGapDays int) SweepPlan {
	if maxGapDays <= 0 {
		maxGapDays = DefaultMaxGapDays
	}

	var plan SweepPlan
	for _, std := range students {
		if std.Status == StatusGraduated {
			continue
		}
		last, seen := latest[std.ID]
		if !seen || last.DaysUntil(today) > maxGapDays {
			if std.Status != StatusInactive {
				inactive := StatusInactive
				plan.Mutations = append(plan.Mutations, Mutation{StudentID: std.ID, Status: &inactive, Deactivated: true})
				plan.Inactive++
			}
		} else if std.Status != StatusActive {
			active := StatusActive
			plan.Mutations = append(plan.Mutations, Mutation{StudentID: std.ID, Status: &active})
		}
	}
	return plan
}
