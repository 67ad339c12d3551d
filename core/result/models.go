package result

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
)

// Record is a student's marks for one subject of an exam.
type Record struct {
	ID            int     `json:"id"`
	StudentID     int     `json:"student_id"`
	ExamID        int     `json:"exam_id"`
	SubjectID     int     `json:"subject_id"`
	MarksObtained float64 `json:"marks_obtained"`
	TotalMarks    float64 `json:"total_marks"`
	AcademicYear  string  `json:"academic_year,omitempty"`
}

// Percentage returns the record's marks as a percentage of max(TotalMarks, 1).
func (r Record) Percentage() float64 {
	total := r.TotalMarks
	if total < 1 {
		total = 1
	}
	return r.MarksObtained / total * 100
}

// ScorePercentage returns the record's marks as a percentage of TotalMarks.
// A non-positive TotalMarks falls back to a total of 1.
func (r Record) ScorePercentage() float64 {
	if r.TotalMarks <= 0 {
		return r.MarksObtained * 100
	}
	return r.MarksObtained / r.TotalMarks * 100
}

type Exam struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	ClassID      int     `json:"class_id"`
	TotalMarks   float64 `json:"total_marks"`
	PassingMarks float64 `json:"passing_marks"`
	AcademicYear string  `json:"academic_year,omitempty"`
}

type Statistics struct {
	ResultsCount      int     `json:"results_count"`
	PassCount         int     `json:"pass_count"`
	FailCount         int     `json:"fail_count"`
	PassPercentage    float64 `json:"pass_percentage"`
	AverageMarks      float64 `json:"average_marks"`
	AveragePercentage float64 `json:"average_percentage"`
	HighestMarks      float64 `json:"highest_marks"`
	LowestMarks       float64 `json:"lowest_marks"`
}

// Filter selects the results of one exam, optionally restricted to the students of a class.
type Filter struct {
	ExamID  int
	ClassID *int
}

// StatisticsQuery holds the raw exam statistics query params.
type StatisticsQuery struct {
	ClassID string `query:"class_id" validate:"omitempty,numeric"`
}

// Validate checks the query params and converts them into the Filter of exam examID.
func (q *StatisticsQuery) Validate(validate *validator.Validate, examID string) (Filter, error) {
	id, err := core.ParseID(examID, "id")
	if err != nil {
		return Filter{}, err
	}
	if id == nil {
		return Filter{}, core.NewValidationError(nil, core.FieldError{Field: "id", Error: "must be a valid id"})
	}

	q.ClassID = core.CleanString(q.ClassID)
	if err := validate.Struct(q); err != nil {
		return Filter{}, err
	}
	filter := Filter{ExamID: *id}
	if filter.ClassID, err = core.ParseID(q.ClassID, "class_id"); err != nil {
		return Filter{}, err
	}
	return filter, nil
}
