package attendance

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
)

// Statuses
const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
)

type Status string

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	}
	return false
}

// Record is one student's attendance on a given day. There is at most one Record per (student, date).
type Record struct {
	ID          int       `json:"id"`
	StudentID   int       `json:"student_id"`
	ClassID     int       `json:"class_id"`
	Date        core.Date `json:"date"`
	Status      Status    `json:"status"`
	StudentName string    `json:"student_name,omitempty"`
}

type Statistics struct {
	TotalDays            int     `json:"total_days"`
	PresentDays          int     `json:"present_days"`
	AbsentDays           int     `json:"absent_days"`
	LateDays             int     `json:"late_days"`
	AttendancePercentage float64 `json:"attendance_percentage"`
}

type Report struct {
	Records    []Record   `json:"attendance_records"`
	Statistics Statistics `json:"statistics"`
}

// Filter selects the records of a report. Both dates are inclusive.
type Filter struct {
	StudentID *int
	ClassID   *int
	StartDate core.Date
	EndDate   core.Date
	Orderings []core.DBOrdering
}

// ReportQuery holds the raw report query params.
type ReportQuery struct {
	StudentID string `query:"student_id" validate:"omitempty,numeric"`
	ClassID   string `query:"class_id" validate:"omitempty,numeric"`
	StartDate string `query:"start_date" validate:"required,date"`
	EndDate   string `query:"end_date" validate:"required,date"`
}

// Validate checks the query params and converts them into a Filter.
func (q *ReportQuery) Validate(validate *validator.Validate) (Filter, error) {
	q.StudentID = core.CleanString(q.StudentID)
	q.ClassID = core.CleanString(q.ClassID)
	q.StartDate = core.CleanString(q.StartDate)
	q.EndDate = core.CleanString(q.EndDate)

	if err := validate.Struct(q); err != nil {
		return Filter{}, err
	}

	var filter Filter
	filter.StartDate, _ = core.ParseDate(q.StartDate)
	filter.EndDate, _ = core.ParseDate(q.EndDate)
	if !filter.EndDate.After(filter.StartDate) {
		return Filter{}, core.NewValidationError(nil, core.FieldError{Field: "end_date", Error: endDateText})
	}

	var err error
	if filter.StudentID, err = core.ParseID(q.StudentID, "student_id"); err != nil {
		return Filter{}, err
	}
	if filter.ClassID, err = core.ParseID(q.ClassID, "class_id"); err != nil {
		return Filter{}, err
	}
	return filter, nil
}

// Mark is a single student's status in a BulkMark.
type Mark struct {
	StudentID int    `json:"student_id" validate:"required,gt=0"`
	Status    Status `json:"status" validate:"required,oneof=present absent late"`
}

// BulkMark marks the attendance of (part of) a class on a given day.
type BulkMark struct {
	ClassID int    `json:"class_id" validate:"required,gt=0"`
	Date    string `json:"date" validate:"required,date"`
	Marks   []Mark `json:"records" validate:"required,min=1,dive"`
}

func (bm *BulkMark) Validate(validate *validator.Validate) error {
	bm.Date = core.CleanString(bm.Date)
	for i := range bm.Marks {
		bm.Marks[i].Status = Status(core.CleanString(string(bm.Marks[i].Status), true /* lower */))
	}
	return validate.Struct(bm)
}

// Records returns the attendance rows described by bm. bm must be valid.
func (bm BulkMark) Records() []Record {
	date, _ := core.ParseDate(bm.Date)
	recs := make([]Record, 0, len(bm.Marks))
	for _, m := range bm.Marks {
		recs = append(recs, Record{
			StudentID: m.StudentID,
			ClassID:   bm.ClassID,
			Date:      date,
			Status:    m.Status,
		})
	}
	return recs
}
