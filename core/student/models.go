package student

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/result"
)

// Statuses
const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusGraduated Status = "graduated"
)

type Status string

type Student struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	ClassID      int    `json:"class_id"`
	AcademicYear string `json:"academic_year,omitempty"`
	Status       Status `json:"status"`
}

type Class struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// AcademicYear is either a single year ("2024") or a span of two ("2024-2025").
// It is decoded from a JSON string or number.
type AcademicYear string

var errInvalidYear = errors.New("must be a year (2024) or a span of years (2024-2025)")

func (y *AcademicYear) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*y = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*y = AcademicYear(core.CleanString(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*y = AcademicYear(n.String())
	return nil
}

func (y AcademicYear) String() string { return string(y) }

// Next returns the academic year following y.
func (y AcademicYear) Next() (AcademicYear, error) {
	parts := strings.Split(string(y), "-")
	if len(parts) > 2 {
		return "", errInvalidYear
	}
	next := make([]string, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			return "", errInvalidYear
		}
		next = append(next, strconv.Itoa(n+1))
	}
	return AcademicYear(strings.Join(next, "-")), nil
}

// Validate checks that y has a successor.
func (y AcademicYear) Validate() error {
	if _, err := y.Next(); err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "academic_year", Error: err.Error()})
	}
	return nil
}

// Candidate is a student considered for promotion, with their results.
type Candidate struct {
	Student Student
	Results []result.Record
}

// Mutation describes the changes to apply to a student. Nil fields are left untouched.
type Mutation struct {
	StudentID    int
	ClassID      *int
	AcademicYear *string
	Status       *Status

	Promoted    bool // moved to the next class or graduated
	Deactivated bool // flipped to inactive
}

func (m Mutation) String() string {
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "student=%d", m.StudentID)
	if m.ClassID != nil {
		_, _ = fmt.Fprintf(&sb, " class=%d", *m.ClassID)
	}
	if m.AcademicYear != nil {
		_, _ = fmt.Fprintf(&sb, " year=%s", *m.AcademicYear)
	}
	if m.Status != nil {
		_, _ = fmt.Fprintf(&sb, " status=%s", *m.Status)
	}
	return sb.String()
}

type PromotionOptions struct {
	Threshold      float64
	TopClassPolicy string // core.TopClassSkip | core.TopClassGraduate
}

// Skip records why a student was left out of a plan.
type Skip struct {
	StudentID int
	Reason    string
}

type PromotionPlan struct {
	Mutations []Mutation
	Skipped   []Skip
	Promoted  int
}

type PromotionResult struct {
	RunID    string `json:"run_id"`
	Year     string `json:"academic_year"`
	Promoted int    `json:"promoted"`
	Repeated int    `json:"repeated"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}

type SweepPlan struct {
	Mutations []Mutation
	Inactive  int
}

type SweepResult struct {
	RunID     string `json:"run_id"`
	Inactive  int    `json:"inactive"`
	Activated int    `json:"activated"`
	Failed    int    `json:"failed"`
}

// PromoteRequest is the body of a promotion trigger. AcademicYear defaults to the current year.
type PromoteRequest struct {
	AcademicYear AcademicYear `json:"academic_year"`
}
