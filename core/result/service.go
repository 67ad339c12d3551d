package result

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

var ErrExamNotFound = core.NewNotFoundError("exam")

type (
	Repository interface {
		GetExam(ctx context.Context, id int) (Exam, error)
		// QueryResults returns the results matching filter, along with their academic year.
		QueryResults(ctx context.Context, filter Filter) ([]Record, error)
		// QueryResultsByYear returns every result of the academic year.
		QueryResultsByYear(ctx context.Context, year string) ([]Record, error)
		CountEnrolledStudents(ctx context.Context, classID int) (int, error)
		ClassExists(ctx context.Context, id int) (bool, error)
	}

	ServiceInterface interface {
		ExamStatistics(ctx context.Context, filter Filter) (Statistics, error)
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ExamStatistics aggregates an exam's results. Students are counted as enrolled in
// filter.ClassID when set, in the exam's class otherwise.
func (svc *Service) ExamStatistics(ctx context.Context, filter Filter) (Statistics, error) {
	exam, err := svc.repo.GetExam(ctx, filter.ExamID)
	if err != nil {
		if core.IsNotFound(err) {
			return Statistics{}, ErrExamNotFound
		}
		return Statistics{}, errors.Wrap(err, "getting exam")
	}

	classID := exam.ClassID
	if filter.ClassID != nil {
		ok, err := svc.repo.ClassExists(ctx, *filter.ClassID)
		if err != nil {
			return Statistics{}, errors.Wrap(err, "checking class")
		}
		if !ok {
			return Statistics{}, core.NewNotFoundError("class")
		}
		classID = *filter.ClassID
	}

	recs, err := svc.repo.QueryResults(ctx, filter)
	if err != nil {
		return Statistics{}, errors.Wrap(err, "querying results")
	}
	enrolled, err := svc.repo.CountEnrolledStudents(ctx, classID)
	if err != nil {
		return Statistics{}, errors.Wrap(err, "counting enrolled students")
	}
	return Aggregate(recs, exam.PassingMarks, enrolled), nil
}

// YearResults returns every result of the academic year.
func (svc *Service) YearResults(ctx context.Context, year string) ([]Record, error) {
	recs, err := svc.repo.QueryResultsByYear(ctx, year)
	return recs, errors.Wrap(err, "querying results by year")
}
