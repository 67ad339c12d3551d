package attendance

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

type (
	Repository interface {
		// QueryRecords returns the records matching filter, ordered by date then student by default.
		QueryRecords(ctx context.Context, filter Filter) ([]Record, error)
		// UpsertRecords inserts or updates (on student & date) all records in a single transaction.
		UpsertRecords(ctx context.Context, records ...Record) (int, error)
		StudentExists(ctx context.Context, id int) (bool, error)
		ClassExists(ctx context.Context, id int) (bool, error)
	}

	ServiceInterface interface {
		Report(ctx context.Context, filter Filter) (Report, error)
		MarkBulk(ctx context.Context, bm BulkMark) (int, error)
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Report aggregates the attendance records matching filter.
func (svc *Service) Report(ctx context.Context, filter Filter) (Report, error) {
	if filter.StudentID != nil {
		if err := svc.checkStudent(ctx, *filter.StudentID); err != nil {
			return Report{}, err
		}
	}
	if filter.ClassID != nil {
		if err := svc.checkClass(ctx, *filter.ClassID); err != nil {
			return Report{}, err
		}
	}

	recs, err := svc.repo.QueryRecords(ctx, filter)
	if err != nil {
		return Report{}, errors.Wrap(err, "querying attendance records")
	}
	if recs == nil {
		recs = make([]Record, 0)
	}
	return Report{Records: recs, Statistics: Aggregate(recs)}, nil
}

// MarkBulk saves a class' attendance for one day, all or nothing. It returns the number of records written.
func (svc *Service) MarkBulk(ctx context.Context, bm BulkMark) (int, error) {
	if err := svc.checkClass(ctx, bm.ClassID); err != nil {
		return 0, err
	}
	for _, m := range bm.Marks {
		if err := svc.checkStudent(ctx, m.StudentID); err != nil {
			return 0, err
		}
	}

	n, err := svc.repo.UpsertRecords(ctx, bm.Records()...)
	if err != nil {
		return 0, errors.Wrap(err, "upserting attendance records")
	}
	return n, nil
}

func (svc *Service) checkStudent(ctx context.Context, id int) error {
	ok, err := svc.repo.StudentExists(ctx, id)
	if err != nil {
		return errors.Wrap(err, "checking student")
	}
	if !ok {
		return core.NewNotFoundError("student")
	}
	return nil
}

func (svc *Service) checkClass(ctx context.Context, id int) error {
	ok, err := svc.repo.ClassExists(ctx, id)
	if err != nil {
		return errors.Wrap(err, "checking class")
	}
	if !ok {
		return core.NewNotFoundError("class")
	}
	return nil
}
