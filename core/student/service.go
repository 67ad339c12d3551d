package student

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/result"
)

var (
	// NowFunc is the clock of the promotion and inactivity runs.
	NowFunc = time.Now

	newRunID = func() string { return uuid.New().String() }
)

type (
	Repository interface {
		QueryStudents(ctx context.Context) ([]Student, error)
		QueryClasses(ctx context.Context) ([]Class, error)
		// LatestAttendanceDates returns the date of each student's most recent attendance record.
		LatestAttendanceDates(ctx context.Context) (map[int]core.Date, error)
		ApplyMutation(ctx context.Context, m Mutation) error
		// ApplyMutations applies all mutations in a single transaction.
		ApplyMutations(ctx context.Context, ms ...Mutation) error
	}

	// ResultSource provides the results of an academic year.
	ResultSource interface {
		YearResults(ctx context.Context, year string) ([]result.Record, error)
	}

	// Recorder records the outcome of the runs.
	Recorder interface {
		ObservePromotion(res PromotionResult, took time.Duration)
		ObserveSweep(res SweepResult, took time.Duration)
	}

	ServiceInterface interface {
		Promote(ctx context.Context, year AcademicYear) (PromotionResult, error)
		CheckInactivity(ctx context.Context) (SweepResult, error)
	}

	Service struct {
		repo     Repository
		results  ResultSource
		mailSvc  core.EmailService
		recorder Recorder
		logger   core.Logger
		conf     *core.Config
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(
	repo Repository,
	results ResultSource,
	mailSvc core.EmailService,
	recorder Recorder,
	logger core.Logger,
	conf *core.Config,
) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		repo:     repo,
		results:  results,
		mailSvc:  mailSvc,
		recorder: recorder,
		logger:   logger,
		conf:     conf,
	}
}

// Promote promotes every student with results for year (the current year if empty) to the next academic year.
// Mutations are applied in a single transaction when the promotion is configured as atomic,
// one by one otherwise, in which case failures are logged and skipped.
func (svc *Service) Promote(ctx context.Context, year AcademicYear) (PromotionResult, error) {
	start := NowFunc()
	if year == "" {
		year = AcademicYear(strconv.Itoa(start.Year()))
	}
	if err := year.Validate(); err != nil {
		return PromotionResult{}, err
	}

	students, err := svc.repo.QueryStudents(ctx)
	if err != nil {
		return PromotionResult{}, errors.Wrap(err, "querying students")
	}
	classes, err := svc.repo.QueryClasses(ctx)
	if err != nil {
		return PromotionResult{}, errors.Wrap(err, "querying classes")
	}
	results, err := svc.results.YearResults(ctx, string(year))
	if err != nil {
		return PromotionResult{}, errors.Wrap(err, "querying results")
	}

	byStudent := make(map[int][]result.Record, len(students))
	for _, res := range results {
		byStudent[res.StudentID] = append(byStudent[res.StudentID], res)
	}
	candidates := make([]Candidate, 0, len(students))
	for _, std := range students {
		candidates = append(candidates, Candidate{Student: std, Results: byStudent[std.ID]})
	}

	plan, err := Promote(candidates, classes, year, PromotionOptions{
		Threshold:      svc.conf.Promotion.Threshold,
		TopClassPolicy: svc.conf.Promotion.TopClassPolicy,
	})
	if err != nil {
		return PromotionResult{}, err
	}

	res := PromotionResult{RunID: newRunID(), Year: string(year), Skipped: len(plan.Skipped)}
	for _, skip := range plan.Skipped {
		if skip.Reason == skipMalformed {
			svc.logger.Warn(fmt.Sprintf("promotion %s: skipping student %d: %s", res.RunID, skip.StudentID, skip.Reason))
		}
	}

	applied, failed, err := svc.apply(ctx, res.RunID, svc.conf.Promotion.Atomic, plan.Mutations)
	if err != nil {
		return PromotionResult{}, errors.Wrap(err, "applying promotion")
	}
	res.Failed = failed
	for _, m := range applied {
		if m.Promoted {
			res.Promoted++
		} else {
			res.Repeated++
		}
	}

	svc.recorder.ObservePromotion(res, NowFunc().Sub(start))
	svc.logger.Info(fmt.Sprintf(
		"promotion %s (%s): %d promoted, %d repeating, %d skipped, %d failed",
		res.RunID, res.Year, res.Promoted, res.Repeated, res.Skipped, res.Failed,
	))
	svc.sendReport("Promotion report", "promotion_report", res)
	return res, nil
}

// CheckInactivity re-evaluates the status of every student based on their latest attendance.
func (svc *Service) CheckInactivity(ctx context.Context) (SweepResult, error) {
	start := NowFunc()

	students, err := svc.repo.QueryStudents(ctx)
	if err != nil {
		return SweepResult{}, errors.Wrap(err, "querying students")
	}
	latest, err := svc.repo.LatestAttendanceDates(ctx)
	if err != nil {
		return SweepResult{}, errors.Wrap(err, "querying latest attendance dates")
	}

	plan := Sweep(students, latest, core.DateOf(start), svc.conf.Inactivity.Days)

	res := SweepResult{RunID: newRunID()}
	applied, failed, err := svc.apply(ctx, res.RunID, svc.conf.Inactivity.Atomic, plan.Mutations)
	if err != nil {
		return SweepResult{}, errors.Wrap(err, "applying inactivity sweep")
	}
	res.Failed = failed
	for _, m := range applied {
		if m.Deactivated {
			res.Inactive++
		} else {
			res.Activated++
		}
	}

	svc.recorder.ObserveSweep(res, NowFunc().Sub(start))
	svc.logger.Info(fmt.Sprintf(
		"inactivity check %s: %d inactive, %d reactivated, %d failed",
		res.RunID, res.Inactive, res.Activated, res.Failed,
	))
	if res.Inactive > 0 || res.Failed > 0 {
		svc.sendReport("Inactivity report", "inactivity_report", res)
	}
	return res, nil
}

// apply applies mutations and returns the ones that succeeded and the number of failures.
// An atomic apply either applies all of them or returns an error.
func (svc *Service) apply(ctx context.Context, runID string, atomic bool, mutations []Mutation) ([]Mutation, int, error) {
	if len(mutations) == 0 {
		return nil, 0, nil
	}
	if atomic {
		if err := svc.repo.ApplyMutations(ctx, mutations...); err != nil {
			return nil, 0, err
		}
		return mutations, 0, nil
	}

	applied := make([]Mutation, 0, len(mutations))
	var failed int
	for _, m := range mutations {
		if err := svc.repo.ApplyMutation(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			failed++
			svc.logger.Error(fmt.Sprintf("run %s: applying %s: %v", runID, m, err), err)
			continue
		}
		applied = append(applied, m)
	}
	return applied, failed, nil
}

func (svc *Service) sendReport(subject, tmpl string, data interface{}) {
	if len(svc.conf.ReportRecipients) == 0 || svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           svc.conf.ReportRecipients,
		Subject:      subject,
		TemplateName: tmpl,
		TemplateData: data,
	})
}

type nopRecorder struct{}

func (nopRecorder) ObservePromotion(PromotionResult, time.Duration) {}
func (nopRecorder) ObserveSweep(SweepResult, time.Duration)         {}
