package usecases

import (
	"context"
	"time"

	"github.com/practice-sem-2/employee-chat/internal/models"
	"golang.org/x/sync/errgroup"
)

type HiresStore interface {
	RecentHires(ctx context.Context, since time.Time) ([]models.Employee, error)
	DatabaseTime(ctx context.Context) (time.Time, error)
}

type HiresRun struct {
	Employees []models.Employee
	Elapsed   time.Duration
}

type HiresReport struct {
	Since        time.Time
	Blocking     HiresRun
	Concurrent   HiresRun
	DatabaseTime time.Time
	// DatabaseTimeErr is kept apart so a failed clock query does not hide the timings.
	DatabaseTimeErr error
}

// HiresBenchmark times the recent hires query called inline against the same
// query run on a separate goroutine and awaited.
type HiresBenchmark struct {
	store  HiresStore
	months int
	now    func() time.Time
}

func NewHiresBenchmark(store HiresStore, months int) *HiresBenchmark {
	if months <= 0 {
		months = 6
	}
	return &HiresBenchmark{
		store:  store,
		months: months,
		now:    time.Now,
	}
}

func (b *HiresBenchmark) Run(ctx context.Context) (*HiresReport, error) {
	report := &HiresReport{
		Since: b.now().AddDate(0, -b.months, 0),
	}

	start := time.Now()
	employees, err := b.store.RecentHires(ctx, report.Since)
	if err != nil {
		return nil, wrapError(err)
	}
	report.Blocking = HiresRun{Employees: employees, Elapsed: time.Since(start)}

	start = time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		report.Concurrent.Employees, err = b.store.RecentHires(gctx, report.Since)
		return err
	})
	if err = g.Wait(); err != nil {
		return nil, wrapError(err)
	}
	report.Concurrent.Elapsed = time.Since(start)

	report.DatabaseTime, report.DatabaseTimeErr = b.store.DatabaseTime(ctx)
	return report, nil
}
