// Package sweeper runs the background job that expires stale
// DialogState rows, per §4.9: "a sweeper periodically deletes rows
// where now() > expires_at".
package sweeper

import (
	"context"
	"time"

	cronlib "github.com/robfig/cron/v3"

	"github.com/shaonidutta/converge-ai/logger"
)

// DefaultSchedule runs every minute, matching §4.9's "periodically"
// language without pinning an invariant to an exact cadence.
const DefaultSchedule = "@every 1m"

// Expirer is the narrow collaborator the sweeper needs; dialog.Store
// satisfies it without this package importing dialog directly.
type Expirer interface {
	SweepExpired(ctx context.Context) (int, error)
}

// Sweeper wraps a robfig/cron scheduler that periodically runs an
// Expirer sweep, grounded on the cron expression parsing the pack uses
// for scheduled jobs (pkg/cron/schedule.go).
type Sweeper struct {
	cron    *cronlib.Cron
	expirer Expirer
	timeout time.Duration
	logger  logger.Logger
	entryID cronlib.EntryID
}

func New(expirer Expirer, schedule string, log logger.Logger) (*Sweeper, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	s := &Sweeper{
		cron:    cronlib.New(),
		expirer: expirer,
		timeout: 10 * time.Second,
		logger:  logger.Component(log, "sweeper"),
	}
	id, err := s.cron.AddFunc(schedule, s.runOnce)
	if err != nil {
		return nil, err
	}
	s.entryID = id
	return s, nil
}

// Start launches the scheduler in the background; it returns
// immediately, matching cron.Cron's own non-blocking Start semantics.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop blocks until the in-flight sweep (if any) completes.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.expirer.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("dialog state sweep failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if n > 0 {
		s.logger.Info("swept expired dialog states", map[string]interface{}{"count": n})
	}
}
