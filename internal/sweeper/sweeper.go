package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/innovativedesigner773/sharecart/internal/repo"
)

// Sweeper keeps the active set honest: a fast ticker demotes overdue active
// shares to expired, a slow one purges terminal rows past retention. The
// lazy check in the resolve path is sufficient for correctness; the sweeper
// keeps owner-facing expiry notifications timely even when nobody clicks a
// stale link.
type Sweeper struct {
	Repo *repo.GormRepo
	Log  *slog.Logger

	SweepInterval time.Duration
	PurgeInterval time.Duration
	RetainFor     time.Duration

	Now func() time.Time
}

func (s *Sweeper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Sweeper) Run(ctx context.Context) {
	sweepTicker := time.NewTicker(s.SweepInterval)
	purgeTicker := time.NewTicker(s.PurgeInterval)
	defer sweepTicker.Stop()
	defer purgeTicker.Stop()

	for {
		select {
		case <-sweepTicker.C:
			s.SweepOnce(ctx)
		case <-purgeTicker.C:
			s.PurgeOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) {
	n, err := s.Repo.SweepExpired(ctx, s.now())
	if err != nil {
		s.Log.Error("expiry sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.Log.Info("expired overdue shares", "count", n)
	}
}

func (s *Sweeper) PurgeOnce(ctx context.Context) {
	n, err := s.Repo.PurgeTerminal(ctx, s.now().Add(-s.RetainFor))
	if err != nil {
		s.Log.Error("retention purge failed", "error", err)
		return
	}
	if n > 0 {
		s.Log.Info("purged terminal shares", "count", n)
	}
}
