package service

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"dare_webapp/internal/logger"
	"dare_webapp/internal/metrics"
	"dare_webapp/internal/repository"
	"dare_webapp/internal/storage"
)

// ContentSweeper enforces the retention policy: proof content past its
// expiry is stripped from the game rows and the backing files are
// removed from object storage. The engine itself only computes and
// stores expiry timestamps; this job does the purging.
type ContentSweeper struct {
	games *repository.SwitchGameRepository
	files *storage.ProofStore // nil when object storage is not configured
	sched gocron.Scheduler
}

func NewContentSweeper(db *pgxpool.Pool, files *storage.ProofStore) *ContentSweeper {
	return &ContentSweeper{
		games: repository.NewSwitchGameRepository(db),
		files: files,
	}
}

// Start schedules the sweep. Interval of 0 defaults to 10 minutes.
func (s *ContentSweeper) Start(interval time.Duration) error {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	s.sched = sched

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			s.sweep(ctx)
		}),
	)
	if err != nil {
		return err
	}

	sched.Start()
	logger.Info("content sweeper started", "interval", interval)
	return nil
}

func (s *ContentSweeper) Stop() {
	if s.sched != nil {
		_ = s.sched.Shutdown()
	}
}

// sweep deletes expired proof files first, then strips the content
// from the rows. Doing it in this order means a crash between the two
// steps leaves keys we can retry, never orphaned rows pointing at
// deleted files being re-deleted.
func (s *ContentSweeper) sweep(ctx context.Context) {
	keys, err := s.games.ExpiredProofFileKeys(ctx)
	if err != nil {
		logger.Error("sweeper: listing expired proof files failed", "error", err)
		return
	}
	if s.files != nil {
		for _, key := range keys {
			if err := s.files.Delete(ctx, key); err != nil {
				logger.Error("sweeper: deleting proof file failed", "key", key, "error", err)
				return
			}
		}
	}

	n, err := s.games.PurgeExpiredProofs(ctx)
	if err != nil {
		logger.Error("sweeper: purging expired proofs failed", "error", err)
		return
	}
	if n > 0 {
		metrics.ProofsSwept.Add(float64(n))
		logger.Info("sweeper: purged expired proofs", "count", n, "files", len(keys))
	}
}
