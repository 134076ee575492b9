package casino

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sweeper deletes sessions idle for longer than ttl and drops their
// leaderboard entries. It runs as a jobs.Job.
type Sweeper struct {
	service  *Service
	board    *Leaderboard
	ttl      time.Duration
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewSweeper(service *Service, board *Leaderboard, ttl, interval time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{
		service:  service,
		board:    board,
		ttl:      ttl,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

func (s *Sweeper) Name() string { return "session-sweeper" }

func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce returns the number of sessions it deleted.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	swept, err := s.service.Sweep(ctx, s.now().UTC().Add(-s.ttl))
	if err != nil {
		s.log.Error("sweep sessions", zap.Error(err))
	}
	for _, id := range swept {
		s.board.Forget(id.String())
	}

	pruned := s.prune(ctx)
	if len(swept) > 0 || pruned > 0 {
		s.log.Info("swept idle sessions",
			zap.Int("count", len(swept)),
			zap.Int("leaderboard_pruned", pruned),
		)
	}
	return len(swept)
}

// prune drops leaderboard entries whose session is gone by other means:
// a redis key expiry, or a result recorded after its session was deleted.
func (s *Sweeper) prune(ctx context.Context) int {
	n := 0
	for _, sid := range s.board.Sessions() {
		id, err := uuid.Parse(sid)
		if err == nil {
			_, err = s.service.Get(ctx, id)
			if !errors.Is(err, ErrSessionNotFound) {
				continue
			}
		}
		s.board.Forget(sid)
		n++
	}
	return n
}
