package bot

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SweepFunc performs one sweep and returns how many records it finalized.
type SweepFunc = func(ctx context.Context) (int, error)

// Sweeper runs a sweep once, then on every tick until its context ends. A
// failed sweep is logged and the next tick runs as usual.
type Sweeper struct {
	name     string
	interval time.Duration
	sweep    SweepFunc
	log      *zap.Logger
}

// NewSweeper returns a sweeper that runs sweep every interval.
func NewSweeper(name string, interval time.Duration, sweep SweepFunc, log *zap.Logger) *Sweeper {
	return &Sweeper{
		name:     name,
		interval: interval,
		sweep:    sweep,
		log:      log.Named("sweeper").With(zap.String("sweep", name)),
	}
}

// Run sweeps immediately to catch up on anything that expired while the
// bot was offline, then on every tick. It returns when ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Stopped sweeper.")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep.
func (s *Sweeper) RunOnce(ctx context.Context) {
	n, err := s.sweep(ctx)
	if err != nil {
		s.log.Error("Sweep failed.", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Debug("Sweep finished.", zap.Int("count", n))
	}
}

// InactiveSweeper expires inactive grants every interval.
func (bot *Bot) InactiveSweeper(interval time.Duration) *Sweeper {
	return NewSweeper("inactive", interval, func(ctx context.Context) (int, error) {
		return bot.Inactive.Sweep(ctx, time.Now())
	}, bot.log)
}

// StrikeSweeper prunes expired strikes every interval.
func (bot *Bot) StrikeSweeper(interval time.Duration) *Sweeper {
	return NewSweeper("strikes", interval, func(context.Context) (int, error) {
		return bot.Strikes.SweepAllGroups()
	}, bot.log)
}
