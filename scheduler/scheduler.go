// Package scheduler runs the love loop: top up the pool of unloved
// identities, pick one, post to it, record that it was loved, then
// wait and go again. Every cycle ends in exactly one reschedule
// decision; no failure stops the loop.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/oklog/ulid/v2"

	"github.com/lovepool/lovebot/botdb"
	"github.com/lovepool/lovebot/logger"
	"github.com/lovepool/lovebot/poster"
	"github.com/lovepool/lovebot/recent"
	"github.com/lovepool/lovebot/selector"
)

const (
	// DefaultInterval is the normal delay between cycles.
	DefaultInterval = 5 * time.Minute
	// DefaultRetryDelay is used after a duplicate-content failure;
	// the recent cache already holds the failed pick, so the quick
	// retry will select a different candidate.
	DefaultRetryDelay = 250 * time.Millisecond
)

// Replenisher keeps the candidate pool topped up; satisfied by
// *queue.Manager.
type Replenisher interface {
	EnsureFutureUsers(ctx context.Context) error
}

type Scheduler struct {
	DB         botdb.Querier
	Queue      Replenisher
	Poster     poster.Poster
	Recent     *recent.Cache
	Interval   time.Duration
	RetryDelay time.Duration

	metrics *metrics
}

func New(db botdb.Querier, q Replenisher, p poster.Poster, cache *recent.Cache) *Scheduler {
	if cache == nil {
		cache = recent.New(recent.DefaultLimit)
	}
	return &Scheduler{
		DB:         db,
		Queue:      q,
		Poster:     p,
		Recent:     cache,
		Interval:   DefaultInterval,
		RetryDelay: DefaultRetryDelay,
	}
}

// Run waits for the identity index to be confirmed, then cycles until
// ctx is cancelled. It only returns the context's error.
func (s *Scheduler) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if err := s.waitForIndex(ctx); err != nil {
		return err
	}

	log.Info("love loop starting", "interval", s.Interval)

	for {
		delay := s.RunCycle(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// waitForIndex retries the index check with exponential backoff so a
// slow database start does not kill the process.
func (s *Scheduler) waitForIndex(ctx context.Context) error {
	log := logger.FromContext(ctx)

	expback := backoff.NewExponentialBackOff()
	expback.InitialInterval = time.Second
	expback.MaxInterval = time.Second * 30

	for {
		err := s.DB.VerifyIdentityIndex(ctx)
		if err == nil {
			return nil
		}

		wait := expback.NextBackOff()
		log.Warn("identity index not ready", "err", err, "retry_in", wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// RunCycle executes one replenish, select, act, record pass and
// returns the delay until the next cycle.
func (s *Scheduler) RunCycle(ctx context.Context) time.Duration {
	start := time.Now()
	log := logger.FromContext(ctx).With("cycle", ulid.Make().String())
	ctx = logger.NewContext(ctx, log)

	s.metrics.cycleStarted()

	if count, err := s.DB.CountUnloved(ctx); err == nil {
		s.metrics.setUnloved(count)
	}

	if err := s.Queue.EnsureFutureUsers(ctx); err != nil {
		log.Error("could not replenish the queue", "err", err)
		s.metrics.cycleFailed(stageReplenish)
		return s.Interval
	}

	id, err := selector.Pick(ctx, s.DB, s.Recent.IDs())
	if err != nil {
		if errors.Is(err, selector.ErrNoCandidate) {
			log.Info("no one to share the love with")
		} else {
			log.Error("could not pick an identity", "err", err)
		}
		s.metrics.cycleFailed(stageSelect)
		return s.Interval
	}

	// Cache the pick before acting so an in-flight or failed post
	// cannot be re-selected next cycle.
	s.Recent.Add(id)

	if err := s.Poster.SendLove(ctx, id); err != nil {
		if poster.IsDuplicateContent(err) {
			log.Warn("duplicate content, retrying with another identity",
				"identity", id, "retry_in", s.RetryDelay)
			s.metrics.duplicateRetry()
			return s.RetryDelay
		}
		log.Error("could not post", "identity", id, "err", err)
		s.metrics.cycleFailed(stageAct)
		return s.Interval
	}

	// The post already happened; a record failure is logged but never
	// re-posts.
	if err := s.DB.MarkLoved(ctx, id, time.Now()); err != nil {
		log.Error("posted but could not mark identity loved", "identity", id, "err", err)
		s.metrics.cycleFailed(stageRecord)
		return s.Interval
	}

	s.metrics.loved()
	log.Info("shared the love", "identity", id, "took", time.Since(start).Round(time.Millisecond))
	return s.Interval
}
