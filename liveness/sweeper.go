package liveness

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/mqy/minichat/events"
	"github.com/mqy/minichat/room"
	"github.com/mqy/minichat/store"
)

const (
	DefaultInterval   = 15 * time.Second
	DefaultStaleAfter = 10 * time.Second
)

var ErrAlreadyRunning = errors.New("liveness: sweeper is already running")

type Config struct {
	// Interval between two sweeps.
	Interval time.Duration
	// StaleAfter is the heartbeat age, in whole seconds, a participant may reach before eviction.
	StaleAfter time.Duration
}

// Sweeper periodically evicts participants whose heartbeat is stale and announces
// each eviction to the room. There MUST have exactly one running sweeper per store.
type Sweeper struct {
	store     store.IRoomStore
	publisher events.Publisher
	conf      Config
	now       func() time.Time

	running int32
	wg      sync.WaitGroup
}

func New(s store.IRoomStore, publisher events.Publisher, conf Config) *Sweeper {
	if conf.Interval <= 0 {
		conf.Interval = DefaultInterval
	}
	if conf.StaleAfter <= 0 {
		conf.StaleAfter = DefaultStaleAfter
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Sweeper{
		store:     s,
		publisher: publisher,
		conf:      conf,
		now:       time.Now,
	}
}

// Run sweeps on every tick until ctx is done, then notifies stopDoneNotifyC.
// Sweeps run one after another on the loop goroutine, they never overlap.
func (s *Sweeper) Run(ctx context.Context, stopDoneNotifyC chan<- struct{}) error {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrAlreadyRunning
	}

	s.wg.Add(1)
	go s.loop(ctx)

	glog.Infof("liveness: sweeper ready, interval: %s, stale after: %s", s.conf.Interval, s.conf.StaleAfter)

	go func() {
		s.wg.Wait()
		atomic.StoreInt32(&s.running, 0)
		glog.Info("liveness: sweeper stopped")
		if stopDoneNotifyC != nil {
			stopDoneNotifyC <- struct{}{}
		}
	}()
	return nil
}

func (s *Sweeper) loop(ctx context.Context) {
	ticker := time.NewTicker(s.conf.Interval)
	defer func() {
		ticker.Stop()
		glog.Info("liveness: sweep loop exit")
		s.wg.Done()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			n := s.Sweep(ctx)
			sweepDuration.Observe(time.Since(start).Seconds())
			if n > 0 {
				glog.Infof("liveness: evicted %d participants, took %s", n, time.Since(start))
			}
		}
	}
}

// Sweep runs one eviction pass and returns the number of evicted participants.
// A failure on one participant is logged and the pass moves on to the next one.
func (s *Sweeper) Sweep(ctx context.Context) int {
	sweepsTotal.Inc()

	participants, err := s.store.FindParticipants(ctx, store.ParticipantFilter{})
	if err != nil {
		sweepErrors.Inc()
		glog.Errorf("liveness: find participants error: %v", err)
		return 0
	}

	now := s.now()
	nowMillis := store.NowMillis(now)
	staleSeconds := int64(s.conf.StaleAfter / time.Second)

	var evicted int
	for _, p := range participants {
		elapsed := store.ElapsedSeconds(nowMillis, p.LastHeartbeat)
		if elapsed <= staleSeconds {
			continue
		}

		glog.V(5).Infof("liveness: evicting `%s`, silent for %ds", p.Name, elapsed)
		if err := s.store.DeleteParticipant(ctx, p.ID); err != nil {
			sweepErrors.Inc()
			glog.Errorf("liveness: delete participant `%s` error: %v", p.Name, err)
			continue
		}
		evicted++
		evictionsTotal.Inc()

		// Not coupled with the delete: a failure here loses the leave notice.
		if err := room.Post(ctx, s.store, s.publisher, room.StatusMessage(p.Name, room.LeaveText, now)); err != nil {
			sweepErrors.Inc()
			glog.Errorf("liveness: post leave message of `%s` error: %v", p.Name, err)
		}
	}
	return evicted
}
