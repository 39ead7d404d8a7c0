package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/trezcool/altedy/core"
	"github.com/trezcool/altedy/core/deadline"
)

// Granularity is the scheduler's current polling level. Escalation is
// one-directional within a cycle: Daily -> Hourly -> Minutely.
type Granularity int

const (
	Daily Granularity = iota
	Hourly
	Minutely
)

func (g Granularity) String() string {
	switch g {
	case Hourly:
		return "hourly"
	case Minutely:
		return "minutely"
	default:
		return "daily"
	}
}

type timerID string

const (
	timerDaily    timerID = "daily"
	timerHourly   timerID = "hourly"
	timerMinutely timerID = "minutely"
)

type timer interface {
	Stop() bool
}

// DueHandler processes one consumed deadline record: packaging, fan-out and
// archival. Potentially slow; the scheduler isolates it from its tick loop.
type DueHandler interface {
	HandleDue(ctx context.Context, d deadline.Deadline) error
}

// Scheduler polls the deadline store at escalating granularity as a deadline
// approaches. One instance per process, constructed at start and passed by
// handle; jobs are cancellable and replaceable by id so two granularities
// never run concurrently.
type Scheduler struct {
	deadlines deadline.Repository
	handler   DueHandler
	logger    core.Logger

	nowFunc   func() time.Time                       // mockable
	afterFunc func(d time.Duration, fn func()) timer // mockable

	ctx      context.Context
	handling sync.WaitGroup

	mu          sync.Mutex
	granularity Granularity
	timers      map[timerID]timer
	stopped     bool
}

func NewScheduler(deadlines deadline.Repository, handler DueHandler, logger core.Logger) *Scheduler {
	return &Scheduler{
		deadlines: deadlines,
		handler:   handler,
		logger:    logger,
		nowFunc:   time.Now,
		afterFunc: func(d time.Duration, fn func()) timer { return time.AfterFunc(d, fn) },
		timers:    make(map[timerID]timer),
	}
}

// Start runs the first daily check immediately; subsequent ticks chain
// themselves through cancellable timers.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.dailyTick()
}

// Stop cancels all pending timers and waits for in-flight deadline handling
// to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	s.handling.Wait()
}

func (s *Scheduler) Granularity() Granularity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.granularity
}

// dailyTick checks everything due before the next local midnight, overdue
// records included (a deadline missed while the process was down counts as
// a hit). A hit escalates to hourly; otherwise the scheduler stays idle
// until the next day.
func (s *Scheduler) dailyTick() {
	now := s.nowFunc()
	to := midnight(now).Add(24 * time.Hour)

	due, err := s.deadlines.DeadlinesBetween(s.ctx, time.Time{}, to)
	if err != nil {
		// the failing tick is skipped but the timer survives
		s.logger.Error(fmt.Sprintf("scheduler: daily check: %v", err), err)
		s.schedule(timerDaily, to.Sub(now), s.dailyTick)
		return
	}
	if len(due) == 0 {
		s.setGranularity(Daily)
		s.schedule(timerDaily, to.Sub(now), s.dailyTick)
		return
	}

	s.setGranularity(Hourly)
	s.cancel(timerDaily)
	s.hourlyTick()
}

// hourlyTick checks everything due before the end of the current hour; a
// hit escalates to minutely.
func (s *Scheduler) hourlyTick() {
	now := s.nowFunc()
	to := hourStart(now).Add(time.Hour)

	due, err := s.deadlines.DeadlinesBetween(s.ctx, time.Time{}, to)
	if err != nil {
		s.logger.Error(fmt.Sprintf("scheduler: hourly check: %v", err), err)
		s.schedule(timerHourly, to.Sub(now), s.hourlyTick)
		return
	}
	if len(due) == 0 {
		s.schedule(timerHourly, to.Sub(now), s.hourlyTick)
		return
	}

	s.setGranularity(Minutely)
	s.cancel(timerHourly)
	s.minutelyTick()
}

// minutelyTick checks everything due before the end of the current minute.
// Matches are consumed (record removed) before handling so a duplicate fire
// is a no-op; handling itself runs off the tick goroutine.
func (s *Scheduler) minutelyTick() {
	now := s.nowFunc()
	to := now.Truncate(time.Minute).Add(time.Minute)

	due, err := s.deadlines.DeadlinesBetween(s.ctx, time.Time{}, to)
	if err != nil {
		s.logger.Error(fmt.Sprintf("scheduler: minutely check: %v", err), err)
		s.schedule(timerMinutely, to.Sub(now), s.minutelyTick)
		return
	}
	if len(due) == 0 {
		s.schedule(timerMinutely, to.Sub(now), s.minutelyTick)
		return
	}

	s.cancel(timerMinutely)
	for _, d := range due {
		ok, err := s.deadlines.RemoveDeadline(s.ctx, d.TaskID)
		if err != nil {
			s.logger.Error(fmt.Sprintf("scheduler: consuming deadline %s: %v", d.TaskID, err), err)
			continue
		}
		if !ok {
			// already consumed by an earlier fire
			continue
		}

		d := d
		s.handling.Add(1)
		go func() {
			defer s.handling.Done()
			if err := s.handler.HandleDue(s.ctx, d); err != nil {
				s.logger.Error(fmt.Sprintf("scheduler: handling deadline %s: %v", d.TaskID, err), err)
			}
		}()
	}

	// cycle complete; de-escalate through a fresh daily check (more due
	// today -> hourly again, else idle until tomorrow)
	s.dailyTick()
}

func (s *Scheduler) setGranularity(g Granularity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.granularity != g {
		s.logger.Info(fmt.Sprintf("scheduler: switching to %s checks", g))
	}
	s.granularity = g
}

// schedule (re)arms the timer with this id, replacing any previous one.
func (s *Scheduler) schedule(id timerID, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if t, ok := s.timers[id]; ok {
		t.Stop()
	}
	s.timers[id] = s.afterFunc(d, fn)
}

func (s *Scheduler) cancel(id timerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func hourStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
}
