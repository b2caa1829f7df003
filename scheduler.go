// this file drives alarm evaluation with time
package main

import (
	"context"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
)

// Scheduler wakes once per wall-clock minute, compares the stored alarms
// against the current local time, and asks the radio to start the stream
// of any alarm that is due. A mutation in the store can wake it early via
// Refresh; firing is still keyed to the minute, so an extra wake-up never
// double-triggers an alarm.
type Scheduler struct {
	service Service
	radio   *Radio

	now     func() time.Time
	refresh chan struct{}
	cancel  context.CancelFunc

	// fired maps alarm id to the minute it last triggered (or was
	// suppressed by the tie-break). Only the run loop touches it.
	fired map[int64]time.Time
}

func NewScheduler(service Service, radio *Radio) *Scheduler {
	return &Scheduler{
		service: service,
		radio:   radio,
		now:     time.Now,
		refresh: make(chan struct{}, 1),
		fired:   make(map[int64]time.Time),
		cancel:  func() {},
	}
}

// Start runs the tick loop until ctx is cancelled or Shutdown is called.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.run(ctx)
}

func (s *Scheduler) Shutdown() {
	s.cancel()
}

// Refresh wakes the loop for an immediate re-evaluation, e.g. after an
// alarm was added for the current minute.
func (s *Scheduler) Refresh() {
	select {
	case s.refresh <- struct{}{}:
	default:
		// A wake-up is already pending.
	}
}

func (s *Scheduler) run(ctx context.Context) {
	timer := time.NewTimer(s.untilNextMinute())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-timer.C:
			s.tick(s.now())
			timer.Reset(s.untilNextMinute())

		case <-s.refresh:
			s.tick(s.now())
		}
	}
}

func (s *Scheduler) untilNextMinute() time.Duration {
	now := s.now()
	next := now.Truncate(time.Minute).Add(time.Minute)
	return next.Sub(now)
}

// tick evaluates all alarms against the given time, truncated to the
// minute. If the store cannot be read the tick is skipped entirely and no
// alarm is marked fired; the next minute retries.
func (s *Scheduler) tick(now time.Time) {
	minute := now.Truncate(time.Minute)

	// Drop markers from minutes that have passed.
	for id, at := range s.fired {
		if !at.Equal(minute) {
			delete(s.fired, id)
		}
	}

	alarms, err := s.service.ListAlarms()
	if err != nil {
		log.WithError(err).Warn("skipping tick, could not read alarms")
		return
	}

	due := make([]Alarm, 0, 1)
	for _, alarm := range alarms {
		if alarm.FiresAt(minute) && !s.fired[alarm.ID].Equal(minute) {
			due = append(due, alarm)
		}
	}
	if len(due) == 0 {
		return
	}

	// Playback is exclusive: the smallest id wins, the rest are recorded
	// as fired but not executed.
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	winner := due[0]
	for _, loser := range due[1:] {
		log.WithFields(log.Fields{
			"alarm_id":  loser.ID,
			"winner_id": winner.ID,
		}).Warn("alarm matched the same minute, playback is exclusive")
	}

	// Mark every match before touching the radio: a failed start is not
	// retried within the same minute.
	for _, alarm := range due {
		s.fired[alarm.ID] = minute
	}

	log.WithFields(log.Fields{
		"alarm_id":   winner.ID,
		"name":       winner.Name,
		"stream_url": winner.StreamURL,
	}).Info("alarm triggered")

	if err := s.radio.Start(winner.StreamURL); err != nil {
		log.WithError(err).WithField("alarm_id", winner.ID).
			Error("alarm could not start playback, deferring to next occurrence")
	}
}
