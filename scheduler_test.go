package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schedulerFixture struct {
	service   *ServiceImpl
	player    *fakePlayer
	radio     *Radio
	scheduler *Scheduler
}

func newSchedulerFixture(t *testing.T) *schedulerFixture {
	t.Helper()
	service := newTestService(t)
	player := &fakePlayer{}
	radio := NewRadio(player, nil)
	return &schedulerFixture{
		service:   service,
		player:    player,
		radio:     radio,
		scheduler: NewScheduler(service, radio),
	}
}

// sevenAM is an arbitrary fixed wall-clock instant the tests tick at.
var sevenAM = time.Date(2026, time.August, 24, 7, 0, 0, 0, time.Local)

func TestSchedulerTriggersDueAlarm(t *testing.T) {
	f := newSchedulerFixture(t)
	_, err := f.service.AddAlarm("wake", 7, 0, "http://stream.example/1", nil)
	require.NoError(t, err)

	f.scheduler.tick(sevenAM)

	state := f.radio.Status()
	assert.Equal(t, StatusPlaying, state.Status)
	assert.Equal(t, "http://stream.example/1", state.StreamURL)
}

func TestSchedulerSkipsDisabledAlarm(t *testing.T) {
	f := newSchedulerFixture(t)
	alarm, err := f.service.AddAlarm("wake", 7, 0, "http://stream.example/1", nil)
	require.NoError(t, err)
	enabled := false
	_, err = f.service.UpdateAlarm(alarm.ID, AlarmUpdate{Enabled: &enabled})
	require.NoError(t, err)

	f.scheduler.tick(sevenAM)

	assert.Equal(t, StatusIdle, f.radio.Status().Status)
}

func TestSchedulerSkipsOtherWeekday(t *testing.T) {
	f := newSchedulerFixture(t)
	otherDay := []time.Weekday{(sevenAM.Weekday() + 1) % 7}
	_, err := f.service.AddAlarm("wake", 7, 0, "http://stream.example/1", otherDay)
	require.NoError(t, err)

	f.scheduler.tick(sevenAM)

	assert.Equal(t, StatusIdle, f.radio.Status().Status)
}

func TestSchedulerFiresOncePerMinute(t *testing.T) {
	f := newSchedulerFixture(t)
	_, err := f.service.AddAlarm("wake", 7, 0, "http://stream.example/1", nil)
	require.NoError(t, err)

	f.scheduler.tick(sevenAM)
	require.NoError(t, f.radio.Stop())

	// A refresh within the same minute must not re-trigger.
	f.scheduler.tick(sevenAM.Add(20 * time.Second))
	assert.Equal(t, StatusIdle, f.radio.Status().Status)
	assert.Equal(t, 1, f.player.startCount())

	// The next day's occurrence fires again.
	f.scheduler.tick(sevenAM.AddDate(0, 0, 1))
	assert.Equal(t, StatusPlaying, f.radio.Status().Status)
	assert.Equal(t, 2, f.player.startCount())
}

func TestSchedulerTieBreaksOnSmallestID(t *testing.T) {
	f := newSchedulerFixture(t)
	first, err := f.service.AddAlarm("first", 8, 0, "http://stream.example/1", nil)
	require.NoError(t, err)
	second, err := f.service.AddAlarm("second", 8, 0, "http://stream.example/2", nil)
	require.NoError(t, err)
	require.Less(t, first.ID, second.ID)

	eightAM := sevenAM.Add(time.Hour)
	f.scheduler.tick(eightAM)

	state := f.radio.Status()
	assert.Equal(t, StatusPlaying, state.Status)
	assert.Equal(t, "http://stream.example/1", state.StreamURL, "smallest id wins")
	assert.Equal(t, 1, f.player.startCount())

	// The loser was recorded for this minute; it does not fire late once
	// the winner's stream is stopped.
	require.NoError(t, f.radio.Stop())
	f.scheduler.tick(eightAM.Add(30 * time.Second))
	assert.Equal(t, StatusIdle, f.radio.Status().Status)
}

func TestSchedulerSurvivesPlaybackFailure(t *testing.T) {
	f := newSchedulerFixture(t)
	f.player.failStart = true
	_, err := f.service.AddAlarm("wake", 7, 0, "http://stream.example/1", nil)
	require.NoError(t, err)

	f.scheduler.tick(sevenAM)
	assert.Equal(t, StatusIdle, f.radio.Status().Status)

	// No retry within the minute.
	f.scheduler.tick(sevenAM.Add(10 * time.Second))
	assert.Equal(t, 0, f.player.startCount())

	// The next occurrence is attempted again.
	f.player.failStart = false
	f.scheduler.tick(sevenAM.AddDate(0, 0, 1))
	assert.Equal(t, StatusPlaying, f.radio.Status().Status)
}

type brokenService struct {
	Service
}

func (brokenService) ListAlarms() ([]Alarm, error) {
	return nil, Errorf(ErrInternal, "store unavailable")
}

func TestSchedulerSkipsTickOnStoreFailure(t *testing.T) {
	f := newSchedulerFixture(t)
	_, err := f.service.AddAlarm("wake", 7, 0, "http://stream.example/1", nil)
	require.NoError(t, err)

	broken := NewScheduler(brokenService{f.service}, f.radio)
	broken.tick(sevenAM)
	assert.Equal(t, StatusIdle, f.radio.Status().Status)
	assert.Empty(t, broken.fired, "nothing marked fired on a failed tick")
}

func TestSchedulerUntilNextMinute(t *testing.T) {
	s := NewScheduler(nil, nil)
	s.now = func() time.Time { return sevenAM.Add(12 * time.Second) }
	assert.Equal(t, 48*time.Second, s.untilNextMinute())
}
