// this file deals with the single playback resource of the system
package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Radio owns the host's one audio output and the external player process.
// Exactly one transition (Start or Stop) may be in flight at a time; a
// second caller arriving mid-transition fails fast with a busy error
// rather than queueing behind a slow player launch. The scheduler treats
// that like any other failed trigger and waits for the next occurrence.
type Radio struct {
	player Player
	states StateRepository

	// opMu guards transitions; acquired with TryLock so concurrent
	// callers fail fast instead of stacking up.
	opMu sync.Mutex

	stateMu sync.RWMutex
	state   PlaybackState

	now func() time.Time
}

func NewRadio(player Player, states StateRepository) *Radio {
	return &Radio{
		player: player,
		states: states,
		state:  PlaybackState{Status: StatusIdle},
		now:    time.Now,
	}
}

// Start brings the radio to Playing on the given stream. Starting the
// stream that is already playing is a no-op; starting a different stream
// stops the current player first. On launch failure the radio returns to
// Idle and the error carries the playback code.
func (r *Radio) Start(url string) error {
	if err := validateStreamURL(url); err != nil {
		return err
	}
	if !r.opMu.TryLock() {
		return Errorf(ErrBusy, "another playback operation is in flight")
	}
	defer r.opMu.Unlock()

	current := r.Status()
	if current.Status == StatusPlaying {
		if current.StreamURL == url && r.player.IsRunning() {
			return nil
		}
		// Different stream, or the process died underneath us.
		if err := r.player.Stop(); err != nil {
			r.setIdle()
			return err
		}
		r.setIdle()
	}

	if err := r.player.Start(url); err != nil {
		r.setIdle()
		return err
	}

	r.stateMu.Lock()
	r.state = PlaybackState{
		Status:    StatusPlaying,
		StreamURL: url,
		SessionID: uuid.New().String(),
		StartedAt: r.now(),
	}
	r.stateMu.Unlock()

	r.persist(RadioState{Playing: true, StreamURL: url})
	log.WithField("stream_url", url).Info("radio playing")
	return nil
}

// Stop brings the radio to Idle. Stopping an idle radio is a no-op.
func (r *Radio) Stop() error {
	if !r.opMu.TryLock() {
		return Errorf(ErrBusy, "another playback operation is in flight")
	}
	defer r.opMu.Unlock()

	if r.Status().Status == StatusIdle {
		return nil
	}
	if err := r.player.Stop(); err != nil {
		return err
	}
	r.setIdle()
	log.Info("radio stopped")
	return nil
}

// Status returns a read-only snapshot; it never blocks on an in-flight
// transition.
func (r *Radio) Status() PlaybackState {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.state
}

// Resume restarts playback recorded before the last shutdown, if any.
func (r *Radio) Resume() error {
	if r.states == nil {
		return nil
	}
	saved, err := r.states.LoadRadioState()
	if err != nil {
		return err
	}
	if !saved.Playing || saved.StreamURL == "" {
		return nil
	}
	log.WithField("stream_url", saved.StreamURL).Info("resuming playback")
	return r.Start(saved.StreamURL)
}

func (r *Radio) setIdle() {
	r.stateMu.Lock()
	r.state = PlaybackState{Status: StatusIdle}
	r.stateMu.Unlock()
	r.persist(RadioState{})
}

// persist records the playback intent for restart resume. Failing to save
// must not undo a playback transition that already happened.
func (r *Radio) persist(state RadioState) {
	if r.states == nil {
		return
	}
	if err := r.states.SaveRadioState(state); err != nil {
		log.WithError(err).Warn("could not persist radio state")
	}
}
