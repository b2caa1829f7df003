// this file defines the data structures to be used throughout
package main

import (
	"net/url"
	"time"
)

// Alarm is a recurring trigger: at Hour:Minute on the given weekdays the
// scheduler starts playback of StreamURL. An empty Days set means every day.
// Weekdays follow time.Weekday numbering (0 = Sunday .. 6 = Saturday).
type Alarm struct {
	ID        int64          `json:"alarm_id"`
	Name      string         `json:"name"`
	Hour      int            `json:"hour"`
	Minute    int            `json:"min"`
	Enabled   bool           `json:"on"`
	StreamURL string         `json:"stream_url"`
	Days      []time.Weekday `json:"days"`
	CreatedAt int64          `json:"created_at"`
}

// Validate checks the user-settable fields. ID and CreatedAt are assigned
// by the store and not inspected here.
func (a *Alarm) Validate() error {
	if a.Hour < 0 || a.Hour > 23 {
		return Errorf(ErrInvalid, "hour %d out of range 0..23", a.Hour)
	}
	if a.Minute < 0 || a.Minute > 59 {
		return Errorf(ErrInvalid, "minute %d out of range 0..59", a.Minute)
	}
	if err := validateStreamURL(a.StreamURL); err != nil {
		return err
	}
	seen := map[time.Weekday]bool{}
	for _, d := range a.Days {
		if d < time.Sunday || d > time.Saturday {
			return Errorf(ErrInvalid, "day %d out of range 0..6", d)
		}
		if seen[d] {
			return Errorf(ErrInvalid, "day %d listed twice", d)
		}
		seen[d] = true
	}
	return nil
}

func validateStreamURL(raw string) error {
	if raw == "" {
		return Errorf(ErrInvalid, "stream_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Errorf(ErrInvalid, "stream_url: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Errorf(ErrInvalid, "stream_url must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return Errorf(ErrInvalid, "stream_url has no host")
	}
	return nil
}

// MatchesDay reports whether the alarm recurs on the given weekday.
func (a *Alarm) MatchesDay(d time.Weekday) bool {
	if len(a.Days) == 0 {
		return true
	}
	for _, day := range a.Days {
		if day == d {
			return true
		}
	}
	return false
}

// FiresAt reports whether the alarm should trigger at t. The caller passes
// a minute-truncated local time.
func (a *Alarm) FiresAt(t time.Time) bool {
	return a.Enabled &&
		a.MatchesDay(t.Weekday()) &&
		a.Hour == t.Hour() &&
		a.Minute == t.Minute()
}

// AlarmUpdate carries a partial update; nil fields are left untouched.
type AlarmUpdate struct {
	Name      *string         `json:"name"`
	Hour      *int            `json:"hour"`
	Minute    *int            `json:"min"`
	Enabled   *bool           `json:"on"`
	StreamURL *string         `json:"stream_url"`
	Days      *[]time.Weekday `json:"days"`
}

// apply merges the update into a copy of the alarm; the result still needs
// Validate before it is persisted.
func (u AlarmUpdate) apply(a Alarm) Alarm {
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.Hour != nil {
		a.Hour = *u.Hour
	}
	if u.Minute != nil {
		a.Minute = *u.Minute
	}
	if u.Enabled != nil {
		a.Enabled = *u.Enabled
	}
	if u.StreamURL != nil {
		a.StreamURL = *u.StreamURL
	}
	if u.Days != nil {
		a.Days = append([]time.Weekday(nil), (*u.Days)...)
	}
	return a
}

type PlaybackStatus string

const (
	StatusIdle    PlaybackStatus = "idle"
	StatusPlaying PlaybackStatus = "playing"
)

// PlaybackState is the read-only snapshot returned by Radio.Status.
type PlaybackState struct {
	Status    PlaybackStatus `json:"status"`
	StreamURL string         `json:"stream_url,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	StartedAt time.Time      `json:"started_at"`
}

// RadioState is the persisted playback intent, reloaded at startup so the
// radio resumes if the process restarted while playing.
type RadioState struct {
	Playing   bool   `json:"playing"`
	StreamURL string `json:"stream_url"`
}
