package main

import (
	"net/url"
)

// AlarmRepository persists the alarm set. Every mutating call writes
// through to durable storage before returning.
type AlarmRepository interface {
	InsertAlarm(alarm Alarm) (int64, error)
	GetAlarmByID(id int64) (*Alarm, error)
	GetAllAlarms() ([]Alarm, error)
	UpdateAlarm(alarm Alarm) error
	DeleteAlarm(id int64) error
}

// StateRepository persists the last playback intent so the radio can
// resume after a restart.
type StateRepository interface {
	SaveRadioState(state RadioState) error
	LoadRadioState() (RadioState, error)
}

// Repository is the full persistence backend behind the service.
type Repository interface {
	AlarmRepository
	StateRepository
	close()
}

// OpenRepository picks a backend from the storage URL scheme:
// json (default), sqlite, or postgres.
func OpenRepository(rawurl string) (Repository, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, Errorf(ErrInvalid, "storage url %q: %v", rawurl, err)
	}
	switch u.Scheme {
	case "", "json", "file":
		path := u.Opaque
		if path == "" {
			path = u.Host + u.Path
		}
		if path == "" {
			path = rawurl
		}
		return NewJSONRepository(path)

	case "sqlite":
		path := u.Opaque
		if path == "" {
			path = u.Host + u.Path
		}
		return NewSQLiteRepository(path)

	case "postgres":
		return NewPostgresRepository(rawurl)

	default:
		return nil, Errorf(ErrInvalid, "unsupported storage scheme %q", u.Scheme)
	}
}
