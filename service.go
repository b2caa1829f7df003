package main

import (
	"sync"
	"time"
)

// Service is the alarm store exposed to the HTTP layer and the scheduler.
// Mutations are validated, serialized, and persisted before returning.
type Service interface {
	AddAlarm(name string, hour, minute int, streamURL string, days []time.Weekday) (*Alarm, error)
	UpdateAlarm(id int64, update AlarmUpdate) (*Alarm, error)
	RemoveAlarm(id int64) error
	ListAlarms() ([]Alarm, error)
	GetAlarm(id int64) (*Alarm, error)
	close()
}

type ServiceImpl struct {
	repo Repository

	// mu serializes mutations so the persisted set is written by one
	// caller at a time; reads go straight to the repository.
	mu sync.Mutex

	now func() time.Time
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{
		repo: repo,
		now:  time.Now,
	}
}

var _ Service = (*ServiceImpl)(nil)

// AddAlarm creates an alarm, enabled by default.
func (s *ServiceImpl) AddAlarm(name string, hour, minute int, streamURL string, days []time.Weekday) (*Alarm, error) {
	alarm := Alarm{
		Name:      name,
		Hour:      hour,
		Minute:    minute,
		Enabled:   true,
		StreamURL: streamURL,
		Days:      append([]time.Weekday(nil), days...),
		CreatedAt: s.now().Unix(),
	}
	if err := alarm.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.repo.InsertAlarm(alarm)
	if err != nil {
		return nil, err
	}
	alarm.ID = id
	return &alarm, nil
}

// UpdateAlarm applies a partial update atomically: either every given
// field is persisted or none is.
func (s *ServiceImpl) UpdateAlarm(id int64, update AlarmUpdate) (*Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.GetAlarmByID(id)
	if err != nil {
		return nil, err
	}
	updated := update.apply(*current)
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateAlarm(updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *ServiceImpl) RemoveAlarm(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.DeleteAlarm(id)
}

// ListAlarms returns a creation-order snapshot.
func (s *ServiceImpl) ListAlarms() ([]Alarm, error) {
	return s.repo.GetAllAlarms()
}

func (s *ServiceImpl) GetAlarm(id int64) (*Alarm, error) {
	return s.repo.GetAlarmByID(id)
}

func (s *ServiceImpl) close() {
	s.repo.close()
}
