package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// radioDocument is the on-disk layout of the JSON backend: one document
// holding the whole alarm set plus the radio state, rewritten wholesale on
// every mutation.
type radioDocument struct {
	Alarms []Alarm    `json:"alarms"`
	Radio  RadioState `json:"radio"`
	NextID int64      `json:"next_id"`
}

// JSONRepository is the default backend: a single JSON file, loaded at
// startup and atomically rewritten (temp file + rename) on each mutation.
type JSONRepository struct {
	mu   sync.RWMutex
	path string
	doc  radioDocument
}

func NewJSONRepository(path string) (*JSONRepository, error) {
	r := &JSONRepository{path: path}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *JSONRepository) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.doc = radioDocument{Alarms: []Alarm{}, NextID: 1}
			return r.save()
		}
		return fmt.Errorf("read %s: %w", r.path, err)
	}
	if len(data) == 0 {
		r.doc = radioDocument{Alarms: []Alarm{}, NextID: 1}
		return nil
	}
	if err := json.Unmarshal(data, &r.doc); err != nil {
		return fmt.Errorf("parse %s: %w", r.path, err)
	}
	if r.doc.Alarms == nil {
		r.doc.Alarms = []Alarm{}
	}
	// Documents written before next_id existed derive it from the ids.
	if r.doc.NextID == 0 {
		r.doc.NextID = 1
		for _, a := range r.doc.Alarms {
			if a.ID >= r.doc.NextID {
				r.doc.NextID = a.ID + 1
			}
		}
	}
	return nil
}

// save is called with r.mu held for writing.
func (r *JSONRepository) save() error {
	data, err := json.MarshalIndent(&r.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal alarms: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".radio-config-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}

var _ Repository = (*JSONRepository)(nil)

func (r *JSONRepository) InsertAlarm(alarm Alarm) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	alarm.ID = r.doc.NextID
	r.doc.NextID++
	r.doc.Alarms = append(r.doc.Alarms, alarm)
	if err := r.save(); err != nil {
		r.doc.Alarms = r.doc.Alarms[:len(r.doc.Alarms)-1]
		r.doc.NextID--
		return 0, err
	}
	return alarm.ID, nil
}

func (r *JSONRepository) GetAlarmByID(id int64) (*Alarm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.doc.Alarms {
		if r.doc.Alarms[i].ID == id {
			a := r.doc.Alarms[i]
			return &a, nil
		}
	}
	return nil, Errorf(ErrNotFound, "no alarm with id %d", id)
}

func (r *JSONRepository) GetAllAlarms() ([]Alarm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	alarms := make([]Alarm, len(r.doc.Alarms))
	copy(alarms, r.doc.Alarms)
	return alarms, nil
}

func (r *JSONRepository) UpdateAlarm(alarm Alarm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.doc.Alarms {
		if r.doc.Alarms[i].ID == alarm.ID {
			old := r.doc.Alarms[i]
			r.doc.Alarms[i] = alarm
			if err := r.save(); err != nil {
				r.doc.Alarms[i] = old
				return err
			}
			return nil
		}
	}
	return Errorf(ErrNotFound, "no alarm with id %d", alarm.ID)
}

func (r *JSONRepository) DeleteAlarm(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.doc.Alarms {
		if r.doc.Alarms[i].ID == id {
			removed := r.doc.Alarms[i]
			r.doc.Alarms = append(r.doc.Alarms[:i], r.doc.Alarms[i+1:]...)
			if err := r.save(); err != nil {
				r.doc.Alarms = append(r.doc.Alarms[:i],
					append([]Alarm{removed}, r.doc.Alarms[i:]...)...)
				return err
			}
			return nil
		}
	}
	return Errorf(ErrNotFound, "no alarm with id %d", id)
}

func (r *JSONRepository) SaveRadioState(state RadioState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.doc.Radio
	r.doc.Radio = state
	if err := r.save(); err != nil {
		r.doc.Radio = old
		return err
	}
	return nil
}

func (r *JSONRepository) LoadRadioState() (RadioState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.doc.Radio, nil
}

func (r *JSONRepository) close() {}
