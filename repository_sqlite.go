package main

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
create table if not exists alarms (
	alarm_id   integer primary key autoincrement,
	name       text not null default '',
	hour       integer not null,
	minute     integer not null,
	enabled    integer not null default 1,
	stream_url text not null,
	days       text not null default '',
	created_at integer not null
);

create table if not exists radio_state (
	id         integer primary key check (id = 1),
	playing    integer not null default 0,
	stream_url text not null default ''
);`

type SQLiteRepository struct {
	db *sqlx.DB
}

func NewSQLiteRepository(filePath string) (*SQLiteRepository, error) {
	db, err := sqlx.Open("sqlite3", filePath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteRepository{db: db}, nil
}

var _ Repository = (*SQLiteRepository)(nil)

func (r *SQLiteRepository) InsertAlarm(alarm Alarm) (int64, error) {
	query := `
	  insert into alarms (name, hour, minute, enabled, stream_url, days, created_at)
	  values (?, ?, ?, ?, ?, ?, ?);`

	res, err := r.db.Exec(query, alarm.Name, alarm.Hour, alarm.Minute,
		alarm.Enabled, alarm.StreamURL, joinDays(alarm.Days), alarm.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) GetAlarmByID(id int64) (*Alarm, error) {
	query := `
	  select alarm_id, name, hour, minute, enabled, stream_url, days, created_at
	  from alarms where alarm_id=?;`

	alarm, err := scanAlarm(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, Errorf(ErrNotFound, "no alarm with id %d", id)
	}
	return alarm, err
}

func (r *SQLiteRepository) GetAllAlarms() ([]Alarm, error) {
	query := `
	  select alarm_id, name, hour, minute, enabled, stream_url, days, created_at
	  from alarms order by alarm_id;`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alarms := make([]Alarm, 0)
	for rows.Next() {
		alarm, err := scanAlarm(rows)
		if err != nil {
			return nil, err
		}
		alarms = append(alarms, *alarm)
	}
	return alarms, rows.Err()
}

func (r *SQLiteRepository) UpdateAlarm(alarm Alarm) error {
	query := `
	  update alarms
	  set name=?, hour=?, minute=?, enabled=?, stream_url=?, days=?
	  where alarm_id=?;`

	res, err := r.db.Exec(query, alarm.Name, alarm.Hour, alarm.Minute,
		alarm.Enabled, alarm.StreamURL, joinDays(alarm.Days), alarm.ID)
	if err != nil {
		return err
	}
	return requireRow(res, alarm.ID)
}

func (r *SQLiteRepository) DeleteAlarm(id int64) error {
	res, err := r.db.Exec(`delete from alarms where alarm_id=?;`, id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

func (r *SQLiteRepository) SaveRadioState(state RadioState) error {
	query := `
	  insert into radio_state (id, playing, stream_url)
	  values (1, ?, ?)
	  on conflict(id) do update
	     set playing = excluded.playing,
	         stream_url = excluded.stream_url;`

	_, err := r.db.Exec(query, state.Playing, state.StreamURL)
	return err
}

func (r *SQLiteRepository) LoadRadioState() (RadioState, error) {
	state := RadioState{}
	err := r.db.QueryRow(`select playing, stream_url from radio_state where id=1;`).
		Scan(&state.Playing, &state.StreamURL)
	if err == sql.ErrNoRows {
		return RadioState{}, nil
	}
	return state, err
}

func (r *SQLiteRepository) close() {
	r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlarm(row rowScanner) (*Alarm, error) {
	a := Alarm{}
	var days string
	err := row.Scan(&a.ID, &a.Name, &a.Hour, &a.Minute, &a.Enabled,
		&a.StreamURL, &days, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Days, err = splitDays(days)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return Errorf(ErrNotFound, "no alarm with id %d", id)
	}
	return nil
}

// Weekday sets are stored as comma-separated integers; the empty string is
// the every-day set.
func joinDays(days []time.Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

func splitDays(s string) ([]time.Weekday, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	days := make([]time.Weekday, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		days[i] = time.Weekday(n)
	}
	return days, nil
}
