package main

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const postgresSchema = `
create table if not exists alarms (
	alarm_id   bigserial primary key,
	name       text not null default '',
	hour       integer not null,
	minute     integer not null,
	enabled    boolean not null default true,
	stream_url text not null,
	days       text not null default '',
	created_at bigint not null
);

create table if not exists radio_state (
	id         integer primary key check (id = 1),
	playing    boolean not null default false,
	stream_url text not null default ''
);`

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(dbUrl string) (*PostgresRepository, error) {
	db, err := sqlx.Open("postgres", dbUrl)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresRepository{db: db}, nil
}

var _ Repository = (*PostgresRepository)(nil)

func (r *PostgresRepository) InsertAlarm(alarm Alarm) (int64, error) {
	query := `
	  insert into alarms (name, hour, minute, enabled, stream_url, days, created_at)
	  values ($1, $2, $3, $4, $5, $6, $7)
	  returning alarm_id;`

	var id int64
	err := r.db.QueryRow(query, alarm.Name, alarm.Hour, alarm.Minute,
		alarm.Enabled, alarm.StreamURL, joinDays(alarm.Days), alarm.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PostgresRepository) GetAlarmByID(id int64) (*Alarm, error) {
	query := `
	  select alarm_id, name, hour, minute, enabled, stream_url, days, created_at
	  from alarms where alarm_id=$1;`

	alarm, err := scanAlarm(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, Errorf(ErrNotFound, "no alarm with id %d", id)
	}
	return alarm, err
}

func (r *PostgresRepository) GetAllAlarms() ([]Alarm, error) {
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

func (r *PostgresRepository) UpdateAlarm(alarm Alarm) error {
	query := `
	  update alarms
	  set name=$1, hour=$2, minute=$3, enabled=$4, stream_url=$5, days=$6
	  where alarm_id=$7;`

	res, err := r.db.Exec(query, alarm.Name, alarm.Hour, alarm.Minute,
		alarm.Enabled, alarm.StreamURL, joinDays(alarm.Days), alarm.ID)
	if err != nil {
		return err
	}
	return requireRow(res, alarm.ID)
}

func (r *PostgresRepository) DeleteAlarm(id int64) error {
	res, err := r.db.Exec(`delete from alarms where alarm_id=$1;`, id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

func (r *PostgresRepository) SaveRadioState(state RadioState) error {
	query := `
	  insert into radio_state (id, playing, stream_url)
	  values (1, $1, $2)
	  on conflict(id) do update
	     set playing = excluded.playing,
	         stream_url = excluded.stream_url;`

	_, err := r.db.Exec(query, state.Playing, state.StreamURL)
	return err
}

func (r *PostgresRepository) LoadRadioState() (RadioState, error) {
	state := RadioState{}
	err := r.db.QueryRow(`select playing, stream_url from radio_state where id=1;`).
		Scan(&state.Playing, &state.StreamURL)
	if err == sql.ErrNoRows {
		return RadioState{}, nil
	}
	return state, err
}

func (r *PostgresRepository) close() {
	r.db.Close()
}
