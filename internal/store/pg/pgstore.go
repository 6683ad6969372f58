// Package pg is the Postgres implementation of track.Store.
package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"fieldtrack.org/internal/track"
)

type Store struct {
	db *sql.DB
}

var _ track.Store = (*Store)(nil)

// Open connects with the pgx driver and tuned pool defaults.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection, used by tests.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) GetRegion(ctx context.Context, id string) (track.Region, error) {
	var r track.Region
	err := s.db.QueryRowContext(ctx, `
		select id, name, organization_id, coalesce(manager_id, '')
		from regions where id=$1
	`, id).Scan(&r.ID, &r.Name, &r.OrganizationID, &r.ManagerID)
	if errors.Is(err, sql.ErrNoRows) {
		return track.Region{}, fmt.Errorf("%w: region %s", track.ErrNotFound, id)
	}
	if err != nil {
		return track.Region{}, err
	}
	return r, nil
}

func (s *Store) ListRegions(ctx context.Context, q track.RegionQuery) ([]track.Region, error) {
	var conds []string
	var args []interface{}
	if len(q.IDs) > 0 {
		args = append(args, q.IDs)
		conds = append(conds, fmt.Sprintf("id = any($%d)", len(args)))
	}
	if q.OrganizationID != "" {
		args = append(args, q.OrganizationID)
		conds = append(conds, fmt.Sprintf("organization_id = $%d", len(args)))
	}
	if q.ManagerID != "" {
		args = append(args, q.ManagerID)
		conds = append(conds, fmt.Sprintf("manager_id = $%d", len(args)))
	}

	query := `select id, name, organization_id, coalesce(manager_id, '') from regions`
	if len(conds) > 0 {
		query += " where " + strings.Join(conds, " and ")
	}
	query += " order by id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []track.Region
	for rows.Next() {
		var r track.Region
		if err := rows.Scan(&r.ID, &r.Name, &r.OrganizationID, &r.ManagerID); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListTeams(ctx context.Context, q track.TeamQuery) ([]track.Team, error) {
	var conds []string
	var args []interface{}
	if q.OrganizationID != "" {
		args = append(args, q.OrganizationID)
		conds = append(conds, fmt.Sprintf("organization_id = $%d", len(args)))
	}
	if q.ManagerID != "" {
		args = append(args, q.ManagerID)
		conds = append(conds, fmt.Sprintf("manager_id = $%d", len(args)))
	}

	query := `select id, name, organization_id, coalesce(region_id, ''), coalesce(manager_id, '') from teams`
	if len(conds) > 0 {
		query += " where " + strings.Join(conds, " and ")
	}
	query += " order by id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []track.Team
	for rows.Next() {
		var t track.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.OrganizationID, &t.RegionID, &t.ManagerID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (track.User, error) {
	var u track.User
	err := s.db.QueryRowContext(ctx, `
		select id, email, name, organization_id, role, password_hash, status, created_at
		from users where lower(email) = lower($1)
	`, strings.TrimSpace(email)).Scan(
		&u.ID, &u.Email, &u.Name, &u.OrganizationID, &u.Role, &u.PasswordHash, &u.Status, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return track.User{}, fmt.Errorf("%w: user %s", track.ErrNotFound, email)
	}
	if err != nil {
		return track.User{}, err
	}
	return u, nil
}

func (s *Store) CreateEntry(ctx context.Context, e track.TimeEntry) error {
	tasks, err := json.Marshal(e.Tasks)
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		insert into time_entries (
			id, user_id, organization_id, region_id, team_id,
			supported_country, working_language, start_date, end_date,
			start_time_of_day, end_time_of_day, tasks,
			note, recipient, person_name, task_description, created_at
		) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`,
		e.ID, e.UserID, e.OrganizationID, nullIfEmpty(e.RegionID), nullIfEmpty(e.TeamID),
		e.Country, e.Language, e.StartDate, e.EndDate,
		nullIfEmpty(e.StartTimeOfDay), nullIfEmpty(e.EndTimeOfDay), tasks,
		e.Note, e.Recipient, e.PersonName, e.TaskDescription, e.CreatedAt,
	)
	return err
}

const entryColumns = `
	id, user_id, organization_id, coalesce(region_id, ''), coalesce(team_id, ''),
	supported_country, working_language, start_date, end_date,
	coalesce(start_time_of_day, ''), coalesce(end_time_of_day, ''), tasks,
	note, recipient, person_name, task_description, created_at`

func (s *Store) ListEntries(ctx context.Context, q track.EntryQuery) ([]track.TimeEntry, error) {
	where, args := entryWhere(q)
	query := "select" + entryColumns + " from time_entries" + where +
		" order by start_date asc, created_at asc, id asc"
	if q.Skip > 0 {
		args = append(args, q.Skip)
		query += fmt.Sprintf(" offset $%d", len(args))
	}
	if q.Take > 0 {
		args = append(args, q.Take)
		query += fmt.Sprintf(" limit $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []track.TimeEntry
	for rows.Next() {
		var e track.TimeEntry
		var tasks []byte
		err := rows.Scan(
			&e.ID, &e.UserID, &e.OrganizationID, &e.RegionID, &e.TeamID,
			&e.Country, &e.Language, &e.StartDate, &e.EndDate,
			&e.StartTimeOfDay, &e.EndTimeOfDay, &tasks,
			&e.Note, &e.Recipient, &e.PersonName, &e.TaskDescription, &e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if len(tasks) > 0 {
			if err := json.Unmarshal(tasks, &e.Tasks); err != nil {
				return nil, fmt.Errorf("unmarshal tasks: %w", err)
			}
		}
		if e.Tasks == nil {
			e.Tasks = []string{}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) CountEntries(ctx context.Context, q track.EntryQuery) (int64, error) {
	where, args := entryWhere(q)
	var n int64
	err := s.db.QueryRowContext(ctx, "select count(*) from time_entries"+where, args...).Scan(&n)
	return n, err
}

// entryWhere builds the shared filter clause for entry queries. The date
// range applies to start_date; search matches case-insensitive substrings of
// the free-text columns.
func entryWhere(q track.EntryQuery) (string, []interface{}) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if q.OrganizationID != "" {
		add("organization_id = $%d", q.OrganizationID)
	}
	if q.RegionID != "" {
		add("region_id = $%d", q.RegionID)
	}
	if len(q.RegionIDs) > 0 {
		add("region_id = any($%d)", q.RegionIDs)
	}
	if len(q.UserIDs) > 0 {
		add("user_id = any($%d)", q.UserIDs)
	}
	if len(q.Countries) > 0 {
		add("supported_country = any($%d)", q.Countries)
	}
	if len(q.Languages) > 0 {
		add("working_language = any($%d)", q.Languages)
	}
	if !q.DateFrom.IsZero() {
		add("start_date >= $%d", q.DateFrom)
	}
	if !q.DateTo.IsZero() {
		add("start_date <= $%d", q.DateTo)
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(note ilike $%d or recipient ilike $%d or person_name ilike $%d or task_description ilike $%d)",
			n, n, n, n))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " where " + strings.Join(conds, " and "), args
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
