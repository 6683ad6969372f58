package track

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fieldtrack.org/internal/ids"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// Service owns the time-entry write and list paths on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService wires a Service around the given store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// CreateEntryInput carries the caller-supplied fields of a new time entry.
// UserID and OrganizationID come from the authenticated identity, not the
// request body.
type CreateEntryInput struct {
	UserID          string
	OrganizationID  string
	RegionID        string
	TeamID          string
	Country         string
	Language        string
	StartDate       time.Time
	EndDate         time.Time
	StartTimeOfDay  string
	EndTimeOfDay    string
	Tasks           []string
	Note            string
	Recipient       string
	PersonName      string
	TaskDescription string
}

// CreateEntry validates the input, assigns id and timestamps and persists the
// entry. Time-of-day strings are stored as given; malformed values degrade to
// the date-span duration fallback at report time instead of being rejected.
func (s *Service) CreateEntry(ctx context.Context, in CreateEntryInput) (TimeEntry, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return TimeEntry{}, fmt.Errorf("%w: user id is required", ErrInvalidEntry)
	}
	if strings.TrimSpace(in.OrganizationID) == "" {
		return TimeEntry{}, fmt.Errorf("%w: organization id is required", ErrInvalidEntry)
	}
	if strings.TrimSpace(in.Country) == "" {
		return TimeEntry{}, fmt.Errorf("%w: supported country is required", ErrInvalidEntry)
	}
	if strings.TrimSpace(in.Language) == "" {
		return TimeEntry{}, fmt.Errorf("%w: working language is required", ErrInvalidEntry)
	}
	if in.StartDate.IsZero() {
		return TimeEntry{}, fmt.Errorf("%w: start date is required", ErrInvalidEntry)
	}
	if in.EndDate.IsZero() {
		in.EndDate = in.StartDate
	}

	tasks := in.Tasks
	if tasks == nil {
		tasks = []string{}
	}

	e := TimeEntry{
		ID:              ids.New(),
		UserID:          in.UserID,
		OrganizationID:  in.OrganizationID,
		RegionID:        in.RegionID,
		TeamID:          in.TeamID,
		Country:         strings.TrimSpace(in.Country),
		Language:        strings.TrimSpace(in.Language),
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		StartTimeOfDay:  strings.TrimSpace(in.StartTimeOfDay),
		EndTimeOfDay:    strings.TrimSpace(in.EndTimeOfDay),
		Tasks:           tasks,
		Note:            in.Note,
		Recipient:       in.Recipient,
		PersonName:      in.PersonName,
		TaskDescription: in.TaskDescription,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.store.CreateEntry(ctx, e); err != nil {
		return TimeEntry{}, fmt.Errorf("create entry: %w", err)
	}
	return e, nil
}

// ListInput pairs an entry query with pagination. Page/PageSize, when set,
// take precedence over the query's Skip/Take.
type ListInput struct {
	Query    EntryQuery
	Page     int
	PageSize int
}

// EntryPage is one page of entries plus the unpaginated total.
type EntryPage struct {
	Entries []TimeEntry `json:"entries"`
	Total   int64       `json:"total"`
	Skip    int         `json:"skip"`
	Take    int         `json:"take"`
}

// ListEntries normalizes the query and returns one page of matching entries
// with the overall count.
func (s *Service) ListEntries(ctx context.Context, in ListInput) (EntryPage, error) {
	q := NormalizeEntryQuery(in.Query)
	if in.Page > 0 {
		size := in.PageSize
		if size <= 0 {
			size = defaultPageSize
		}
		if size > maxPageSize {
			size = maxPageSize
		}
		q.Skip = (in.Page - 1) * size
		q.Take = size
	}

	total, err := s.store.CountEntries(ctx, q)
	if err != nil {
		return EntryPage{}, fmt.Errorf("count entries: %w", err)
	}
	entries, err := s.store.ListEntries(ctx, q)
	if err != nil {
		return EntryPage{}, fmt.Errorf("list entries: %w", err)
	}
	if entries == nil {
		entries = []TimeEntry{}
	}
	return EntryPage{Entries: entries, Total: total, Skip: q.Skip, Take: q.Take}, nil
}

// NormalizeEntryQuery trims the search term, clamps pagination and widens a
// date-only upper bound to the end of that day so the range is inclusive.
func NormalizeEntryQuery(q EntryQuery) EntryQuery {
	q.Search = strings.TrimSpace(q.Search)
	if q.Skip < 0 {
		q.Skip = 0
	}
	if q.Take <= 0 {
		q.Take = defaultPageSize
	}
	if q.Take > maxPageSize {
		q.Take = maxPageSize
	}
	if !q.DateTo.IsZero() {
		h, m, sec := q.DateTo.Clock()
		if h == 0 && m == 0 && sec == 0 {
			q.DateTo = q.DateTo.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return q
}
