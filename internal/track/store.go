package track

import (
	"context"
	"time"
)

// RegionQuery narrows ListRegions. Zero-valued fields are ignored.
type RegionQuery struct {
	IDs            []string
	OrganizationID string
	ManagerID      string
}

// TeamQuery narrows ListTeams. Zero-valued fields are ignored.
type TeamQuery struct {
	OrganizationID string
	ManagerID      string
}

// EntryQuery narrows ListEntries and CountEntries. The date range applies to
// the entry's start date; DateTo is inclusive. Search matches case-insensitive
// substrings of note, recipient, person name and task description.
type EntryQuery struct {
	OrganizationID string
	RegionID       string
	RegionIDs      []string
	UserIDs        []string
	Countries      []string
	Languages      []string
	DateFrom       time.Time
	DateTo         time.Time
	Search         string
	Skip           int
	Take           int
}

// Store is the persistence boundary for the tracking domain. Implementations
// must return rows in a deterministic order so repeated identical queries
// yield identical results.
type Store interface {
	GetRegion(ctx context.Context, id string) (Region, error)
	ListRegions(ctx context.Context, q RegionQuery) ([]Region, error)
	ListTeams(ctx context.Context, q TeamQuery) ([]Team, error)
	FindUserByEmail(ctx context.Context, email string) (User, error)
	CreateEntry(ctx context.Context, e TimeEntry) error
	ListEntries(ctx context.Context, q EntryQuery) ([]TimeEntry, error)
	CountEntries(ctx context.Context, q EntryQuery) (int64, error)
}
