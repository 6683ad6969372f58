package track

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// InMemory is a Store backed by process memory. It is used by tests and by
// DSN-less development runs of the API.
type InMemory struct {
	mu      sync.RWMutex
	orgs    map[string]Organization
	regions []Region
	teams   []Team
	users   []User
	entries []TimeEntry
}

// NewInMemory returns an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{orgs: make(map[string]Organization)}
}

// SeedOrganization registers an organization.
func (m *InMemory) SeedOrganization(o Organization) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orgs[o.ID] = o
}

// SeedRegion registers a region. Regions are listed in seed order.
func (m *InMemory) SeedRegion(r Region) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regions = append(m.regions, r)
}

// SeedTeam registers a team.
func (m *InMemory) SeedTeam(t Team) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams = append(m.teams, t)
}

// SeedUser registers a user account.
func (m *InMemory) SeedUser(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, u)
}

func (m *InMemory) GetRegion(_ context.Context, id string) (Region, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.regions {
		if r.ID == id {
			return r, nil
		}
	}
	return Region{}, fmt.Errorf("%w: region %s", ErrNotFound, id)
}

func (m *InMemory) ListRegions(_ context.Context, q RegionQuery) ([]Region, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Region, 0, len(m.regions))
	for _, r := range m.regions {
		if len(q.IDs) > 0 && !containsString(q.IDs, r.ID) {
			continue
		}
		if q.OrganizationID != "" && r.OrganizationID != q.OrganizationID {
			continue
		}
		if q.ManagerID != "" && r.ManagerID != q.ManagerID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *InMemory) ListTeams(_ context.Context, q TeamQuery) ([]Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Team, 0, len(m.teams))
	for _, t := range m.teams {
		if q.OrganizationID != "" && t.OrganizationID != q.OrganizationID {
			continue
		}
		if q.ManagerID != "" && t.ManagerID != q.ManagerID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *InMemory) FindUserByEmail(_ context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if strings.ToLower(u.Email) == want {
			return u, nil
		}
	}
	return User{}, fmt.Errorf("%w: user %s", ErrNotFound, email)
}

func (m *InMemory) CreateEntry(_ context.Context, e TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *InMemory) ListEntries(_ context.Context, q EntryQuery) ([]TimeEntry, error) {
	m.mu.RLock()
	matched := make([]TimeEntry, 0, len(m.entries))
	for _, e := range m.entries {
		if matchEntry(q, e) {
			matched = append(matched, e)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].StartDate.Equal(matched[j].StartDate) {
			return matched[i].StartDate.Before(matched[j].StartDate)
		}
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	if q.Skip > 0 {
		if q.Skip >= len(matched) {
			return []TimeEntry{}, nil
		}
		matched = matched[q.Skip:]
	}
	if q.Take > 0 && q.Take < len(matched) {
		matched = matched[:q.Take]
	}
	return matched, nil
}

func (m *InMemory) CountEntries(_ context.Context, q EntryQuery) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, e := range m.entries {
		if matchEntry(q, e) {
			n++
		}
	}
	return n, nil
}

func matchEntry(q EntryQuery, e TimeEntry) bool {
	if q.OrganizationID != "" && e.OrganizationID != q.OrganizationID {
		return false
	}
	if q.RegionID != "" && e.RegionID != q.RegionID {
		return false
	}
	if len(q.RegionIDs) > 0 && !containsString(q.RegionIDs, e.RegionID) {
		return false
	}
	if len(q.UserIDs) > 0 && !containsString(q.UserIDs, e.UserID) {
		return false
	}
	if len(q.Countries) > 0 && !containsString(q.Countries, e.Country) {
		return false
	}
	if len(q.Languages) > 0 && !containsString(q.Languages, e.Language) {
		return false
	}
	if !q.DateFrom.IsZero() && e.StartDate.Before(q.DateFrom) {
		return false
	}
	if !q.DateTo.IsZero() && e.StartDate.After(q.DateTo) {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		haystacks := []string{e.Note, e.Recipient, e.PersonName, e.TaskDescription}
		found := false
		for _, h := range haystacks {
			if strings.Contains(strings.ToLower(h), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
