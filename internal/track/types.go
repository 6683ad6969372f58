// Package track holds the time-tracking domain model: organizations, regions,
// teams, users and the time entries field staff log against them.
package track

import "time"

// TimeEntry is one logged work interval. StartTimeOfDay and EndTimeOfDay are
// optional "HH:MM" strings; when absent or malformed the date span is used as
// the duration fallback.
type TimeEntry struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	OrganizationID  string    `json:"organizationId"`
	RegionID        string    `json:"regionId,omitempty"`
	TeamID          string    `json:"teamId,omitempty"`
	Country         string    `json:"supportedCountry"`
	Language        string    `json:"workingLanguage"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	StartTimeOfDay  string    `json:"startTimeOfDay,omitempty"`
	EndTimeOfDay    string    `json:"endTimeOfDay,omitempty"`
	Tasks           []string  `json:"tasks"`
	Note            string    `json:"note,omitempty"`
	Recipient       string    `json:"recipient,omitempty"`
	PersonName      string    `json:"personName,omitempty"`
	TaskDescription string    `json:"taskDescription,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Organization is the top-level tenant boundary.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Region belongs to one organization. ManagerID is the authority boundary for
// the REGIONAL_MANAGER role.
type Region struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	OrganizationID string `json:"organizationId"`
	ManagerID      string `json:"managerId,omitempty"`
}

// Team sits under a region. A FIELD_MANAGER's accessible regions are derived
// from the regions of the teams they manage.
type Team struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	OrganizationID string `json:"organizationId"`
	RegionID       string `json:"regionId,omitempty"`
	ManagerID      string `json:"managerId,omitempty"`
}

// User is an account in the system. PasswordHash is an argon2id encoding and
// never serialized.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	OrganizationID string    `json:"organizationId"`
	Role           string    `json:"role"`
	PasswordHash   string    `json:"-"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}
