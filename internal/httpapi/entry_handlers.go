package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fieldtrack.org/internal/audit"
	"fieldtrack.org/internal/auth"
	"fieldtrack.org/internal/report"
	"fieldtrack.org/internal/stream"
	"fieldtrack.org/internal/track"
)

func (a *API) handleEntriesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.handleCreateEntry(w, r)
	case http.MethodGet:
		a.handleListEntries(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

type createEntryRequest struct {
	RegionID        string   `json:"regionId"`
	TeamID          string   `json:"teamId"`
	Country         string   `json:"supportedCountry" validate:"required"`
	Language        string   `json:"workingLanguage" validate:"required"`
	StartDate       string   `json:"startDate" validate:"required"`
	EndDate         string   `json:"endDate"`
	StartTimeOfDay  string   `json:"startTimeOfDay"`
	EndTimeOfDay    string   `json:"endTimeOfDay"`
	Tasks           []string `json:"tasks"`
	Note            string   `json:"note"`
	Recipient       string   `json:"recipient"`
	PersonName      string   `json:"personName"`
	TaskDescription string   `json:"taskDescription"`
}

// handleCreateEntry records a time entry for the authenticated user. The
// actor and organization come from the token, never from the body.
func (a *API) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	identity, ok := requirePermission(w, r, auth.PermCreateTime)
	if !ok {
		return
	}
	var req createEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "supportedCountry, workingLanguage and startDate are required")
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("startDate: %v", err))
		return
	}
	var endDate time.Time
	if req.EndDate != "" {
		endDate, err = parseDate(req.EndDate)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("endDate: %v", err))
			return
		}
	}

	entry, err := a.entries.CreateEntry(r.Context(), track.CreateEntryInput{
		UserID:          identity.UserID,
		OrganizationID:  identity.OrganizationID,
		RegionID:        req.RegionID,
		TeamID:          req.TeamID,
		Country:         req.Country,
		Language:        req.Language,
		StartDate:       startDate,
		EndDate:         endDate,
		StartTimeOfDay:  req.StartTimeOfDay,
		EndTimeOfDay:    req.EndTimeOfDay,
		Tasks:           req.Tasks,
		Note:            req.Note,
		Recipient:       req.Recipient,
		PersonName:      req.PersonName,
		TaskDescription: req.TaskDescription,
	})
	if err != nil {
		if errors.Is(err, track.ErrInvalidEntry) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, r, http.StatusInternalServerError, "could not create entry")
		return
	}

	if a.stream != nil {
		a.stream.Publish(stream.EntryEvent{
			EntryID:   entry.ID,
			RegionID:  entry.RegionID,
			Country:   entry.Country,
			Language:  entry.Language,
			Hours:     report.EntryHours(entry),
			Timestamp: entry.CreatedAt,
		})
	}
	audit.LogEvent(r.Context(), audit.Event{
		Action:    "time.entry_created",
		RequestID: RequestIDFromContext(r.Context()),
		Fields:    map[string]interface{}{"entry_id": entry.ID},
	})

	writeJSON(w, http.StatusCreated, entry)
}

func (a *API) handleListEntries(w http.ResponseWriter, r *http.Request) {
	identity, ok := requirePermission(w, r, auth.PermReadTime)
	if !ok {
		return
	}
	q := r.URL.Query()

	query := track.EntryQuery{
		RegionID:  q.Get("regionId"),
		RegionIDs: splitList(q.Get("regionIds")),
		UserIDs:   splitList(q.Get("userIds")),
		Countries: splitList(q.Get("countries")),
		Languages: splitList(q.Get("languages")),
		Search:    q.Get("search"),
	}
	// Non-SUPER callers are confined to their own organization.
	if identity.Role == auth.RoleSuper {
		query.OrganizationID = q.Get("organizationId")
	} else {
		query.OrganizationID = identity.OrganizationID
	}

	var err error
	if query.DateFrom, err = parseOptionalDate(q.Get("startDate")); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("startDate: %v", err))
		return
	}
	if query.DateTo, err = parseOptionalDate(q.Get("endDate")); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("endDate: %v", err))
		return
	}

	in := track.ListInput{Query: query}
	if in.Page, err = parseOptionalInt(q, "page"); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if in.PageSize, err = parseOptionalInt(q, "pageSize"); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if in.Query.Skip, err = parseOptionalInt(q, "skip"); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if in.Query.Take, err = parseOptionalInt(q, "take"); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	page, err := a.entries.ListEntries(r.Context(), in)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "could not list entries")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// --- query parsing helpers ---

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parseDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errors.New("expected RFC 3339 or YYYY-MM-DD")
	}
	return t.UTC(), nil
}

func parseOptionalDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	return parseDate(raw)
}

func parseOptionalInt(q url.Values, key string) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}
