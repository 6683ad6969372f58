package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"fieldtrack.org/internal/auth"
	"fieldtrack.org/internal/report"
	"fieldtrack.org/internal/stream"
	"fieldtrack.org/internal/track"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
}

// newTestAPI boots a server over a seeded in-memory store: one organization,
// two regions and three users with known passwords.
func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	t.Setenv("FIELDTRACK_AUTH_SECRET", "test-secret")
	auth.ResetSecretForTests()
	t.Cleanup(auth.ResetSecretForTests)

	api := New(ReadyProbe{}, "test", seededStore(t), stream.New())
	api.rateBurst = 1000
	api.ratePerSec = 1000

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		t:       t,
	}
}

func seededStore(t *testing.T) *track.InMemory {
	t.Helper()
	store := track.NewInMemory()
	store.SeedOrganization(track.Organization{ID: "org-1", Name: "Fieldtrack"})
	store.SeedRegion(track.Region{ID: "r-north", Name: "North", OrganizationID: "org-1", ManagerID: "rm-1"})
	store.SeedRegion(track.Region{ID: "r-south", Name: "South", OrganizationID: "org-1", ManagerID: "rm-2"})

	for _, u := range []struct {
		id, email, role, password string
	}{
		{"admin-1", "admin@example.org", "ADMIN", "admin-pass"},
		{"rm-1", "rm@example.org", "REGIONAL_MANAGER", "rm-pass"},
		{"tech-1", "tech@example.org", "FIELD_TECH", "tech-pass"},
	} {
		hash, err := auth.HashPassword(u.password)
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		store.SeedUser(track.User{
			ID:             u.id,
			Email:          u.email,
			Name:           u.id,
			OrganizationID: "org-1",
			Role:           u.role,
			PasswordHash:   hash,
			Status:         "ACTIVE",
		})
	}

	// Two entries in the north, one in the south, all inside the default
	// thirty-day window.
	day := time.Now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour)
	for _, e := range []track.TimeEntry{
		{ID: "e-1", UserID: "u-1", RegionID: "r-north", Country: "HN", Language: "es",
			StartTimeOfDay: "09:00", EndTimeOfDay: "17:00"},
		{ID: "e-2", UserID: "u-2", RegionID: "r-north", Country: "GT", Language: "es",
			StartTimeOfDay: "10:00", EndTimeOfDay: "14:00"},
		{ID: "e-3", UserID: "u-3", RegionID: "r-south", Country: "SV", Language: "en",
			StartTimeOfDay: "22:00", EndTimeOfDay: "02:00"},
	} {
		e.OrganizationID = "org-1"
		e.StartDate = day
		e.EndDate = day
		e.Tasks = []string{}
		e.CreatedAt = day
		if err := store.CreateEntry(context.Background(), e); err != nil {
			t.Fatalf("seed entry: %v", err)
		}
	}
	return store
}

func (c *apiClient) post(path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) get(path string, params url.Values, headers map[string]string) *http.Response {
	c.t.Helper()
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		c.t.Fatalf("parse url: %v", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("get request: %v", err)
	}
	return resp
}

func (c *apiClient) obtainToken(email, password string) string {
	c.t.Helper()
	resp := c.post("/v1/auth/token", map[string]any{
		"email":    email,
		"password": password,
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("unexpected token status: %d", resp.StatusCode)
	}
	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.t.Fatalf("decode token response: %v", err)
	}
	if payload.Token == "" {
		c.t.Fatalf("empty token issued")
	}
	return payload.Token
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthEndpointsArePublic(t *testing.T) {
	c := newTestAPI(t)

	for _, path := range []string{"/healthz", "/readyz", "/v1/info", "/metrics"} {
		resp := c.get(path, nil, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}

func TestAPIEnforcesAuth(t *testing.T) {
	c := newTestAPI(t)

	resp := c.get("/v1/reports/dashboard-summary", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	resp = c.get("/v1/reports/dashboard-summary", nil, map[string]string{"Authorization": "Bearer not-a-jwt"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 on garbage token, got %d", resp.StatusCode)
	}
}

func TestTokenEndpoint(t *testing.T) {
	c := newTestAPI(t)

	// Unknown email and wrong password answer identically.
	for _, body := range []map[string]any{
		{"email": "nobody@example.org", "password": "whatever"},
		{"email": "admin@example.org", "password": "wrong"},
	} {
		resp := c.post("/v1/auth/token", body, nil)
		payload := decode[map[string]any](t, resp)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
		if payload["error"] != "invalid credentials" {
			t.Fatalf("unexpected error message: %v", payload["error"])
		}
	}

	resp := c.post("/v1/auth/token", map[string]any{"email": "admin@example.org"}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 on missing password, got %d", resp.StatusCode)
	}

	token := c.obtainToken("admin@example.org", "admin-pass")
	identity, err := auth.ParseAndValidate(token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if identity.UserID != "admin-1" || identity.Role != auth.RoleAdmin || identity.OrganizationID != "org-1" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestCreateAndListEntries(t *testing.T) {
	c := newTestAPI(t)
	token := c.obtainToken("admin@example.org", "admin-pass")

	resp := c.post("/v1/time-entries", map[string]any{
		"regionId":         "r-north",
		"supportedCountry": "HN",
		"workingLanguage":  "es",
		"startDate":        time.Now().UTC().Format("2006-01-02"),
		"startTimeOfDay":   "08:00",
		"endTimeOfDay":     "12:00",
		"tasks":            []string{"survey"},
	}, bearer(token))
	created := decode[track.TimeEntry](t, resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if created.ID == "" || created.UserID != "admin-1" || created.OrganizationID != "org-1" {
		t.Fatalf("actor fields must come from the token: %+v", created)
	}

	resp = c.post("/v1/time-entries", map[string]any{
		"supportedCountry": "HN",
		"workingLanguage":  "es",
	}, bearer(token))
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 on missing startDate, got %d", resp.StatusCode)
	}

	resp = c.get("/v1/time-entries", url.Values{"regionId": {"r-north"}}, bearer(token))
	page := decode[track.EntryPage](t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if page.Total != 3 {
		t.Fatalf("expected 3 north entries after create, got %d", page.Total)
	}
}

func TestRegionalSummaryOverHTTP(t *testing.T) {
	c := newTestAPI(t)
	token := c.obtainToken("admin@example.org", "admin-pass")

	resp := c.get("/v1/reports/regional-summary/r-north", nil, bearer(token))
	summary := decode[report.RegionalSummary](t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if summary.RegionID != "r-north" || summary.RegionName != "North" {
		t.Fatalf("unexpected region: %+v", summary)
	}
	if summary.TotalHours != 12 || summary.TotalEntries != 2 || summary.ActiveUsers != 2 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	if len(summary.TopCountries) == 0 || summary.TopCountries[0].Country != "HN" {
		t.Fatalf("expected HN on top: %+v", summary.TopCountries)
	}

	resp = c.get("/v1/reports/regional-summary/r-missing", nil, bearer(token))
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown region, got %d", resp.StatusCode)
	}
}

func TestRegionalComparisonOverHTTP(t *testing.T) {
	c := newTestAPI(t)
	token := c.obtainToken("admin@example.org", "admin-pass")

	resp := c.get("/v1/reports/regional-comparison",
		url.Values{"regionIds": {"r-north,r-south"}}, bearer(token))
	cmp := decode[report.RegionalComparison](t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cmp.Summary.TotalRegions != 2 || cmp.Summary.TotalHours != 16 {
		t.Fatalf("unexpected summary: %+v", cmp.Summary)
	}

	resp = c.get("/v1/reports/regional-comparison",
		url.Values{"regionIds": {"r-north"}}, bearer(token))
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 below comparison minimum, got %d", resp.StatusCode)
	}
}

func TestDashboardSummaryOverHTTP(t *testing.T) {
	c := newTestAPI(t)
	token := c.obtainToken("admin@example.org", "admin-pass")

	resp := c.get("/v1/reports/dashboard-summary", nil, bearer(token))
	dash := decode[report.Dashboard](t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if dash.TotalHours != 16 || dash.TotalEntries != 3 {
		t.Fatalf("unexpected dashboard totals: %+v", dash)
	}
	if len(dash.TopRegions) == 0 || dash.TopRegions[0].RegionID != "r-north" {
		t.Fatalf("expected r-north leading: %+v", dash.TopRegions)
	}
}

func TestReportScopeForRegionalManager(t *testing.T) {
	c := newTestAPI(t)
	token := c.obtainToken("rm@example.org", "rm-pass")

	// Own region works.
	resp := c.get("/v1/reports/regional-summary/r-north", nil, bearer(token))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on own region, got %d", resp.StatusCode)
	}

	// Foreign region is denied, not hidden behind a 404.
	resp = c.get("/v1/reports/regional-summary/r-south", nil, bearer(token))
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 on foreign region, got %d", resp.StatusCode)
	}

	// Unscoped breakdown only sees the manager's region.
	resp = c.get("/v1/reports/country-breakdown", nil, bearer(token))
	breakdown := decode[report.CountryBreakdown](t, resp)
	if breakdown.TotalHours != 12 {
		t.Fatalf("expected only north hours, got %v", breakdown.TotalHours)
	}
	for _, country := range breakdown.Countries {
		if country.Country == "SV" {
			t.Fatalf("foreign region data leaked: %+v", breakdown.Countries)
		}
	}
}

func TestReportForbiddenRole(t *testing.T) {
	c := newTestAPI(t)
	token := c.obtainToken("tech@example.org", "tech-pass")

	resp := c.get("/v1/reports/dashboard-summary", nil, bearer(token))
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for FIELD_TECH, got %d", resp.StatusCode)
	}
}

func TestExportEndpoints(t *testing.T) {
	c := newTestAPI(t)
	admin := c.obtainToken("admin@example.org", "admin-pass")

	resp := c.get("/v1/reports/export/regional-summary/r-north.xlsx", nil, bearer(admin))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("unexpected content type: %s", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd == "" {
		t.Fatalf("missing content disposition")
	}

	// report:export is withheld from regional managers.
	rm := c.obtainToken("rm@example.org", "rm-pass")
	denied := c.get("/v1/reports/export/dashboard-summary.xlsx", nil, bearer(rm))
	denied.Body.Close()
	if denied.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for manager export, got %d", denied.StatusCode)
	}

	missing := c.get("/v1/reports/export/unknown-report.xlsx", nil, bearer(admin))
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown report, got %d", missing.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	c := newTestAPI(t)
	token := c.obtainToken("admin@example.org", "admin-pass")

	resp := c.post("/v1/reports/dashboard-summary", map[string]any{}, bearer(token))
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); allow != http.MethodGet {
		t.Fatalf("unexpected Allow header: %q", allow)
	}
}
