package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fieldtrack.org/internal/auth"
	"fieldtrack.org/internal/obs"
	"fieldtrack.org/internal/report"
	"fieldtrack.org/internal/track"
)

// parseReportFilters reads the common report filter set from the query string.
func (a *API) parseReportFilters(r *http.Request) (report.Filters, error) {
	q := r.URL.Query()
	f := report.Filters{
		OrganizationID: q.Get("organizationId"),
		RegionIDs:      splitList(q.Get("regionIds")),
		Countries:      splitList(q.Get("countries")),
		Languages:      splitList(q.Get("languages")),
		UserIDs:        splitList(q.Get("userIds")),
		SortBy:         q.Get("sortBy"),
		SortOrder:      q.Get("sortOrder"),
	}

	var err error
	if f.StartDate, err = parseOptionalDate(q.Get("startDate")); err != nil {
		return report.Filters{}, fmt.Errorf("startDate: %w", err)
	}
	if f.EndDate, err = parseOptionalDate(q.Get("endDate")); err != nil {
		return report.Filters{}, fmt.Errorf("endDate: %w", err)
	}
	if f.Skip, err = parseOptionalInt(q, "skip"); err != nil {
		return report.Filters{}, err
	}
	if f.Take, err = parseOptionalInt(q, "take"); err != nil {
		return report.Filters{}, err
	}
	if err := a.validate.Struct(f); err != nil {
		return report.Filters{}, errors.New("invalid filter values")
	}
	return f, nil
}

// reportGate is the shared front of every report handler: GET only, a valid
// report:read caller and parseable filters.
func (a *API) reportGate(w http.ResponseWriter, r *http.Request) (auth.Identity, report.Filters, bool) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return auth.Identity{}, report.Filters{}, false
	}
	identity, ok := requirePermission(w, r, auth.PermReadReports)
	if !ok {
		return auth.Identity{}, report.Filters{}, false
	}
	f, err := a.parseReportFilters(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return auth.Identity{}, report.Filters{}, false
	}
	return identity, f, true
}

func (a *API) handleRegionalSummary(w http.ResponseWriter, r *http.Request) {
	identity, f, ok := a.reportGate(w, r)
	if !ok {
		return
	}
	regionID := pathTail(r.URL.Path, "/v1/reports/regional-summary/")
	if regionID == "" {
		writeError(w, r, http.StatusBadRequest, "region id is required")
		return
	}
	start := time.Now()
	out, err := a.reports.RegionalSummary(r.Context(), regionID, f, identity)
	if err != nil {
		handleReportError(w, r, err)
		return
	}
	obs.ReportGenerated("regional-summary", time.Since(start))
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleRegionalComparison(w http.ResponseWriter, r *http.Request) {
	identity, f, ok := a.reportGate(w, r)
	if !ok {
		return
	}
	start := time.Now()
	out, err := a.reports.RegionalComparison(r.Context(), f.RegionIDs, f, identity)
	if err != nil {
		handleReportError(w, r, err)
		return
	}
	obs.ReportGenerated("regional-comparison", time.Since(start))
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleCountryBreakdown(w http.ResponseWriter, r *http.Request) {
	identity, f, ok := a.reportGate(w, r)
	if !ok {
		return
	}
	regionID := pathTail(r.URL.Path, "/v1/reports/country-breakdown")
	start := time.Now()
	out, err := a.reports.CountryBreakdown(r.Context(), regionID, f, identity)
	if err != nil {
		handleReportError(w, r, err)
		return
	}
	obs.ReportGenerated("country-breakdown", time.Since(start))
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleLanguageDistribution(w http.ResponseWriter, r *http.Request) {
	identity, f, ok := a.reportGate(w, r)
	if !ok {
		return
	}
	regionID := pathTail(r.URL.Path, "/v1/reports/language-distribution")
	start := time.Now()
	out, err := a.reports.LanguageDistribution(r.Context(), regionID, f, identity)
	if err != nil {
		handleReportError(w, r, err)
		return
	}
	obs.ReportGenerated("language-distribution", time.Since(start))
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	identity, f, ok := a.reportGate(w, r)
	if !ok {
		return
	}
	start := time.Now()
	out, err := a.reports.DashboardSummary(r.Context(), f, identity)
	if err != nil {
		handleReportError(w, r, err)
		return
	}
	obs.ReportGenerated("dashboard-summary", time.Since(start))
	writeJSON(w, http.StatusOK, out)
}

// handleReportError maps report-layer errors onto HTTP statuses. Scope
// violations carry their denied region ids in the message.
func handleReportError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, report.ErrInvalidRequest):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, report.ErrRegionNotFound), errors.Is(err, track.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "region not found")
	case errors.Is(err, report.ErrAccessDenied):
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, report.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "role does not allow analytics access")
	default:
		obs.Logger().WithError(err).Error("report generation failed")
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// pathTail returns the path segment after prefix, tolerating a missing or
// bare trailing slash.
func pathTail(path, prefix string) string {
	tail := strings.TrimPrefix(path, strings.TrimSuffix(prefix, "/"))
	tail = strings.Trim(tail, "/")
	if strings.Contains(tail, "/") {
		return ""
	}
	return tail
}
