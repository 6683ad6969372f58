package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"fieldtrack.org/internal/audit"
	"fieldtrack.org/internal/auth"
	"fieldtrack.org/internal/export"
	"fieldtrack.org/internal/obs"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleExport serves the Excel renditions of every report under
// /v1/reports/export/{report}[/{regionId}].xlsx.
func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	identity, ok := requirePermission(w, r, auth.PermExportReports)
	if !ok {
		return
	}
	f, err := a.parseReportFilters(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/reports/export/"), "/")
	if !strings.HasSuffix(rest, ".xlsx") {
		http.NotFound(w, r)
		return
	}
	rest = strings.TrimSuffix(rest, ".xlsx")
	name, regionID, _ := strings.Cut(rest, "/")
	if strings.Contains(regionID, "/") {
		http.NotFound(w, r)
		return
	}

	var payload []byte
	start := time.Now()
	switch name {
	case "regional-summary":
		if regionID == "" {
			writeError(w, r, http.StatusBadRequest, "region id is required")
			return
		}
		data, rerr := a.reports.RegionalSummary(r.Context(), regionID, f, identity)
		if rerr != nil {
			handleReportError(w, r, rerr)
			return
		}
		payload, err = export.RegionalSummary(data)
	case "regional-comparison":
		data, rerr := a.reports.RegionalComparison(r.Context(), f.RegionIDs, f, identity)
		if rerr != nil {
			handleReportError(w, r, rerr)
			return
		}
		payload, err = export.RegionalComparison(data)
	case "country-breakdown":
		data, rerr := a.reports.CountryBreakdown(r.Context(), regionID, f, identity)
		if rerr != nil {
			handleReportError(w, r, rerr)
			return
		}
		payload, err = export.CountryBreakdown(data)
	case "language-distribution":
		data, rerr := a.reports.LanguageDistribution(r.Context(), regionID, f, identity)
		if rerr != nil {
			handleReportError(w, r, rerr)
			return
		}
		payload, err = export.LanguageDistribution(data)
	case "dashboard-summary":
		data, rerr := a.reports.DashboardSummary(r.Context(), f, identity)
		if rerr != nil {
			handleReportError(w, r, rerr)
			return
		}
		payload, err = export.DashboardSummary(data)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		obs.Logger().WithError(err).Error("report export failed")
		writeError(w, r, http.StatusInternalServerError, "could not render workbook")
		return
	}
	obs.ReportGenerated(name+"-export", time.Since(start))

	audit.LogEvent(r.Context(), audit.Event{
		Action:    "report.export",
		RequestID: RequestIDFromContext(r.Context()),
		Fields: map[string]interface{}{
			"report": name,
			"region": regionID,
		},
	})

	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(payload)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
