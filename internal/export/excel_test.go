package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"fieldtrack.org/internal/report"
)

func openSheet(t *testing.T, data []byte, name string) (*excelize.File, [][]string) {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	rows, err := f.GetRows(name)
	if err != nil {
		t.Fatalf("read sheet %s: %v", name, err)
	}
	return f, rows
}

func TestRegionalSummaryWorkbook(t *testing.T) {
	data := report.RegionalSummary{
		RegionName:   "North",
		TotalHours:   20,
		TotalEntries: 4,
		ActiveUsers:  3,
		TopCountries: []report.CountryMetric{
			{Country: "HN", TotalHours: 15, TotalEntries: 3, Percentage: 75},
			{Country: "GT", TotalHours: 5, TotalEntries: 1, Percentage: 25},
		},
		LanguageBreakdown: []report.LanguageMetric{
			{Language: "es", TotalHours: 18, TotalEntries: 3, Percentage: 90},
		},
		DateRange: report.DateRange{StartDate: "2026-08-01T00:00:00Z", EndDate: "2026-08-31T00:00:00Z"},
	}

	out, err := RegionalSummary(data)
	if err != nil {
		t.Fatalf("RegionalSummary: %v", err)
	}
	_, rows := openSheet(t, out, "Regional Summary")
	if rows[0][0] != "Regional Summary: North" {
		t.Fatalf("unexpected title: %q", rows[0][0])
	}
	if rows[3][0] != "Total Hours:" || rows[3][1] != "20" {
		t.Fatalf("unexpected hours row: %v", rows[3])
	}
	// First country row follows the two header rows of the country table.
	if rows[10][0] != "HN" || rows[10][3] != "75.00%" {
		t.Fatalf("unexpected country row: %v", rows[10])
	}
}

func TestCountryBreakdownWorkbook(t *testing.T) {
	data := report.CountryBreakdown{
		RegionName:     "North",
		TotalCountries: 1,
		TotalHours:     10,
		TotalEntries:   2,
		Countries: []report.CountryDetail{
			{Country: "HN", TotalHours: 10, TotalEntries: 2, ActiveUsers: 1, Percentage: 100, Rank: 1},
		},
		Summary:   report.CountrySummary{MostActiveCountry: "HN", LeastActiveCountry: "HN", AvgHoursPerCountry: 10, CountriesWithActivity: 1},
		DateRange: report.DateRange{StartDate: "a", EndDate: "b"},
	}

	out, err := CountryBreakdown(data)
	if err != nil {
		t.Fatalf("CountryBreakdown: %v", err)
	}
	_, rows := openSheet(t, out, "Country Breakdown")
	if rows[0][0] != "Countries - North" {
		t.Fatalf("unexpected title: %q", rows[0][0])
	}
	last := rows[len(rows)-1]
	if last[0] != "1" || last[1] != "HN" || last[5] != "100.00%" {
		t.Fatalf("unexpected detail row: %v", last)
	}
}

func TestDashboardSummaryWorkbook(t *testing.T) {
	data := report.Dashboard{
		TotalHours:    22,
		TotalEntries:  5,
		ActiveUsers:   4,
		ActiveRegions: 2,
		TopRegions:    []report.TopRegion{{RegionName: "North", TotalHours: 20, Percentage: 90.909}},
		TopCountries:  []report.TopCountry{{Country: "HN", TotalHours: 15, Percentage: 68.18}},
		TopLanguages:  []report.TopLanguage{{Language: "es", TotalHours: 18, Percentage: 81.81}},
		DateRange:     report.DateRange{StartDate: "a", EndDate: "b"},
	}

	out, err := DashboardSummary(data)
	if err != nil {
		t.Fatalf("DashboardSummary: %v", err)
	}
	_, rows := openSheet(t, out, "Dashboard Summary")
	if rows[0][0] != "Reports Overview" {
		t.Fatalf("unexpected title: %q", rows[0][0])
	}

	var sawRegion, sawCountry, sawLanguage bool
	for _, row := range rows {
		if len(row) > 0 && row[0] == "North" {
			sawRegion = true
		}
		if len(row) > 0 && row[0] == "HN" {
			sawCountry = true
		}
		if len(row) > 0 && row[0] == "es" {
			sawLanguage = true
		}
	}
	if !sawRegion || !sawCountry || !sawLanguage {
		t.Fatalf("missing leaderboard rows: region=%v country=%v language=%v", sawRegion, sawCountry, sawLanguage)
	}
}

func TestRegionalComparisonWorkbook(t *testing.T) {
	data := report.RegionalComparison{
		Regions: []report.RegionStanding{
			{RegionName: "North", TotalHours: 20, TotalEntries: 4, ActiveUsers: 3, AvgHoursPerUser: 6.6667, TopCountry: "HN", TopLanguage: "es"},
		},
		Summary:   report.ComparisonSummary{TotalRegions: 1, TotalHours: 20, TotalEntries: 4, AverageHoursPerRegion: 20},
		DateRange: report.DateRange{StartDate: "a", EndDate: "b"},
	}

	out, err := RegionalComparison(data)
	if err != nil {
		t.Fatalf("RegionalComparison: %v", err)
	}
	_, rows := openSheet(t, out, "Regional Comparison")
	last := rows[len(rows)-1]
	if last[0] != "North" || last[4] != "6.67" || last[6] != "es" {
		t.Fatalf("unexpected region row: %v", last)
	}
}
