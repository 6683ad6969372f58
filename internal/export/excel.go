// Package export renders report DTOs into XLSX workbooks. It consumes the
// report shapes as-is and performs no further computation.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"fieldtrack.org/internal/report"
)

// sheet is a cursor-based writer over one worksheet.
type sheet struct {
	f       *excelize.File
	name    string
	row     int
	bold    int
	heading int
}

func newSheet(name string) (*sheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("bold style: %w", err)
	}
	heading, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("heading style: %w", err)
	}
	return &sheet{f: f, name: name, bold: bold, heading: heading}, nil
}

// title writes the merged heading row spanning the given column count.
func (s *sheet) title(text string, span int) error {
	s.row++
	end, err := excelize.CoordinatesToCellName(span, s.row)
	if err != nil {
		return err
	}
	start := fmt.Sprintf("A%d", s.row)
	if err := s.f.MergeCell(s.name, start, end); err != nil {
		return err
	}
	if err := s.f.SetCellValue(s.name, start, text); err != nil {
		return err
	}
	return s.f.SetCellStyle(s.name, start, end, s.heading)
}

func (s *sheet) addRow(values ...interface{}) error {
	s.row++
	return s.f.SetSheetRow(s.name, fmt.Sprintf("A%d", s.row), &values)
}

func (s *sheet) addBoldRow(values ...interface{}) error {
	if err := s.addRow(values...); err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(len(values), s.row)
	if err != nil {
		return err
	}
	return s.f.SetCellStyle(s.name, fmt.Sprintf("A%d", s.row), end, s.bold)
}

func (s *sheet) blank() error { return s.addRow("") }

func (s *sheet) bytes(lastCol string, width float64) ([]byte, error) {
	if err := s.f.SetColWidth(s.name, "A", lastCol, width); err != nil {
		return nil, err
	}
	buf, err := s.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func pct(v float64) string { return fmt.Sprintf("%.2f%%", v) }

// RegionalSummary renders a regional summary worksheet: title, general
// numbers, then the country and language tables.
func RegionalSummary(data report.RegionalSummary) ([]byte, error) {
	s, err := newSheet("Regional Summary")
	if err != nil {
		return nil, err
	}
	steps := []error{
		s.title(fmt.Sprintf("Regional Summary: %s", data.RegionName), 5),
		s.blank(),
		s.addBoldRow("General Information"),
		s.addRow("Total Hours:", data.TotalHours),
		s.addRow("Total Entries:", data.TotalEntries),
		s.addRow("Active Users:", data.ActiveUsers),
		s.addRow("Period:", fmt.Sprintf("%s - %s", data.DateRange.StartDate, data.DateRange.EndDate)),
		s.blank(),
		s.addBoldRow("Top Countries"),
		s.addBoldRow("Country", "Hours", "Entries", "Percentage"),
	}
	for _, err := range steps {
		if err != nil {
			return nil, err
		}
	}
	for _, c := range data.TopCountries {
		if err := s.addRow(c.Country, c.TotalHours, c.TotalEntries, pct(c.Percentage)); err != nil {
			return nil, err
		}
	}
	steps = []error{
		s.blank(),
		s.addBoldRow("Language Breakdown"),
		s.addBoldRow("Language", "Hours", "Entries", "Percentage"),
	}
	for _, err := range steps {
		if err != nil {
			return nil, err
		}
	}
	for _, l := range data.LanguageBreakdown {
		if err := s.addRow(l.Language, l.TotalHours, l.TotalEntries, pct(l.Percentage)); err != nil {
			return nil, err
		}
	}
	return s.bytes("E", 15)
}

// RegionalComparison renders the cross-region worksheet.
func RegionalComparison(data report.RegionalComparison) ([]byte, error) {
	s, err := newSheet("Regional Comparison")
	if err != nil {
		return nil, err
	}
	steps := []error{
		s.title("Regional Comparison", 7),
		s.blank(),
		s.addBoldRow("Summary"),
		s.addRow("Total Regions:", data.Summary.TotalRegions),
		s.addRow("Total Hours:", data.Summary.TotalHours),
		s.addRow("Total Entries:", data.Summary.TotalEntries),
		s.addRow("Average per Region:", fmt.Sprintf("%.2f", data.Summary.AverageHoursPerRegion)),
		s.addRow("Period:", fmt.Sprintf("%s - %s", data.DateRange.StartDate, data.DateRange.EndDate)),
		s.blank(),
		s.addBoldRow("Region Details"),
		s.addBoldRow("Region", "Total Hours", "Total Entries", "Active Users", "Hours/User", "Top Country", "Top Language"),
	}
	for _, err := range steps {
		if err != nil {
			return nil, err
		}
	}
	for _, r := range data.Regions {
		err := s.addRow(r.RegionName, r.TotalHours, r.TotalEntries, r.ActiveUsers,
			fmt.Sprintf("%.2f", r.AvgHoursPerUser), r.TopCountry, r.TopLanguage)
		if err != nil {
			return nil, err
		}
	}
	return s.bytes("G", 15)
}

// CountryBreakdown renders the per-country worksheet.
func CountryBreakdown(data report.CountryBreakdown) ([]byte, error) {
	s, err := newSheet("Country Breakdown")
	if err != nil {
		return nil, err
	}
	title := "Country Breakdown"
	if data.RegionName != "" {
		title = fmt.Sprintf("Countries - %s", data.RegionName)
	}
	steps := []error{
		s.title(title, 6),
		s.blank(),
		s.addBoldRow("Summary"),
		s.addRow("Total Countries:", data.TotalCountries),
		s.addRow("Total Hours:", data.TotalHours),
		s.addRow("Total Entries:", data.TotalEntries),
		s.addRow("Most Active Country:", data.Summary.MostActiveCountry),
		s.addRow("Average per Country:", fmt.Sprintf("%.2f", data.Summary.AvgHoursPerCountry)),
		s.blank(),
		s.addBoldRow("Country Details"),
		s.addBoldRow("Rank", "Country", "Total Hours", "Total Entries", "Active Users", "Percentage"),
	}
	for _, err := range steps {
		if err != nil {
			return nil, err
		}
	}
	for _, c := range data.Countries {
		if err := s.addRow(c.Rank, c.Country, c.TotalHours, c.TotalEntries, c.ActiveUsers, pct(c.Percentage)); err != nil {
			return nil, err
		}
	}
	return s.bytes("F", 15)
}

// LanguageDistribution renders the per-language worksheet.
func LanguageDistribution(data report.LanguageDistribution) ([]byte, error) {
	s, err := newSheet("Language Distribution")
	if err != nil {
		return nil, err
	}
	title := "Language Distribution"
	if data.RegionName != "" {
		title = fmt.Sprintf("Languages - %s", data.RegionName)
	}
	steps := []error{
		s.title(title, 6),
		s.blank(),
		s.addBoldRow("Summary"),
		s.addRow("Total Languages:", data.TotalLanguages),
		s.addRow("Total Hours:", data.TotalHours),
		s.addRow("Total Entries:", data.TotalEntries),
		s.addRow("Most Used Language:", data.Summary.MostUsedLanguage),
		s.addRow("Average per Language:", fmt.Sprintf("%.2f", data.Summary.AvgHoursPerLanguage)),
		s.blank(),
		s.addBoldRow("Language Details"),
		s.addBoldRow("Rank", "Language", "Total Hours", "Total Entries", "Active Users", "Percentage"),
	}
	for _, err := range steps {
		if err != nil {
			return nil, err
		}
	}
	for _, l := range data.Languages {
		if err := s.addRow(l.Rank, l.Language, l.TotalHours, l.TotalEntries, l.ActiveUsers, pct(l.Percentage)); err != nil {
			return nil, err
		}
	}
	return s.bytes("F", 15)
}

// DashboardSummary renders the composite dashboard worksheet with its three
// leaderboards.
func DashboardSummary(data report.Dashboard) ([]byte, error) {
	s, err := newSheet("Dashboard Summary")
	if err != nil {
		return nil, err
	}
	steps := []error{
		s.title("Reports Overview", 5),
		s.blank(),
		s.addBoldRow("Key Metrics"),
		s.addRow("Total Hours:", data.TotalHours),
		s.addRow("Total Entries:", data.TotalEntries),
		s.addRow("Active Users:", data.ActiveUsers),
		s.addRow("Active Regions:", data.ActiveRegions),
		s.addRow("Period:", fmt.Sprintf("%s - %s", data.DateRange.StartDate, data.DateRange.EndDate)),
		s.blank(),
		s.addBoldRow("Top Regions"),
		s.addBoldRow("Region", "Hours", "Percentage"),
	}
	for _, err := range steps {
		if err != nil {
			return nil, err
		}
	}
	for _, r := range data.TopRegions {
		if err := s.addRow(r.RegionName, r.TotalHours, pct(r.Percentage)); err != nil {
			return nil, err
		}
	}
	steps = []error{
		s.blank(),
		s.addBoldRow("Top Countries"),
		s.addBoldRow("Country", "Hours", "Percentage"),
	}
	for _, err := range steps {
		if err != nil {
			return nil, err
		}
	}
	for _, c := range data.TopCountries {
		if err := s.addRow(c.Country, c.TotalHours, pct(c.Percentage)); err != nil {
			return nil, err
		}
	}
	steps = []error{
		s.blank(),
		s.addBoldRow("Top Languages"),
		s.addBoldRow("Language", "Hours", "Percentage"),
	}
	for _, err := range steps {
		if err != nil {
			return nil, err
		}
	}
	for _, l := range data.TopLanguages {
		if err := s.addRow(l.Language, l.TotalHours, pct(l.Percentage)); err != nil {
			return nil, err
		}
	}
	return s.bytes("E", 20)
}
