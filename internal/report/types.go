package report

import "time"

// Filters is the common report filter object. It is validated once at the
// HTTP boundary and trusted downstream. SortBy/SortOrder are accepted for
// compatibility but ranking is always by total hours.
type Filters struct {
	OrganizationID string    `json:"organizationId,omitempty"`
	RegionIDs      []string  `json:"regionIds,omitempty"`
	Countries      []string  `json:"countries,omitempty"`
	Languages      []string  `json:"languages,omitempty"`
	UserIDs        []string  `json:"userIds,omitempty"`
	StartDate      time.Time `json:"startDate,omitempty"`
	EndDate        time.Time `json:"endDate,omitempty"`
	Skip           int       `json:"skip,omitempty" validate:"gte=0"`
	Take           int       `json:"take,omitempty" validate:"gte=0,lte=100"`
	SortBy         string    `json:"sortBy,omitempty"`
	SortOrder      string    `json:"sortOrder,omitempty" validate:"omitempty,oneof=asc desc"`
}

// DateRange carries the resolved reporting window as RFC 3339 strings.
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// CountryMetric is one per-country row of a summary grouping.
type CountryMetric struct {
	Country      string  `json:"country"`
	TotalHours   float64 `json:"totalHours"`
	TotalEntries int     `json:"totalEntries"`
	Percentage   float64 `json:"percentage"`
}

// LanguageMetric is one per-language row of a summary grouping.
type LanguageMetric struct {
	Language     string  `json:"language"`
	TotalHours   float64 `json:"totalHours"`
	TotalEntries int     `json:"totalEntries"`
	Percentage   float64 `json:"percentage"`
}

// KPI is one named indicator of a regional summary.
type KPI struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Period string  `json:"period"`
}

// RegionalSummary is the detailed report for a single region.
type RegionalSummary struct {
	RegionID           string           `json:"regionId"`
	RegionName         string           `json:"regionName"`
	OrganizationID     string           `json:"organizationId"`
	TotalHours         float64          `json:"totalHours"`
	TotalEntries       int              `json:"totalEntries"`
	ActiveUsers        int              `json:"activeUsers"`
	TopCountries       []CountryMetric  `json:"topCountries"`
	LanguageBreakdown  []LanguageMetric `json:"languageBreakdown"`
	PerformanceMetrics []KPI            `json:"performanceMetrics"`
	DateRange          DateRange        `json:"dateRange"`
}

// RegionStanding is one region's aggregate row within a comparison.
type RegionStanding struct {
	RegionID         string  `json:"regionId"`
	RegionName       string  `json:"regionName"`
	TotalHours       float64 `json:"totalHours"`
	TotalEntries     int     `json:"totalEntries"`
	ActiveUsers      int     `json:"activeUsers"`
	AvgHoursPerUser  float64 `json:"avgHoursPerUser"`
	TopCountry       string  `json:"topCountry"`
	TopLanguage      string  `json:"topLanguage"`
	PerformanceScore float64 `json:"performanceScore"`
}

// RegionMetricValue is one region's value within a ComparisonMetric, ranked
// descending by value.
type RegionMetricValue struct {
	RegionID   string  `json:"regionId"`
	RegionName string  `json:"regionName"`
	Value      float64 `json:"value"`
	Rank       int     `json:"rank"`
}

// Performer points at the region holding the best or worst value of a metric.
type Performer struct {
	RegionID   string  `json:"regionId"`
	RegionName string  `json:"regionName"`
	Value      float64 `json:"value"`
}

// ComparisonMetric ranks all compared regions along one numeric dimension.
type ComparisonMetric struct {
	MetricName     string              `json:"metricName"`
	Regions        []RegionMetricValue `json:"regions"`
	BestPerformer  Performer           `json:"bestPerformer"`
	WorstPerformer Performer           `json:"worstPerformer"`
}

// ComparisonSummary aggregates across all compared regions.
type ComparisonSummary struct {
	TotalRegions          int     `json:"totalRegions"`
	TotalHours            float64 `json:"totalHours"`
	TotalEntries          int     `json:"totalEntries"`
	AverageHoursPerRegion float64 `json:"averageHoursPerRegion"`
}

// RegionalComparison is the cross-region report.
type RegionalComparison struct {
	Regions           []RegionStanding   `json:"regions"`
	OrganizationID    string             `json:"organizationId"`
	ComparisonMetrics []ComparisonMetric `json:"comparisonMetrics"`
	DateRange         DateRange          `json:"dateRange"`
	Summary           ComparisonSummary  `json:"summary"`
}

// CountryTrend is reserved for per-period country activity. It is always
// empty today but stays in the response shape for consumer compatibility.
type CountryTrend struct {
	Period  string  `json:"period"`
	Date    string  `json:"date"`
	Hours   float64 `json:"hours"`
	Entries int     `json:"entries"`
}

// CountryDetail is one ranked per-country row of a breakdown.
type CountryDetail struct {
	Country               string         `json:"country"`
	TotalHours            float64        `json:"totalHours"`
	TotalEntries          int            `json:"totalEntries"`
	ActiveUsers           int            `json:"activeUsers"`
	UniqueLanguages       []string       `json:"uniqueLanguages"`
	AverageHoursPerUser   float64        `json:"averageHoursPerUser"`
	AverageEntriesPerUser float64        `json:"averageEntriesPerUser"`
	Percentage            float64        `json:"percentage"`
	Rank                  int            `json:"rank"`
	Trends                []CountryTrend `json:"trends"`
}

// CountrySummary summarizes a country breakdown.
type CountrySummary struct {
	MostActiveCountry     string  `json:"mostActiveCountry"`
	LeastActiveCountry    string  `json:"leastActiveCountry"`
	AvgHoursPerCountry    float64 `json:"avgHoursPerCountry"`
	CountriesWithActivity int     `json:"countriesWithActivity"`
}

// CountryBreakdown is the per-country report, scoped to a region or to the
// caller's organization.
type CountryBreakdown struct {
	OrganizationID string          `json:"organizationId"`
	RegionID       string          `json:"regionId,omitempty"`
	RegionName     string          `json:"regionName,omitempty"`
	Countries      []CountryDetail `json:"countries"`
	TotalCountries int             `json:"totalCountries"`
	TotalHours     float64         `json:"totalHours"`
	TotalEntries   int             `json:"totalEntries"`
	DateRange      DateRange       `json:"dateRange"`
	Summary        CountrySummary  `json:"summary"`
}

// LanguageByRegion is a language's activity within one region.
type LanguageByRegion struct {
	RegionID   string  `json:"regionId"`
	RegionName string  `json:"regionName"`
	Hours      float64 `json:"hours"`
	Entries    int     `json:"entries"`
	Users      int     `json:"users"`
}

// LanguageDetail is one ranked per-language row of a distribution.
type LanguageDetail struct {
	Language              string             `json:"language"`
	TotalHours            float64            `json:"totalHours"`
	TotalEntries          int                `json:"totalEntries"`
	ActiveUsers           int                `json:"activeUsers"`
	Countries             []string           `json:"countries"`
	AverageHoursPerUser   float64            `json:"averageHoursPerUser"`
	AverageEntriesPerUser float64            `json:"averageEntriesPerUser"`
	Percentage            float64            `json:"percentage"`
	Rank                  int                `json:"rank"`
	RegionalDistribution  []LanguageByRegion `json:"regionalDistribution"`
}

// LanguageSummary summarizes a language distribution.
type LanguageSummary struct {
	MostUsedLanguage      string  `json:"mostUsedLanguage"`
	LeastUsedLanguage     string  `json:"leastUsedLanguage"`
	AvgHoursPerLanguage   float64 `json:"avgHoursPerLanguage"`
	LanguagesWithActivity int     `json:"languagesWithActivity"`
}

// LanguageDistribution is the per-language report.
type LanguageDistribution struct {
	OrganizationID string           `json:"organizationId"`
	RegionID       string           `json:"regionId,omitempty"`
	RegionName     string           `json:"regionName,omitempty"`
	CountryFilter  string           `json:"countryFilter,omitempty"`
	Languages      []LanguageDetail `json:"languages"`
	TotalLanguages int              `json:"totalLanguages"`
	TotalHours     float64          `json:"totalHours"`
	TotalEntries   int              `json:"totalEntries"`
	DateRange      DateRange        `json:"dateRange"`
	Summary        LanguageSummary  `json:"summary"`
}

// TopRegion is one row of the dashboard's region leaderboard.
type TopRegion struct {
	RegionID   string  `json:"regionId"`
	RegionName string  `json:"regionName"`
	TotalHours float64 `json:"totalHours"`
	Percentage float64 `json:"percentage"`
}

// TopCountry is one row of the dashboard's country leaderboard.
type TopCountry struct {
	Country    string  `json:"country"`
	TotalHours float64 `json:"totalHours"`
	Percentage float64 `json:"percentage"`
}

// TopLanguage is one row of the dashboard's language leaderboard.
type TopLanguage struct {
	Language   string  `json:"language"`
	TotalHours float64 `json:"totalHours"`
	Percentage float64 `json:"percentage"`
}

// Dashboard is the cross-cutting summary view. ActiveUsers is a plain sum
// across regions, so a user active in two regions counts twice.
type Dashboard struct {
	TotalHours    float64       `json:"totalHours"`
	TotalEntries  int           `json:"totalEntries"`
	ActiveUsers   int           `json:"activeUsers"`
	ActiveRegions int           `json:"activeRegions"`
	TopRegions    []TopRegion   `json:"topRegions"`
	TopCountries  []TopCountry  `json:"topCountries"`
	TopLanguages  []TopLanguage `json:"topLanguages"`
	DateRange     DateRange     `json:"dateRange"`
}
