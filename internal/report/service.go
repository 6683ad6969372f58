// Package report implements the regional analytics engine: role-scoped
// aggregation of time entries into ranked, percentage-weighted reports.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"fieldtrack.org/internal/auth"
	"fieldtrack.org/internal/track"
)

const (
	defaultWindowDays = 30
	defaultGroupTake  = 20
	summaryTopN       = 10
	comparisonMin     = 2
	comparisonMax     = 10
)

// Service builds all report shapes on top of a track.Store. Every call is a
// self-contained read-only computation; concurrent requests are independent.
type Service struct {
	store track.Store
	now   func() time.Time
}

// NewService wires a report Service around the given store.
func NewService(store track.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// reportWindow resolves the date window: explicit bounds win, otherwise the
// last 30 days ending now.
func (s *Service) reportWindow(f Filters) (time.Time, time.Time) {
	end := f.EndDate
	if end.IsZero() {
		end = s.now()
	}
	start := f.StartDate
	if start.IsZero() {
		start = end.Add(-defaultWindowDays * 24 * time.Hour)
	}
	return start, end
}

func dateRange(start, end time.Time) DateRange {
	return DateRange{
		StartDate: start.UTC().Format(time.RFC3339),
		EndDate:   end.UTC().Format(time.RFC3339),
	}
}

// fetchRegionEntries loads all entries of one region inside the window,
// narrowed by the optional country/language/user filters. No pagination:
// aggregation always sees the full filtered set.
func (s *Service) fetchRegionEntries(ctx context.Context, regionID string, start, end time.Time, f Filters) ([]track.TimeEntry, error) {
	entries, err := s.store.ListEntries(ctx, track.EntryQuery{
		RegionID:  regionID,
		DateFrom:  start,
		DateTo:    end,
		Countries: f.Countries,
		Languages: f.Languages,
		UserIDs:   f.UserIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("list region entries: %w", err)
	}
	return entries, nil
}

// RegionalSummary builds the detailed report for one region.
func (s *Service) RegionalSummary(ctx context.Context, regionID string, f Filters, caller auth.Identity) (RegionalSummary, error) {
	region, err := s.validateRegionAccess(ctx, regionID, caller)
	if err != nil {
		return RegionalSummary{}, err
	}

	start, end := s.reportWindow(f)
	entries, err := s.fetchRegionEntries(ctx, region.ID, start, end, f)
	if err != nil {
		return RegionalSummary{}, err
	}

	hours := entryHours(entries)
	totalHours := totalOf(hours)
	activeUsers := distinctUsers(entries, allIdxs(entries))

	return RegionalSummary{
		RegionID:           region.ID,
		RegionName:         region.Name,
		OrganizationID:     region.OrganizationID,
		TotalHours:         totalHours,
		TotalEntries:       len(entries),
		ActiveUsers:        activeUsers,
		TopCountries:       truncCountryMetrics(countryMetrics(entries, hours, totalHours), summaryTopN),
		LanguageBreakdown:  truncLanguageMetrics(languageMetrics(entries, hours, totalHours), summaryTopN),
		PerformanceMetrics: regionalKPIs(totalHours, len(entries), activeUsers),
		DateRange:          dateRange(start, end),
	}, nil
}

// RegionalComparison builds the cross-region report. It requires between 2
// and 10 region ids and rejects the request before any store query runs.
func (s *Service) RegionalComparison(ctx context.Context, regionIDs []string, f Filters, caller auth.Identity) (RegionalComparison, error) {
	if len(regionIDs) < comparisonMin {
		return RegionalComparison{}, fmt.Errorf("%w: at least %d region ids are required", ErrInvalidRequest, comparisonMin)
	}
	if len(regionIDs) > comparisonMax {
		return RegionalComparison{}, fmt.Errorf("%w: at most %d region ids are allowed", ErrInvalidRequest, comparisonMax)
	}
	return s.compareRegions(ctx, regionIDs, f, caller)
}

// compareRegions is the cardinality-free comparison core. The dashboard
// reuses it so a single-region scope still aggregates.
func (s *Service) compareRegions(ctx context.Context, regionIDs []string, f Filters, caller auth.Identity) (RegionalComparison, error) {
	regions, err := s.validateRegionsAccess(ctx, regionIDs, caller)
	if err != nil {
		return RegionalComparison{}, err
	}

	start, end := s.reportWindow(f)

	// Per-region fetches are independent; results are slotted by index so
	// completion order cannot affect the output.
	entrySets := make([][]track.TimeEntry, len(regions))
	g, gctx := errgroup.WithContext(ctx)
	for i, region := range regions {
		i, region := i, region
		g.Go(func() error {
			entries, err := s.fetchRegionEntries(gctx, region.ID, start, end, f)
			if err != nil {
				return err
			}
			entrySets[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RegionalComparison{}, err
	}

	rows := make([]RegionStanding, 0, len(regions))
	var totalHours float64
	var totalEntries int
	for i, region := range regions {
		entries := entrySets[i]
		hours := entryHours(entries)
		regionHours := totalOf(hours)
		activeUsers := distinctUsers(entries, allIdxs(entries))

		rows = append(rows, RegionStanding{
			RegionID:         region.ID,
			RegionName:       region.Name,
			TotalHours:       regionHours,
			TotalEntries:     len(entries),
			ActiveUsers:      activeUsers,
			AvgHoursPerUser:  perUser(regionHours, activeUsers),
			TopCountry:       topKey(countryMetricKeys(entries, hours)),
			TopLanguage:      topKey(languageMetricKeys(entries, hours)),
			PerformanceScore: performanceScore(regionHours, len(entries), activeUsers),
		})
		totalHours += regionHours
		totalEntries += len(entries)
	}

	organizationID := ""
	if len(regions) > 0 {
		organizationID = regions[0].OrganizationID
	}
	avgPerRegion := 0.0
	if len(regions) > 0 {
		avgPerRegion = totalHours / float64(len(regions))
	}

	return RegionalComparison{
		Regions:           rows,
		OrganizationID:    organizationID,
		ComparisonMetrics: comparisonMetrics(rows),
		DateRange:         dateRange(start, end),
		Summary: ComparisonSummary{
			TotalRegions:          len(regions),
			TotalHours:            totalHours,
			TotalEntries:          totalEntries,
			AverageHoursPerRegion: avgPerRegion,
		},
	}, nil
}

// CountryBreakdown builds the per-country report. With a region id it scopes
// to that region; otherwise it scopes to the caller's implicit region set
// (restricted roles) or organization.
func (s *Service) CountryBreakdown(ctx context.Context, regionID string, f Filters, caller auth.Identity) (CountryBreakdown, error) {
	if err := requireAnalyticsRole(caller); err != nil {
		return CountryBreakdown{}, err
	}

	start, end := s.reportWindow(f)
	dto := CountryBreakdown{
		OrganizationID: caller.OrganizationID,
		Countries:      []CountryDetail{},
		DateRange:      dateRange(start, end),
		Summary:        CountrySummary{MostActiveCountry: "N/A", LeastActiveCountry: "N/A"},
	}

	q, emptyScope, err := s.scopeEntryQuery(ctx, regionID, f, caller)
	if err != nil {
		return CountryBreakdown{}, err
	}
	if regionID != "" {
		dto.RegionID = regionID
		dto.RegionName = q.regionName
	}
	if emptyScope {
		return dto, nil
	}

	query := q.query
	query.DateFrom = start
	query.DateTo = end
	query.Countries = f.Countries
	query.Languages = f.Languages
	query.UserIDs = f.UserIDs
	entries, err := s.store.ListEntries(ctx, query)
	if err != nil {
		return CountryBreakdown{}, fmt.Errorf("list entries: %w", err)
	}

	hours := entryHours(entries)
	totalHours := totalOf(hours)
	groups := groupEntries(entries, func(e track.TimeEntry) string { return e.Country })

	countries := make([]CountryDetail, 0, len(groups))
	for _, g := range groups {
		groupHours := sumHours(hours, g.idxs)
		users := distinctUsers(entries, g.idxs)
		countries = append(countries, CountryDetail{
			Country:               g.key,
			TotalHours:            groupHours,
			TotalEntries:          len(g.idxs),
			ActiveUsers:           users,
			UniqueLanguages:       distinctValues(entries, g.idxs, func(e track.TimeEntry) string { return e.Language }),
			AverageHoursPerUser:   perUser(groupHours, users),
			AverageEntriesPerUser: perUser(float64(len(g.idxs)), users),
			Percentage:            percentage(groupHours, totalHours),
			Trends:                []CountryTrend{},
		})
	}
	sort.SliceStable(countries, func(i, j int) bool { return countries[i].TotalHours > countries[j].TotalHours })
	for i := range countries {
		countries[i].Rank = i + 1
	}

	dto.TotalCountries = len(countries)
	dto.TotalHours = totalHours
	dto.TotalEntries = len(entries)
	if len(countries) > 0 {
		dto.Summary = CountrySummary{
			MostActiveCountry:     countries[0].Country,
			LeastActiveCountry:    countries[len(countries)-1].Country,
			AvgHoursPerCountry:    totalHours / float64(len(countries)),
			CountriesWithActivity: len(countries),
		}
	}
	dto.Countries = truncCountryDetails(countries, takeLimit(f))
	return dto, nil
}

// LanguageDistribution builds the per-language report, symmetric to the
// country breakdown, with a per-region usage split for every language.
func (s *Service) LanguageDistribution(ctx context.Context, regionID string, f Filters, caller auth.Identity) (LanguageDistribution, error) {
	if err := requireAnalyticsRole(caller); err != nil {
		return LanguageDistribution{}, err
	}

	start, end := s.reportWindow(f)
	dto := LanguageDistribution{
		OrganizationID: caller.OrganizationID,
		Languages:      []LanguageDetail{},
		DateRange:      dateRange(start, end),
		Summary:        LanguageSummary{MostUsedLanguage: "N/A", LeastUsedLanguage: "N/A"},
	}
	if len(f.Countries) > 0 {
		dto.CountryFilter = f.Countries[0]
	}

	q, emptyScope, err := s.scopeEntryQuery(ctx, regionID, f, caller)
	if err != nil {
		return LanguageDistribution{}, err
	}
	if regionID != "" {
		dto.RegionID = regionID
		dto.RegionName = q.regionName
	}
	if emptyScope {
		return dto, nil
	}

	query := q.query
	query.DateFrom = start
	query.DateTo = end
	query.Countries = f.Countries
	query.Languages = f.Languages
	query.UserIDs = f.UserIDs
	entries, err := s.store.ListEntries(ctx, query)
	if err != nil {
		return LanguageDistribution{}, fmt.Errorf("list entries: %w", err)
	}

	regionNames, err := s.regionNames(ctx, entries)
	if err != nil {
		return LanguageDistribution{}, err
	}

	hours := entryHours(entries)
	totalHours := totalOf(hours)
	groups := groupEntries(entries, func(e track.TimeEntry) string { return e.Language })

	languages := make([]LanguageDetail, 0, len(groups))
	for _, g := range groups {
		groupHours := sumHours(hours, g.idxs)
		users := distinctUsers(entries, g.idxs)
		languages = append(languages, LanguageDetail{
			Language:              g.key,
			TotalHours:            groupHours,
			TotalEntries:          len(g.idxs),
			ActiveUsers:           users,
			Countries:             distinctValues(entries, g.idxs, func(e track.TimeEntry) string { return e.Country }),
			AverageHoursPerUser:   perUser(groupHours, users),
			AverageEntriesPerUser: perUser(float64(len(g.idxs)), users),
			Percentage:            percentage(groupHours, totalHours),
			RegionalDistribution:  regionalDistribution(entries, hours, g.idxs, regionNames),
		})
	}
	sort.SliceStable(languages, func(i, j int) bool { return languages[i].TotalHours > languages[j].TotalHours })
	for i := range languages {
		languages[i].Rank = i + 1
	}

	dto.TotalLanguages = len(languages)
	dto.TotalHours = totalHours
	dto.TotalEntries = len(entries)
	if len(languages) > 0 {
		dto.Summary = LanguageSummary{
			MostUsedLanguage:      languages[0].Language,
			LeastUsedLanguage:     languages[len(languages)-1].Language,
			AvgHoursPerLanguage:   totalHours / float64(len(languages)),
			LanguagesWithActivity: len(languages),
		}
	}
	dto.Languages = truncLanguageDetails(languages, takeLimit(f))
	return dto, nil
}

// scopedQuery is the resolved entry scope of an org-wide or single-region
// report.
type scopedQuery struct {
	query      track.EntryQuery
	regionName string
}

// scopeEntryQuery resolves which entries a breakdown/distribution call may
// see. Explicit region id wins, then an explicit region id list, then the
// restricted caller's implicit region set, then the whole organization.
// emptyScope means the caller legitimately sees no regions at all.
func (s *Service) scopeEntryQuery(ctx context.Context, regionID string, f Filters, caller auth.Identity) (scopedQuery, bool, error) {
	if regionID != "" {
		region, err := s.validateRegionAccess(ctx, regionID, caller)
		if err != nil {
			return scopedQuery{}, false, err
		}
		return scopedQuery{query: track.EntryQuery{RegionID: region.ID}, regionName: region.Name}, false, nil
	}

	if len(f.RegionIDs) > 0 {
		regions, err := s.validateRegionsAccess(ctx, f.RegionIDs, caller)
		if err != nil {
			return scopedQuery{}, false, err
		}
		return scopedQuery{query: track.EntryQuery{RegionIDs: regionIDsOf(regions)}}, false, nil
	}

	if restrictedRole(caller.Role) {
		regions, err := s.AccessibleRegions(ctx, caller)
		if err != nil {
			return scopedQuery{}, false, err
		}
		if len(regions) == 0 {
			return scopedQuery{}, true, nil
		}
		return scopedQuery{query: track.EntryQuery{RegionIDs: regionIDsOf(regions)}}, false, nil
	}

	return scopedQuery{query: track.EntryQuery{OrganizationID: caller.OrganizationID}}, false, nil
}

// regionNames resolves the names of every region referenced by the entry set.
func (s *Service) regionNames(ctx context.Context, entries []track.TimeEntry) (map[string]string, error) {
	ids := make([]string, 0)
	seen := make(map[string]struct{})
	for _, e := range entries {
		if e.RegionID == "" {
			continue
		}
		if _, ok := seen[e.RegionID]; ok {
			continue
		}
		seen[e.RegionID] = struct{}{}
		ids = append(ids, e.RegionID)
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	regions, err := s.store.ListRegions(ctx, track.RegionQuery{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	names := make(map[string]string, len(regions))
	for _, r := range regions {
		names[r.ID] = r.Name
	}
	return names, nil
}

// regionalDistribution splits one language group's entries by region.
func regionalDistribution(entries []track.TimeEntry, hours []float64, idxs []int, regionNames map[string]string) []LanguageByRegion {
	type bucket struct {
		regionID string
		idxs     []int
	}
	index := make(map[string]int)
	buckets := make([]bucket, 0)
	for _, i := range idxs {
		rid := entries[i].RegionID
		if rid == "" {
			continue
		}
		bi, ok := index[rid]
		if !ok {
			bi = len(buckets)
			index[rid] = bi
			buckets = append(buckets, bucket{regionID: rid})
		}
		buckets[bi].idxs = append(buckets[bi].idxs, i)
	}

	out := make([]LanguageByRegion, 0, len(buckets))
	for _, b := range buckets {
		name := regionNames[b.regionID]
		if name == "" {
			name = "N/A"
		}
		out = append(out, LanguageByRegion{
			RegionID:   b.regionID,
			RegionName: name,
			Hours:      sumHours(hours, b.idxs),
			Entries:    len(b.idxs),
			Users:      distinctUsers(entries, b.idxs),
		})
	}
	return out
}

// countryMetrics aggregates per-country totals, sorted descending by hours.
func countryMetrics(entries []track.TimeEntry, hours []float64, totalHours float64) []CountryMetric {
	groups := groupEntries(entries, func(e track.TimeEntry) string { return e.Country })
	metrics := make([]CountryMetric, 0, len(groups))
	for _, g := range groups {
		groupHours := sumHours(hours, g.idxs)
		metrics = append(metrics, CountryMetric{
			Country:      g.key,
			TotalHours:   groupHours,
			TotalEntries: len(g.idxs),
			Percentage:   percentage(groupHours, totalHours),
		})
	}
	sort.SliceStable(metrics, func(i, j int) bool { return metrics[i].TotalHours > metrics[j].TotalHours })
	return metrics
}

// languageMetrics aggregates per-language totals, sorted descending by hours.
func languageMetrics(entries []track.TimeEntry, hours []float64, totalHours float64) []LanguageMetric {
	groups := groupEntries(entries, func(e track.TimeEntry) string { return e.Language })
	metrics := make([]LanguageMetric, 0, len(groups))
	for _, g := range groups {
		groupHours := sumHours(hours, g.idxs)
		metrics = append(metrics, LanguageMetric{
			Language:     g.key,
			TotalHours:   groupHours,
			TotalEntries: len(g.idxs),
			Percentage:   percentage(groupHours, totalHours),
		})
	}
	sort.SliceStable(metrics, func(i, j int) bool { return metrics[i].TotalHours > metrics[j].TotalHours })
	return metrics
}

// countryMetricKeys returns the country names in descending-hours order.
func countryMetricKeys(entries []track.TimeEntry, hours []float64) []string {
	metrics := countryMetrics(entries, hours, 0)
	keys := make([]string, len(metrics))
	for i, m := range metrics {
		keys[i] = m.Country
	}
	return keys
}

// languageMetricKeys returns the language names in descending-hours order.
func languageMetricKeys(entries []track.TimeEntry, hours []float64) []string {
	metrics := languageMetrics(entries, hours, 0)
	keys := make([]string, len(metrics))
	for i, m := range metrics {
		keys[i] = m.Language
	}
	return keys
}

// regionalKPIs produces the three fixed summary indicators. Daily
// productivity divides by a constant 30 regardless of the actual window.
func regionalKPIs(totalHours float64, totalEntries, activeUsers int) []KPI {
	return []KPI{
		{Metric: "Average hours per user", Value: perUser(totalHours, activeUsers), Unit: "hours", Period: "total"},
		{Metric: "Average entries per user", Value: perUser(float64(totalEntries), activeUsers), Unit: "entries", Period: "total"},
		{Metric: "Daily productivity", Value: totalHours / defaultWindowDays, Unit: "hours/day", Period: "daily"},
	}
}

// performanceScore is a bounded heuristic for relative region ranking, not
// an absolute measure.
func performanceScore(hours float64, entries, users int) float64 {
	if users == 0 {
		return 0
	}
	hoursPerUser := hours / float64(users)
	entriesPerUser := float64(entries) / float64(users)
	score := hoursPerUser*2 + entriesPerUser*0.5
	if score > 100 {
		return 100
	}
	return score
}

// comparisonMetrics ranks the compared regions along total hours and average
// hours per user. Ranks follow the stable descending sort.
func comparisonMetrics(rows []RegionStanding) []ComparisonMetric {
	build := func(name string, value func(RegionStanding) float64) ComparisonMetric {
		values := make([]RegionMetricValue, 0, len(rows))
		for _, r := range rows {
			values = append(values, RegionMetricValue{RegionID: r.RegionID, RegionName: r.RegionName, Value: value(r)})
		}
		sort.SliceStable(values, func(i, j int) bool { return values[i].Value > values[j].Value })
		for i := range values {
			values[i].Rank = i + 1
		}

		m := ComparisonMetric{MetricName: name, Regions: values}
		if len(values) > 0 {
			best, worst := values[0], values[len(values)-1]
			m.BestPerformer = Performer{RegionID: best.RegionID, RegionName: best.RegionName, Value: best.Value}
			m.WorstPerformer = Performer{RegionID: worst.RegionID, RegionName: worst.RegionName, Value: worst.Value}
		}
		return m
	}

	return []ComparisonMetric{
		build("Total Hours", func(r RegionStanding) float64 { return r.TotalHours }),
		build("Average Hours per User", func(r RegionStanding) float64 { return r.AvgHoursPerUser }),
	}
}

func totalOf(hours []float64) float64 {
	var total float64
	for _, h := range hours {
		total += h
	}
	return total
}

func allIdxs(entries []track.TimeEntry) []int {
	idxs := make([]int, len(entries))
	for i := range entries {
		idxs[i] = i
	}
	return idxs
}

func topKey(keys []string) string {
	if len(keys) == 0 {
		return "N/A"
	}
	return keys[0]
}

func takeLimit(f Filters) int {
	if f.Take > 0 {
		return f.Take
	}
	return defaultGroupTake
}

func regionIDsOf(regions []track.Region) []string {
	ids := make([]string, len(regions))
	for i, r := range regions {
		ids[i] = r.ID
	}
	return ids
}

func truncCountryMetrics(m []CountryMetric, n int) []CountryMetric {
	if len(m) > n {
		m = m[:n]
	}
	return m
}

func truncLanguageMetrics(m []LanguageMetric, n int) []LanguageMetric {
	if len(m) > n {
		m = m[:n]
	}
	return m
}

func truncCountryDetails(d []CountryDetail, n int) []CountryDetail {
	if len(d) > n {
		d = d[:n]
	}
	return d
}

func truncLanguageDetails(d []LanguageDetail, n int) []LanguageDetail {
	if len(d) > n {
		d = d[:n]
	}
	return d
}
