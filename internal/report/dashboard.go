package report

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"fieldtrack.org/internal/auth"
)

const dashboardTopN = 5

// DashboardSummary composes comparison, country breakdown and language
// distribution into one cross-cutting view. Restricted callers always get
// their implicit region scope, overriding any explicit region filter.
func (s *Service) DashboardSummary(ctx context.Context, f Filters, caller auth.Identity) (Dashboard, error) {
	if err := requireAnalyticsRole(caller); err != nil {
		return Dashboard{}, err
	}

	if restrictedRole(caller.Role) || len(f.RegionIDs) == 0 {
		regions, err := s.AccessibleRegions(ctx, caller)
		if err != nil {
			return Dashboard{}, err
		}
		if len(regions) == 0 {
			return s.emptyDashboard(), nil
		}
		f.RegionIDs = regionIDsOf(regions)
	}

	sub := f
	sub.Take = dashboardTopN

	// The three sub-reports are read-only and independent.
	var (
		comparison   RegionalComparison
		breakdown    CountryBreakdown
		distribution LanguageDistribution
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		comparison, err = s.compareRegions(gctx, f.RegionIDs, f, caller)
		return err
	})
	g.Go(func() error {
		var err error
		breakdown, err = s.CountryBreakdown(gctx, "", sub, caller)
		return err
	})
	g.Go(func() error {
		var err error
		distribution, err = s.LanguageDistribution(gctx, "", sub, caller)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	totalHours := comparison.Summary.TotalHours
	activeUsers := 0
	activeRegions := 0
	for _, r := range comparison.Regions {
		activeUsers += r.ActiveUsers
		if r.TotalHours > 0 {
			activeRegions++
		}
	}

	standings := make([]RegionStanding, len(comparison.Regions))
	copy(standings, comparison.Regions)
	sort.SliceStable(standings, func(i, j int) bool { return standings[i].TotalHours > standings[j].TotalHours })
	if len(standings) > dashboardTopN {
		standings = standings[:dashboardTopN]
	}
	topRegions := make([]TopRegion, 0, len(standings))
	for _, r := range standings {
		topRegions = append(topRegions, TopRegion{
			RegionID:   r.RegionID,
			RegionName: r.RegionName,
			TotalHours: r.TotalHours,
			Percentage: percentage(r.TotalHours, totalHours),
		})
	}

	topCountries := make([]TopCountry, 0, len(breakdown.Countries))
	for _, c := range breakdown.Countries {
		topCountries = append(topCountries, TopCountry{Country: c.Country, TotalHours: c.TotalHours, Percentage: c.Percentage})
	}
	topLanguages := make([]TopLanguage, 0, len(distribution.Languages))
	for _, l := range distribution.Languages {
		topLanguages = append(topLanguages, TopLanguage{Language: l.Language, TotalHours: l.TotalHours, Percentage: l.Percentage})
	}

	return Dashboard{
		TotalHours:    totalHours,
		TotalEntries:  comparison.Summary.TotalEntries,
		ActiveUsers:   activeUsers,
		ActiveRegions: activeRegions,
		TopRegions:    topRegions,
		TopCountries:  topCountries,
		TopLanguages:  topLanguages,
		DateRange:     comparison.DateRange,
	}, nil
}

// emptyDashboard is the all-zero shape returned when the caller's scope
// contains no regions. Both date bounds collapse to now.
func (s *Service) emptyDashboard() Dashboard {
	now := s.now()
	return Dashboard{
		TopRegions:   []TopRegion{},
		TopCountries: []TopCountry{},
		TopLanguages: []TopLanguage{},
		DateRange:    dateRange(now, now),
	}
}
