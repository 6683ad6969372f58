package report

import (
	"context"
	"errors"
	"math"
	"testing"

	"fieldtrack.org/internal/auth"
)

func TestDashboardSummary(t *testing.T) {
	svc, store := fixedService()
	seedActivity(store)

	d, err := svc.DashboardSummary(context.Background(), augustWindow(), adminCaller)
	if err != nil {
		t.Fatalf("DashboardSummary: %v", err)
	}
	if d.TotalHours != 22 || d.TotalEntries != 5 {
		t.Fatalf("unexpected totals: hours=%v entries=%d", d.TotalHours, d.TotalEntries)
	}
	// Summed per-region counts; a user active in two regions would count twice.
	if d.ActiveUsers != 4 {
		t.Fatalf("unexpected active users: %d", d.ActiveUsers)
	}
	if d.ActiveRegions != 2 {
		t.Fatalf("unexpected active regions: %d", d.ActiveRegions)
	}

	if len(d.TopRegions) != 2 || d.TopRegions[0].RegionID != "r-north" {
		t.Fatalf("unexpected top regions: %+v", d.TopRegions)
	}
	if got := d.TopRegions[0].Percentage; math.Abs(got-20.0/22*100) > 1e-9 {
		t.Fatalf("unexpected top region percentage: %v", got)
	}
	if len(d.TopCountries) == 0 || d.TopCountries[0].Country != "HN" {
		t.Fatalf("unexpected top countries: %+v", d.TopCountries)
	}
	if len(d.TopLanguages) == 0 || d.TopLanguages[0].Language != "es" {
		t.Fatalf("unexpected top languages: %+v", d.TopLanguages)
	}
}

func TestDashboardRestrictedScope(t *testing.T) {
	svc, store := fixedService()
	seedActivity(store)

	// A regional manager's dashboard covers only their managed region, even
	// when they ask for more.
	f := augustWindow()
	f.RegionIDs = []string{"r-north", "r-south"}
	d, err := svc.DashboardSummary(context.Background(), f, rmCaller)
	if err != nil {
		t.Fatalf("DashboardSummary: %v", err)
	}
	if d.TotalHours != 20 {
		t.Fatalf("foreign region leaked into manager dashboard: %v", d.TotalHours)
	}
	if len(d.TopRegions) != 1 || d.TopRegions[0].RegionID != "r-north" {
		t.Fatalf("unexpected top regions: %+v", d.TopRegions)
	}
}

func TestDashboardEmptyScope(t *testing.T) {
	svc, store := fixedService()
	seedActivity(store)

	// A field manager who manages no teams sees an empty dashboard, not an
	// error.
	nobody := auth.Identity{UserID: "fm-none", Role: auth.RoleFieldManager, OrganizationID: "org-1"}
	d, err := svc.DashboardSummary(context.Background(), augustWindow(), nobody)
	if err != nil {
		t.Fatalf("DashboardSummary: %v", err)
	}
	if d.TotalHours != 0 || d.TotalEntries != 0 || d.ActiveUsers != 0 || d.ActiveRegions != 0 {
		t.Fatalf("expected all-zero dashboard, got %+v", d)
	}
	if d.TopRegions == nil || d.TopCountries == nil || d.TopLanguages == nil {
		t.Fatal("leaderboards must be empty slices, not nil")
	}
	if len(d.TopRegions)+len(d.TopCountries)+len(d.TopLanguages) != 0 {
		t.Fatalf("expected empty leaderboards, got %+v", d)
	}
	if d.DateRange.StartDate != d.DateRange.EndDate {
		t.Fatalf("empty dashboard range must collapse to now: %+v", d.DateRange)
	}
}

func TestDashboardDeniedRole(t *testing.T) {
	svc, _ := fixedService()
	if _, err := svc.DashboardSummary(context.Background(), Filters{}, techCaller); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
