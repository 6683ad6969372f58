package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fieldtrack.org/internal/auth"
	"fieldtrack.org/internal/track"
)

var (
	superCaller = auth.Identity{UserID: "root", Role: auth.RoleSuper}
	adminCaller = auth.Identity{UserID: "adm-1", Role: auth.RoleAdmin, OrganizationID: "org-1"}
	rmCaller    = auth.Identity{UserID: "rm-1", Role: auth.RoleRegionalManager, OrganizationID: "org-1"}
	fmCaller    = auth.Identity{UserID: "fm-1", Role: auth.RoleFieldManager, OrganizationID: "org-1"}
	techCaller  = auth.Identity{UserID: "tech-1", Role: auth.RoleFieldTech, OrganizationID: "org-1"}
)

// fixedService builds a service over a seeded store with a pinned clock so
// default date windows are reproducible.
func fixedService() (*Service, *track.InMemory) {
	store := track.NewInMemory()
	store.SeedOrganization(track.Organization{ID: "org-1", Name: "Fieldtrack"})
	store.SeedRegion(track.Region{ID: "r-north", Name: "North", OrganizationID: "org-1", ManagerID: "rm-1"})
	store.SeedRegion(track.Region{ID: "r-south", Name: "South", OrganizationID: "org-1", ManagerID: "rm-2"})
	store.SeedRegion(track.Region{ID: "r-east", Name: "East", OrganizationID: "org-2", ManagerID: "rm-3"})
	store.SeedTeam(track.Team{ID: "t-1", Name: "Alpha", OrganizationID: "org-1", RegionID: "r-north", ManagerID: "fm-1"})

	svc := NewService(store)
	svc.now = func() time.Time { return date("2026-08-20") }
	return svc, store
}

func TestValidateRegionAccessSuper(t *testing.T) {
	svc, _ := fixedService()
	ctx := context.Background()

	if _, err := svc.validateRegionAccess(ctx, "r-east", superCaller); err != nil {
		t.Fatalf("SUPER must access any existing region: %v", err)
	}
	if _, err := svc.validateRegionAccess(ctx, "r-404", superCaller); !errors.Is(err, ErrRegionNotFound) {
		t.Fatalf("expected ErrRegionNotFound, got %v", err)
	}
}

func TestValidateRegionAccessAdminOrgBoundary(t *testing.T) {
	svc, _ := fixedService()
	ctx := context.Background()

	if _, err := svc.validateRegionAccess(ctx, "r-south", adminCaller); err != nil {
		t.Fatalf("ADMIN must access any region of their org: %v", err)
	}
	if _, err := svc.validateRegionAccess(ctx, "r-east", adminCaller); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied for cross-org region, got %v", err)
	}
	if _, err := svc.validateRegionAccess(ctx, "r-404", adminCaller); !errors.Is(err, ErrRegionNotFound) {
		t.Fatalf("expected ErrRegionNotFound, got %v", err)
	}
}

func TestValidateRegionAccessRegionalManager(t *testing.T) {
	svc, _ := fixedService()
	ctx := context.Background()

	if _, err := svc.validateRegionAccess(ctx, "r-north", rmCaller); err != nil {
		t.Fatalf("manager must access their own region: %v", err)
	}
	if _, err := svc.validateRegionAccess(ctx, "r-south", rmCaller); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied for foreign region, got %v", err)
	}
	// A restricted caller probing a nonexistent region gets the same denial.
	if _, err := svc.validateRegionAccess(ctx, "r-404", rmCaller); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied for unknown region, got %v", err)
	}
}

func TestValidateRegionAccessFieldManager(t *testing.T) {
	svc, _ := fixedService()
	ctx := context.Background()

	if _, err := svc.validateRegionAccess(ctx, "r-north", fmCaller); err != nil {
		t.Fatalf("field manager must access team-derived region: %v", err)
	}
	if _, err := svc.validateRegionAccess(ctx, "r-south", fmCaller); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestValidateRegionAccessDeniesNonAnalyticsRoles(t *testing.T) {
	svc, _ := fixedService()
	if _, err := svc.validateRegionAccess(context.Background(), "r-north", techCaller); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for FIELD_TECH, got %v", err)
	}
}

func TestValidateRegionsAccessCollectsAllViolations(t *testing.T) {
	svc, _ := fixedService()

	_, err := svc.validateRegionsAccess(context.Background(), []string{"r-north", "r-south", "r-east"}, rmCaller)
	var scopeErr *ScopeError
	if !errors.As(err, &scopeErr) {
		t.Fatalf("expected ScopeError, got %v", err)
	}
	if len(scopeErr.RegionIDs) != 2 {
		t.Fatalf("expected both violations collected, got %v", scopeErr.RegionIDs)
	}
	if scopeErr.RegionIDs[0] != "r-south" || scopeErr.RegionIDs[1] != "r-east" {
		t.Fatalf("unexpected violation set: %v", scopeErr.RegionIDs)
	}
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatal("ScopeError must unwrap to ErrAccessDenied")
	}
}

func TestValidateRegionsAccessReportsAllMissing(t *testing.T) {
	svc, _ := fixedService()

	// Org-wide callers get every unknown id back in one error, not just the first.
	_, err := svc.validateRegionsAccess(context.Background(), []string{"r-north", "r-404", "r-405"}, adminCaller)
	if !errors.Is(err, ErrRegionNotFound) {
		t.Fatalf("expected ErrRegionNotFound, got %v", err)
	}
	for _, id := range []string{"r-404", "r-405"} {
		if !strings.Contains(err.Error(), id) {
			t.Fatalf("unknown region %s not reported: %v", id, err)
		}
	}
}

func TestAccessibleRegionsPerRole(t *testing.T) {
	svc, _ := fixedService()
	ctx := context.Background()

	regions, err := svc.AccessibleRegions(ctx, rmCaller)
	if err != nil {
		t.Fatalf("AccessibleRegions: %v", err)
	}
	if len(regions) != 1 || regions[0].ID != "r-north" {
		t.Fatalf("unexpected manager scope: %+v", regions)
	}

	regions, err = svc.AccessibleRegions(ctx, fmCaller)
	if err != nil {
		t.Fatalf("AccessibleRegions: %v", err)
	}
	if len(regions) != 1 || regions[0].ID != "r-north" {
		t.Fatalf("unexpected field-manager scope: %+v", regions)
	}

	regions, err = svc.AccessibleRegions(ctx, adminCaller)
	if err != nil {
		t.Fatalf("AccessibleRegions: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("expected both org regions for ADMIN, got %+v", regions)
	}

	regions, err = svc.AccessibleRegions(ctx, superCaller)
	if err != nil {
		t.Fatalf("AccessibleRegions: %v", err)
	}
	if len(regions) != 3 {
		t.Fatalf("expected all regions for unscoped SUPER, got %+v", regions)
	}

	if _, err := svc.AccessibleRegions(ctx, techCaller); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
