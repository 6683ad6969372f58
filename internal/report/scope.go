package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fieldtrack.org/internal/auth"
	"fieldtrack.org/internal/track"
)

// requireAnalyticsRole gates the whole report surface: only these four roles
// may run analytics at all.
func requireAnalyticsRole(caller auth.Identity) error {
	switch caller.Role {
	case auth.RoleSuper, auth.RoleAdmin, auth.RoleRegionalManager, auth.RoleFieldManager:
		return nil
	}
	return fmt.Errorf("%w: role %s has no analytics access", ErrForbidden, caller.Role)
}

// restrictedRole reports whether the caller's visibility is limited to an
// explicit region set instead of the whole organization.
func restrictedRole(r auth.Role) bool {
	return r == auth.RoleRegionalManager || r == auth.RoleFieldManager
}

// fieldManagerRegionIDs derives a FIELD_MANAGER's visible regions from the
// teams they manage.
func (s *Service) fieldManagerRegionIDs(ctx context.Context, caller auth.Identity) (map[string]struct{}, error) {
	teams, err := s.store.ListTeams(ctx, track.TeamQuery{
		OrganizationID: caller.OrganizationID,
		ManagerID:      caller.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("list managed teams: %w", err)
	}
	ids := make(map[string]struct{}, len(teams))
	for _, t := range teams {
		if t.RegionID != "" {
			ids[t.RegionID] = struct{}{}
		}
	}
	return ids, nil
}

// validateRegionAccess decides whether the caller may view one region. A
// restricted caller probing a region outside their scope gets the same denial
// whether or not the region exists.
func (s *Service) validateRegionAccess(ctx context.Context, regionID string, caller auth.Identity) (track.Region, error) {
	if err := requireAnalyticsRole(caller); err != nil {
		return track.Region{}, err
	}

	region, err := s.store.GetRegion(ctx, regionID)
	if err != nil {
		if errors.Is(err, track.ErrNotFound) {
			if restrictedRole(caller.Role) {
				return track.Region{}, &ScopeError{RegionIDs: []string{regionID}}
			}
			return track.Region{}, fmt.Errorf("%w: %s", ErrRegionNotFound, regionID)
		}
		return track.Region{}, fmt.Errorf("get region: %w", err)
	}

	if caller.Role == auth.RoleSuper {
		return region, nil
	}
	if region.OrganizationID != caller.OrganizationID {
		return track.Region{}, &ScopeError{RegionIDs: []string{regionID}}
	}

	switch caller.Role {
	case auth.RoleRegionalManager:
		if region.ManagerID != caller.UserID {
			return track.Region{}, &ScopeError{RegionIDs: []string{regionID}}
		}
	case auth.RoleFieldManager:
		managed, err := s.fieldManagerRegionIDs(ctx, caller)
		if err != nil {
			return track.Region{}, err
		}
		if _, ok := managed[region.ID]; !ok {
			return track.Region{}, &ScopeError{RegionIDs: []string{regionID}}
		}
	}
	return region, nil
}

// validateRegionsAccess checks every requested region and collects all
// violations before raising, so a denied request names each offending region
// at once. Duplicate ids collapse to their first occurrence so a region is
// never validated or aggregated twice. For a FIELD_MANAGER the managed-region
// set is fetched once.
func (s *Service) validateRegionsAccess(ctx context.Context, regionIDs []string, caller auth.Identity) ([]track.Region, error) {
	if err := requireAnalyticsRole(caller); err != nil {
		return nil, err
	}
	regionIDs = dedupeIDs(regionIDs)

	var managed map[string]struct{}
	if caller.Role == auth.RoleFieldManager {
		var err error
		managed, err = s.fieldManagerRegionIDs(ctx, caller)
		if err != nil {
			return nil, err
		}
	}

	regions := make([]track.Region, 0, len(regionIDs))
	var denied, missing []string
	for _, id := range regionIDs {
		region, err := s.store.GetRegion(ctx, id)
		if err != nil {
			if errors.Is(err, track.ErrNotFound) {
				if restrictedRole(caller.Role) {
					denied = append(denied, id)
				} else {
					missing = append(missing, id)
				}
				continue
			}
			return nil, fmt.Errorf("get region: %w", err)
		}

		allowed := true
		switch {
		case caller.Role == auth.RoleSuper:
		case region.OrganizationID != caller.OrganizationID:
			allowed = false
		case caller.Role == auth.RoleRegionalManager && region.ManagerID != caller.UserID:
			allowed = false
		case caller.Role == auth.RoleFieldManager:
			_, allowed = managed[region.ID]
		}
		if !allowed {
			denied = append(denied, id)
			continue
		}
		regions = append(regions, region)
	}
	if len(denied) > 0 {
		return nil, &ScopeError{RegionIDs: denied}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrRegionNotFound, strings.Join(missing, ", "))
	}
	return regions, nil
}

// dedupeIDs drops repeated ids, keeping first-seen order.
func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// AccessibleRegions resolves the caller's implicit region scope: managed
// regions for a REGIONAL_MANAGER, team-derived regions for a FIELD_MANAGER,
// the whole organization for ADMIN and all regions for an unscoped SUPER.
func (s *Service) AccessibleRegions(ctx context.Context, caller auth.Identity) ([]track.Region, error) {
	if err := requireAnalyticsRole(caller); err != nil {
		return nil, err
	}

	switch caller.Role {
	case auth.RoleRegionalManager:
		regions, err := s.store.ListRegions(ctx, track.RegionQuery{
			OrganizationID: caller.OrganizationID,
			ManagerID:      caller.UserID,
		})
		if err != nil {
			return nil, fmt.Errorf("list managed regions: %w", err)
		}
		return regions, nil
	case auth.RoleFieldManager:
		managed, err := s.fieldManagerRegionIDs(ctx, caller)
		if err != nil {
			return nil, err
		}
		if len(managed) == 0 {
			return nil, nil
		}
		ids := make([]string, 0, len(managed))
		for id := range managed {
			ids = append(ids, id)
		}
		regions, err := s.store.ListRegions(ctx, track.RegionQuery{
			IDs:            ids,
			OrganizationID: caller.OrganizationID,
		})
		if err != nil {
			return nil, fmt.Errorf("list team regions: %w", err)
		}
		return regions, nil
	default:
		regions, err := s.store.ListRegions(ctx, track.RegionQuery{OrganizationID: caller.OrganizationID})
		if err != nil {
			return nil, fmt.Errorf("list organization regions: %w", err)
		}
		return regions, nil
	}
}
