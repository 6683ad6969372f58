package report

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRegionNotFound indicates the referenced region does not exist.
	ErrRegionNotFound = errors.New("region not found")
	// ErrAccessDenied indicates the caller may not view the requested scope.
	ErrAccessDenied = errors.New("access denied")
	// ErrForbidden indicates the caller's role has no analytics access at all.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidRequest indicates a structurally invalid report request.
	ErrInvalidRequest = errors.New("invalid request")
)

// ScopeError reports every region of a multi-region request the caller may
// not access, so the caller can correct the request in one round trip.
type ScopeError struct {
	RegionIDs []string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("access denied to regions: %s", strings.Join(e.RegionIDs, ", "))
}

func (e *ScopeError) Unwrap() error { return ErrAccessDenied }
