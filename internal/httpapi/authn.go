package httpapi

import (
	"net/http"
	"strings"

	"fieldtrack.org/internal/auth"
)

// publicPaths may be reached without a bearer token.
var publicPaths = map[string]bool{
	"/":              true,
	"/healthz":       true,
	"/readyz":        true,
	"/metrics":       true,
	"/v1/info":       true,
	"/v1/auth/token": true,
}

func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || publicPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		token, err := extractBearerToken(r)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}
		identity, err := auth.ParseAndValidate(token)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx := auth.ContextWithIdentity(r.Context(), identity)
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errMissingAuthHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errMalformedAuthHeader
	}
	return strings.TrimSpace(token), nil
}

var (
	errMissingAuthHeader   = &authError{"authorization header is required"}
	errMalformedAuthHeader = &authError{"authorization header must be a bearer token"}
)

type authError struct{ msg string }

func (e *authError) Error() string { return e.msg }

// requirePermission resolves the caller and checks the permission, writing
// the error response itself. The bool reports whether the handler may proceed.
func requirePermission(w http.ResponseWriter, r *http.Request, perm auth.Permission) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return auth.Identity{}, false
	}
	if !identity.HasPermission(perm) {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return auth.Identity{}, false
	}
	return identity, true
}
