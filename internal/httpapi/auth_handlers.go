package httpapi

import (
	"errors"
	"net/http"
	"time"

	"fieldtrack.org/internal/audit"
	"fieldtrack.org/internal/auth"
	"fieldtrack.org/internal/track"
)

type tokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	ExpiresAt string `json:"expiresAt"`
}

// handleAuthToken exchanges credentials for a signed JWT. Unknown emails and
// wrong passwords both answer 401 with the same message.
func (a *API) handleAuthToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := a.store.FindUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, track.ErrNotFound) {
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if user.Status != "" && user.Status != "ACTIVE" {
		writeError(w, r, http.StatusForbidden, "account is not active")
		return
	}
	role, err := auth.ParseRole(user.Role)
	if err != nil {
		writeError(w, r, http.StatusForbidden, "account role is not recognized")
		return
	}

	token, err := auth.GenerateToken(user.ID, role, user.OrganizationID, a.tokenTTL)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "could not issue token")
		return
	}

	audit.LogEvent(r.Context(), audit.Event{
		Action:    "auth.token_issued",
		RequestID: RequestIDFromContext(r.Context()),
		Fields: map[string]interface{}{
			"user_id": user.ID,
			"role":    string(role),
		},
	})

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: time.Now().UTC().Add(a.tokenTTL).Format(time.RFC3339),
	})
}
