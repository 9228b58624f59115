package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
)

// handleAdminSubroutes dispatches the moderation surface under /admin/.
// requireAdmin has already vetted the caller.
func (r *Router) handleAdminSubroutes(w http.ResponseWriter, req *http.Request) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing for admin subroute", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	trimmed := strings.TrimPrefix(req.URL.Path, "/admin/")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 1 || parts[0] == "" {
		r.notFound(w)
		return
	}
	switch parts[0] {
	case "announcements":
		r.handleAdminAnnouncements(w, req, info)
	case "warnings":
		r.handleAdminWarnings(w, req, info)
	case "teams":
		if len(parts) != 2 || parts[1] == "" {
			r.notFound(w)
			return
		}
		r.handleAdminTeamDelete(w, req, parts[1], info)
	case "users":
		if len(parts) == 1 {
			r.handleAdminUsers(w, req)
			return
		}
		if len(parts) != 3 || parts[1] == "" {
			r.notFound(w)
			return
		}
		r.handleAdminUserAction(w, req, parts[1], parts[2], info)
	case "support":
		r.handleAdminSupport(w, req, parts[1:], info)
	default:
		r.notFound(w)
	}
}

func (r *Router) handleAdminAnnouncements(w http.ResponseWriter, req *http.Request, info authInfo) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	a, err := r.admin.Announce(req.Context(), info.UserID, payload.Title, payload.Body)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":         a.ID,
		"title":      a.Title,
		"body":       a.Body,
		"created_at": a.CreatedAt,
	})
}

func (r *Router) handleAdminWarnings(w http.ResponseWriter, req *http.Request, info authInfo) {
	switch req.Method {
	case http.MethodPost:
		var payload struct {
			UserID string `json:"user_id"`
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		warning, err := r.admin.Warn(req.Context(), info.UserID, payload.UserID, payload.Reason)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":         warning.ID,
			"user_id":    warning.UserID,
			"reason":     warning.Reason,
			"created_at": warning.CreatedAt,
		})
	case http.MethodGet:
		userID := req.URL.Query().Get("user_id")
		if userID == "" {
			writeError(w, http.StatusBadRequest, "user_id query parameter required")
			return
		}
		warnings, err := r.admin.WarningsFor(req.Context(), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		payload := make([]map[string]any, 0, len(warnings))
		for _, warning := range warnings {
			payload = append(payload, map[string]any{
				"id":           warning.ID,
				"user_id":      warning.UserID,
				"issued_by_id": warning.IssuedByID,
				"reason":       warning.Reason,
				"created_at":   warning.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, payload)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleAdminTeamDelete(w http.ResponseWriter, req *http.Request, teamID string, info authInfo) {
	if req.Method != http.MethodDelete {
		r.methodNotAllowed(w)
		return
	}
	if err := r.admin.RemoveTeam(req.Context(), info.UserID, teamID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (r *Router) handleAdminUsers(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	users, err := r.admin.Users(req.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	payload := make([]map[string]any, 0, len(users))
	for _, u := range users {
		payload = append(payload, map[string]any{
			"id":           u.ID,
			"email":        u.Email,
			"display_name": u.DisplayName,
			"admin":        u.Admin,
			"active":       u.Active,
			"created_at":   u.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

func (r *Router) handleAdminUserAction(w http.ResponseWriter, req *http.Request, userID, action string, info authInfo) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var err error
	switch action {
	case "deactivate":
		err = r.admin.DeactivateUser(req.Context(), info.UserID, userID)
	case "reactivate":
		err = r.admin.ReactivateUser(req.Context(), info.UserID, userID)
	default:
		r.notFound(w)
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (r *Router) handleAdminSupport(w http.ResponseWriter, req *http.Request, rest []string, info authInfo) {
	if len(rest) == 0 || rest[0] == "" {
		if req.Method != http.MethodGet {
			r.methodNotAllowed(w)
			return
		}
		tickets, err := r.support.ListOpen(req.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		payload := make([]map[string]any, 0, len(tickets))
		for i := range tickets {
			payload = append(payload, ticketPayload(&tickets[i]))
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}
	if len(rest) == 2 && rest[1] == "respond" {
		if req.Method != http.MethodPost {
			r.methodNotAllowed(w)
			return
		}
		var payload struct {
			Response string `json:"response"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		ticket, err := r.support.Respond(req.Context(), rest[0], info.UserID, payload.Response)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ticketPayload(ticket))
		return
	}
	r.notFound(w)
}
