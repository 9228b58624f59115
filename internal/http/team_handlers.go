package httpx

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/FTLPetrov/team-builder-sub000/internal/domain"
	"github.com/FTLPetrov/team-builder-sub000/internal/service/event"
)

func (r *Router) handleTeams(w http.ResponseWriter, req *http.Request) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing for teams", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	switch req.Method {
	case http.MethodPost:
		var payload struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Open        bool   `json:"open"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		team, err := r.team.Create(req.Context(), info.UserID, payload.Name, payload.Description, payload.Open)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, teamPayload(team))
	case http.MethodGet:
		teams, err := r.team.ListForUser(req.Context(), info.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		payload := make([]map[string]any, 0, len(teams))
		for i := range teams {
			payload = append(payload, teamPayload(&teams[i]))
		}
		writeJSON(w, http.StatusOK, payload)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleTeamSubroutes(w http.ResponseWriter, req *http.Request) {
	trimmed := strings.TrimPrefix(req.URL.Path, "/teams/")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 1 || parts[0] == "" {
		r.notFound(w)
		return
	}
	teamID := parts[0]
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing for team subroute", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}

	if len(parts) == 1 {
		r.handleTeam(w, req, teamID, info)
		return
	}
	if len(parts) != 2 {
		r.notFound(w)
		return
	}
	switch parts[1] {
	case "join":
		r.handleTeamJoin(w, req, teamID, info)
	case "leave":
		r.handleTeamLeave(w, req, teamID, info)
	case "kick":
		r.handleTeamKick(w, req, teamID, info)
	case "transfer":
		r.handleTeamTransfer(w, req, teamID, info)
	case "role":
		r.handleTeamRole(w, req, teamID, info)
	case "members":
		r.handleTeamMembers(w, req, teamID, info)
	case "invitations":
		r.handleTeamInvitations(w, req, teamID, info)
	case "events":
		r.handleTeamEvents(w, req, teamID, info)
	case "chat":
		r.handleTeamChat(w, req, teamID, info)
	default:
		r.notFound(w)
	}
}

func (r *Router) handleTeam(w http.ResponseWriter, req *http.Request, teamID string, info authInfo) {
	switch req.Method {
	case http.MethodGet:
		team, err := r.team.Get(req.Context(), teamID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, teamPayload(team))
	case http.MethodDelete:
		if err := r.team.Delete(req.Context(), teamID, info.UserID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleTeamJoin(w http.ResponseWriter, req *http.Request, teamID string, info authInfo) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	if err := r.team.Join(req.Context(), teamID, info.UserID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (r *Router) handleTeamLeave(w http.ResponseWriter, req *http.Request, teamID string, info authInfo) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	if err := r.team.Leave(req.Context(), teamID, info.UserID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (r *Router) handleTeamKick(w http.ResponseWriter, req *http.Request, teamID string, info authInfo) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := r.team.Kick(req.Context(), teamID, info.UserID, payload.UserID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (r *Router) handleTeamTransfer(w http.ResponseWriter, req *http.Request, teamID string, info authInfo) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		NewOrganizerID string `json:"new_organizer_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := r.team.TransferOwnership(req.Context(), teamID, info.UserID, payload.NewOrganizerID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (r *Router) handleTeamRole(w http.ResponseWriter, req *http.Request, teamID string, info authInfo) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := r.team.SetMemberRole(req.Context(), teamID, info.UserID, payload.UserID, domain.Role(payload.Role)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (r *Router) handleTeamMembers(w http.ResponseWriter, req *http.Request, teamID string, info authInfo) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	members, err := r.team.Members(req.Context(), teamID, info.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	payload := make([]map[string]any, 0, len(members))
	for _, m := range members {
		payload = append(payload, map[string]any{
			"team_id":   m.TeamID,
			"user_id":   m.UserID,
			"role":      m.Role,
			"joined_at": m.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

func (r *Router) handleTeamEvents(w http.ResponseWriter, req *http.Request, teamID string, info authInfo) {
	switch req.Method {
	case http.MethodPost:
		var payload event.CreateInput
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		created, err := r.event.Create(req.Context(), teamID, info.UserID, payload)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		events, err := r.event.ListByTeam(req.Context(), teamID, info.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, events)
	default:
		r.methodNotAllowed(w)
	}
}

func teamPayload(team *domain.Team) map[string]any {
	return map[string]any{
		"id":           team.ID,
		"name":         team.Name,
		"description":  team.Description,
		"open":         team.Open,
		"organizer_id": team.OrganizerID,
		"created_at":   team.CreatedAt,
	}
}
