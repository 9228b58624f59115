package httpx

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/FTLPetrov/team-builder-sub000/internal/domain"
)

// handleTeamInvitations covers POST (invite) and GET (history) under
// /teams/{id}/invitations.
func (r *Router) handleTeamInvitations(w http.ResponseWriter, req *http.Request, teamID string, info authInfo) {
	switch req.Method {
	case http.MethodPost:
		var payload struct {
			InvitedUser string `json:"invited_user"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		inv, err := r.invitation.Invite(req.Context(), teamID, payload.InvitedUser, info.UserID)
		if err != nil {
			// A pending invitation for the pair is informational, not a fault.
			if domain.KindOf(err) == domain.KindAlreadyInvited {
				writeJSON(w, http.StatusConflict, map[string]any{
					"success":         false,
					"already_invited": true,
					"message":         err.Error(),
				})
				return
			}
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"success":    true,
			"id":         inv.ID,
			"invitation": invitationPayload(inv),
		})
	case http.MethodGet:
		invitations, err := r.invitation.ListForTeam(req.Context(), teamID, info.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		payload := make([]map[string]any, 0, len(invitations))
		for i := range invitations {
			payload = append(payload, invitationPayload(&invitations[i]))
		}
		writeJSON(w, http.StatusOK, payload)
	default:
		r.methodNotAllowed(w)
	}
}

// handleInvitations lists the caller's pending invitations.
func (r *Router) handleInvitations(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing for invitations", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	invitations, err := r.invitation.ListPendingForUser(req.Context(), info.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	payload := make([]map[string]any, 0, len(invitations))
	for i := range invitations {
		payload = append(payload, invitationPayload(&invitations[i]))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (r *Router) handleInvitationSubroutes(w http.ResponseWriter, req *http.Request) {
	trimmed := strings.TrimPrefix(req.URL.Path, "/invitations/")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 1 || parts[0] == "" {
		r.notFound(w)
		return
	}
	invitationID := parts[0]
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing for invitation subroute", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}

	if len(parts) == 2 && parts[1] == "respond" {
		r.handleInvitationRespond(w, req, invitationID, info)
		return
	}
	if len(parts) == 1 && req.Method == http.MethodDelete {
		if err := r.invitation.Cancel(req.Context(), invitationID, info.UserID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
		return
	}
	r.notFound(w)
}

func (r *Router) handleInvitationRespond(w http.ResponseWriter, req *http.Request, invitationID string, info authInfo) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Accept bool `json:"accept"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	inv, err := r.invitation.Respond(req.Context(), invitationID, info.UserID, payload.Accept)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"id":       inv.ID,
		"accepted": inv.Accepted,
	})
}

func invitationPayload(inv *domain.Invitation) map[string]any {
	payload := map[string]any{
		"id":              inv.ID,
		"team_id":         inv.TeamID,
		"invited_user_id": inv.InvitedUserID,
		"invited_by_id":   inv.InvitedByID,
		"sent_at":         inv.SentAt,
		"pending":         inv.Pending(),
	}
	if inv.RespondedAt != nil {
		payload["responded_at"] = inv.RespondedAt
		payload["accepted"] = inv.Accepted
	}
	return payload
}
