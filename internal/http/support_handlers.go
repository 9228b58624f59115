package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/FTLPetrov/team-builder-sub000/internal/domain"
)

func (r *Router) handleSupport(w http.ResponseWriter, req *http.Request) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing for support", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	switch req.Method {
	case http.MethodPost:
		var payload struct {
			Subject string `json:"subject"`
			Body    string `json:"body"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		ticket, err := r.support.Create(req.Context(), info.UserID, payload.Subject, payload.Body)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, ticketPayload(ticket))
	case http.MethodGet:
		tickets, err := r.support.ListForUser(req.Context(), info.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		payload := make([]map[string]any, 0, len(tickets))
		for i := range tickets {
			payload = append(payload, ticketPayload(&tickets[i]))
		}
		writeJSON(w, http.StatusOK, payload)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleAnnouncements(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	announcements, err := r.admin.Announcements(req.Context(), 0)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	payload := make([]map[string]any, 0, len(announcements))
	for _, a := range announcements {
		payload = append(payload, map[string]any{
			"id":         a.ID,
			"title":      a.Title,
			"body":       a.Body,
			"created_at": a.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

func ticketPayload(t *domain.SupportTicket) map[string]any {
	payload := map[string]any{
		"id":         t.ID,
		"user_id":    t.UserID,
		"subject":    t.Subject,
		"body":       t.Body,
		"status":     t.Status,
		"created_at": t.CreatedAt,
	}
	if t.RespondedAt != nil {
		payload["response"] = t.Response
		payload["responded_at"] = t.RespondedAt
	}
	return payload
}
