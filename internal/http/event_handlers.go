package httpx

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/FTLPetrov/team-builder-sub000/internal/service/event"
)

func (r *Router) handleEventSubroutes(w http.ResponseWriter, req *http.Request) {
	eventID := strings.TrimPrefix(req.URL.Path, "/events/")
	if eventID == "" || strings.Contains(eventID, "/") {
		r.notFound(w)
		return
	}
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing for event subroute", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	switch req.Method {
	case http.MethodPut:
		var payload event.CreateInput
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		updated, err := r.event.Update(req.Context(), eventID, info.UserID, payload)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := r.event.Delete(req.Context(), eventID, info.UserID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	default:
		r.methodNotAllowed(w)
	}
}
