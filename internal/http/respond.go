package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/FTLPetrov/team-builder-sub000/internal/domain"
)

// writeJSON writes JSON response with status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError sends an error message.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps a service failure to an HTTP status by its kind.
// Conflict kinds are expected outcomes the client branches on, so the kind is
// included in the body; unclassified errors surface as retryable.
func writeServiceError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	msg := err.Error()
	if kind == domain.KindInfrastructure {
		msg = "temporary failure, please retry"
	}
	writeJSON(w, statusForKind(kind), map[string]string{
		"error": msg,
		"kind":  string(kind),
	})
}

func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound, domain.KindNotMember:
		return http.StatusNotFound
	case domain.KindNotAuthorized:
		return http.StatusForbidden
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAlreadyMember, domain.KindAlreadyInvited, domain.KindAlreadyResponded,
		domain.KindTeamClosed, domain.KindOrganizerCannotLeave:
		return http.StatusConflict
	case domain.KindInfrastructure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
