package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/FTLPetrov/team-builder-sub000/internal/ws"
)

// handleTeamChat covers GET (history) and POST (send) under /teams/{id}/chat.
func (r *Router) handleTeamChat(w http.ResponseWriter, req *http.Request, teamID string, info authInfo) {
	switch req.Method {
	case http.MethodGet:
		limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(req.URL.Query().Get("offset"))
		messages, err := r.chat.History(req.Context(), teamID, info.UserID, limit, offset)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		payload := make([]map[string]any, 0, len(messages))
		for _, m := range messages {
			payload = append(payload, map[string]any{
				"id":         m.ID,
				"team_id":    m.TeamID,
				"user_id":    m.UserID,
				"body":       m.Body,
				"created_at": m.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, payload)
	case http.MethodPost:
		var payload struct {
			Body string `json:"body"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		msg, err := r.chat.Post(req.Context(), teamID, info.UserID, payload.Body)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":         msg.ID,
			"team_id":    msg.TeamID,
			"user_id":    msg.UserID,
			"body":       msg.Body,
			"created_at": msg.CreatedAt,
		})
	default:
		r.methodNotAllowed(w)
	}
}

// handleChatWS upgrades the connection and subscribes it to the team's room.
func (r *Router) handleChatWS(w http.ResponseWriter, req *http.Request) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing for chat websocket", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	teamID := req.URL.Query().Get("team_id")
	if teamID == "" {
		writeError(w, http.StatusBadRequest, "team_id query parameter required")
		return
	}
	if err := r.chat.Authorize(req.Context(), teamID, info.UserID); err != nil {
		writeServiceError(w, err)
		return
	}
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	client := ws.NewClient(conn, r.logger)
	r.chat.Hub().Register(teamID, client)
	go func() {
		defer func() {
			r.chat.Hub().Unregister(teamID, client)
			client.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// handleChatSSE streams the team's room over Server-Sent Events for clients
// that cannot speak websocket.
func (r *Router) handleChatSSE(w http.ResponseWriter, req *http.Request) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing for chat sse", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	teamID := req.URL.Query().Get("team_id")
	if teamID == "" {
		writeError(w, http.StatusBadRequest, "team_id query parameter required")
		return
	}
	if err := r.chat.Authorize(req.Context(), teamID, info.UserID); err != nil {
		writeServiceError(w, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	client := ws.NewSSEClient(w, flusher, r.logger)
	r.chat.Hub().Register(teamID, client)
	defer func() {
		r.chat.Hub().Unregister(teamID, client)
		client.Close()
	}()

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()
	for {
		select {
		case <-req.Context().Done():
			return
		case <-heartbeat.C:
			if err := client.Heartbeat(); err != nil {
				return
			}
		}
	}
}
