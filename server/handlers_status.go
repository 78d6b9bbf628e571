package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// HandleStatus reports process uptime and table counts for dashboards.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var questions, players int
	if err := h.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM quiz_questions").Scan(&questions); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := h.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM currency").Scan(&players); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"quiz_questions": questions,
		"known_players":  players,
	}); err != nil {
		slog.Warn("failed to encode JSON response", slog.Any("err", err))
	}
}

// HandleLeaderboard returns the top currency balances.
func (h *Handlers) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := parseLimit(v); err == nil {
			limit = n
		}
	}

	rows, err := h.db.QueryContext(r.Context(),
		"SELECT COALESCE(display_name, username), balance FROM currency ORDER BY balance DESC, username ASC LIMIT $1", limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	type entry struct {
		Name    string `json:"name"`
		Balance int    `json:"balance"`
	}
	out := make([]entry, 0, limit)
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.Name, &e.Balance); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"leaderboard": out}); err != nil {
		slog.Warn("failed to encode JSON response", slog.Any("err", err))
	}
}
