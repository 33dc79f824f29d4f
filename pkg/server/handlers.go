package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"daybook-hq/daybook/pkg/auth"
	"daybook-hq/daybook/pkg/period"
	"daybook-hq/daybook/pkg/reflection"
	"daybook-hq/daybook/pkg/store"
)

// maxEntryBytes bounds a single journal entry's content.
const maxEntryBytes = 10000

type entryPayload struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Day       string    `json:"day"`
	CreatedAt time.Time `json:"created_at"`
}

type reflectionPayload struct {
	ID          string            `json:"id"`
	WeekStart   string            `json:"week_start"`
	Summary     string            `json:"summary"`
	Highlights  []string          `json:"highlights"`
	Mood        *store.MoodRollup `json:"mood,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
}

func toEntryPayload(e store.Entry) entryPayload {
	return entryPayload{ID: e.ID, Content: e.Content, Day: e.Day, CreatedAt: e.CreatedAt}
}

func toReflectionPayload(r *store.Reflection) reflectionPayload {
	return reflectionPayload{
		ID:          r.ID,
		WeekStart:   r.WeekStart,
		Summary:     r.Summary,
		Highlights:  r.Highlights,
		Mood:        r.Mood,
		GeneratedAt: r.GeneratedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}

// handleCreateEntry writes today's journal entry. The store's daily
// uniqueness constraint enforces one entry per UTC day.
func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEntryBytes*2)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Request body must be JSON with a content field.")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "Entry content must not be empty.")
		return
	}
	if len(req.Content) > maxEntryBytes {
		writeError(w, http.StatusBadRequest, "too_large", "Entry content exceeds the size limit.")
		return
	}

	now := time.Now().UTC()
	entry := &store.Entry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   req.Content,
		Day:       period.DayKey(now),
		CreatedAt: now,
	}

	if err := s.deps.Store.InsertEntry(r.Context(), entry); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "daily_limit", "You already wrote an entry today.")
			return
		}
		s.deps.Logger.ErrorContext(r.Context(), "entry insert failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage", "Could not save the entry.")
		return
	}

	writeJSON(w, http.StatusCreated, toEntryPayload(*entry))
}

// handleListEntries lists the user's entries in a time range, defaulting to
// the current week.
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	now := time.Now().UTC()

	from := period.WeekStart(now)
	to := period.WeekEnd(now)
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "from must be a 2006-01-02 date.")
			return
		}
		from = t.UTC()
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "to must be a 2006-01-02 date.")
			return
		}
		to = t.UTC()
	}

	entries, err := s.deps.Store.EntriesBetween(r.Context(), userID, from, to)
	if err != nil {
		s.deps.Logger.ErrorContext(r.Context(), "entry list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage", "Could not load entries.")
		return
	}

	payload := make([]entryPayload, len(entries))
	for i, e := range entries {
		payload[i] = toEntryPayload(e)
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": payload})
}

// handleWeekly triggers the weekly reflection job and maps its outcome to an
// HTTP response.
func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	out := s.deps.Coordinator.Run(r.Context(), userID)
	switch out.Status {
	case reflection.StatusCached, reflection.StatusExecuted:
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     string(out.Status),
			"reflection": toReflectionPayload(out.Reflection),
		})

	case reflection.StatusDenied:
		switch out.Reason {
		case reflection.ReasonNoData:
			writeError(w, http.StatusConflict, "no_data", "No entries this week to reflect on.")
		default:
			retryAfter := int(out.RetryAfter.Seconds())
			if retryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			}
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":               string(out.Reason),
				"message":             "Weekly reflection is not available right now.",
				"retry_after_seconds": retryAfter,
			})
		}

	default:
		if out.Reason == reflection.ReasonUpstream {
			writeError(w, http.StatusBadGateway, "upstream", "Reflection generation failed. Try again later.")
			return
		}
		writeError(w, http.StatusInternalServerError, "storage", "Could not save the reflection.")
	}
}

// handleListReflections lists the user's reflections, newest week first.
func (s *Server) handleListReflections(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	reflections, err := s.deps.Store.Reflections(r.Context(), userID)
	if err != nil {
		s.deps.Logger.ErrorContext(r.Context(), "reflection list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage", "Could not load reflections.")
		return
	}

	payload := make([]reflectionPayload, len(reflections))
	for i := range reflections {
		payload[i] = toReflectionPayload(&reflections[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"reflections": payload})
}

// handleHealthz is the liveness probe.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz is the readiness probe: a cheap store round trip.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	if _, err := s.deps.Store.ActiveUsers(r.Context(), now, now); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_ready", "Store is unavailable.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
