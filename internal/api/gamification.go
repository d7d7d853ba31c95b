package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lifequran/lifequran/internal/app/gamification"
	"github.com/lifequran/lifequran/internal/domain"
)

// defaultListLimit caps history and feed listings when no limit is given.
const defaultListLimit = 50

// ─── Request Types ──────────────────────────────────────────────────────────

type readingRequest struct {
	Pages int `json:"pages"`
}

type audioRequest struct {
	SurahID int `json:"surah_id"`
}

type minutesRequest struct {
	Minutes int `json:"minutes"`
}

type targetRequest struct {
	Pages int `json:"pages"`
}

// activityResponse wraps an ActivityReport with the level projection.
type activityResponse struct {
	domain.ActivityReport
	XPEarned  int64            `json:"xp_earned"`
	LevelInfo domain.LevelInfo `json:"level_info"`
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	return n, nil
}

// ─── Health ─────────────────────────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	resp := map[string]any{"status": "ok"}
	if s.checker != nil {
		resp["checks"] = s.checker.Statuses()
		if !s.checker.IsHealthy() {
			resp["status"] = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ─── Activities ─────────────────────────────────────────────────────────────

func (s *Server) writeReport(w http.ResponseWriter, rep domain.ActivityReport) {
	writeJSON(w, http.StatusOK, activityResponse{
		ActivityReport: rep,
		XPEarned:       rep.XPEarned(),
		LevelInfo:      gamification.GetLevelInfo(rep.TotalXP),
	})
}

func (s *Server) handleReading(w http.ResponseWriter, r *http.Request) {
	var req readingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rep, err := s.engine.ProcessReadingActivity(r.Context(), req.Pages)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeReport(w, rep)
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	var req audioRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rep, err := s.engine.ProcessAudioCompletion(r.Context(), req.SurahID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeReport(w, rep)
}

func (s *Server) handleMinutes(w http.ResponseWriter, r *http.Request) {
	var req minutesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rep, err := s.engine.RecordReadingMinutes(r.Context(), req.Minutes)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeReport(w, rep)
}

func (s *Server) handleTarget(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.engine.SetDailyTarget(r.Context(), req.Pages); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"daily_target_pages": req.Pages})
}

// ─── Reads ──────────────────────────────────────────────────────────────────

// respond writes v or maps err.
func respond[T any](s *Server, w http.ResponseWriter, r *http.Request, v T, err error) {
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.Stats(r.Context())
	respond(s, w, r, stats, err)
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	info, err := s.engine.LevelInfo(r.Context())
	respond(s, w, r, info, err)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	status, err := s.engine.StreakStatus(r.Context())
	respond(s, w, r, status, err)
}

func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	c, err := s.engine.TodayChallenge(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"challenge":    c,
		"progress_pct": c.ProgressPct(),
	})
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := s.engine.Badges(r.Context())
	respond(s, w, r, badges, err)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.engine.Summary(r.Context())
	respond(s, w, r, sum, err)
}

func (s *Server) handleXPHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	txs, err := s.engine.XPHistory(r.Context(), limit)
	respond(s, w, r, txs, err)
}

func (s *Server) handleStreakHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hist, err := s.engine.StreakHistory(r.Context(), limit)
	respond(s, w, r, hist, err)
}

// ─── Notifications ──────────────────────────────────────────────────────────

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	notifs, err := s.engine.PendingNotifications(r.Context(), limit)
	respond(s, w, r, notifs, err)
}

func (s *Server) handleNotificationShown(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	if err := s.engine.MarkNotificationShown(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
