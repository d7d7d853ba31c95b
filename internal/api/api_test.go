package api

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/lifequran/lifequran/internal/app/gamification"
	"github.com/lifequran/lifequran/internal/domain"
	"github.com/lifequran/lifequran/internal/health"
	"github.com/lifequran/lifequran/internal/infra/sqlite"
)

func newTestServer(t *testing.T) (*Server, *sqlite.DB) {
	t.Helper()
	dir := t.TempDir()

	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("Open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	e := gamification.New(db, gamification.Options{
		Location: time.UTC,
		Clock:    func() time.Time { return now },
		Rand:     rand.New(rand.NewSource(1)),
	})
	if err := e.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	srv := NewServer(e, nil)
	srv.EnableMetrics()
	checker := health.NewChecker(db, dir, nil)
	checker.RunOnce(context.Background())
	srv.SetHealthChecker(checker)
	return srv, db
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

// ═══════════════════════════════════════════════════════════════════════════
// API Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestAPI_Health(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv.Handler(), "GET", "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decode[map[string]any](t, w)
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if _, ok := resp["checks"]; !ok {
		t.Error("expected check statuses in health response")
	}
}

func TestAPI_HealthStoreClosed(t *testing.T) {
	srv, db := newTestServer(t)
	db.Close()

	w := do(t, srv.Handler(), "GET", "/health", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestAPI_Version(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv.Handler(), "GET", "/api/version", "")
	if resp := decode[map[string]string](t, w); resp["version"] != Version {
		t.Errorf("version = %q, want %q", resp["version"], Version)
	}
}

func TestAPI_Reading(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv.Handler(), "POST", "/api/reading", `{"pages": 3}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decode[activityResponse](t, w)
	if len(resp.Rewards) == 0 || resp.Rewards[0].Source != domain.XPReading || resp.Rewards[0].Amount != 30 {
		t.Errorf("unexpected rewards: %+v", resp.Rewards)
	}
	if resp.XPEarned != resp.TotalXP {
		t.Errorf("xp_earned %d != total_xp %d on first activity", resp.XPEarned, resp.TotalXP)
	}
	if resp.LevelInfo.Level != 1 {
		t.Errorf("level = %d, want 1", resp.LevelInfo.Level)
	}
	if resp.Streak == nil || resp.Streak.CurrentStreak != 1 {
		t.Errorf("expected streak 1, got %+v", resp.Streak)
	}
}

func TestAPI_ValidationErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	tests := []struct {
		method, path, body string
	}{
		{"POST", "/api/reading", `{"pages": 0}`},
		{"POST", "/api/reading", `not json`},
		{"POST", "/api/audio", `{"surah_id": 115}`},
		{"POST", "/api/minutes", `{"minutes": -1}`},
		{"PUT", "/api/target", `{"pages": 605}`},
		{"GET", "/api/xp/history?limit=abc", ""},
		{"POST", "/api/notifications/abc/shown", ""},
	}
	for _, tt := range tests {
		w := do(t, h, tt.method, tt.path, tt.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s %s %s: status = %d, want 400", tt.method, tt.path, tt.body, w.Code)
		}
	}
}

func TestAPI_NotificationNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv.Handler(), "POST", "/api/notifications/999/shown", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestAPI_NotificationFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	do(t, h, "POST", "/api/reading", `{"pages": 1}`)

	w := do(t, h, "GET", "/api/notifications", "")
	notifs := decode[[]domain.Notification](t, w)
	if len(notifs) == 0 {
		t.Fatal("expected a pending notification after the first badge")
	}

	w = do(t, h, "POST", "/api/notifications/"+strconv.FormatInt(notifs[0].ID, 10)+"/shown", "")
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	w = do(t, h, "GET", "/api/notifications", "")
	if after := decode[[]domain.Notification](t, w); len(after) != len(notifs)-1 {
		t.Errorf("pending = %d, want %d", len(after), len(notifs)-1)
	}
}

func TestAPI_Reads(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	do(t, h, "POST", "/api/audio", `{"surah_id": 1}`)

	for _, path := range []string{
		"/api/stats", "/api/level", "/api/streak", "/api/streak/history",
		"/api/challenge", "/api/badges", "/api/summary", "/api/xp/history?limit=5",
	} {
		w := do(t, h, "GET", path, "")
		if w.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d, body = %s", path, w.Code, w.Body.String())
		}
	}

	badges := decode[[]domain.Badge](t, do(t, h, "GET", "/api/badges", ""))
	if len(badges) != 12 {
		t.Errorf("badges = %d, want 12", len(badges))
	}
	txs := decode[[]domain.XPTransaction](t, do(t, h, "GET", "/api/xp/history", ""))
	if len(txs) == 0 || txs[0].ActivityID == "" {
		t.Errorf("expected ledger rows with activity ids, got %+v", txs)
	}
}

func TestAPI_Target(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := do(t, h, "PUT", "/api/target", `{"pages": 5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	stats := decode[domain.UserStats](t, do(t, h, "GET", "/api/stats", ""))
	if stats.DailyTargetPages != 5 {
		t.Errorf("daily target = %d, want 5", stats.DailyTargetPages)
	}
}

func TestAPI_Metrics(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	do(t, h, "POST", "/api/reading", `{"pages": 1}`)

	w := do(t, h, "GET", "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "lifequran_xp_awarded_total") {
		t.Error("expected xp metric in exposition")
	}
}

func withOrigin(method, path, origin, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Origin", origin)
	return req
}

func TestAPI_CORS(t *testing.T) {
	srv, _ := newTestServer(t)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, withOrigin("OPTIONS", "/api/summary", "http://localhost:5173", ""))

	if w.Code != http.StatusNoContent {
		t.Errorf("OPTIONS status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("CORS origin = %q, want http://localhost:5173", got)
	}
}

func TestAPI_CORSRejectsForeignOrigin(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	// A plain-text POST needs no preflight, so the server itself must refuse it.
	w := httptest.NewRecorder()
	h.ServeHTTP(w, withOrigin("POST", "/api/reading", "https://evil.example", `{"pages":50}`))
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign POST status = %d, want 403", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin got CORS header %q", got)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, withOrigin("OPTIONS", "/api/target", "http://localhost.evil.example", ""))
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign preflight status = %d, want 403", w.Code)
	}

	stats := decode[domain.UserStats](t, do(t, h, "GET", "/api/stats", ""))
	if stats.TotalPagesRead != 0 || stats.TotalXP != 0 {
		t.Errorf("foreign request changed stats: %+v", stats)
	}

	// Same request without an Origin header (CLI or curl) still works.
	if w := do(t, h, "POST", "/api/reading", `{"pages":1}`); w.Code != http.StatusOK {
		t.Errorf("local POST status = %d, want 200", w.Code)
	}
}
