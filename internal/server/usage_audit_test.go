package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	connectiondomain "github.com/seology-ai/seology/internal/connection/domain"
)

func (f *serverFixture) get(t *testing.T, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func (f *serverFixture) postJSON(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func (f *serverFixture) seedSessionToken(t *testing.T, token string) {
	t.Helper()
	record := connectiondomain.SessionToken{
		ID:           888,
		ConnectionID: f.conn.ID,
		TokenHash:    connectiondomain.HashToken(token),
		IsActive:     true,
	}
	if err := f.db.Create(&record).Error; err != nil {
		t.Fatalf("insert session token: %v", err)
	}
}

func TestUsageRequiresSession(t *testing.T) {
	f := setupServerFixture(t)

	rec := f.get(t, "/api/usage", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if code := errorCode(t, rec); code != CodeUnauthorized {
		t.Fatalf("code = %s, want %s", code, CodeUnauthorized)
	}
}

func TestUsageReturnsPeriodAndLedger(t *testing.T) {
	f := setupServerFixture(t)
	f.seedSessionToken(t, "sess_usage")

	// One chat call so the ledger has a row.
	rec := f.postChat(t, `{"shop":"gadgets.myshopify.com","messages":[{"role":"user","content":"hi"}]}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("chat status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = f.get(t, "/api/usage", map[string]string{"Authorization": "Bearer sess_usage"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	envelope := decodeEnvelope(t, rec)
	data, _ := envelope["data"].(map[string]any)
	if data == nil {
		t.Fatalf("missing data in %s", rec.Body.String())
	}
	if plan, _ := data["plan"].(string); plan != "starter" {
		t.Fatalf("plan = %v, want starter", data["plan"])
	}

	period, _ := data["period"].(map[string]any)
	if period == nil {
		t.Fatalf("missing period in %s", rec.Body.String())
	}
	if used, _ := period["used"].(float64); used != 1 {
		t.Fatalf("period.used = %v, want 1", period["used"])
	}
	if limit, _ := period["limit"].(float64); limit != 100 {
		t.Fatalf("period.limit = %v, want 100", period["limit"])
	}
	if remaining, _ := period["remaining"].(float64); remaining != 99 {
		t.Fatalf("period.remaining = %v, want 99", period["remaining"])
	}

	recent, _ := data["recent"].([]any)
	if len(recent) != 1 {
		t.Fatalf("recent rows = %d, want 1", len(recent))
	}
}

func TestAuditListsChatEntries(t *testing.T) {
	f := setupServerFixture(t)
	f.seedSessionToken(t, "sess_audit")

	rec := f.postChat(t, `{"shop":"gadgets.myshopify.com","messages":[{"role":"user","content":"fix my seo"}]}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("chat status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = f.get(t, "/api/audit?action=chat+message", map[string]string{"Authorization": "Bearer sess_audit"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	envelope := decodeEnvelope(t, rec)
	data, _ := envelope["data"].(map[string]any)
	entries, _ := data["entries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
}

func TestHealthz(t *testing.T) {
	f := setupServerFixture(t)

	rec := f.get(t, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestTestCleanupRemovesPrefix(t *testing.T) {
	f := setupServerFixture(t)

	rec := f.postChat(t, `{"shop":"gadgets.myshopify.com","messages":[{"role":"user","content":"hi"}]}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("chat status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec2 := f.postJSON(t, "/api/test/cleanup", `{"prefix":"gadgets."}`)
	if rec2.Code != http.StatusOK {
		t.Fatalf("cleanup status = %d, body = %s", rec2.Code, rec2.Body.String())
	}

	var count int64
	if err := f.db.Table("connections").Count(&count).Error; err != nil {
		t.Fatalf("count connections: %v", err)
	}
	if count != 0 {
		t.Fatalf("connections = %d, want 0", count)
	}
	if err := f.db.Table("accounts").Count(&count).Error; err != nil {
		t.Fatalf("count accounts: %v", err)
	}
	if count != 0 {
		t.Fatalf("accounts = %d, want 0", count)
	}
	if err := f.db.Table("chat_events").Count(&count).Error; err != nil {
		t.Fatalf("count chat events: %v", err)
	}
	if count != 0 {
		t.Fatalf("chat events = %d, want 0", count)
	}
}
