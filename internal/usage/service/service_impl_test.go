package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/seology-ai/seology/internal/account/domain"
	auditdomain "github.com/seology-ai/seology/internal/audit/domain"
	auditrepository "github.com/seology-ai/seology/internal/audit/repository"
	"github.com/seology-ai/seology/internal/clock"
	connectiondomain "github.com/seology-ai/seology/internal/connection/domain"
	usagedomain "github.com/seology-ai/seology/internal/usage/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUsageTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&usagedomain.CreditUsage{},
		&usagedomain.LedgerEntry{},
		&auditdomain.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newUsageService(t *testing.T, db *gorm.DB, at time.Time) *Service {
	t.Helper()
	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return NewService(ServiceParam{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     clock.FixedClock{At: at},
		AuditRepo: auditrepository.Provide(),
	})
}

func testAccount(plan accountdomain.Plan) *accountdomain.Account {
	return &accountdomain.Account{ID: 11, Email: "merchant@example.com", Plan: plan}
}

func testConnection() *connectiondomain.Connection {
	return &connectiondomain.Connection{ID: 22, AccountID: 11, ShopDomain: "demo.myshopify.com"}
}

func TestCurrentPeriodSeedsFromPlanTier(t *testing.T) {
	db := setupUsageTestDB(t)
	at := time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC)
	svc := newUsageService(t, db, at)

	period, err := svc.CurrentPeriod(context.Background(), testAccount(accountdomain.PlanGrowth))
	if err != nil {
		t.Fatalf("current period: %v", err)
	}
	if period.CreditLimit != 500 || period.SiteLimit != 3 || period.FixLimit != 200 {
		t.Fatalf("expected growth tier limits, got %+v", period)
	}
	if !period.PeriodStart.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected month start, got %v", period.PeriodStart)
	}
	if period.CreditsUsed != 0 {
		t.Fatalf("expected fresh period, got %d used", period.CreditsUsed)
	}

	// A second call returns the same row, not a duplicate.
	again, err := svc.CurrentPeriod(context.Background(), testAccount(accountdomain.PlanGrowth))
	if err != nil {
		t.Fatalf("current period again: %v", err)
	}
	if again.ID != period.ID {
		t.Fatalf("expected idempotent period row, got %v and %v", period.ID, again.ID)
	}
}

func TestRecordIncrementsCreditsByOneNotTokens(t *testing.T) {
	db := setupUsageTestDB(t)
	at := time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC)
	svc := newUsageService(t, db, at)
	account := testAccount(accountdomain.PlanStarter)

	receipt, err := svc.Record(context.Background(), RecordParams{
		Account:      account,
		Connection:   testConnection(),
		Model:        "claude-sonnet-4-20250514",
		InputTokens:  12345,
		OutputTokens: 678,
		UserMessage:  "analyze my products",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if receipt.Used != 1 {
		t.Fatalf("expected 1 credit used regardless of tokens, got %d", receipt.Used)
	}
	if receipt.Remaining != 99 {
		t.Fatalf("expected 99 remaining, got %d", receipt.Remaining)
	}

	var period usagedomain.CreditUsage
	if err := db.First(&period).Error; err != nil {
		t.Fatalf("load period: %v", err)
	}
	if period.CreditsUsed != 1 {
		t.Fatalf("expected persisted credits_used 1, got %d", period.CreditsUsed)
	}
}

func TestRecordWritesLedgerWithDerivedCost(t *testing.T) {
	db := setupUsageTestDB(t)
	svc := newUsageService(t, db, time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC))

	_, err := svc.Record(context.Background(), RecordParams{
		Account:      testAccount(accountdomain.PlanPro),
		Connection:   testConnection(),
		Model:        "claude-sonnet-4-20250514",
		InputTokens:  1_000_000,
		OutputTokens: 1_000_000,
		UserMessage:  "report",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	var entry usagedomain.LedgerEntry
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	// 1M input at $3/M plus 1M output at $15/M.
	if entry.CostUSD < 17.99 || entry.CostUSD > 18.01 {
		t.Fatalf("expected cost ~18 USD, got %f", entry.CostUSD)
	}
}

func TestRecordAppendsAuditWithRemainingCredits(t *testing.T) {
	db := setupUsageTestDB(t)
	svc := newUsageService(t, db, time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC))
	account := testAccount(accountdomain.PlanStarter)

	// Consume three credits, then check the last audit row's arithmetic:
	// remaining must equal limit - (used_before + 1).
	for i := 0; i < 3; i++ {
		if _, err := svc.Record(context.Background(), RecordParams{
			Account:     account,
			Connection:  testConnection(),
			Model:       "claude-sonnet-4-20250514",
			UserMessage: "fix my meta descriptions",
		}); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	var entries []auditdomain.AuditLog
	if err := db.Order("created_at ASC").Find(&entries).Error; err != nil {
		t.Fatalf("load audit: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 audit rows, got %d", len(entries))
	}
	last := entries[len(entries)-1]
	if last.Action != auditdomain.ActionChatMessage {
		t.Fatalf("expected chat message action, got %q", last.Action)
	}
	remaining, ok := last.Metadata["remaining_credits"]
	if !ok {
		t.Fatalf("expected remaining_credits in metadata, got %v", last.Metadata)
	}
	// 100 - (2 + 1) = 97; sqlite round-trips jsonb numbers as float64.
	if asInt64(t, remaining) != 97 {
		t.Fatalf("expected 97 remaining, got %v", remaining)
	}
	if last.Metadata["message"] != "fix my meta descriptions" {
		t.Fatalf("expected message copy in metadata, got %v", last.Metadata["message"])
	}
}

func TestRecordTruncatesAuditMessage(t *testing.T) {
	db := setupUsageTestDB(t)
	svc := newUsageService(t, db, time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC))

	long := make([]byte, auditMessageCap+100)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := svc.Record(context.Background(), RecordParams{
		Account:     testAccount(accountdomain.PlanStarter),
		Connection:  testConnection(),
		Model:       "claude-sonnet-4-20250514",
		UserMessage: string(long),
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	var entry auditdomain.AuditLog
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("load audit: %v", err)
	}
	message, _ := entry.Metadata["message"].(string)
	if len(message) != auditMessageCap {
		t.Fatalf("expected truncated message of %d bytes, got %d", auditMessageCap, len(message))
	}
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	long := strings.Repeat("€", 200) // 3 bytes per rune, 600 bytes total
	got := truncate(long, auditMessageCap)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated message is not valid UTF-8: %q", got)
	}
	if len(got) != 498 {
		t.Fatalf("truncated length = %d, want 498 (last whole rune under the cap)", len(got))
	}
	if truncate("short", auditMessageCap) != "short" {
		t.Fatal("strings under the cap must pass through unchanged")
	}
}

func asInt64(t *testing.T, value any) int64 {
	t.Helper()
	switch typed := value.(type) {
	case int64:
		return typed
	case float64:
		return int64(typed)
	case int:
		return int64(typed)
	case json.Number:
		parsed, err := typed.Int64()
		if err != nil {
			t.Fatalf("parse json.Number %q: %v", typed, err)
		}
		return parsed
	default:
		t.Fatalf("unexpected numeric type %T", value)
		return 0
	}
}
