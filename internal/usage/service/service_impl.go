// Package service implements credit accounting and completion usage recording.
package service

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/seology-ai/seology/internal/account/domain"
	auditdomain "github.com/seology-ai/seology/internal/audit/domain"
	"github.com/seology-ai/seology/internal/auditcontext"
	"github.com/seology-ai/seology/internal/clock"
	connectiondomain "github.com/seology-ai/seology/internal/connection/domain"
	"github.com/seology-ai/seology/internal/events"
	usagedomain "github.com/seology-ai/seology/internal/usage/domain"
	"github.com/seology-ai/seology/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const auditMessageCap = 500

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	AuditRepo auditdomain.Repository
	Outbox    *events.Outbox `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID      *snowflake.Node
	clock      clock.Clock
	auditrepo  auditdomain.Repository
	outbox     *events.Outbox
	ledgerrepo repository.Repository[usagedomain.LedgerEntry]
}

func NewService(p ServiceParam) *Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("usage.service"),

		genID:      p.GenID,
		clock:      p.Clock,
		auditrepo:  p.AuditRepo,
		outbox:     p.Outbox,
		ledgerrepo: repository.ProvideStore[usagedomain.LedgerEntry](p.DB),
	}
}

// CurrentPeriod returns the account's usage row for the current calendar
// month, creating it seeded from the plan tier defaults when absent.
func (s *Service) CurrentPeriod(ctx context.Context, account *accountdomain.Account) (*usagedomain.CreditUsage, error) {
	if account == nil || account.ID == 0 {
		return nil, usagedomain.ErrInvalidAccount
	}

	periodStart, periodEnd := currentPeriod(s.clock.Now())

	var row usagedomain.CreditUsage
	err := s.db.WithContext(ctx).
		Where("account_id = ? AND period_start = ?", account.ID, periodStart).
		First(&row).Error
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	limits := accountdomain.LimitsFor(account.Plan)
	row = usagedomain.CreditUsage{
		ID:          s.genID.Generate(),
		AccountID:   account.ID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		CreditLimit: limits.Credits,
		SiteLimit:   limits.Sites,
		FixLimit:    limits.Fixes,
		CreatedAt:   s.clock.Now(),
		UpdatedAt:   s.clock.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// RecordParams captures one successful completion to account for.
type RecordParams struct {
	Account      *accountdomain.Account
	Connection   *connectiondomain.Connection
	Model        string
	InputTokens  int64
	OutputTokens int64
	// UserMessage is the merchant's message; a truncated copy lands in the
	// audit metadata.
	UserMessage string
}

// Receipt summarizes the account's credit position after recording.
type Receipt struct {
	Used      int64   `json:"used"`
	Limit     int64   `json:"limit"`
	Remaining int64   `json:"remaining"`
	CostUSD   float64 `json:"-"`
}

// Record persists the write-once ledger row, increments the period's credit
// counter by exactly one, and appends the audit trail entry plus an outbox
// event. Credits are message-denominated: token counts affect only the
// ledger's cost column.
func (s *Service) Record(ctx context.Context, params RecordParams) (*Receipt, error) {
	if params.Account == nil || params.Connection == nil {
		return nil, usagedomain.ErrInvalidAccount
	}

	period, err := s.CurrentPeriod(ctx, params.Account)
	if err != nil {
		return nil, err
	}

	cost := usagedomain.Cost(params.Model, params.InputTokens, params.OutputTokens)
	now := s.clock.Now()

	entry := &usagedomain.LedgerEntry{
		ID:           s.genID.Generate(),
		AccountID:    params.Account.ID,
		ConnectionID: params.Connection.ID,
		Model:        params.Model,
		InputTokens:  params.InputTokens,
		OutputTokens: params.OutputTokens,
		CostUSD:      cost,
		CreatedAt:    now,
	}
	if err := s.ledgerrepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Model(&usagedomain.CreditUsage{}).
		Where("id = ?", period.ID).
		Updates(map[string]any{
			"credits_used": gorm.Expr("credits_used + 1"),
			"updated_at":   now,
		}).Error; err != nil {
		return nil, err
	}

	receipt := &Receipt{
		Used:      period.CreditsUsed + 1,
		Limit:     period.CreditLimit,
		Remaining: maxInt64(period.CreditLimit-period.CreditsUsed-1, 0),
		CostUSD:   cost,
	}

	s.appendAudit(ctx, params, entry, receipt)
	s.publishEvent(ctx, params, entry)

	return receipt, nil
}

// RecentLedger returns the newest ledger rows for an account.
func (s *Service) RecentLedger(ctx context.Context, accountID snowflake.ID, limit int) ([]*usagedomain.LedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.ledgerrepo.Find(ctx,
		&usagedomain.LedgerEntry{AccountID: accountID},
		repository.WithOrder("created_at DESC"),
		repository.WithLimit(limit),
	)
}

// Audit and outbox writes are best-effort: the chat answer has already been
// produced, so a failure here is logged and not surfaced.
func (s *Service) appendAudit(ctx context.Context, params RecordParams, entry *usagedomain.LedgerEntry, receipt *Receipt) {
	accountID := params.Account.ID
	targetID := params.Connection.ID.String()
	actorType, actorID := auditcontext.ActorFromContext(ctx)
	if actorType == "" {
		actorType = string(auditdomain.ActorTypeMerchant)
	}

	metadata := datatypes.JSONMap{
		"message":           truncate(params.UserMessage, auditMessageCap),
		"remaining_credits": receipt.Remaining,
		"model":             entry.Model,
		"cost_usd":          entry.CostUSD,
	}

	auditEntry := &auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		AccountID:  &accountID,
		ActorType:  actorType,
		Action:     auditdomain.ActionChatMessage,
		TargetType: "connection",
		TargetID:   &targetID,
		Metadata:   metadata,
		CreatedAt:  s.clock.Now(),
	}
	if actorID != "" {
		auditEntry.ActorID = &actorID
	}
	if ip := auditcontext.IPAddressFromContext(ctx); ip != "" {
		auditEntry.IPAddress = &ip
	}
	if ua := auditcontext.UserAgentFromContext(ctx); ua != "" {
		auditEntry.UserAgent = &ua
	}

	if err := s.auditrepo.Insert(ctx, s.db, auditEntry); err != nil {
		s.log.Warn("audit append failed", zap.Error(err))
	}
}

func (s *Service) publishEvent(ctx context.Context, params RecordParams, entry *usagedomain.LedgerEntry) {
	if s.outbox == nil {
		return
	}
	payload := map[string]any{
		"connection_id": params.Connection.ID.String(),
		"model":         entry.Model,
		"input_tokens":  entry.InputTokens,
		"output_tokens": entry.OutputTokens,
	}
	err := s.outbox.Publish(ctx, events.Event{
		AccountID: params.Account.ID,
		Type:      events.TypeChatMessageCompleted,
		Payload:   payload,
		DedupeKey: entry.ID.String(),
	})
	if err != nil {
		s.log.Warn("chat event publish failed", zap.Error(err))
	}
}

func currentPeriod(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// truncate caps value at max bytes without splitting a UTF-8 rune.
func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	for max > 0 && !utf8.RuneStart(value[max]) {
		max--
	}
	return value[:max]
}

func maxInt64(value, min int64) int64 {
	if value < min {
		return min
	}
	return value
}
