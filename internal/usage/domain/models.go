// Package domain contains credit accounting and token ledger models.
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInsufficientCredits = errors.New("insufficient_credits")
	ErrInvalidAccount      = errors.New("invalid_account")
)

// CreditUsage is the per-account billing-period consumption row. One chat
// message consumes exactly one credit, independent of token count.
type CreditUsage struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	AccountID   snowflake.ID `gorm:"not null;uniqueIndex:ux_credit_usages_account_period,priority:1" json:"account_id"`
	PeriodStart time.Time    `gorm:"not null;uniqueIndex:ux_credit_usages_account_period,priority:2" json:"period_start"`
	PeriodEnd   time.Time    `gorm:"not null" json:"period_end"`
	CreditsUsed int64        `gorm:"not null;default:0" json:"credits_used"`
	CreditLimit int64        `gorm:"not null" json:"credit_limit"`
	SiteLimit   int64        `gorm:"not null" json:"site_limit"`
	FixLimit    int64        `gorm:"not null" json:"fix_limit"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (CreditUsage) TableName() string { return "credit_usages" }

// Remaining returns the credits left in the period, never negative.
func (u CreditUsage) Remaining() int64 {
	remaining := u.CreditLimit - u.CreditsUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Exhausted reports whether the period's credit budget is spent.
func (u CreditUsage) Exhausted() bool {
	return u.CreditsUsed >= u.CreditLimit
}

// LedgerEntry is the write-once token cost record for one completion call.
type LedgerEntry struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	AccountID    snowflake.ID `gorm:"not null;index" json:"account_id"`
	ConnectionID snowflake.ID `gorm:"not null" json:"connection_id"`
	Model        string       `gorm:"type:text;not null" json:"model"`
	InputTokens  int64        `gorm:"not null;default:0" json:"input_tokens"`
	OutputTokens int64        `gorm:"not null;default:0" json:"output_tokens"`
	CostUSD      float64      `gorm:"type:numeric(12,6);not null;default:0" json:"cost_usd"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (LedgerEntry) TableName() string { return "usage_ledger" }

// ModelRate prices a model in USD per million tokens.
type ModelRate struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

var modelRates = map[string]ModelRate{
	"claude-opus":   {InputPerMillion: 15, OutputPerMillion: 75},
	"claude-sonnet": {InputPerMillion: 3, OutputPerMillion: 15},
	"claude-haiku":  {InputPerMillion: 0.8, OutputPerMillion: 4},
}

// RateFor resolves the rate table entry by model family prefix, defaulting to
// sonnet pricing for unknown models.
func RateFor(model string) ModelRate {
	model = strings.ToLower(strings.TrimSpace(model))
	for prefix, rate := range modelRates {
		if strings.HasPrefix(model, prefix) {
			return rate
		}
	}
	return modelRates["claude-sonnet"]
}

// Cost computes the USD cost of a completion call.
func Cost(model string, inputTokens, outputTokens int64) float64 {
	rate := RateFor(model)
	return float64(inputTokens)/1_000_000*rate.InputPerMillion +
		float64(outputTokens)/1_000_000*rate.OutputPerMillion
}
