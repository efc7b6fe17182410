// Package domain contains storefront connection models.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	PlatformShopify = "shopify"

	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)

// AutomationMode controls how fixes are applied for a connection.
type AutomationMode string

const (
	AutomationManual   AutomationMode = "manual"
	AutomationApproval AutomationMode = "approval"
	AutomationAuto     AutomationMode = "auto"
)

var (
	ErrNotFound      = errors.New("connection_not_found")
	ErrInvalidDomain = errors.New("invalid_shop_domain")
)

// Connection links a merchant storefront to its owning account.
// The chat flow only reads connections; lifecycle is owned by onboarding.
type Connection struct {
	ID              snowflake.ID   `gorm:"primaryKey" json:"id"`
	AccountID       snowflake.ID   `gorm:"not null;index" json:"account_id"`
	Platform        string         `gorm:"type:text;not null;default:shopify;uniqueIndex:ux_connections_platform_domain,priority:1" json:"platform"`
	ShopDomain      string         `gorm:"type:text;not null;uniqueIndex:ux_connections_platform_domain,priority:2" json:"shop_domain"`
	Status          string         `gorm:"type:text;not null;default:connected" json:"status"`
	AccessTokenHash *string        `gorm:"type:text" json:"-"`
	AutomationMode  AutomationMode `gorm:"type:text;not null;default:approval" json:"automation_mode"`
	CreatedAt       time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt       time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Connection) TableName() string { return "connections" }

// SessionToken authenticates API calls scoped to one connection.
type SessionToken struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	ConnectionID snowflake.ID `gorm:"not null;index"`
	TokenHash    string       `gorm:"type:text;not null;uniqueIndex"`
	// No default tag: gorm omits zero-value fields that carry one, which
	// would store a revoked token as active.
	IsActive bool `gorm:"not null"`
	ExpiresAt    *time.Time   `gorm:""`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (SessionToken) TableName() string { return "session_tokens" }
