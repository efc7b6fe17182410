// Package domain contains account and plan entitlement models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Plan identifies a subscription tier.
type Plan string

const (
	PlanStarter Plan = "starter"
	PlanGrowth  Plan = "growth"
	PlanPro     Plan = "pro"
)

// PlanLimits captures the entitlement defaults seeded into a billing period.
type PlanLimits struct {
	Credits int64
	Sites   int64
	Fixes   int64
}

var planLimits = map[Plan]PlanLimits{
	PlanStarter: {Credits: 100, Sites: 1, Fixes: 25},
	PlanGrowth:  {Credits: 500, Sites: 3, Fixes: 200},
	PlanPro:     {Credits: 2000, Sites: 10, Fixes: 1000},
}

// LimitsFor returns the entitlement defaults for a plan, falling back to
// starter for unknown values.
func LimitsFor(plan Plan) PlanLimits {
	if limits, ok := planLimits[plan]; ok {
		return limits
	}
	return planLimits[PlanStarter]
}

// Account owns one or more storefront connections.
type Account struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Email     string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Plan      Plan         `gorm:"type:text;not null;default:starter" json:"plan"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Account) TableName() string { return "accounts" }
