// Package domain contains the read-only store catalog models the chat flow
// snapshots. All rows are maintained by the crawl/fix subsystems; nothing in
// this service mutates them.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	FixStatusApplied  = "applied"
	FixStatusPending  = "pending"
	FixStatusReverted = "reverted"
)

const (
	IssueStatusDetected = "detected"
	IssueStatusFixing   = "fixing"
	IssueStatusFixed    = "fixed"
)

const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Product is a sellable catalog item with its SEO-relevant fields.
type Product struct {
	ID             snowflake.ID   `gorm:"primaryKey" json:"id"`
	ConnectionID   snowflake.ID   `gorm:"not null;index:ix_products_connection_score,priority:1" json:"-"`
	Title          string         `gorm:"type:text;not null" json:"title"`
	Handle         string         `gorm:"type:text;not null" json:"handle"`
	BodyHTML       string         `gorm:"type:text" json:"body_html"`
	SEOTitle       *string        `gorm:"type:text" json:"seo_title"`
	SEODescription *string        `gorm:"type:text" json:"seo_description"`
	Images         datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"images"`
	SEOScore       int            `gorm:"not null;default:0;index:ix_products_connection_score,priority:2" json:"seo_score"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }

// Collection groups products for navigation and SEO landing pages.
type Collection struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	ConnectionID snowflake.ID `gorm:"not null;index" json:"-"`
	Title        string       `gorm:"type:text;not null" json:"title"`
	Handle       string       `gorm:"type:text;not null" json:"handle"`
	ProductCount int          `gorm:"not null;default:0" json:"product_count"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Collection) TableName() string { return "collections" }

// Fix records a previously applied remediation.
type Fix struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	ConnectionID snowflake.ID `gorm:"not null;index:ix_fixes_connection_applied,priority:1" json:"-"`
	FixType      string       `gorm:"type:text;not null" json:"fix_type"`
	Description  string       `gorm:"type:text;not null" json:"description"`
	Status       string       `gorm:"type:text;not null;default:applied" json:"status"`
	AppliedAt    time.Time    `gorm:"not null;index:ix_fixes_connection_applied,priority:2" json:"applied_at"`
}

// TableName sets the database table name.
func (Fix) TableName() string { return "fixes" }

// Issue records a previously detected SEO problem.
type Issue struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	ConnectionID snowflake.ID `gorm:"not null;index:ix_issues_connection_detected,priority:1" json:"-"`
	IssueType    string       `gorm:"type:text;not null" json:"issue_type"`
	Title        string       `gorm:"type:text;not null" json:"title"`
	Severity     string       `gorm:"type:text;not null;default:warning" json:"severity"`
	PageURL      *string      `gorm:"type:text" json:"page_url"`
	Status       string       `gorm:"type:text;not null;default:detected" json:"status"`
	DetectedAt   time.Time    `gorm:"not null;index:ix_issues_connection_detected,priority:2" json:"detected_at"`
}

// TableName sets the database table name.
func (Issue) TableName() string { return "issues" }

// Analytics summarizes a snapshot for the prompt and response envelope.
type Analytics struct {
	ProductCount       int `json:"product_count"`
	AvgScore           int `json:"avg_score"`
	AppliedFixCount    int `json:"applied_fix_count"`
	DetectedIssueCount int `json:"detected_issue_count"`
}

// Snapshot is the bounded point-in-time read assembled for one chat request.
type Snapshot struct {
	Products    []Product
	Collections []Collection
	Fixes       []Fix
	Issues      []Issue
	Analytics   Analytics
}
