// Package seed bootstraps demo data for local development.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/seology-ai/seology/internal/account/domain"
	connectiondomain "github.com/seology-ai/seology/internal/connection/domain"
	"gorm.io/gorm"
)

const (
	demoEmail      = "demo@seology.ai"
	demoShopDomain = "demo-store.myshopify.com"
	// DemoSessionToken authenticates the demo connection in development.
	DemoSessionToken = "sess_demo_local_dev"
)

// EnsureDemoShop seeds a demo account, connection and session token so a
// fresh development database can serve chat requests immediately.
// Idempotent; safe to run on every startup.
func EnsureDemoShop(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := ensureDemoAccountTx(ctx, tx, node)
		if err != nil {
			return err
		}
		conn, err := ensureDemoConnectionTx(ctx, tx, node, account)
		if err != nil {
			return err
		}
		return ensureDemoSessionTx(ctx, tx, node, conn)
	})
}

func ensureDemoAccountTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (*accountdomain.Account, error) {
	var account accountdomain.Account
	err := tx.WithContext(ctx).Where("email = ?", demoEmail).First(&account).Error
	if err == nil {
		return &account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	account = accountdomain.Account{
		ID:        node.Generate(),
		Email:     demoEmail,
		Plan:      accountdomain.PlanStarter,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func ensureDemoConnectionTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, account *accountdomain.Account) (*connectiondomain.Connection, error) {
	var conn connectiondomain.Connection
	err := tx.WithContext(ctx).
		Where("platform = ? AND shop_domain = ?", connectiondomain.PlatformShopify, demoShopDomain).
		First(&conn).Error
	if err == nil {
		return &conn, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	conn = connectiondomain.Connection{
		ID:             node.Generate(),
		AccountID:      account.ID,
		Platform:       connectiondomain.PlatformShopify,
		ShopDomain:     demoShopDomain,
		Status:         connectiondomain.StatusConnected,
		AutomationMode: connectiondomain.AutomationApproval,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.WithContext(ctx).Create(&conn).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

func ensureDemoSessionTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, conn *connectiondomain.Connection) error {
	hash := connectiondomain.HashToken(DemoSessionToken)

	var record connectiondomain.SessionToken
	err := tx.WithContext(ctx).Where("token_hash = ?", hash).First(&record).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	record = connectiondomain.SessionToken{
		ID:           node.Generate(),
		ConnectionID: conn.ID,
		TokenHash:    hash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&record).Error
}
