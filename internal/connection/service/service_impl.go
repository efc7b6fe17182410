// Package service resolves merchant connections for authenticated requests.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/seology-ai/seology/internal/cache"
	accountdomain "github.com/seology-ai/seology/internal/account/domain"
	connectiondomain "github.com/seology-ai/seology/internal/connection/domain"
	"github.com/seology-ai/seology/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const lookupCacheTTL = 30 * time.Second

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cache cache.Cache[string, snowflake.ID] `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	connrepo    repository.Repository[connectiondomain.Connection]
	accountrepo repository.Repository[accountdomain.Account]
	lookup      cache.Cache[string, snowflake.ID]
}

func NewService(p ServiceParam) *Service {
	lookup := p.Cache
	if lookup == nil {
		lookup = cache.NewTTLCache[string, snowflake.ID]()
	}
	return &Service{
		db:  p.DB,
		log: p.Log.Named("connection.service"),

		connrepo:    repository.ProvideStore[connectiondomain.Connection](p.DB),
		accountrepo: repository.ProvideStore[accountdomain.Account](p.DB),
		lookup:      lookup,
	}
}

// ResolveByShopDomain finds the connected record for a merchant domain.
// Returns connectiondomain.ErrNotFound when no connected row matches.
func (s *Service) ResolveByShopDomain(ctx context.Context, shopDomain string) (*connectiondomain.Connection, error) {
	shopDomain = connectiondomain.NormalizeShopDomain(shopDomain)
	if shopDomain == "" {
		return nil, connectiondomain.ErrInvalidDomain
	}

	if id, ok := s.lookup.Get(shopDomain); ok {
		conn, err := s.connrepo.FindOne(ctx, &connectiondomain.Connection{ID: id})
		if err == nil && conn != nil && conn.Status == connectiondomain.StatusConnected {
			return conn, nil
		}
		s.lookup.Delete(shopDomain)
	}

	conn, err := s.connrepo.FindOne(ctx, &connectiondomain.Connection{
		Platform:   connectiondomain.PlatformShopify,
		ShopDomain: shopDomain,
		Status:     connectiondomain.StatusConnected,
	})
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, connectiondomain.ErrNotFound
	}

	s.lookup.Set(shopDomain, conn.ID, lookupCacheTTL)
	return conn, nil
}

// ResolveByToken finds the connection backing an active bearer session token.
func (s *Service) ResolveByToken(ctx context.Context, token string) (*connectiondomain.Connection, error) {
	hash := connectiondomain.HashToken(token)
	now := time.Now().UTC()

	var record connectiondomain.SessionToken
	err := s.db.WithContext(ctx).
		Where("token_hash = ? AND is_active = ?", hash, true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, connectiondomain.ErrNotFound
		}
		return nil, err
	}

	conn, err := s.connrepo.FindOne(ctx, &connectiondomain.Connection{ID: record.ConnectionID})
	if err != nil {
		return nil, err
	}
	if conn == nil || conn.Status != connectiondomain.StatusConnected {
		return nil, connectiondomain.ErrNotFound
	}
	return conn, nil
}

// Account loads the owning account for a connection.
func (s *Service) Account(ctx context.Context, conn *connectiondomain.Connection) (*accountdomain.Account, error) {
	if conn == nil {
		return nil, connectiondomain.ErrNotFound
	}
	account, err := s.accountrepo.FindOne(ctx, &accountdomain.Account{ID: conn.AccountID})
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, connectiondomain.ErrNotFound
	}
	return account, nil
}
