package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type testCleanupRequest struct {
	Prefix string `json:"prefix"`
}

// TestCleanup deletes every row belonging to shops whose domain starts with
// the given prefix. Disabled in production.
func (s *Server) TestCleanup(c *gin.Context) {
	if s.cfg.IsProduction() {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req testCleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	prefix := strings.TrimSpace(req.Prefix)
	if prefix == "" {
		AbortWithError(c, newValidationError("prefix", "required", "prefix is required"))
		return
	}

	ctx := c.Request.Context()
	connIDs, accountIDs, err := s.loadIDsByShopPrefix(ctx, prefix)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.deleteShopData(ctx, connIDs, accountIDs); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) loadIDsByShopPrefix(ctx context.Context, prefix string) ([]int64, []int64, error) {
	like := prefix + "%"

	var connIDs []int64
	if err := s.db.WithContext(ctx).
		Table("connections").
		Select("id").
		Where("shop_domain LIKE ?", like).
		Scan(&connIDs).Error; err != nil {
		return nil, nil, err
	}

	var accountIDs []int64
	if err := s.db.WithContext(ctx).
		Table("connections").
		Select("DISTINCT account_id").
		Where("shop_domain LIKE ?", like).
		Scan(&accountIDs).Error; err != nil {
		return nil, nil, err
	}

	return connIDs, accountIDs, nil
}

func (s *Server) deleteShopData(ctx context.Context, connIDs, accountIDs []int64) error {
	if len(connIDs) > 0 {
		queries := []string{
			`DELETE FROM session_tokens WHERE connection_id IN ?`,
			`DELETE FROM issues WHERE connection_id IN ?`,
			`DELETE FROM fixes WHERE connection_id IN ?`,
			`DELETE FROM collections WHERE connection_id IN ?`,
			`DELETE FROM products WHERE connection_id IN ?`,
		}
		for _, query := range queries {
			if err := s.db.WithContext(ctx).Exec(query, connIDs).Error; err != nil {
				return err
			}
		}
	}

	if len(accountIDs) > 0 {
		queries := []string{
			`DELETE FROM chat_events WHERE account_id IN ?`,
			`DELETE FROM audit_logs WHERE account_id IN ?`,
			`DELETE FROM usage_ledger WHERE account_id IN ?`,
			`DELETE FROM credit_usages WHERE account_id IN ?`,
			`DELETE FROM connections WHERE account_id IN ?`,
			`DELETE FROM accounts WHERE id IN ?`,
		}
		for _, query := range queries {
			if err := s.db.WithContext(ctx).Exec(query, accountIDs).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
