package server

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Usage returns the current billing period and the newest ledger rows for
// the authenticated session's account.
func (s *Server) Usage(c *gin.Context) {
	conn := connectionFromContext(c)
	if conn == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	ctx := c.Request.Context()
	account, err := s.connections.Account(ctx, conn)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	period, err := s.usageSvc.CurrentPeriod(ctx, account)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	recent, err := s.usageSvc.RecentLedger(ctx, account.ID, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, gin.H{
		"plan": account.Plan,
		"period": gin.H{
			"start":     period.PeriodStart,
			"end":       period.PeriodEnd,
			"used":      period.CreditsUsed,
			"limit":     period.CreditLimit,
			"remaining": period.Remaining(),
		},
		"recent": recent,
	})
}
