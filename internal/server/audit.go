package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/seology-ai/seology/internal/audit/domain"
)

// Audit lists the audit trail for the authenticated session's account,
// newest first.
func (s *Server) Audit(c *gin.Context) {
	conn := connectionFromContext(c)
	if conn == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	filter := auditdomain.ListFilter{
		AccountID: conn.AccountID,
		Action:    strings.TrimSpace(c.Query("action")),
		ActorType: strings.TrimSpace(c.Query("actor_type")),
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = limit
	}
	if at, ok := parseTimeQuery(c, "start_at"); ok {
		filter.StartAt = &at
	}
	if at, ok := parseTimeQuery(c, "end_at"); ok {
		filter.EndAt = &at
	}

	entries, err := s.auditRepo.List(c.Request.Context(), s.db, filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, gin.H{"entries": entries})
}

func parseTimeQuery(c *gin.Context, key string) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return at.UTC(), true
}
