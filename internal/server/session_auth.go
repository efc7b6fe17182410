package server

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/seology-ai/seology/internal/auditcontext"
	connectiondomain "github.com/seology-ai/seology/internal/connection/domain"
)

const contextConnectionKey = "connection"

// SessionRequired authenticates requests with a bearer session token and
// stashes the resolved connection in the gin context.
func (s *Server) SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		conn, err := s.connections.ResolveByToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, connectiondomain.ErrNotFound) {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			AbortWithError(c, err)
			return
		}

		ctx := auditcontext.WithActor(c.Request.Context(), "session", conn.ID.String())
		ctx = auditcontext.WithShopDomain(ctx, conn.ShopDomain)
		c.Request = c.Request.WithContext(ctx)

		c.Set(contextConnectionKey, conn)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", false
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return parts[1], true
}

func connectionFromContext(c *gin.Context) *connectiondomain.Connection {
	value, ok := c.Get(contextConnectionKey)
	if !ok {
		return nil
	}
	conn, _ := value.(*connectiondomain.Connection)
	return conn
}
