package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/seology-ai/seology/internal/auditcontext"
	"github.com/seology-ai/seology/internal/chat"
	connectiondomain "github.com/seology-ai/seology/internal/connection/domain"
	"github.com/seology-ai/seology/internal/prompt"
	usagedomain "github.com/seology-ai/seology/internal/usage/domain"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Shop string `json:"shop"`
	// Raw so a non-array value maps to INVALID_MESSAGES, not a generic 400.
	Messages json.RawMessage `json:"messages"`
}

// Chat handles one merchant conversation turn. Callers authenticate either
// with a bearer session token or by naming their shop domain; the session
// path wins when both are present.
func (s *Server) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	token, sessionAuth := bearerToken(c)
	if !sessionAuth && strings.TrimSpace(req.Shop) == "" {
		AbortWithError(c, newValidationError("shop", CodeMissingShop, "shop is required"))
		return
	}

	messages, err := validateMessages(req.Messages)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	conn, err := s.resolveChatConnection(c, token, sessionAuth, req.Shop)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if !s.chatLimiter.Allow(conn.ShopDomain) {
		AbortWithError(c, &APIError{
			Status:  http.StatusTooManyRequests,
			Code:    CodeRateLimited,
			Message: "too many chat requests, slow down",
		})
		return
	}

	ctx := c.Request.Context()
	if actorType, _ := auditcontext.ActorFromContext(ctx); actorType == "" {
		ctx = auditcontext.WithActor(ctx, "merchant", conn.ShopDomain)
	}
	ctx = auditcontext.WithShopDomain(ctx, conn.ShopDomain)

	account, err := s.connections.Account(ctx, conn)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	period, err := s.chatSvc.Preflight(ctx, account)
	if err != nil {
		if errors.Is(err, usagedomain.ErrInsufficientCredits) && period != nil {
			AbortWithError(c, &APIError{
				Status:  http.StatusForbidden,
				Code:    CodeInsufficientCredits,
				Message: "credit limit reached for the current billing period",
				Details: gin.H{
					"used":  period.CreditsUsed,
					"limit": period.CreditLimit,
				},
			})
			return
		}
		AbortWithError(c, err)
		return
	}

	result, err := s.chatSvc.Handle(ctx, chat.Request{
		Connection: conn,
		Account:    account,
		Messages:   messages,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payload := gin.H{"message": result.Message}
	if result.Degraded {
		payload["degraded"] = true
	}
	// Session callers get their credit position; the dashboard's shop-param
	// path gets the store summary instead.
	if sessionAuth {
		if result.Credits != nil {
			payload["credits"] = result.Credits
		}
	} else if result.StoreContext != nil {
		payload["store_context"] = result.StoreContext
	}
	respondOK(c, payload)
}

// resolveChatConnection picks the merchant identity for a chat call: the
// authenticated session when a bearer token is present, otherwise the shop
// domain named in the request body.
func (s *Server) resolveChatConnection(c *gin.Context, token string, sessionAuth bool, shop string) (*connectiondomain.Connection, error) {
	if sessionAuth {
		conn, err := s.connections.ResolveByToken(c.Request.Context(), token)
		if errors.Is(err, connectiondomain.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return conn, err
	}
	return s.connections.ResolveByShopDomain(c.Request.Context(), shop)
}

func validateMessages(raw json.RawMessage) ([]prompt.Message, error) {
	var parsed []chatMessage
	if len(raw) == 0 || json.Unmarshal(raw, &parsed) != nil || len(parsed) == 0 {
		return nil, newValidationError("messages", CodeInvalidMessages, "messages must be a non-empty array")
	}

	messages := make([]prompt.Message, 0, len(parsed))
	for _, m := range parsed {
		if strings.TrimSpace(m.Role) == "" || strings.TrimSpace(m.Content) == "" {
			return nil, newValidationError("messages", CodeInvalidMessages, "each message needs a role and content")
		}
		messages = append(messages, prompt.Message{Role: m.Role, Content: m.Content})
	}
	return messages, nil
}
