// Package chat orchestrates one merchant chat request end to end:
// snapshot read, intent classification, prompt assembly, model completion,
// then credit/audit recording.
package chat

import (
	"context"
	"time"

	accountdomain "github.com/seology-ai/seology/internal/account/domain"
	"github.com/seology-ai/seology/internal/completion"
	connectiondomain "github.com/seology-ai/seology/internal/connection/domain"
	connectionservice "github.com/seology-ai/seology/internal/connection/service"
	"github.com/seology-ai/seology/internal/intent"
	"github.com/seology-ai/seology/internal/observability/metrics"
	"github.com/seology-ai/seology/internal/prompt"
	storedomain "github.com/seology-ai/seology/internal/store/domain"
	storeservice "github.com/seology-ai/seology/internal/store/service"
	usagedomain "github.com/seology-ai/seology/internal/usage/domain"
	usageservice "github.com/seology-ai/seology/internal/usage/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Canned reply when the snapshot reader is in degraded mode. Returned with
// success=true on purpose; see the snapshot reader's soft-fail contract.
const degradedApology = "I'm sorry, I couldn't load your store data just now. Please try again in a moment."

type ServiceParam struct {
	fx.In

	Log         *zap.Logger
	Connections *connectionservice.Service
	Snapshots   *storeservice.Service
	Usage       *usageservice.Service
	Completions completion.Client
	Metrics     *metrics.ChatMetrics `optional:"true"`
}

type Service struct {
	log *zap.Logger

	connections *connectionservice.Service
	snapshots   *storeservice.Service
	usage       *usageservice.Service
	completions completion.Client
	metrics     *metrics.ChatMetrics
}

func NewService(p ServiceParam) *Service {
	return &Service{
		log: p.Log.Named("chat.service"),

		connections: p.Connections,
		snapshots:   p.Snapshots,
		usage:       p.Usage,
		completions: p.Completions,
		metrics:     p.Metrics,
	}
}

// Request is one validated chat call, already resolved to a connection.
type Request struct {
	Connection *connectiondomain.Connection
	Account    *accountdomain.Account
	Messages   []prompt.Message
}

// StoreContext is the snapshot summary echoed in the response envelope.
type StoreContext struct {
	ProductCount int `json:"product_count"`
	AvgScore     int `json:"avg_score"`
	ActiveIssues int `json:"active_issues"`
}

// Result is the outcome of one successful chat exchange.
type Result struct {
	Message      string
	Degraded     bool
	StoreContext *StoreContext
	Credits      *usageservice.Receipt
}

// Handle runs the pipeline for one request. The three awaits are sequential:
// snapshot read happens-before the completion call happens-before the usage
// write. Callers must check credits via Preflight before invoking Handle.
func (s *Service) Handle(ctx context.Context, req Request) (*Result, error) {
	userMessage := lastUserMessage(req.Messages)

	snapshot, err := s.snapshots.Read(ctx, req.Connection.ID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		// Degraded mode: no completion call, no credit consumed.
		s.metrics.IncCompletion("degraded")
		return &Result{Message: degradedApology, Degraded: true}, nil
	}

	var classified *intent.Result
	if userMessage != "" {
		result := intent.Classify(userMessage)
		classified = &result
	}

	assembled := prompt.Assemble(prompt.Input{
		ShopDomain: req.Connection.ShopDomain,
		Plan:       req.Account.Plan,
		Automation: req.Connection.AutomationMode,
		Snapshot:   snapshot,
		Intent:     classified,
		Messages:   req.Messages,
	})

	start := time.Now()
	resp, err := s.completions.Complete(ctx, completion.Request{
		System:   assembled.System,
		Messages: assembled.Messages,
	})
	if err != nil {
		s.metrics.IncCompletion("provider_error")
		return nil, err
	}
	s.metrics.IncCompletion("success")
	s.metrics.ObserveCompletionDuration(resp.Model, time.Since(start))
	s.metrics.AddTokens(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	// Inline, before responding. Failure here never takes back the answer the
	// model already produced; it is logged inside the usage service.
	receipt, err := s.usage.Record(ctx, usageservice.RecordParams{
		Account:      req.Account,
		Connection:   req.Connection,
		Model:        resp.Model,
		InputTokens:  int64(resp.Usage.InputTokens),
		OutputTokens: int64(resp.Usage.OutputTokens),
		UserMessage:  userMessage,
	})
	if err != nil {
		s.log.Error("usage record failed after successful completion", zap.Error(err))
	}

	return &Result{
		Message:      resp.Text,
		StoreContext: buildStoreContext(snapshot),
		Credits:      receipt,
	}, nil
}

// Preflight checks the account's credit budget for the current period.
// Returns the period row so handlers can surface the numbers on 403.
func (s *Service) Preflight(ctx context.Context, account *accountdomain.Account) (*usagedomain.CreditUsage, error) {
	period, err := s.usage.CurrentPeriod(ctx, account)
	if err != nil {
		return nil, err
	}
	if period.Exhausted() {
		return period, usagedomain.ErrInsufficientCredits
	}
	return period, nil
}

func buildStoreContext(snapshot *storedomain.Snapshot) *StoreContext {
	return &StoreContext{
		ProductCount: snapshot.Analytics.ProductCount,
		AvgScore:     snapshot.Analytics.AvgScore,
		ActiveIssues: snapshot.Analytics.DetectedIssueCount,
	}
}

func lastUserMessage(messages []prompt.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}
