// Package prompt assembles the deterministic system instruction and message
// list sent to the completion gateway.
package prompt

import (
	"fmt"
	"strings"

	accountdomain "github.com/seology-ai/seology/internal/account/domain"
	connectiondomain "github.com/seology-ai/seology/internal/connection/domain"
	"github.com/seology-ai/seology/internal/intent"
	storedomain "github.com/seology-ai/seology/internal/store/domain"
)

// Display caps are tighter than the snapshot reader's fetch caps: the prompt
// carries a shortlist, not the whole snapshot.
const (
	IssueDisplayCap      = 5
	ProductDisplayCap    = 10
	CollectionDisplayCap = 5
)

// Message is one turn of the running conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Input carries everything the assembler needs for one request.
type Input struct {
	ShopDomain string
	Plan       accountdomain.Plan
	Automation connectiondomain.AutomationMode
	Snapshot   *storedomain.Snapshot
	Intent     *intent.Result
	Messages   []Message
}

// Output is the assembled completion request payload.
type Output struct {
	System   string
	Messages []Message
}

const behaviorBlock = `You are the SEO assistant for this merchant's store.
Be concise and specific. Ground every recommendation in the store data above.
When the merchant asks for changes, describe what the automation will do; never claim a change has already been made unless it appears in the applied fixes list.
Stay on the topic of this store's SEO. Do not discuss your own implementation, model, or provider.`

// Assemble renders the system instruction and conversation. For identical
// input it produces byte-identical output: no timestamps, no randomness.
func Assemble(in Input) Output {
	var b strings.Builder

	b.WriteString("Store: " + in.ShopDomain + "\n")
	b.WriteString("Plan: " + string(in.Plan) + "\n")
	b.WriteString("Automation mode: " + string(in.Automation) + "\n")

	if in.Snapshot != nil {
		writeSnapshot(&b, in.Snapshot)
	} else {
		b.WriteString("\nStore data is currently unavailable.\n")
	}

	if in.Intent != nil && in.Intent.Intent != intent.IntentChat {
		b.WriteString("\nDetected intent: " + string(in.Intent.Intent))
		if len(in.Intent.Entities) > 0 {
			tags := make([]string, 0, len(in.Intent.Entities))
			for _, entity := range in.Intent.Entities {
				tags = append(tags, string(entity))
			}
			b.WriteString(" (" + strings.Join(tags, ", ") + ")")
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + behaviorBlock)

	messages := make([]Message, 0, len(in.Messages))
	for _, msg := range in.Messages {
		role := strings.ToLower(strings.TrimSpace(msg.Role))
		if role != "user" && role != "assistant" {
			continue
		}
		messages = append(messages, Message{Role: role, Content: msg.Content})
	}

	return Output{
		System:   b.String(),
		Messages: messages,
	}
}

func writeSnapshot(b *strings.Builder, snapshot *storedomain.Snapshot) {
	fmt.Fprintf(b, "\nCatalog: %d products, average SEO score %d\n",
		snapshot.Analytics.ProductCount, snapshot.Analytics.AvgScore)
	fmt.Fprintf(b, "History: %d fixes applied, %d issues awaiting attention\n",
		snapshot.Analytics.AppliedFixCount, snapshot.Analytics.DetectedIssueCount)

	if len(snapshot.Issues) > 0 {
		b.WriteString("\nRecent issues:\n")
		for i, issue := range snapshot.Issues {
			if i == IssueDisplayCap {
				break
			}
			fmt.Fprintf(b, "- [%s] %s\n", issue.Severity, issue.Title)
		}
	}

	if len(snapshot.Products) > 0 {
		b.WriteString("\nLowest-scoring products:\n")
		for i, product := range snapshot.Products {
			if i == ProductDisplayCap {
				break
			}
			fmt.Fprintf(b, "- %s (score %d)\n", product.Title, product.SEOScore)
		}
	}

	if len(snapshot.Collections) > 0 {
		b.WriteString("\nCollections:\n")
		for i, collection := range snapshot.Collections {
			if i == CollectionDisplayCap {
				break
			}
			fmt.Fprintf(b, "- %s (%d products)\n", collection.Title, collection.ProductCount)
		}
	}
}
