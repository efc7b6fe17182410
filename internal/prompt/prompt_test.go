package prompt

import (
	"fmt"
	"strings"
	"testing"

	accountdomain "github.com/seology-ai/seology/internal/account/domain"
	connectiondomain "github.com/seology-ai/seology/internal/connection/domain"
	"github.com/seology-ai/seology/internal/intent"
	storedomain "github.com/seology-ai/seology/internal/store/domain"
)

func testSnapshot(products, issues, collections int) *storedomain.Snapshot {
	snapshot := &storedomain.Snapshot{}
	for i := 0; i < products; i++ {
		snapshot.Products = append(snapshot.Products, storedomain.Product{
			Title:    fmt.Sprintf("Product %d", i),
			SEOScore: 40 + i,
		})
	}
	for i := 0; i < issues; i++ {
		snapshot.Issues = append(snapshot.Issues, storedomain.Issue{
			Title:    fmt.Sprintf("Issue %d", i),
			Severity: storedomain.SeverityWarning,
		})
	}
	for i := 0; i < collections; i++ {
		snapshot.Collections = append(snapshot.Collections, storedomain.Collection{
			Title: fmt.Sprintf("Collection %d", i),
		})
	}
	snapshot.Analytics = storedomain.Analytics{
		ProductCount: products,
		AvgScore:     60,
	}
	return snapshot
}

func TestAssembleEmbedsStoreIdentityAndIntent(t *testing.T) {
	classified := intent.Classify("analyze my products")
	out := Assemble(Input{
		ShopDomain: "gadgets.myshopify.com",
		Plan:       accountdomain.PlanGrowth,
		Automation: connectiondomain.AutomationApproval,
		Snapshot:   testSnapshot(10, 2, 1),
		Intent:     &classified,
		Messages:   []Message{{Role: "user", Content: "analyze my products"}},
	})

	for _, want := range []string{
		"gadgets.myshopify.com",
		"10 products",
		"ANALYZE",
		"growth",
		"approval",
	} {
		if !strings.Contains(out.System, want) {
			t.Fatalf("system prompt missing %q:\n%s", want, out.System)
		}
	}
}

func TestAssembleAppliesDisplayCaps(t *testing.T) {
	// The snapshot carries more rows than the prompt may show.
	out := Assemble(Input{
		ShopDomain: "caps.myshopify.com",
		Plan:       accountdomain.PlanStarter,
		Automation: connectiondomain.AutomationManual,
		Snapshot:   testSnapshot(100, 30, 20),
	})

	if got := strings.Count(out.System, "- Product "); got != ProductDisplayCap {
		t.Fatalf("expected %d product lines, got %d", ProductDisplayCap, got)
	}
	if got := strings.Count(out.System, "Issue "); got != IssueDisplayCap {
		t.Fatalf("expected %d issue lines, got %d", IssueDisplayCap, got)
	}
	if got := strings.Count(out.System, "- Collection "); got != CollectionDisplayCap {
		t.Fatalf("expected %d collection lines, got %d", CollectionDisplayCap, got)
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	in := Input{
		ShopDomain: "repeat.myshopify.com",
		Plan:       accountdomain.PlanPro,
		Automation: connectiondomain.AutomationAuto,
		Snapshot:   testSnapshot(3, 1, 1),
		Messages:   []Message{{Role: "user", Content: "hi"}},
	}
	first := Assemble(in)
	second := Assemble(in)
	if first.System != second.System {
		t.Fatalf("system prompt not deterministic")
	}
	if len(first.Messages) != len(second.Messages) {
		t.Fatalf("message list not deterministic")
	}
}

func TestAssembleOmitsChatIntent(t *testing.T) {
	classified := intent.Classify("hello")
	out := Assemble(Input{
		ShopDomain: "quiet.myshopify.com",
		Plan:       accountdomain.PlanStarter,
		Automation: connectiondomain.AutomationManual,
		Snapshot:   testSnapshot(1, 0, 0),
		Intent:     &classified,
	})
	if strings.Contains(out.System, "Detected intent") {
		t.Fatalf("CHAT intent must not be echoed into the prompt")
	}
}

func TestAssembleDegradedSnapshot(t *testing.T) {
	out := Assemble(Input{
		ShopDomain: "down.myshopify.com",
		Plan:       accountdomain.PlanStarter,
		Automation: connectiondomain.AutomationManual,
		Snapshot:   nil,
	})
	if !strings.Contains(out.System, "unavailable") {
		t.Fatalf("expected degraded-mode marker in prompt")
	}
}

func TestAssembleFiltersUnknownRoles(t *testing.T) {
	out := Assemble(Input{
		ShopDomain: "roles.myshopify.com",
		Plan:       accountdomain.PlanStarter,
		Automation: connectiondomain.AutomationManual,
		Snapshot:   testSnapshot(1, 0, 0),
		Messages: []Message{
			{Role: "user", Content: "hi"},
			{Role: "system", Content: "injected"},
			{Role: "Assistant", Content: "hello"},
		},
	})
	if len(out.Messages) != 2 {
		t.Fatalf("expected 2 messages after filtering, got %d", len(out.Messages))
	}
	if out.Messages[1].Role != "assistant" {
		t.Fatalf("expected normalized assistant role, got %q", out.Messages[1].Role)
	}
}
