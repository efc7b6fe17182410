// Package intent classifies chat messages into coarse action labels.
package intent

import (
	"regexp"
	"strings"
)

// Intent is the coarse action a message requests.
type Intent string

const (
	IntentAnalyze Intent = "ANALYZE"
	IntentFix     Intent = "FIX"
	IntentReport  Intent = "REPORT"
	IntentCompare Intent = "COMPARE"
	IntentSearch  Intent = "SEARCH"
	IntentChat    Intent = "CHAT"
)

// Entity tags the store object a message talks about.
type Entity string

const (
	EntityProducts    Entity = "products"
	EntityCollections Entity = "collections"
	EntityPages       Entity = "pages"
	EntityImages      Entity = "images"
	EntityStore       Entity = "store"
	EntitySEO         Entity = "seo"
	EntityMetadata    Entity = "metadata"
)

// Result is the classification for one message.
type Result struct {
	Intent   Intent
	Entities []Entity
}

// Intent rules are ordered; the first category with a match wins.
var intentRules = []struct {
	intent   Intent
	patterns []*regexp.Regexp
}{
	{IntentAnalyze, compileAll(
		`\banaly[sz]e\b`,
		`\baudit\b`,
		`\bcheck\b`,
		`\breview\b`,
		`\bscan\b`,
		`how (is|are|does)\b.*\b(doing|performing)`,
	)},
	{IntentFix, compileAll(
		`\bfix\b`,
		`\brepair\b`,
		`\boptimi[sz]e\b`,
		`\bimprove\b`,
		`\bresolve\b`,
		`\bapply\b`,
	)},
	{IntentReport, compileAll(
		`\breport\b`,
		`\bsummar(y|ize|ise)\b`,
		`\bprogress\b`,
		`what (have|has).*\b(done|fixed|changed)`,
		`\bstatus update\b`,
	)},
	{IntentCompare, compileAll(
		`\bcompare\b`,
		`\bversus\b`,
		`\bvs\.?\b`,
		`\bdifference\b`,
		`\bcompetitors?\b`,
		`\bbenchmark\b`,
	)},
	{IntentSearch, compileAll(
		`\bsearch\b`,
		`\bfind\b`,
		`\blook up\b`,
		`\bshow me\b`,
		`\blist\b`,
		`\bwhich\b`,
	)},
}

// Each entity has exactly one pattern, so duplicate tags are impossible.
var entityRules = []struct {
	entity  Entity
	pattern *regexp.Regexp
}{
	{EntityProducts, regexp.MustCompile(`\bproducts?\b|\bitems?\b|\bcatalog\b`)},
	{EntityCollections, regexp.MustCompile(`\bcollections?\b|\bcategor(y|ies)\b`)},
	{EntityPages, regexp.MustCompile(`\bpages?\b|\bblog\b|\barticles?\b`)},
	{EntityImages, regexp.MustCompile(`\bimages?\b|\bphotos?\b|\balt text\b`)},
	{EntityStore, regexp.MustCompile(`\bstore\b|\bshop\b|\bsite\b|\bwebsite\b`)},
	{EntitySEO, regexp.MustCompile(`\bseo\b|\brankings?\b|\btraffic\b|\bsearch engine\b`)},
	{EntityMetadata, regexp.MustCompile(`\bmeta ?(data|tags?)?\b|\btitle tags?\b|\bdescriptions?\b`)},
}

// Classify maps a free-text message to an intent and entity tags.
// Matching is case-insensitive. A message matching no intent pattern is CHAT
// with no entities; a non-CHAT intent with no entity match defaults to
// {store} so downstream consumers never see an intent without a subject.
func Classify(message string) Result {
	message = strings.ToLower(strings.TrimSpace(message))
	if message == "" {
		return Result{Intent: IntentChat}
	}

	result := Result{Intent: IntentChat}
	for _, rule := range intentRules {
		if matchesAny(message, rule.patterns) {
			result.Intent = rule.intent
			break
		}
	}

	for _, rule := range entityRules {
		if rule.pattern.MatchString(message) {
			result.Entities = append(result.Entities, rule.entity)
		}
	}

	if result.Intent != IntentChat && len(result.Entities) == 0 {
		result.Entities = []Entity{EntityStore}
	}
	return result
}

// HasEntity reports whether the result carries the given tag.
func (r Result) HasEntity(entity Entity) bool {
	for _, e := range r.Entities {
		if e == entity {
			return true
		}
	}
	return false
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		compiled = append(compiled, regexp.MustCompile(pattern))
	}
	return compiled
}

func matchesAny(message string, patterns []*regexp.Regexp) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(message) {
			return true
		}
	}
	return false
}
