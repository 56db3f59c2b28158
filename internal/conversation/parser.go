// Package conversation provides command parsing and user notification
// for the interactive browser.
package conversation

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*KeywordParser)(nil)

// KeywordParser matches typed commands to intents using keywords and
// simple patterns. A rule with a capture group carries the captured text
// as payload.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
}

// NewKeywordParser creates a keyword-based command parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(?:list|ls|l)$`), domain.IntentList},
		{regexp.MustCompile(`(?i)^(?:clear search|nosearch)$`), domain.IntentClearSearch},
		{regexp.MustCompile(`(?i)^(?:search|find|/)\s*(.+)$`), domain.IntentSearch},
		{regexp.MustCompile(`(?i)^(?:search|find|/)$`), domain.IntentClearSearch},
		{regexp.MustCompile(`(?i)^(?:clear|reset|clear filters)$`), domain.IntentClearFilters},
		{regexp.MustCompile(`(?i)^(?:unfilter|remove|rm)\s+(.+)$`), domain.IntentRemoveFilter},
		{regexp.MustCompile(`(?i)^(?:filter|f)\s+(.+)$`), domain.IntentFilter},
		{regexp.MustCompile(`(?i)^(?:filters|menu)$`), domain.IntentFilters},
		{regexp.MustCompile(`(?i)^(?:sort|order)\s+(\S+)$`), domain.IntentSort},
		{regexp.MustCompile(`(?i)^(?:open|o|show)\s+(.+)$`), domain.IntentOpen},
		{regexp.MustCompile(`^(\d{1,4})$`), domain.IntentOpen},
		{regexp.MustCompile(`(?i)^(?:close|x)$`), domain.IntentClose},
		{regexp.MustCompile(`(?i)^(?:unrate|clear rating)$`), domain.IntentClearRating},
		{regexp.MustCompile(`(?i)^(?:rate|stars?)\s+([1-5])$`), domain.IntentRate},
		{regexp.MustCompile(`(?i)^(?:made|cooked)$`), domain.IntentMade},
		{regexp.MustCompile(`(?i)^(?:tag|mark|pin)$`), domain.IntentTag},
		{regexp.MustCompile(`(?i)^(?:back|b|<)$`), domain.IntentBack},
		{regexp.MustCompile(`(?i)^(?:forward|fwd|>)$`), domain.IntentForward},
		{regexp.MustCompile(`(?i)^(?:share|link|copy)$`), domain.IntentShare},
		{regexp.MustCompile(`(?i)^(?:lang|language)\s+(\S+)$`), domain.IntentLanguage},
		{regexp.MustCompile(`(?i)^(?:help|h|\?)$`), domain.IntentHelp},
		{regexp.MustCompile(`(?i)^(?:quit|exit|q)$`), domain.IntentQuit},
	}
	return p
}

// Parse converts user input into an intent.
func (p *KeywordParser) Parse(ctx context.Context, input string) (*domain.Intent, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Intent{Type: domain.IntentUnknown}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	for _, rule := range p.patterns {
		m := rule.regex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		p.log.Debug("matched intent: %s", rule.intent)
		intent := &domain.Intent{Type: rule.intent}
		if len(m) > 1 {
			intent.Payload = strings.TrimSpace(m[1])
		}
		if rule.intent == domain.IntentFilter || rule.intent == domain.IntentRemoveFilter {
			intent.Payload = normalizeFilter(intent.Payload)
		}
		return intent, nil
	}

	p.log.Debug("no match, returning unknown intent")
	return &domain.Intent{Type: domain.IntentUnknown, Payload: trimmed}, nil
}

// normalizeFilter accepts "meal:Middag", "meal Middag" and "meal: Middag"
// and returns the "dimension:value" form with a lower-case dimension.
func normalizeFilter(s string) string {
	dim, value, ok := strings.Cut(s, ":")
	if !ok {
		dim, value, ok = strings.Cut(s, " ")
		if !ok {
			return s
		}
	}
	return strings.ToLower(strings.TrimSpace(dim)) + ":" + strings.TrimSpace(value)
}
