package services

import (
	"slices"
	"strings"

	"scamshield-lab/internal/config"
)

// Ruleset holds the keyword and domain tables the analyzers score against.
// It is built once at startup and shared read-only.
type Ruleset struct {
	URLShorteners         []string
	TrustedDomains        []string
	SuspiciousURLKeywords []string
	RiskyTLDs             []string
	RiskyCountryCodes     []string
	DigitSequences        []string

	ScamKeywords       []string
	LegitimateKeywords []string
	UrgencyWords       []string
	ActionWords        []string
	MoneyWords         []string
	AccountWords       []string
	ThreatWords        []string
}

// DefaultRuleset returns the built-in tables
func DefaultRuleset() *Ruleset {
	return &Ruleset{
		URLShorteners: []string{
			"bit.ly", "tinyurl.com", "goo.gl", "ow.ly", "t.co",
			"is.gd", "buff.ly", "adf.ly", "bit.do", "short.link",
		},
		TrustedDomains: []string{
			"google.com", "facebook.com", "amazon.com", "apple.com",
			"microsoft.com", "linkedin.com", "twitter.com", "instagram.com",
			"youtube.com", "wikipedia.org", "github.com",
		},
		SuspiciousURLKeywords: []string{
			"verify", "account", "secure", "update", "confirm", "login",
			"banking", "password", "suspend", "limited", "unusual", "click",
			"urgent", "alert", "winner", "prize", "reward", "free", "claim",
			"refund", "tax", "gov", "paypal", "amazon",
		},
		RiskyTLDs: []string{"tk", "ml", "ga", "cf", "gq", "xyz", "top"},
		RiskyCountryCodes: []string{
			"+375", "+371", "+254", "+234", "+233", "+880", "+92", "+62", "+84",
		},
		DigitSequences: []string{
			"0123", "1234", "2345", "3456", "4567", "5678", "6789",
			"3210", "4321", "5432", "6543", "7654", "8765", "9876",
		},
		ScamKeywords: []string{
			// urgency
			"urgent", "immediately", "act now", "limited time", "expires",
			"hurry", "don't delay", "last chance", "final notice",
			// account and money
			"verify account", "confirm identity", "update payment", "suspended",
			"unusual activity", "unauthorized", "blocked", "locked",
			"refund", "rebate", "claim", "prize", "winner", "congratulations",
			// threats
			"legal action", "arrest", "warrant", "law enforcement", "suspend",
			"terminate", "cancel", "penalties",
			// information requests
			"click here", "click link", "confirm", "verify", "validate",
			"social security", "ssn", "password", "pin", "credit card",
			// too good to be true
			"free", "gift card", "cash prize", "selected", "chosen",
			"thousands", "million", "inheritance",
			// impersonation
			"bank", "paypal", "amazon", "irs", "tax", "government",
			"federal", "medicare",
		},
		LegitimateKeywords: []string{
			"unsubscribe", "opt-out", "terms and conditions", "privacy policy",
		},
		UrgencyWords: []string{"urgent", "immediately", "now", "hurry"},
		ActionWords:  []string{"click", "call", "reply", "confirm", "verify"},
		MoneyWords:   []string{"$", "money", "cash", "prize", "refund", "payment"},
		AccountWords: []string{"account", "bank", "card", "password"},
		ThreatWords:  []string{"suspend", "locked", "blocked", "arrest", "legal"},
	}
}

// NewRuleset starts from the defaults and applies any configured overrides
func NewRuleset(cfg config.DetectionConfig) *Ruleset {
	rs := DefaultRuleset()
	override(&rs.TrustedDomains, cfg.TrustedDomains)
	override(&rs.URLShorteners, cfg.URLShorteners)
	override(&rs.SuspiciousURLKeywords, cfg.SuspiciousURLKeywords)
	override(&rs.RiskyTLDs, cfg.RiskyTLDs)
	override(&rs.RiskyCountryCodes, cfg.RiskyCountryCodes)
	override(&rs.ScamKeywords, cfg.ScamKeywords)
	override(&rs.LegitimateKeywords, cfg.LegitimateKeywords)
	return rs
}

func override(dst *[]string, values []string) {
	if len(values) == 0 {
		return
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}

func (r *Ruleset) isShortener(domain string) bool {
	return slices.Contains(r.URLShorteners, domain)
}

func (r *Ruleset) isTrusted(domain string) bool {
	return slices.Contains(r.TrustedDomains, domain)
}

// isRiskyTLD matches a whole trailing label of the suffix
func (r *Ruleset) isRiskyTLD(suffix string) bool {
	for _, tld := range r.RiskyTLDs {
		tld = strings.TrimPrefix(tld, ".")
		if suffix == tld || strings.HasSuffix(suffix, "."+tld) {
			return true
		}
	}
	return false
}

func (r *Ruleset) isRiskyCountry(number string) bool {
	for _, code := range r.RiskyCountryCodes {
		if strings.HasPrefix(number, code) {
			return true
		}
	}
	return false
}

// matchAll returns every word found in text, in table order
func matchAll(text string, words []string) []string {
	var found []string
	for _, w := range words {
		if strings.Contains(text, w) {
			found = append(found, w)
		}
	}
	return found
}

func countMatches(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
