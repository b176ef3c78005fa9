package services

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/publicsuffix"

	"scamshield-lab/internal/domain/models"
	"scamshield-lab/pkg/logger"
)

var ipv4HostPattern = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)

// trustedDomainOffset is subtracted after every other signal has been added
const trustedDomainOffset = 30

// URLAnalyzer scores a URL from its structure alone. It never fetches anything
// and keeps no per-call state, so one instance can serve concurrent callers.
type URLAnalyzer struct {
	rules  *Ruleset
	logger *logger.Logger
}

// NewURLAnalyzer creates a new URL analyzer
func NewURLAnalyzer(rules *Ruleset, log *logger.Logger) *URLAnalyzer {
	return &URLAnalyzer{
		rules:  rules,
		logger: log.WithComponent("url-analyzer"),
	}
}

// Analyze scores a single URL. A URL that cannot be parsed gets the
// conservative error result instead of an error.
func (a *URLAnalyzer) Analyze(rawURL string) models.URLAnalysis {
	result, err := a.analyze(rawURL)
	if err != nil {
		a.logger.Warn().Err(err).Str("url", rawURL).Msg("failed to analyze URL")
		return models.NewURLErrorResult(rawURL, err)
	}
	return result
}

// AnalyzeMany scores every URL; a failing URL never affects its siblings
func (a *URLAnalyzer) AnalyzeMany(urls []string) []models.URLAnalysis {
	results := make([]models.URLAnalysis, 0, len(urls))
	for _, u := range urls {
		results = append(results, a.Analyze(u))
	}
	return results
}

// SafetyRecommendation returns the user advice for a URL risk score
func (a *URLAnalyzer) SafetyRecommendation(score int) string {
	switch {
	case score >= 75:
		return "DANGER: Do not click this link. High probability of phishing or malware."
	case score >= 50:
		return "WARNING: This link shows multiple suspicious indicators. Avoid clicking unless you trust the source."
	case score >= 25:
		return "CAUTION: Some risk factors detected. Verify the source before clicking."
	default:
		return "This link appears relatively safe, but always exercise caution with unfamiliar URLs."
	}
}

func (a *URLAnalyzer) analyze(rawURL string) (models.URLAnalysis, error) {
	normalized := withDefaultScheme(strings.TrimSpace(rawURL))

	parsed, err := url.Parse(escapeStrayPercent(normalized))
	if err != nil {
		return models.URLAnalysis{}, fmt.Errorf("failed to parse URL: %w", err)
	}
	host := strings.TrimSuffix(strings.ToLower(parsed.Hostname()), ".")
	if host == "" {
		return models.URLAnalysis{}, errors.New("URL has no host")
	}

	netloc := parsed.Host
	if parsed.User != nil {
		netloc = parsed.User.String() + "@" + netloc
	}

	isIP := isIPHost(parsed.Host, host)
	domain, subdomain, suffix := splitHost(host, isIP)

	var (
		score   int
		factors = make([]string, 0, 4)
	)
	add := func(delta int, factor string) {
		score += delta
		factors = append(factors, factor)
	}

	if isIP {
		add(30, "Uses IP address instead of domain name")
	}
	if parsed.Scheme != "https" {
		add(15, "Not using secure HTTPS protocol")
	}
	shortened := a.rules.isShortener(domain)
	if shortened {
		add(25, "Uses URL shortening service (hides destination)")
	}
	trusted := a.rules.isTrusted(domain)
	if trusted {
		add(0, "Domain is on trusted list")
	}
	if found := matchAll(strings.ToLower(normalized), a.rules.SuspiciousURLKeywords); len(found) > 0 {
		add(10*len(found), "Contains suspicious keywords: "+strings.Join(found, ", "))
	}
	if len(netloc) > 40 {
		add(15, "Unusually long domain name")
	}
	if subdomain != "" {
		if n := len(strings.Split(subdomain, ".")); n > 2 {
			add(20, fmt.Sprintf("Multiple subdomains detected (%d)", n))
		}
	}
	if strings.Contains(normalized, "@") {
		add(35, "Contains @ symbol (potential domain masking)")
	}
	if strings.Count(netloc, "-") > 2 {
		add(15, "Excessive hyphens in domain")
	}
	// digits anywhere in the registrable name, e.g. amaz0n
	if strings.ContainsAny(strings.TrimSuffix(domain, "."+suffix), "0123456789") {
		add(10, "Contains numbers in domain name")
	}
	if len(parsed.EscapedPath()) > 100 {
		add(10, "Unusually long URL path")
	}
	if n := len(parsed.Query()); n > 5 {
		add(15, fmt.Sprintf("Many query parameters (%d)", n))
	}
	if p := parsed.Port(); p != "" {
		if port, err := strconv.Atoi(p); err == nil && port != 80 && port != 443 {
			add(20, fmt.Sprintf("Uses non-standard port: %d", port))
		}
	}
	if suffix != "" && a.rules.isRiskyTLD(suffix) {
		add(25, fmt.Sprintf("Uses risky top-level domain (.%s)", suffix))
	}

	if trusted {
		score = max(0, score-trustedDomainOffset)
	}
	score = min(int(models.MaxRiskScore), score)

	return models.URLAnalysis{
		URL:          normalized,
		Domain:       domain,
		Subdomain:    subdomain,
		TLD:          suffix,
		IsHTTPS:      parsed.Scheme == "https",
		IsShortened:  shortened,
		IsTrusted:    trusted,
		RiskScore:    score,
		RiskFactors:  factors,
		IsSuspicious: score >= int(models.ScamThreshold),
	}, nil
}

func withDefaultScheme(raw string) string {
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	return "http://" + raw
}

// isIPHost matches dotted-quad hosts and bracketed IPv6 literals
func isIPHost(hostport, host string) bool {
	return ipv4HostPattern.MatchString(host) || strings.Contains(hostport, "[")
}

// escapeStrayPercent rewrites a '%' that does not start a valid escape as
// "%25", so text like "50%off" in a path still parses
func escapeStrayPercent(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && (i+2 >= len(s) || !isHexDigit(s[i+1]) || !isHexDigit(s[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// icannSuffix returns the public suffix of host using only the ICANN section
// of the list, so private entries like github.io or blogspot.com do not count
func icannSuffix(host string) string {
	suffix, icann := publicsuffix.PublicSuffix(host)
	for !icann {
		dot := strings.IndexByte(suffix, '.')
		if dot < 0 {
			// default rule: an unlisted single-label TLD
			break
		}
		suffix, icann = publicsuffix.PublicSuffix(suffix[dot+1:])
	}
	return suffix
}

// splitHost returns the registrable domain, the subdomain and the public suffix
func splitHost(host string, isIP bool) (domain, subdomain, suffix string) {
	if isIP || host == "" || strings.HasPrefix(host, ".") || strings.Contains(host, "..") {
		return host, "", ""
	}
	suffix = icannSuffix(host)
	if host == suffix || !strings.HasSuffix(host, "."+suffix) {
		// host is itself a suffix, e.g. "localhost"
		return host, "", ""
	}
	rest := strings.TrimSuffix(host, "."+suffix)
	dot := strings.LastIndexByte(rest, '.')
	if dot < 0 {
		return host, "", suffix
	}
	return rest[dot+1:] + "." + suffix, rest[:dot], suffix
}
