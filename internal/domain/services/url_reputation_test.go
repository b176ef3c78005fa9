package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scamshield-lab/pkg/logger"
)

func newTestURLAnalyzer() *URLAnalyzer {
	return NewURLAnalyzer(DefaultRuleset(), logger.NewNop())
}

func TestURLAnalyzer_Analyze(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		wantScore   int
		suspicious  bool
		wantFactors []string
	}{
		{
			name:        "trusted https domain",
			url:         "https://google.com",
			wantScore:   0,
			wantFactors: []string{"Domain is on trusted list"},
		},
		{
			name:       "ip address host",
			url:        "http://192.168.1.1/login",
			wantScore:  65,
			suspicious: true,
			wantFactors: []string{
				"Uses IP address instead of domain name",
				"Not using secure HTTPS protocol",
				"Contains suspicious keywords: login",
				"Contains numbers in domain name",
			},
		},
		{
			name:       "risky tld with keywords",
			url:        "http://secure-banking-verify.tk/account",
			wantScore:  80,
			suspicious: true,
			wantFactors: []string{
				"Not using secure HTTPS protocol",
				"Contains suspicious keywords: verify, account, secure, banking",
				"Uses risky top-level domain (.tk)",
			},
		},
		{
			name:      "shortener without scheme",
			url:       "bit.ly/abc",
			wantScore: 40,
			wantFactors: []string{
				"Not using secure HTTPS protocol",
				"Uses URL shortening service (hides destination)",
			},
		},
		{
			name:        "lookalike digits",
			url:         "https://amaz0n-security.com",
			wantScore:   10,
			wantFactors: []string{"Contains numbers in domain name"},
		},
		{
			name:        "non-standard port",
			url:         "https://example.com:8080/",
			wantScore:   20,
			wantFactors: []string{"Uses non-standard port: 8080"},
		},
		{
			name:       "userinfo masking",
			url:        "http://paypal.com@evil.example/",
			wantScore:  60,
			suspicious: true,
			wantFactors: []string{
				"Not using secure HTTPS protocol",
				"Contains suspicious keywords: paypal",
				"Contains @ symbol (potential domain masking)",
			},
		},
	}

	a := newTestURLAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.url)
			assert.Empty(t, got.Error)
			assert.Equal(t, tt.wantScore, got.RiskScore)
			assert.Equal(t, tt.suspicious, got.IsSuspicious)
			assert.Equal(t, tt.wantFactors, got.RiskFactors)
		})
	}
}

func TestURLAnalyzer_Fields(t *testing.T) {
	a := newTestURLAnalyzer()

	got := a.Analyze("bit.ly/abc")
	assert.Equal(t, "http://bit.ly/abc", got.URL)
	assert.Equal(t, "bit.ly", got.Domain)
	assert.True(t, got.IsShortened)
	assert.False(t, got.IsHTTPS)

	got = a.Analyze("https://mail.google.com/inbox")
	assert.Equal(t, "google.com", got.Domain)
	assert.Equal(t, "mail", got.Subdomain)
	assert.Equal(t, "com", got.TLD)
	assert.True(t, got.IsTrusted)
	assert.True(t, got.IsHTTPS)
	assert.Equal(t, 0, got.RiskScore)

	got = a.Analyze("http://192.168.1.1/login")
	assert.Equal(t, "192.168.1.1", got.Domain)
	assert.Empty(t, got.TLD)
}

func TestURLAnalyzer_TrustedOffsetAppliesLast(t *testing.T) {
	a := newTestURLAnalyzer()

	// 15 (http) + 10 (login) - 30, floored at zero
	got := a.Analyze("http://github.com/login")
	assert.True(t, got.IsTrusted)
	assert.Equal(t, 0, got.RiskScore)
}

func TestURLAnalyzer_SubdomainsAndQuery(t *testing.T) {
	a := newTestURLAnalyzer()

	got := a.Analyze("https://a.b.c.example.com/?a=1&b=2&c=3&d=4&e=5&f=6")
	assert.Equal(t, "a.b.c", got.Subdomain)
	assert.Equal(t, 35, got.RiskScore)
	assert.Contains(t, got.RiskFactors, "Multiple subdomains detected (3)")
	assert.Contains(t, got.RiskFactors, "Many query parameters (6)")
}

func TestURLAnalyzer_RiskyTLDMatchesWholeLabel(t *testing.T) {
	a := newTestURLAnalyzer()

	got := a.Analyze("https://example.top")
	assert.Contains(t, got.RiskFactors, "Uses risky top-level domain (.top)")

	got = a.Analyze("https://example.shop")
	assert.NotContains(t, got.RiskFactors, "Uses risky top-level domain (.shop)")
	assert.Equal(t, 0, got.RiskScore)
}

func TestURLAnalyzer_MalformedURL(t *testing.T) {
	a := newTestURLAnalyzer()

	results := a.AnalyzeMany([]string{"http://[::1", "https://google.com"})
	require.Len(t, results, 2)

	assert.Equal(t, "http://[::1", results[0].URL)
	assert.Equal(t, 50, results[0].RiskScore)
	assert.True(t, results[0].IsSuspicious)
	assert.NotEmpty(t, results[0].Error)
	assert.Empty(t, results[0].RiskFactors)

	assert.Empty(t, results[1].Error)
	assert.Equal(t, 0, results[1].RiskScore)
}

func TestURLAnalyzer_ScoreIsCapped(t *testing.T) {
	a := newTestURLAnalyzer()

	got := a.Analyze("http://verify-account-secure-login-update.confirm.banking.password.tk:8080/@" +
		"?a=1&b=2&c=3&d=4&e=5&f=6")
	assert.Equal(t, 100, got.RiskScore)
	assert.True(t, got.IsSuspicious)
}

func TestURLAnalyzer_Concurrent(t *testing.T) {
	a := newTestURLAnalyzer()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := a.Analyze("http://secure-banking-verify.tk/account")
			assert.Equal(t, 80, got.RiskScore)
		}()
	}
	wg.Wait()
}

func TestURLAnalyzer_SafetyRecommendation(t *testing.T) {
	a := newTestURLAnalyzer()

	assert.Contains(t, a.SafetyRecommendation(80), "DANGER")
	assert.Contains(t, a.SafetyRecommendation(75), "DANGER")
	assert.Contains(t, a.SafetyRecommendation(50), "WARNING")
	assert.Contains(t, a.SafetyRecommendation(25), "CAUTION")
	assert.Equal(t,
		"This link appears relatively safe, but always exercise caution with unfamiliar URLs.",
		a.SafetyRecommendation(0))
}

func TestExtractURLs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "explicit url",
			text: "Verify at http://secure-verify.tk/account or lose access",
			want: []string{"http://secure-verify.tk/account"},
		},
		{
			name: "bare domain gets a scheme",
			text: "Visit www.example.com/offer today",
			want: []string{"http://www.example.com/offer"},
		},
		{
			name: "explicit first then bare",
			text: "See https://bank.com/a and also evil.xyz",
			want: []string{"https://bank.com/a", "http://evil.xyz"},
		},
		{
			name: "no urls",
			text: "Your appointment is tomorrow at 10",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractURLs(tt.text))
		})
	}
}

func TestURLAnalyzer_StrayPercent(t *testing.T) {
	a := newTestURLAnalyzer()

	got := a.Analyze("http://shop.com/50%off")
	assert.Empty(t, got.Error)
	assert.Equal(t, "http://shop.com/50%off", got.URL)
	assert.Equal(t, 15, got.RiskScore)
	assert.False(t, got.IsSuspicious)
	assert.Equal(t, []string{"Not using secure HTTPS protocol"}, got.RiskFactors)

	// valid escapes are left alone
	got = a.Analyze("https://example.com/a%20b?q=100%")
	assert.Empty(t, got.Error)
	assert.Equal(t, 0, got.RiskScore)

	assert.Equal(t, "/50%25off", escapeStrayPercent("/50%off"))
	assert.Equal(t, "/a%20b%25", escapeStrayPercent("/a%20b%"))
	assert.Equal(t, "/plain", escapeStrayPercent("/plain"))
}

func TestURLAnalyzer_KeywordTable(t *testing.T) {
	a := newTestURLAnalyzer()

	assert.Len(t, DefaultRuleset().SuspiciousURLKeywords, 24)

	got := a.Analyze("https://example.com/invoice")
	assert.Equal(t, 0, got.RiskScore)
	assert.Empty(t, got.RiskFactors)

	got = a.Analyze("https://my.wallet-app.com/signin")
	assert.Equal(t, 0, got.RiskScore)
}

func TestURLAnalyzer_PrivateSuffixes(t *testing.T) {
	a := newTestURLAnalyzer()

	got := a.Analyze("https://evil.github.io/page")
	assert.Equal(t, "github.io", got.Domain)
	assert.Equal(t, "evil", got.Subdomain)
	assert.Equal(t, "io", got.TLD)

	got = a.Analyze("https://news.bbc.co.uk")
	assert.Equal(t, "bbc.co.uk", got.Domain)
	assert.Equal(t, "news", got.Subdomain)
	assert.Equal(t, "co.uk", got.TLD)

	got = a.Analyze("http://localhost:3000/")
	assert.Equal(t, "localhost", got.Domain)
	assert.Empty(t, got.TLD)
}
