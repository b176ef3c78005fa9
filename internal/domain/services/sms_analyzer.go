package services

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"scamshield-lab/internal/domain/models"
	"scamshield-lab/pkg/logger"
)

var senderCleaner = strings.NewReplacer("+", "", "-", "")

// SMSAnalyzer scores SMS/MMS text and the URLs it carries
type SMSAnalyzer struct {
	rules  *Ruleset
	urls   *URLAnalyzer
	scorer *FallbackScorer
	logger *logger.Logger
}

// NewSMSAnalyzer creates a new SMS analyzer. backend may be NoBackend().
func NewSMSAnalyzer(rules *Ruleset, urls *URLAnalyzer, backend ScoringBackend, log *logger.Logger) *SMSAnalyzer {
	return &SMSAnalyzer{
		rules:  rules,
		urls:   urls,
		scorer: NewFallbackScorer("sms", backend, log),
		logger: log.WithComponent("sms-analyzer"),
	}
}

// Analyze produces a verdict for one message
func (a *SMSAnalyzer) Analyze(in models.MessageInput) (*models.MessageVerdict, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	sender := in.Sender
	if strings.TrimSpace(sender) == "" {
		sender = models.DefaultSender
	}

	urls := ExtractURLs(in.MessageText)
	urlAnalysis := a.urls.AnalyzeMany(urls)

	features := a.ExtractFeatures(in.MessageText, sender, urlAnalysis)
	score, source := a.scorer.Score(features.Vector(), func() float64 {
		return a.ruleScore(features)
	})
	score = models.RoundScore(models.ClampScore(score))
	level := models.LevelForScore(score)

	verdict := &models.MessageVerdict{
		Sender:          sender,
		MessageText:     in.MessageText,
		URLs:            urls,
		URLAnalysis:     urlAnalysis,
		HasURL:          len(urls) > 0,
		RiskScore:       score,
		RiskLevel:       level,
		IsScam:          models.IsScamScore(score),
		ScoreSource:     source,
		Features:        features,
		Explanation:     smsExplanation(features, urlAnalysis),
		Recommendations: smsRecommendations(level, features),
	}

	a.logger.Debug().
		Float64("risk_score", verdict.RiskScore).
		Str("risk_level", string(verdict.RiskLevel)).
		Int("urls", len(urls)).
		Str("score_source", string(source)).
		Msg("message analyzed")

	return verdict, nil
}

// ExtractFeatures derives the message features from the text, the sender
// and the already analyzed URLs
func (a *SMSAnalyzer) ExtractFeatures(text, sender string, urlAnalysis []models.URLAnalysis) models.MessageFeatures {
	lower := strings.ToLower(text)
	length := utf8.RuneCountInString(text)

	var upper, digits int
	for _, r := range text {
		if unicode.IsUpper(r) {
			upper++
		}
		if unicode.IsDigit(r) {
			digits++
		}
	}
	uppercaseRatio := 0.0
	if length > 0 {
		uppercaseRatio = float64(upper) / float64(length)
	}

	cleanSender := senderCleaner.Replace(sender)

	f := models.MessageFeatures{
		Length:                 length,
		WordCount:              len(strings.Fields(text)),
		ExclamationCount:       strings.Count(text, "!"),
		QuestionCount:          strings.Count(text, "?"),
		UppercaseRatio:         uppercaseRatio,
		DigitCount:             digits,
		SenderIsNumeric:        isAllDigits(cleanSender),
		SenderIsShortcode:      utf8.RuneCountInString(cleanSender) <= 6,
		ScamKeywordCount:       countMatches(lower, a.rules.ScamKeywords),
		LegitimateKeywordCount: countMatches(lower, a.rules.LegitimateKeywords),
		HasUrgency:             containsAny(lower, a.rules.UrgencyWords),
		RequestsAction:         containsAny(lower, a.rules.ActionWords),
		MentionsMoney:          containsAny(lower, a.rules.MoneyWords),
		MentionsAccount:        containsAny(lower, a.rules.AccountWords),
		HasThreat:              containsAny(lower, a.rules.ThreatWords),
	}

	if n := len(urlAnalysis); n > 0 {
		total := 0
		for _, u := range urlAnalysis {
			total += u.RiskScore
		}
		f.HasURLs = true
		f.URLCount = n
		f.AvgURLRisk = float64(total) / float64(n)
	}

	return f
}

func (a *SMSAnalyzer) ruleScore(f models.MessageFeatures) float64 {
	score := 0.0

	if f.HasURLs {
		score += f.AvgURLRisk * 0.4
	}
	score += float64(min(f.ScamKeywordCount*10, 30))

	if f.HasUrgency {
		score += 15
	}
	if f.RequestsAction {
		score += 10
	}
	if f.MentionsMoney {
		score += 15
	}
	if f.MentionsAccount {
		score += 12
	}
	if f.HasThreat {
		score += 20
	}
	if f.ExclamationCount > 2 {
		score += 10
	}
	if f.UppercaseRatio > 0.3 {
		score += 10
	}
	if f.SenderIsShortcode && f.LegitimateKeywordCount == 0 {
		score += 10
	}
	if f.LegitimateKeywordCount > 0 {
		score -= 20
	}

	return models.ClampScore(score)
}

func smsExplanation(f models.MessageFeatures, urlAnalysis []models.URLAnalysis) []string {
	var out []string

	if f.ScamKeywordCount > 3 {
		out = append(out, fmt.Sprintf("Contains %d common scam keywords", f.ScamKeywordCount))
	}
	if f.HasUrgency {
		out = append(out, "Uses urgent language to pressure immediate action")
	}
	if f.HasThreat {
		out = append(out, "Contains threatening language")
	}
	if f.MentionsMoney || f.MentionsAccount {
		out = append(out, "Mentions financial or account information")
	}
	if suspicious := countSuspicious(urlAnalysis); suspicious > 0 {
		out = append(out, fmt.Sprintf("Contains %d suspicious URL(s)", suspicious))
	}
	if f.UppercaseRatio > 0.3 {
		out = append(out, "Excessive use of capital letters")
	}
	if f.ExclamationCount > 2 {
		out = append(out, "Excessive use of exclamation marks")
	}
	if f.SenderIsShortcode {
		out = append(out, "Sent from a short code (common in scams)")
	}

	if len(out) == 0 {
		out = append(out, noRiskIndicators)
	}
	return out
}

func smsRecommendations(level models.RiskLevel, f models.MessageFeatures) []string {
	var out []string

	switch level {
	case models.RiskLevelCritical, models.RiskLevelHigh:
		out = append(out,
			"Do NOT click any links in this message",
			"Do NOT reply or provide any personal information",
			"Delete this message immediately",
			"Block the sender",
		)
		if f.MentionsAccount {
			out = append(out, "Contact your bank/service provider directly using official contact info")
		}
	case models.RiskLevelMedium:
		out = append(out,
			"Exercise caution with this message",
			"Verify the sender through official channels",
			"Do not click links unless you can verify the source",
		)
	default:
		out = append(out,
			"Message appears relatively safe",
			"Still verify sender if requesting sensitive information",
		)
	}

	return append(out, "Never share passwords, PINs, or security codes via SMS")
}

func countSuspicious(urlAnalysis []models.URLAnalysis) int {
	n := 0
	for _, u := range urlAnalysis {
		if u.IsSuspicious {
			n++
		}
	}
	return n
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
