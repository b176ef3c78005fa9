package services

import (
	"fmt"
	"strings"

	"scamshield-lab/internal/domain/models"
	"scamshield-lab/pkg/logger"
)

var phoneNumberCleaner = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// CallAnalyzer scores incoming calls from their metadata
type CallAnalyzer struct {
	rules  *Ruleset
	scorer *FallbackScorer
	logger *logger.Logger
}

// NewCallAnalyzer creates a new call analyzer. backend may be NoBackend().
func NewCallAnalyzer(rules *Ruleset, backend ScoringBackend, log *logger.Logger) *CallAnalyzer {
	return &CallAnalyzer{
		rules:  rules,
		scorer: NewFallbackScorer("call", backend, log),
		logger: log.WithComponent("call-analyzer"),
	}
}

// Analyze produces a verdict for one call
func (a *CallAnalyzer) Analyze(in models.CallInput) (*models.CallVerdict, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	features := a.ExtractFeatures(in)
	score, source := a.scorer.Score(features.Vector(), func() float64 {
		return a.ruleScore(features)
	})
	score = models.RoundScore(models.ClampScore(score))
	level := models.LevelForScore(score)

	verdict := &models.CallVerdict{
		PhoneNumber:     in.PhoneNumber,
		FormattedNumber: FormatPhoneNumber(in.PhoneNumber),
		Region:          PhoneRegion(in.PhoneNumber),
		Duration:        in.Duration,
		CallFrequency:   in.CallFrequency,
		IsUnknown:       in.IsUnknown,
		IsInternational: features.IsInternational,
		RiskScore:       score,
		RiskLevel:       level,
		IsScam:          models.IsScamScore(score),
		ScoreSource:     source,
		Features:        features,
		Explanation:     callExplanation(features),
		Recommendations: callRecommendations(level, features),
	}

	a.logger.Debug().
		Float64("risk_score", verdict.RiskScore).
		Str("risk_level", string(verdict.RiskLevel)).
		Str("score_source", string(source)).
		Msg("call analyzed")

	return verdict, nil
}

// ExtractFeatures derives the call features; it is a pure function of in
func (a *CallAnalyzer) ExtractFeatures(in models.CallInput) models.CallFeatures {
	number := phoneNumberCleaner.Replace(in.PhoneNumber)

	international := strings.HasPrefix(number, "+") ||
		(len(number) > 10 && strings.HasPrefix(number, "00"))

	var countryCode string
	if international {
		switch {
		case strings.HasPrefix(number, "+"):
			countryCode = substr(number, 1, 4)
		case strings.HasPrefix(number, "00"):
			countryCode = substr(number, 2, 5)
		}
	}

	digits := strings.ReplaceAll(number, "+", "")
	timeRisk := in.TimeOfDay.RiskWeight()

	return models.CallFeatures{
		Duration:                in.Duration,
		CallFrequency:           in.CallFrequency,
		IsUnknown:               in.IsUnknown,
		IsInternational:         international,
		CountryCode:             countryCode,
		IsRiskyCountry:          a.rules.isRiskyCountry(number),
		VeryShortCall:           in.Duration < 10,
		ShortCall:               in.Duration >= 10 && in.Duration < 30,
		NormalCall:              in.Duration >= 30 && in.Duration < 300,
		LongCall:                in.Duration >= 300,
		SingleCall:              in.CallFrequency == 1,
		RepeatedCalls:           in.CallFrequency > 1,
		ExcessiveCalls:          in.CallFrequency > 5,
		HasRepeatedDigits:       hasRepeatedDigit(digits, 4),
		HasSequentialDigits:     containsAny(digits, a.rules.DigitSequences),
		NumberLength:            len(number),
		TimeRisk:                timeRisk,
		SuspiciousTime:          timeRisk >= 3,
		UnknownAndInternational: in.IsUnknown && international,
		ShortAndRepeated:        in.Duration < 30 && in.CallFrequency > 1,
	}
}

func (a *CallAnalyzer) ruleScore(f models.CallFeatures) float64 {
	score := 0.0

	if f.IsUnknown {
		score += 20
	}
	if f.UnknownAndInternational {
		score += 25
	}
	if f.IsRiskyCountry {
		score += 30
	}
	if f.VeryShortCall {
		score += 15
	}
	if f.ExcessiveCalls {
		score += 25
	} else if f.RepeatedCalls {
		score += 10
	}
	if f.HasRepeatedDigits {
		score += 10
	}
	if f.HasSequentialDigits {
		score += 10
	}
	if f.SuspiciousTime {
		score += 15
	}
	if f.ShortAndRepeated {
		score += 20
	}

	// Normal-looking calls
	if f.NormalCall && !f.IsUnknown {
		score -= 15
	}
	if f.LongCall {
		score -= 10
	}

	return models.ClampScore(score)
}

func callExplanation(f models.CallFeatures) []string {
	var out []string

	if f.IsUnknown {
		out = append(out, "Number is not in your contacts")
	}
	if f.IsInternational {
		out = append(out, "International call")
	}
	if f.IsRiskyCountry {
		out = append(out, "Call originates from high-risk country")
	}
	if f.VeryShortCall {
		out = append(out, "Very short call duration (possible robocall)")
	}
	if f.ExcessiveCalls {
		out = append(out, fmt.Sprintf("Excessive call frequency (%d calls)", f.CallFrequency))
	} else if f.RepeatedCalls {
		out = append(out, fmt.Sprintf("Multiple calls from this number (%d calls)", f.CallFrequency))
	}
	if f.HasRepeatedDigits {
		out = append(out, "Number contains repeated digit patterns")
	}
	if f.HasSequentialDigits {
		out = append(out, "Number contains sequential digits")
	}
	if f.SuspiciousTime {
		out = append(out, "Call at unusual time (late night/early morning)")
	}

	if len(out) == 0 {
		out = append(out, noRiskIndicators)
	}
	return out
}

func callRecommendations(level models.RiskLevel, f models.CallFeatures) []string {
	var out []string

	switch level {
	case models.RiskLevelCritical, models.RiskLevelHigh:
		out = append(out,
			"Do NOT answer calls from this number",
			"Block this number immediately",
			"Do NOT call back",
			"Report to your phone carrier or FTC",
		)
		if f.IsInternational {
			out = append(out, "Enable international call blocking on your device")
		}
	case models.RiskLevelMedium:
		out = append(out,
			"Exercise caution when answering",
			"Do not provide personal information",
			"Ask for caller credentials and verify independently",
			"Consider blocking if they call repeatedly",
		)
	default:
		out = append(out,
			"Call appears relatively safe",
			"Still verify identity if they request sensitive information",
		)
	}

	return append(out,
		"Never share passwords, PINs, or account numbers over the phone",
		"Legitimate organizations will not pressure you for immediate action",
	)
}

const noRiskIndicators = "No significant risk indicators detected"

func hasRepeatedDigit(s string, threshold int) bool {
	var counts [10]int
	for _, r := range s {
		if r >= '0' && r <= '9' {
			counts[r-'0']++
			if counts[r-'0'] >= threshold {
				return true
			}
		}
	}
	return false
}

// substr slices s by byte offsets, clamped to its length
func substr(s string, from, to int) string {
	if from >= len(s) {
		return ""
	}
	return s[from:min(to, len(s))]
}
