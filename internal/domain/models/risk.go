package models

import (
	"errors"
	"math"
)

// ErrInvalidInput is returned when caller-supplied data fails validation
var ErrInvalidInput = errors.New("invalid input")

// RiskLevel is the discrete classification of a risk score
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// RiskLevels lists every level in enumeration order, least severe first
var RiskLevels = []RiskLevel{
	RiskLevelLow,
	RiskLevelMedium,
	RiskLevelHigh,
	RiskLevelCritical,
}

// Score breakpoints shared by every scorer
const (
	MediumRiskThreshold   = 25.0
	HighRiskThreshold     = 50.0
	CriticalRiskThreshold = 75.0
	ScamThreshold         = HighRiskThreshold
	MaxRiskScore          = 100.0
)

// LevelForScore maps a score onto its risk level
func LevelForScore(score float64) RiskLevel {
	switch {
	case score >= CriticalRiskThreshold:
		return RiskLevelCritical
	case score >= HighRiskThreshold:
		return RiskLevelHigh
	case score >= MediumRiskThreshold:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// IsScamScore reports whether a score crosses the scam threshold
func IsScamScore(score float64) bool {
	return score >= ScamThreshold
}

// ClampScore bounds a score to [0, MaxRiskScore]
func ClampScore(score float64) float64 {
	return math.Max(0, math.Min(MaxRiskScore, score))
}

// RoundScore rounds to two decimal places
func RoundScore(score float64) float64 {
	return math.Round(score*100) / 100
}

// IsValid reports whether l is one of the four known levels
func (l RiskLevel) IsValid() bool {
	return l.Severity() >= 0
}

// Severity returns the level's position in RiskLevels, or -1 if unknown
func (l RiskLevel) Severity() int {
	for i, level := range RiskLevels {
		if level == l {
			return i
		}
	}
	return -1
}

// Color returns the display color associated with the level
func (l RiskLevel) Color() string {
	switch l {
	case RiskLevelCritical:
		return "#dc3545"
	case RiskLevelHigh:
		return "#fd7e14"
	case RiskLevelMedium:
		return "#ffc107"
	case RiskLevelLow:
		return "#28a745"
	default:
		return "#6c757d"
	}
}

// AnalysisType identifies which scorer produced a verdict
type AnalysisType string

const (
	AnalysisTypeCall AnalysisType = "call"
	AnalysisTypeSMS  AnalysisType = "sms"
)

// IsValid reports whether t is a known analysis type
func (t AnalysisType) IsValid() bool {
	return t == AnalysisTypeCall || t == AnalysisTypeSMS
}

// ScoreSource records how a verdict's score was produced
type ScoreSource string

const (
	ScoreSourceModel         ScoreSource = "model"
	ScoreSourceRules         ScoreSource = "rules"
	ScoreSourceRulesFallback ScoreSource = "rules_fallback" // backend configured but failed
)
