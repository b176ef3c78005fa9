package services

import (
	"slices"
	"strconv"
	"time"

	"scamshield-lab/internal/domain/models"
	"scamshield-lab/pkg/logger"
)

// Blend weights used when both a call and a message verdict are present
const (
	CallWeight = 0.45
	SMSWeight  = 0.55

	maxAssessmentRecommendations = 8
	maxAlertTips                 = 5
	trendBand                    = 5.0
	defaultTrendDays             = 7
)

// RiskEngine aggregates verdicts into assessments, alerts and reports
type RiskEngine struct {
	logger *logger.Logger
}

// NewRiskEngine creates a new risk engine
func NewRiskEngine(log *logger.Logger) *RiskEngine {
	return &RiskEngine{logger: log.WithComponent("risk-engine")}
}

// Assess combines zero, one or two verdicts. Nil verdicts are absent.
func (e *RiskEngine) Assess(call *models.CallVerdict, sms *models.MessageVerdict) *models.Assessment {
	a := &models.Assessment{
		RiskLevel:       models.RiskLevelLow,
		RiskSources:     []models.AnalysisType{},
		Explanation:     []string{},
		Recommendations: []string{},
		CallAnalysis:    call,
		SMSAnalysis:     sms,
	}

	var scores []float64
	var recommendations []string

	if call != nil {
		scores = append(scores, call.RiskScore)
		a.RiskSources = append(a.RiskSources, models.AnalysisTypeCall)
		for _, exp := range call.Explanation {
			a.Explanation = append(a.Explanation, "Call: "+exp)
		}
		recommendations = append(recommendations, call.Recommendations...)
	}
	if sms != nil {
		scores = append(scores, sms.RiskScore)
		a.RiskSources = append(a.RiskSources, models.AnalysisTypeSMS)
		for _, exp := range sms.Explanation {
			a.Explanation = append(a.Explanation, "SMS: "+exp)
		}
		recommendations = append(recommendations, sms.Recommendations...)
	}

	switch len(scores) {
	case 0:
		a.RiskColor = a.RiskLevel.Color()
		return a
	case 1:
		a.OverallRiskScore = scores[0]
	default:
		a.OverallRiskScore = scores[0]*CallWeight + scores[1]*SMSWeight
	}

	a.OverallRiskScore = models.RoundScore(a.OverallRiskScore)
	a.RiskLevel = models.LevelForScore(a.OverallRiskScore)
	a.RiskColor = a.RiskLevel.Color()

	unique := dedupe(recommendations)
	if len(unique) > maxAssessmentRecommendations {
		unique = unique[:maxAssessmentRecommendations]
	}
	a.Recommendations = unique

	return a
}

// GenerateAlert packages an assessment for display
func (e *RiskEngine) GenerateAlert(a *models.Assessment) *models.Alert {
	c := alertCopyFor(a.RiskLevel)

	category := TipsGeneral
	switch {
	case slices.Contains(a.RiskSources, models.AnalysisTypeSMS):
		category = TipsSMS
	case slices.Contains(a.RiskSources, models.AnalysisTypeCall):
		category = TipsCall
	}
	tips := SafetyTips(category)
	if len(tips) > maxAlertTips {
		tips = tips[:maxAlertTips]
	}

	return &models.Alert{
		AlertLevel:         a.RiskLevel,
		Title:              c.title,
		Message:            c.message,
		Icon:               c.icon,
		RecommendedAction:  c.action,
		RiskScore:          a.OverallRiskScore,
		RiskPercentage:     strconv.FormatFloat(a.OverallRiskScore, 'f', -1, 64) + "%",
		Explanation:        a.Explanation,
		Recommendations:    a.Recommendations,
		EducationalContent: educationalContent(a),
		SafetyTips:         tips,
		VisualIndicators:   visualStyleFor(a.RiskLevel),
	}
}

func educationalContent(a *models.Assessment) models.EducationalContent {
	found := []string{}

	if call := a.CallAnalysis; call != nil && slices.Contains(a.RiskSources, models.AnalysisTypeCall) {
		if call.IsInternational {
			found = append(found, "International call from unknown number")
		}
		if call.Features.VeryShortCall {
			found = append(found, "Suspiciously short call duration")
		}
		if call.Features.ExcessiveCalls {
			found = append(found, "Multiple calls from same number")
		}
	}

	if sms := a.SMSAnalysis; sms != nil && slices.Contains(a.RiskSources, models.AnalysisTypeSMS) {
		if sms.HasURL {
			found = append(found, "Message contains URLs")
		}
		if sms.Features.HasUrgency {
			found = append(found, "Urgent language designed to pressure action")
		}
		if sms.Features.HasThreat {
			found = append(found, "Threatening language to create fear")
		}
	}

	return models.EducationalContent{
		WhatWeFound:  found,
		WhyItsRisky:  slices.Clone(whyItsRisky),
		HowScamsWork: slices.Clone(howScamsWork),
	}
}

// Report summarizes a batch of analysis records. Ties for the most common
// level go to the least severe level.
func (e *RiskEngine) Report(records []models.AnalysisRecord) *models.RiskReport {
	report := &models.RiskReport{
		RiskDistribution: map[models.RiskLevel]int{},
	}
	if len(records) == 0 {
		return report
	}

	for _, level := range models.RiskLevels {
		report.RiskDistribution[level] = 0
	}

	total := 0.0
	for _, r := range records {
		if r.IsScam {
			report.ScamCount++
		}
		level := r.RiskLevel
		if level == "" {
			level = models.RiskLevelLow
		}
		if level.IsValid() {
			report.RiskDistribution[level]++
		}
		total += r.RiskScore
	}

	n := len(records)
	report.TotalAnalyses = n
	report.SafeCount = n - report.ScamCount
	report.ScamPercentage = float64(report.ScamCount) / float64(n) * 100
	report.AverageRiskScore = models.RoundScore(total / float64(n))

	best := -1
	for _, level := range models.RiskLevels {
		if count := report.RiskDistribution[level]; count > best {
			best = count
			report.MostCommonRisk = level
		}
	}

	return report
}

// Trend groups records from the last days (counting today) by UTC day and
// compares the later half of the window with the earlier half
func (e *RiskEngine) Trend(records []models.AnalysisRecord, days int, now time.Time) *models.RiskTrend {
	if days <= 0 {
		days = defaultTrendDays
	}
	today := now.UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(days - 1))
	end := today.AddDate(0, 0, 1)

	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[string]*bucket)
	trend := &models.RiskTrend{
		Trend:         models.TrendStable,
		DailyAverages: []models.DailyAverage{},
	}

	for _, r := range records {
		at := r.CreatedAt.UTC()
		if at.Before(start) || !at.Before(end) {
			continue
		}
		if r.IsScam {
			trend.TotalThreatsBlocked++
		}
		key := at.Format(time.DateOnly)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.sum += r.RiskScore
		b.count++
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	peak := -1
	for i, k := range keys {
		b := buckets[k]
		avg := models.RoundScore(b.sum / float64(b.count))
		trend.DailyAverages = append(trend.DailyAverages, models.DailyAverage{
			Date:         k,
			AverageScore: avg,
			Count:        b.count,
		})
		if peak < 0 || avg > trend.DailyAverages[peak].AverageScore {
			peak = i
		}
	}
	if peak >= 0 {
		day := trend.DailyAverages[peak].Date
		trend.PeakRiskDay = &day
	}

	n := len(trend.DailyAverages)
	if n < 2 {
		return trend
	}
	half := n / 2
	earlier := meanScore(trend.DailyAverages[:half])
	later := meanScore(trend.DailyAverages[n-half:])
	switch delta := later - earlier; {
	case delta > trendBand:
		trend.Trend = models.TrendIncreasing
	case delta < -trendBand:
		trend.Trend = models.TrendDecreasing
	}

	return trend
}

func meanScore(days []models.DailyAverage) float64 {
	if len(days) == 0 {
		return 0
	}
	total := 0.0
	for _, d := range days {
		total += d.AverageScore
	}
	return total / float64(len(days))
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
