package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisRecord is a flattened verdict as stored in history
type AnalysisRecord struct {
	ID        uuid.UUID      `json:"id"`
	Type      AnalysisType   `json:"type"`
	Subject   string         `json:"subject"` // phone number or sender
	RiskScore float64        `json:"risk_score"`
	RiskLevel RiskLevel      `json:"risk_level"`
	IsScam    bool           `json:"is_scam"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// RiskReport summarizes a batch of analysis records
type RiskReport struct {
	TotalAnalyses    int               `json:"total_analyses"`
	ScamCount        int               `json:"scam_count"`
	SafeCount        int               `json:"safe_count"`
	ScamPercentage   float64           `json:"scam_percentage"`
	RiskDistribution map[RiskLevel]int `json:"risk_distribution"`
	AverageRiskScore float64           `json:"average_risk_score"`
	MostCommonRisk   RiskLevel         `json:"most_common_risk,omitempty"`
}

// Trend directions
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// RiskTrend describes how risk moved over a window of days
type RiskTrend struct {
	Trend               string         `json:"trend"`
	DailyAverages       []DailyAverage `json:"daily_averages"`
	PeakRiskDay         *string        `json:"peak_risk_day"`
	TotalThreatsBlocked int            `json:"total_threats_blocked"`
}

// DailyAverage is the mean risk score of the analyses on one UTC day
type DailyAverage struct {
	Date         string  `json:"date"`
	AverageScore float64 `json:"average_score"`
	Count        int     `json:"count"`
}

// TypeStatistics are the stored counters for one analysis type
type TypeStatistics struct {
	Total    int64   `json:"total"`
	Scams    int64   `json:"scams"`
	Safe     int64   `json:"safe"`
	ScamRate float64 `json:"scam_rate"`
}

// StatisticsSummary is the payload of the statistics endpoint
type StatisticsSummary struct {
	Days             int                             `json:"days"`
	Statistics       map[AnalysisType]TypeStatistics `json:"statistics"`
	RiskDistribution map[RiskLevel]int64             `json:"risk_distribution"`
	Report           *RiskReport                     `json:"report"`
	Trend            *RiskTrend                      `json:"trend"`
	ReportTruncated  bool                            `json:"report_truncated,omitempty"`
	GeneratedAt      time.Time                       `json:"generated_at"`
}
