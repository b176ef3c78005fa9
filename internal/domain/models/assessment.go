package models

// Assessment combines zero, one or two verdicts into an overall view
type Assessment struct {
	OverallRiskScore float64         `json:"overall_risk_score"`
	RiskLevel        RiskLevel       `json:"risk_level"`
	RiskColor        string          `json:"risk_color"`
	RiskSources      []AnalysisType  `json:"risk_sources"`
	Explanation      []string        `json:"explanation"`
	Recommendations  []string        `json:"recommendations"`
	CallAnalysis     *CallVerdict    `json:"call_analysis,omitempty"`
	SMSAnalysis      *MessageVerdict `json:"sms_analysis,omitempty"`
}

// IsScam reports whether the overall score crosses the scam threshold
func (a *Assessment) IsScam() bool {
	return IsScamScore(a.OverallRiskScore)
}

// Alert is the user-facing packaging of an assessment
type Alert struct {
	AlertLevel         RiskLevel          `json:"alert_level"`
	Title              string             `json:"title"`
	Message            string             `json:"message"`
	Icon               string             `json:"icon"`
	RecommendedAction  string             `json:"recommended_action"`
	RiskScore          float64            `json:"risk_score"`
	RiskPercentage     string             `json:"risk_percentage"`
	Explanation        []string           `json:"explanation"`
	Recommendations    []string           `json:"recommendations"`
	EducationalContent EducationalContent `json:"educational_content"`
	SafetyTips         []string           `json:"safety_tips"`
	VisualIndicators   VisualIndicators   `json:"visual_indicators"`
}

// EducationalContent explains the finding and how scams operate
type EducationalContent struct {
	WhatWeFound  []string `json:"what_we_found"`
	WhyItsRisky  []string `json:"why_its_risky"`
	HowScamsWork []string `json:"how_scams_work"`
}

// VisualIndicators is the per-level style bundle for rendering an alert
type VisualIndicators struct {
	Color       string `json:"color"`
	Background  string `json:"background"`
	Border      string `json:"border"`
	TextColor   string `json:"text_color"`
	ProgressBar string `json:"progress_bar"`
}

// CallAnalysisResult is a call verdict with its single-source assessment and alert
type CallAnalysisResult struct {
	AnalysisID string       `json:"analysis_id,omitempty"`
	Analysis   *CallVerdict `json:"analysis"`
	Assessment *Assessment  `json:"assessment"`
	Alert      *Alert       `json:"alert"`
}

// SMSAnalysisResult is a message verdict with its single-source assessment and alert
type SMSAnalysisResult struct {
	AnalysisID string          `json:"analysis_id,omitempty"`
	Analysis   *MessageVerdict `json:"analysis"`
	Assessment *Assessment     `json:"assessment"`
	Alert      *Alert          `json:"alert"`
}

// CombinedResult is the assessment of a call and a message taken together
type CombinedResult struct {
	Assessment *Assessment `json:"assessment"`
	Alert      *Alert      `json:"alert"`
}
