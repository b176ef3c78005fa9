package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxMessageLength is the longest message text accepted, in characters
	MaxMessageLength = 5000
	// DefaultSender is used when the sender is not supplied
	DefaultSender = "Unknown"
)

// MessageInput is one SMS/MMS to analyze
type MessageInput struct {
	MessageText string `json:"message_text"`
	Sender      string `json:"sender"`
}

// Validate rejects empty or oversized messages
func (in MessageInput) Validate() error {
	if strings.TrimSpace(in.MessageText) == "" {
		return fmt.Errorf("%w: message_text is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(in.MessageText) > MaxMessageLength {
		return fmt.Errorf("%w: message_text exceeds %d characters", ErrInvalidInput, MaxMessageLength)
	}
	return nil
}

// MessageFeatures are the attributes derived from a message and its sender
type MessageFeatures struct {
	Length                 int     `json:"length"`
	WordCount              int     `json:"word_count"`
	ExclamationCount       int     `json:"exclamation_count"`
	QuestionCount          int     `json:"question_count"`
	UppercaseRatio         float64 `json:"uppercase_ratio"`
	DigitCount             int     `json:"digit_count"`
	SenderIsNumeric        bool    `json:"sender_is_numeric"`
	SenderIsShortcode      bool    `json:"sender_is_shortcode"`
	ScamKeywordCount       int     `json:"scam_keyword_count"`
	LegitimateKeywordCount int     `json:"legitimate_keyword_count"`
	HasURLs                bool    `json:"has_urls"`
	URLCount               int     `json:"url_count"`
	AvgURLRisk             float64 `json:"avg_url_risk"`
	HasUrgency             bool    `json:"has_urgency"`
	RequestsAction         bool    `json:"requests_action"`
	MentionsMoney          bool    `json:"mentions_money"`
	MentionsAccount        bool    `json:"mentions_account"`
	HasThreat              bool    `json:"has_threat"`
}

// MessageFeatureNames is the order of MessageFeatures.Vector
var MessageFeatureNames = []string{
	"length",
	"word_count",
	"exclamation_count",
	"question_count",
	"uppercase_ratio",
	"digit_count",
	"scam_keyword_count",
	"has_urls",
	"url_count",
	"has_urgency",
	"requests_action",
	"mentions_money",
	"mentions_account",
	"has_threat",
}

// Vector encodes the features in MessageFeatureNames order for a scoring backend
func (f MessageFeatures) Vector() []float64 {
	return []float64{
		float64(f.Length),
		float64(f.WordCount),
		float64(f.ExclamationCount),
		float64(f.QuestionCount),
		f.UppercaseRatio,
		float64(f.DigitCount),
		float64(f.ScamKeywordCount),
		boolToFloat(f.HasURLs),
		float64(f.URLCount),
		boolToFloat(f.HasUrgency),
		boolToFloat(f.RequestsAction),
		boolToFloat(f.MentionsMoney),
		boolToFloat(f.MentionsAccount),
		boolToFloat(f.HasThreat),
	}
}

// MessageVerdict is the message scorer's result
type MessageVerdict struct {
	Sender          string          `json:"sender"`
	MessageText     string          `json:"message_text"`
	URLs            []string        `json:"urls"`
	URLAnalysis     []URLAnalysis   `json:"url_analysis"`
	HasURL          bool            `json:"has_url"`
	RiskScore       float64         `json:"risk_score"`
	RiskLevel       RiskLevel       `json:"risk_level"`
	IsScam          bool            `json:"is_scam"`
	ScoreSource     ScoreSource     `json:"score_source"`
	Features        MessageFeatures `json:"features"`
	Explanation     []string        `json:"explanation"`
	Recommendations []string        `json:"recommendations"`
}

// Record flattens the verdict for reporting
func (v *MessageVerdict) Record() AnalysisRecord {
	return AnalysisRecord{
		Type:      AnalysisTypeSMS,
		Subject:   v.Sender,
		RiskScore: v.RiskScore,
		RiskLevel: v.RiskLevel,
		IsScam:    v.IsScam,
	}
}
