package models

import (
	"fmt"
	"strings"
)

// TimeOfDay buckets the hour a call was received
type TimeOfDay string

const (
	TimeOfDayEarlyMorning  TimeOfDay = "early_morning"
	TimeOfDayBusinessHours TimeOfDay = "business_hours"
	TimeOfDayEvening       TimeOfDay = "evening"
	TimeOfDayNight         TimeOfDay = "night"
)

// ParseTimeOfDay validates a time-of-day category
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	switch t := TimeOfDay(s); t {
	case TimeOfDayEarlyMorning, TimeOfDayBusinessHours, TimeOfDayEvening, TimeOfDayNight:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown time_of_day %q", ErrInvalidInput, s)
	}
}

// RiskWeight is the ordinal risk attached to the time bucket
func (t TimeOfDay) RiskWeight() int {
	switch t {
	case TimeOfDayBusinessHours:
		return 1
	case TimeOfDayEvening:
		return 2
	case TimeOfDayEarlyMorning, TimeOfDayNight:
		return 3
	default:
		return 2
	}
}

// CallInput is the raw metadata of one received call
type CallInput struct {
	PhoneNumber   string    `json:"phone_number"`
	Duration      int       `json:"duration"`
	CallFrequency int       `json:"call_frequency"`
	IsUnknown     bool      `json:"is_unknown"`
	TimeOfDay     TimeOfDay `json:"time_of_day"`
}

// Validate rejects input the call scorer cannot use
func (in CallInput) Validate() error {
	if strings.TrimSpace(in.PhoneNumber) == "" {
		return fmt.Errorf("%w: phone_number is required", ErrInvalidInput)
	}
	if in.Duration < 0 {
		return fmt.Errorf("%w: duration must be >= 0", ErrInvalidInput)
	}
	if in.CallFrequency < 1 {
		return fmt.Errorf("%w: call_frequency must be >= 1", ErrInvalidInput)
	}
	if _, err := ParseTimeOfDay(string(in.TimeOfDay)); err != nil {
		return err
	}
	return nil
}

// CallFeatures are the attributes derived from CallInput
type CallFeatures struct {
	Duration                int    `json:"duration"`
	CallFrequency           int    `json:"call_frequency"`
	IsUnknown               bool   `json:"is_unknown"`
	IsInternational         bool   `json:"is_international"`
	CountryCode             string `json:"country_code,omitempty"`
	IsRiskyCountry          bool   `json:"is_risky_country"`
	VeryShortCall           bool   `json:"very_short_call"`
	ShortCall               bool   `json:"short_call"`
	NormalCall              bool   `json:"normal_call"`
	LongCall                bool   `json:"long_call"`
	SingleCall              bool   `json:"single_call"`
	RepeatedCalls           bool   `json:"repeated_calls"`
	ExcessiveCalls          bool   `json:"excessive_calls"`
	HasRepeatedDigits       bool   `json:"has_repeated_digits"`
	HasSequentialDigits     bool   `json:"has_sequential_digits"`
	NumberLength            int    `json:"number_length"`
	TimeRisk                int    `json:"time_risk"`
	SuspiciousTime          bool   `json:"suspicious_time"`
	UnknownAndInternational bool   `json:"unknown_and_international"`
	ShortAndRepeated        bool   `json:"short_and_repeated"`
}

// CallFeatureNames is the order of CallFeatures.Vector
var CallFeatureNames = []string{
	"duration",
	"call_frequency",
	"is_unknown",
	"is_international",
	"is_risky_country",
	"very_short_call",
	"repeated_calls",
	"excessive_calls",
	"has_repeated_digits",
	"has_sequential_digits",
	"time_risk",
	"unknown_and_international",
	"short_and_repeated",
}

// Vector encodes the features in CallFeatureNames order for a scoring backend
func (f CallFeatures) Vector() []float64 {
	return []float64{
		float64(f.Duration),
		float64(f.CallFrequency),
		boolToFloat(f.IsUnknown),
		boolToFloat(f.IsInternational),
		boolToFloat(f.IsRiskyCountry),
		boolToFloat(f.VeryShortCall),
		boolToFloat(f.RepeatedCalls),
		boolToFloat(f.ExcessiveCalls),
		boolToFloat(f.HasRepeatedDigits),
		boolToFloat(f.HasSequentialDigits),
		float64(f.TimeRisk),
		boolToFloat(f.UnknownAndInternational),
		boolToFloat(f.ShortAndRepeated),
	}
}

// CallVerdict is the call scorer's result
type CallVerdict struct {
	PhoneNumber     string       `json:"phone_number"`
	FormattedNumber string       `json:"formatted_number"`
	Region          string       `json:"region,omitempty"`
	Duration        int          `json:"duration"`
	CallFrequency   int          `json:"call_frequency"`
	IsUnknown       bool         `json:"is_unknown"`
	IsInternational bool         `json:"is_international"`
	RiskScore       float64      `json:"risk_score"`
	RiskLevel       RiskLevel    `json:"risk_level"`
	IsScam          bool         `json:"is_scam"`
	ScoreSource     ScoreSource  `json:"score_source"`
	Features        CallFeatures `json:"features"`
	Explanation     []string     `json:"explanation"`
	Recommendations []string     `json:"recommendations"`
}

// Record flattens the verdict for reporting
func (v *CallVerdict) Record() AnalysisRecord {
	return AnalysisRecord{
		Type:      AnalysisTypeCall,
		Subject:   v.PhoneNumber,
		RiskScore: v.RiskScore,
		RiskLevel: v.RiskLevel,
		IsScam:    v.IsScam,
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
