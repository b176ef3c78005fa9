package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scamshield-lab/internal/domain/models"
	"scamshield-lab/pkg/logger"
)

func scamCallInput() models.CallInput {
	return models.CallInput{
		PhoneNumber:   "+2348012345678",
		Duration:      8,
		CallFrequency: 3,
		IsUnknown:     true,
		TimeOfDay:     models.TimeOfDayNight,
	}
}

func safeCallInput() models.CallInput {
	return models.CallInput{
		PhoneNumber:   "5552019438",
		Duration:      120,
		CallFrequency: 1,
		IsUnknown:     false,
		TimeOfDay:     models.TimeOfDayBusinessHours,
	}
}

func TestCallAnalyzer_ScamCall(t *testing.T) {
	a := NewCallAnalyzer(DefaultRuleset(), NoBackend(), logger.NewNop())

	v, err := a.Analyze(scamCallInput())
	require.NoError(t, err)

	assert.Equal(t, 100.0, v.RiskScore)
	assert.Equal(t, models.RiskLevelCritical, v.RiskLevel)
	assert.True(t, v.IsScam)
	assert.True(t, v.IsInternational)
	assert.Equal(t, models.ScoreSourceRules, v.ScoreSource)

	f := v.Features
	assert.Equal(t, "234", f.CountryCode)
	assert.True(t, f.IsRiskyCountry)
	assert.True(t, f.VeryShortCall)
	assert.True(t, f.RepeatedCalls)
	assert.False(t, f.ExcessiveCalls)
	assert.True(t, f.HasSequentialDigits)
	assert.False(t, f.HasRepeatedDigits)
	assert.True(t, f.SuspiciousTime)
	assert.True(t, f.UnknownAndInternational)
	assert.True(t, f.ShortAndRepeated)

	assert.Equal(t, []string{
		"Number is not in your contacts",
		"International call",
		"Call originates from high-risk country",
		"Very short call duration (possible robocall)",
		"Multiple calls from this number (3 calls)",
		"Number contains sequential digits",
		"Call at unusual time (late night/early morning)",
	}, v.Explanation)
	assert.Contains(t, v.Recommendations, "Enable international call blocking on your device")
	assert.Equal(t, "Legitimate organizations will not pressure you for immediate action",
		v.Recommendations[len(v.Recommendations)-1])
}

func TestCallAnalyzer_SafeCall(t *testing.T) {
	a := NewCallAnalyzer(DefaultRuleset(), NoBackend(), logger.NewNop())

	v, err := a.Analyze(safeCallInput())
	require.NoError(t, err)

	assert.Equal(t, 0.0, v.RiskScore)
	assert.Equal(t, models.RiskLevelLow, v.RiskLevel)
	assert.False(t, v.IsScam)
	assert.Equal(t, "(555) 201-9438", v.FormattedNumber)
	assert.Equal(t, []string{"No significant risk indicators detected"}, v.Explanation)
	assert.Equal(t, []string{
		"Call appears relatively safe",
		"Still verify identity if they request sensitive information",
		"Never share passwords, PINs, or account numbers over the phone",
		"Legitimate organizations will not pressure you for immediate action",
	}, v.Recommendations)
}

func TestCallAnalyzer_MediumCall(t *testing.T) {
	a := NewCallAnalyzer(DefaultRuleset(), NoBackend(), logger.NewNop())

	in := safeCallInput()
	in.IsUnknown = true
	in.Duration = 45
	in.CallFrequency = 2
	in.TimeOfDay = models.TimeOfDayEvening

	v, err := a.Analyze(in)
	require.NoError(t, err)
	assert.Equal(t, 30.0, v.RiskScore)
	assert.Equal(t, models.RiskLevelMedium, v.RiskLevel)
	assert.False(t, v.IsScam)
	assert.Contains(t, v.Recommendations, "Ask for caller credentials and verify independently")
}

func TestCallAnalyzer_ExcessiveCalls(t *testing.T) {
	a := NewCallAnalyzer(DefaultRuleset(), NoBackend(), logger.NewNop())

	in := safeCallInput()
	in.CallFrequency = 8
	f := a.ExtractFeatures(in)
	assert.True(t, f.ExcessiveCalls)
	assert.True(t, f.RepeatedCalls)
	assert.Contains(t, callExplanation(f), "Excessive call frequency (8 calls)")
	assert.NotContains(t, callExplanation(f), "Multiple calls from this number (8 calls)")
}

func TestCallAnalyzer_DoubleZeroPrefix(t *testing.T) {
	a := NewCallAnalyzer(DefaultRuleset(), NoBackend(), logger.NewNop())

	f := a.ExtractFeatures(models.CallInput{
		PhoneNumber:   "00447911123456",
		Duration:      60,
		CallFrequency: 1,
		TimeOfDay:     models.TimeOfDayBusinessHours,
	})
	assert.True(t, f.IsInternational)
	assert.Equal(t, "447", f.CountryCode)
	assert.False(t, f.IsRiskyCountry)
}

func TestCallAnalyzer_RepeatedDigits(t *testing.T) {
	a := NewCallAnalyzer(DefaultRuleset(), NoBackend(), logger.NewNop())

	in := safeCallInput()
	in.PhoneNumber = "555-201-8888"
	f := a.ExtractFeatures(in)
	assert.True(t, f.HasRepeatedDigits)
	assert.Equal(t, 10, f.NumberLength)
}

func TestCallAnalyzer_InvalidInput(t *testing.T) {
	a := NewCallAnalyzer(DefaultRuleset(), NoBackend(), logger.NewNop())

	in := scamCallInput()
	in.CallFrequency = 0
	_, err := a.Analyze(in)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	in = scamCallInput()
	in.TimeOfDay = "lunchtime"
	_, err = a.Analyze(in)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	in = scamCallInput()
	in.PhoneNumber = "   "
	_, err = a.Analyze(in)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

type stubBackend struct {
	prob  float64
	err   error
	panic bool
}

func (s stubBackend) Score([]float64) (float64, error) {
	if s.panic {
		panic("model exploded")
	}
	return s.prob, s.err
}

func TestCallAnalyzer_Backend(t *testing.T) {
	tests := []struct {
		name       string
		backend    ScoringBackend
		wantScore  float64
		wantSource models.ScoreSource
	}{
		{"model", stubBackend{prob: 0.42}, 42, models.ScoreSourceModel},
		{"absent", NoBackend(), 100, models.ScoreSourceRules},
		{"nil", nil, 100, models.ScoreSourceRules},
		{"error", stubBackend{err: errors.New("boom")}, 100, models.ScoreSourceRulesFallback},
		{"out of range", stubBackend{prob: 1.5}, 100, models.ScoreSourceRulesFallback},
		{"negative", stubBackend{prob: -0.1}, 100, models.ScoreSourceRulesFallback},
		{"panic", stubBackend{panic: true}, 100, models.ScoreSourceRulesFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewCallAnalyzer(DefaultRuleset(), tt.backend, logger.NewNop())
			v, err := a.Analyze(scamCallInput())
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, v.RiskScore)
			assert.Equal(t, tt.wantSource, v.ScoreSource)
			assert.Equal(t, models.LevelForScore(tt.wantScore), v.RiskLevel)
		})
	}
}
