package streaming

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"scamshield-lab/internal/domain/models"
)

// EventType represents the type of analysis event
type EventType string

const (
	EventTypeScamDetected EventType = "scam_detected"
)

// AnalysisEvent announces a verdict that crossed the scam threshold
type AnalysisEvent struct {
	ID        string              `json:"id"`
	Type      EventType           `json:"type"`
	Timestamp time.Time           `json:"timestamp"`
	Source    models.AnalysisType `json:"source"`
	Subject   string              `json:"subject"`
	RiskLevel models.RiskLevel    `json:"risk_level"`
	RiskScore float64             `json:"risk_score"`
	Summary   []string            `json:"summary,omitempty"`
}

// NewCallEvent creates an event from a call verdict
func NewCallEvent(v *models.CallVerdict) *AnalysisEvent {
	return newEvent(models.AnalysisTypeCall, v.PhoneNumber, v.RiskLevel, v.RiskScore, v.Explanation)
}

// NewSMSEvent creates an event from a message verdict
func NewSMSEvent(v *models.MessageVerdict) *AnalysisEvent {
	return newEvent(models.AnalysisTypeSMS, v.Sender, v.RiskLevel, v.RiskScore, v.Explanation)
}

func newEvent(source models.AnalysisType, subject string, level models.RiskLevel, score float64, summary []string) *AnalysisEvent {
	return &AnalysisEvent{
		ID:        uuid.New().String(),
		Type:      EventTypeScamDetected,
		Timestamp: time.Now().UTC(),
		Source:    source,
		Subject:   subject,
		RiskLevel: level,
		RiskScore: score,
		Summary:   slices.Clone(summary),
	}
}

// SubjectFor builds the NATS subject for an event:
// <prefix>.analysis.<source>.<level>
func SubjectFor(prefix string, event *AnalysisEvent) string {
	level := strings.ToLower(string(event.RiskLevel))
	if level == "" {
		level = "unknown"
	}
	return fmt.Sprintf("%s.analysis.%s.%s", prefix, event.Source, level)
}

// Subscription filters events delivered to a local subscriber
type Subscription struct {
	// MinLevel drops events below this level (empty = all)
	MinLevel models.RiskLevel `json:"min_level,omitempty"`

	// Sources restricts events to these analysis types (empty = all)
	Sources []models.AnalysisType `json:"sources,omitempty"`
}

// Matches checks if an event passes the subscription filters
func (s *Subscription) Matches(event *AnalysisEvent) bool {
	if s == nil {
		return true
	}
	if s.MinLevel != "" && event.RiskLevel.Severity() < s.MinLevel.Severity() {
		return false
	}
	if len(s.Sources) > 0 && !slices.Contains(s.Sources, event.Source) {
		return false
	}
	return true
}
