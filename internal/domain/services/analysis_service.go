package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scamshield-lab/internal/domain/models"
	"scamshield-lab/pkg/logger"
)

// ErrHistoryDisabled is returned by history queries when no store is configured
var ErrHistoryDisabled = errors.New("analysis history is disabled")

const (
	defaultReportLimit = 1000
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

// HistoryRepository stores flattened verdicts
type HistoryRepository interface {
	SaveCallAnalysis(ctx context.Context, v *models.CallVerdict) (*models.AnalysisRecord, error)
	SaveSMSAnalysis(ctx context.Context, v *models.MessageVerdict) (*models.AnalysisRecord, error)
	RecentAnalyses(ctx context.Context, t models.AnalysisType, limit int) ([]models.AnalysisRecord, error)
	AnalysesSince(ctx context.Context, since time.Time, limit int) ([]models.AnalysisRecord, error)
	// Statistics sums the daily counters from the UTC day of since onwards
	Statistics(ctx context.Context, since time.Time) (map[models.AnalysisType]models.TypeStatistics, error)
	RiskDistribution(ctx context.Context) (map[models.RiskLevel]int64, error)
	ClearOldRecords(ctx context.Context, days int) (int64, error)
}

// EventPublisher announces scam verdicts
type EventPublisher interface {
	PublishCallVerdict(ctx context.Context, v *models.CallVerdict) error
	PublishSMSVerdict(ctx context.Context, v *models.MessageVerdict) error
}

// AnalysisService runs the analyzers and the risk engine, then records and
// announces the verdicts. History and Events are optional.
type AnalysisService struct {
	calls  *CallAnalyzer
	sms    *SMSAnalyzer
	urls   *URLAnalyzer
	engine *RiskEngine

	history     HistoryRepository
	events      EventPublisher
	reportLimit int
	now         func() time.Time
	logger      *logger.Logger
}

// AnalysisServiceDeps holds the collaborators of AnalysisService
type AnalysisServiceDeps struct {
	Calls       *CallAnalyzer
	SMS         *SMSAnalyzer
	URLs        *URLAnalyzer
	Engine      *RiskEngine
	History     HistoryRepository
	Events      EventPublisher
	ReportLimit int
	Logger      *logger.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(deps AnalysisServiceDeps) *AnalysisService {
	limit := deps.ReportLimit
	if limit <= 0 {
		limit = defaultReportLimit
	}
	return &AnalysisService{
		calls:       deps.Calls,
		sms:         deps.SMS,
		urls:        deps.URLs,
		engine:      deps.Engine,
		history:     deps.History,
		events:      deps.Events,
		reportLimit: limit,
		now:         time.Now,
		logger:      deps.Logger.WithComponent("analysis-service"),
	}
}

// HistoryEnabled reports whether verdicts are persisted
func (s *AnalysisService) HistoryEnabled() bool {
	return s.history != nil
}

// AnalyzeCall scores a call and wraps it in an assessment and alert
func (s *AnalysisService) AnalyzeCall(ctx context.Context, in models.CallInput) (*models.CallAnalysisResult, error) {
	verdict, err := s.calls.Analyze(in)
	if err != nil {
		return nil, err
	}

	result := &models.CallAnalysisResult{
		AnalysisID: s.recordCall(ctx, verdict),
		Analysis:   verdict,
	}
	result.Assessment = s.engine.Assess(verdict, nil)
	result.Alert = s.engine.GenerateAlert(result.Assessment)
	return result, nil
}

// AnalyzeSMS scores a message and wraps it in an assessment and alert
func (s *AnalysisService) AnalyzeSMS(ctx context.Context, in models.MessageInput) (*models.SMSAnalysisResult, error) {
	verdict, err := s.sms.Analyze(in)
	if err != nil {
		return nil, err
	}

	result := &models.SMSAnalysisResult{
		AnalysisID: s.recordSMS(ctx, verdict),
		Analysis:   verdict,
	}
	result.Assessment = s.engine.Assess(nil, verdict)
	result.Alert = s.engine.GenerateAlert(result.Assessment)
	return result, nil
}

// Assess analyzes whichever of call and message are given and blends them.
// With neither, the degenerate LOW assessment is returned.
func (s *AnalysisService) Assess(ctx context.Context, call *models.CallInput, msg *models.MessageInput) (*models.CombinedResult, error) {
	var callVerdict *models.CallVerdict
	var smsVerdict *models.MessageVerdict

	if call != nil {
		v, err := s.calls.Analyze(*call)
		if err != nil {
			return nil, fmt.Errorf("call: %w", err)
		}
		callVerdict = v
	}
	if msg != nil {
		v, err := s.sms.Analyze(*msg)
		if err != nil {
			return nil, fmt.Errorf("sms: %w", err)
		}
		smsVerdict = v
	}

	if callVerdict != nil {
		s.recordCall(ctx, callVerdict)
	}
	if smsVerdict != nil {
		s.recordSMS(ctx, smsVerdict)
	}

	assessment := s.engine.Assess(callVerdict, smsVerdict)
	return &models.CombinedResult{
		Assessment: assessment,
		Alert:      s.engine.GenerateAlert(assessment),
	}, nil
}

// CheckURL analyzes one URL and attaches the safety recommendation
func (s *AnalysisService) CheckURL(raw string) models.URLAnalysis {
	res := s.urls.Analyze(raw)
	res.Recommendation = s.urls.SafetyRecommendation(res.RiskScore)
	return res
}

// CheckURLs analyzes URLs in input order
func (s *AnalysisService) CheckURLs(raws []string) []models.URLAnalysis {
	results := s.urls.AnalyzeMany(raws)
	for i := range results {
		results[i].Recommendation = s.urls.SafetyRecommendation(results[i].RiskScore)
	}
	return results
}

// RecentAnalyses lists the newest stored verdicts of one type
func (s *AnalysisService) RecentAnalyses(ctx context.Context, t models.AnalysisType, limit int) ([]models.AnalysisRecord, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: unknown analysis type %q", models.ErrInvalidInput, t)
	}
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	switch {
	case limit <= 0:
		limit = defaultRecentLimit
	case limit > maxRecentLimit:
		limit = maxRecentLimit
	}
	return s.history.RecentAnalyses(ctx, t, limit)
}

// Statistics gathers the stored counters, the level distribution, and a
// report and trend over the last days
func (s *AnalysisService) Statistics(ctx context.Context, days int) (*models.StatisticsSummary, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", models.ErrInvalidInput)
	}
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}

	// the counters, the report and the trend all cover the same days,
	// today included
	now := s.now().UTC()
	since := now.Truncate(24*time.Hour).AddDate(0, 0, -(days - 1))

	stats, err := s.history.Statistics(ctx, since)
	if err != nil {
		return nil, err
	}
	dist, err := s.history.RiskDistribution(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.history.AnalysesSince(ctx, since, s.reportLimit)
	if err != nil {
		return nil, err
	}
	// only the newest reportLimit records feed the report and the trend
	truncated := len(records) >= s.reportLimit
	if truncated {
		s.logger.Warn().
			Int("days", days).
			Int("report_limit", s.reportLimit).
			Msg("statistics window exceeds report limit, report and trend use the newest records only")
	}

	return &models.StatisticsSummary{
		Days:             days,
		Statistics:       stats,
		RiskDistribution: dist,
		Report:           s.engine.Report(records),
		Trend:            s.engine.Trend(records, days, now),
		ReportTruncated:  truncated,
		GeneratedAt:      now,
	}, nil
}

// ClearOldRecords removes stored verdicts older than days
func (s *AnalysisService) ClearOldRecords(ctx context.Context, days int) (int64, error) {
	if s.history == nil {
		return 0, ErrHistoryDisabled
	}
	if days <= 0 {
		return 0, fmt.Errorf("%w: days must be positive", models.ErrInvalidInput)
	}
	return s.history.ClearOldRecords(ctx, days)
}

// RunRetention clears old records every interval until ctx is done
func (s *AnalysisService) RunRetention(ctx context.Context, days int, interval time.Duration) {
	if s.history == nil || days <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info().Int("retention_days", days).Dur("interval", interval).Msg("retention started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("retention stopped")
			return
		case <-ticker.C:
			if _, err := s.history.ClearOldRecords(ctx, days); err != nil {
				s.logger.Error().Err(err).Msg("failed to clear old records")
			}
		}
	}
}

// persistence and publishing never fail an analysis

func (s *AnalysisService) recordCall(ctx context.Context, v *models.CallVerdict) string {
	var id string
	if s.history != nil {
		rec, err := s.history.SaveCallAnalysis(ctx, v)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to save call analysis")
		} else {
			id = rec.ID.String()
			s.logger.WithAnalysisID(id).Debug().Msg("call analysis saved")
		}
	}
	if s.events != nil && v.IsScam {
		if err := s.events.PublishCallVerdict(ctx, v); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish call verdict")
		}
	}
	return id
}

func (s *AnalysisService) recordSMS(ctx context.Context, v *models.MessageVerdict) string {
	var id string
	if s.history != nil {
		rec, err := s.history.SaveSMSAnalysis(ctx, v)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to save sms analysis")
		} else {
			id = rec.ID.String()
			s.logger.WithAnalysisID(id).Debug().Msg("sms analysis saved")
		}
	}
	if s.events != nil && v.IsScam {
		if err := s.events.PublishSMSVerdict(ctx, v); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish sms verdict")
		}
	}
	return id
}
