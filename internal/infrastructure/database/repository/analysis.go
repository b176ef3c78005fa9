package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"scamshield-lab/internal/domain/models"
	"scamshield-lab/internal/infrastructure/database"
	"scamshield-lab/pkg/logger"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS call_analysis (
	id               UUID PRIMARY KEY,
	phone_number     TEXT NOT NULL,
	duration         INTEGER NOT NULL,
	call_frequency   INTEGER NOT NULL,
	is_unknown       BOOLEAN NOT NULL,
	is_international BOOLEAN NOT NULL,
	risk_score       DOUBLE PRECISION NOT NULL,
	risk_level       TEXT NOT NULL,
	is_scam          BOOLEAN NOT NULL,
	score_source     TEXT NOT NULL,
	details          JSONB,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_call_analysis_created_at ON call_analysis (created_at DESC);

CREATE TABLE IF NOT EXISTS sms_analysis (
	id           UUID PRIMARY KEY,
	sender       TEXT NOT NULL,
	message_text TEXT NOT NULL,
	has_url      BOOLEAN NOT NULL,
	url_count    INTEGER NOT NULL,
	risk_score   DOUBLE PRECISION NOT NULL,
	risk_level   TEXT NOT NULL,
	is_scam      BOOLEAN NOT NULL,
	score_source TEXT NOT NULL,
	details      JSONB,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_sms_analysis_created_at ON sms_analysis (created_at DESC);

CREATE TABLE IF NOT EXISTS risk_statistics (
	analysis_type TEXT NOT NULL,
	date          DATE NOT NULL,
	total_count   INTEGER NOT NULL DEFAULT 0,
	scam_count    INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (analysis_type, date)
);`

const bumpStatisticsSQL = `
	INSERT INTO risk_statistics (analysis_type, date, total_count, scam_count)
	VALUES ($1, $2, 1, $3)
	ON CONFLICT (analysis_type, date) DO UPDATE SET
		total_count = risk_statistics.total_count + 1,
		scam_count  = risk_statistics.scam_count + EXCLUDED.scam_count`

// AnalysisRepository persists call and SMS verdicts and the daily counters
type AnalysisRepository struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(pool *pgxpool.Pool, log *logger.Logger) *AnalysisRepository {
	return &AnalysisRepository{pool: pool, logger: log.WithComponent("analysis-repo")}
}

// EnsureSchema creates the history tables if they do not exist
func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create analysis schema: %w", err)
	}
	return nil
}

// SaveCallAnalysis stores a call verdict and returns its record
func (r *AnalysisRepository) SaveCallAnalysis(ctx context.Context, v *models.CallVerdict) (*models.AnalysisRecord, error) {
	rec := v.Record()
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now().UTC()
	rec.Details = map[string]any{
		"explanation":     v.Explanation,
		"recommendations": v.Recommendations,
		"features":        v.Features,
	}

	err := database.WithTx(ctx, r.pool, r.logger, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO call_analysis (
				id, phone_number, duration, call_frequency, is_unknown, is_international,
				risk_score, risk_level, is_scam, score_source, details, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			rec.ID, v.PhoneNumber, v.Duration, v.CallFrequency, v.IsUnknown, v.IsInternational,
			v.RiskScore, string(v.RiskLevel), v.IsScam, string(v.ScoreSource), rec.Details, rec.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert call analysis: %w", err)
		}
		return bumpStatistics(ctx, tx, models.AnalysisTypeCall, rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveSMSAnalysis stores a message verdict and returns its record
func (r *AnalysisRepository) SaveSMSAnalysis(ctx context.Context, v *models.MessageVerdict) (*models.AnalysisRecord, error) {
	rec := v.Record()
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now().UTC()
	rec.Details = map[string]any{
		"explanation":     v.Explanation,
		"recommendations": v.Recommendations,
		"urls":            v.URLs,
	}

	err := database.WithTx(ctx, r.pool, r.logger, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO sms_analysis (
				id, sender, message_text, has_url, url_count,
				risk_score, risk_level, is_scam, score_source, details, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			rec.ID, v.Sender, v.MessageText, v.HasURL, len(v.URLs),
			v.RiskScore, string(v.RiskLevel), v.IsScam, string(v.ScoreSource), rec.Details, rec.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert sms analysis: %w", err)
		}
		return bumpStatistics(ctx, tx, models.AnalysisTypeSMS, rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// statsDay is the UTC calendar day a counter row is keyed on
func statsDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

func bumpStatistics(ctx context.Context, db database.DBTX, t models.AnalysisType, rec models.AnalysisRecord) error {
	scam := 0
	if rec.IsScam {
		scam = 1
	}
	if _, err := db.Exec(ctx, bumpStatisticsSQL, string(t), statsDay(rec.CreatedAt), scam); err != nil {
		return fmt.Errorf("failed to update risk statistics: %w", err)
	}
	return nil
}

// RecentAnalyses returns the newest records of one type
func (r *AnalysisRepository) RecentAnalyses(ctx context.Context, t models.AnalysisType, limit int) ([]models.AnalysisRecord, error) {
	table, subject, err := tableFor(t)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(`
		SELECT id, %s, risk_score, risk_level, is_scam, details, created_at
		FROM %s
		ORDER BY created_at DESC
		LIMIT $1`, subject, table)

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s analyses: %w", t, err)
	}
	defer rows.Close()

	return scanRecords(rows, t)
}

// AnalysesSince returns records of both types created at or after since,
// newest first
func (r *AnalysisRepository) AnalysesSince(ctx context.Context, since time.Time, limit int) ([]models.AnalysisRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, type, subject, risk_score, risk_level, is_scam, created_at FROM (
			SELECT id, 'call' AS type, phone_number AS subject, risk_score, risk_level, is_scam, created_at
			FROM call_analysis WHERE created_at >= $1
			UNION ALL
			SELECT id, 'sms' AS type, sender AS subject, risk_score, risk_level, is_scam, created_at
			FROM sms_analysis WHERE created_at >= $1
		) a
		ORDER BY created_at DESC
		LIMIT $2`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var records []models.AnalysisRecord
	for rows.Next() {
		var rec models.AnalysisRecord
		var typ, level string
		if err := rows.Scan(&rec.ID, &typ, &rec.Subject, &rec.RiskScore, &level, &rec.IsScam, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		rec.Type = models.AnalysisType(typ)
		rec.RiskLevel = models.RiskLevel(level)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Statistics returns per-type counters over the last days
func (r *AnalysisRepository) Statistics(ctx context.Context, since time.Time) (map[models.AnalysisType]models.TypeStatistics, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT analysis_type, COALESCE(SUM(total_count), 0), COALESCE(SUM(scam_count), 0)
		FROM risk_statistics
		WHERE date >= $1::date
		GROUP BY analysis_type`, statsDay(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query risk statistics: %w", err)
	}
	defer rows.Close()

	stats := map[models.AnalysisType]models.TypeStatistics{
		models.AnalysisTypeCall: {},
		models.AnalysisTypeSMS:  {},
	}
	for rows.Next() {
		var typ string
		var total, scams int64
		if err := rows.Scan(&typ, &total, &scams); err != nil {
			return nil, fmt.Errorf("failed to scan risk statistics: %w", err)
		}
		stats[models.AnalysisType(typ)] = NewTypeStatistics(total, scams)
	}
	return stats, rows.Err()
}

// NewTypeStatistics derives the safe count and scam rate from raw counters
func NewTypeStatistics(total, scams int64) models.TypeStatistics {
	s := models.TypeStatistics{Total: total, Scams: scams, Safe: total - scams}
	if total > 0 {
		s.ScamRate = float64(scams) / float64(total) * 100
	}
	return s
}

// RiskDistribution counts stored verdicts per level across both tables
func (r *AnalysisRepository) RiskDistribution(ctx context.Context) (map[models.RiskLevel]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT risk_level, COUNT(*) FROM (
			SELECT risk_level FROM call_analysis
			UNION ALL
			SELECT risk_level FROM sms_analysis
		) a
		GROUP BY risk_level`)
	if err != nil {
		return nil, fmt.Errorf("failed to query risk distribution: %w", err)
	}
	defer rows.Close()

	dist := make(map[models.RiskLevel]int64, len(models.RiskLevels))
	for _, level := range models.RiskLevels {
		dist[level] = 0
	}
	for rows.Next() {
		var level string
		var count int64
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("failed to scan risk distribution: %w", err)
		}
		dist[models.RiskLevel(level)] = count
	}
	return dist, rows.Err()
}

// ClearOldRecords deletes verdicts older than days and returns the number
// of rows removed
func (r *AnalysisRepository) ClearOldRecords(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	var deleted int64

	err := database.WithTx(ctx, r.pool, r.logger, func(tx pgx.Tx) error {
		for _, table := range []string{"call_analysis", "sms_analysis"} {
			tag, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE created_at < $1", cutoff)
			if err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
			deleted += tag.RowsAffected()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Info().Int64("deleted", deleted).Int("days", days).Msg("cleared old analysis records")
	return deleted, nil
}

func tableFor(t models.AnalysisType) (table, subject string, err error) {
	switch t {
	case models.AnalysisTypeCall:
		return "call_analysis", "phone_number", nil
	case models.AnalysisTypeSMS:
		return "sms_analysis", "sender", nil
	default:
		return "", "", fmt.Errorf("%w: unknown analysis type %q", models.ErrInvalidInput, t)
	}
}

func scanRecords(rows pgx.Rows, t models.AnalysisType) ([]models.AnalysisRecord, error) {
	records := []models.AnalysisRecord{}
	for rows.Next() {
		rec := models.AnalysisRecord{Type: t}
		var level string
		if err := rows.Scan(&rec.ID, &rec.Subject, &rec.RiskScore, &level, &rec.IsScam, &rec.Details, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s analysis: %w", t, err)
		}
		rec.RiskLevel = models.RiskLevel(level)
		records = append(records, rec)
	}
	return records, rows.Err()
}
