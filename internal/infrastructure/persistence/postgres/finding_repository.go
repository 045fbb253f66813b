package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

type FindingRepository struct {
	pool *pgxpool.Pool
}

func NewFindingRepository(pool *pgxpool.Pool) *FindingRepository {
	return &FindingRepository{pool: pool}
}

func (r *FindingRepository) SaveVulnerability(ctx context.Context, v *finding.CodeVulnerability) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO code_vulnerabilities (website_id, vulnerability_type, location,
			severity, description, code_snippet, recommendation, fixed, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		v.WebsiteID, v.VulnerabilityType, v.Location, v.Severity, v.Description,
		v.CodeSnippet, v.Recommendation, v.Fixed, v.DetectedAt).Scan(&v.ID)
}

func (r *FindingRepository) FindVulnerabilities(ctx context.Context, websiteID int64, includeFixed bool) ([]*finding.CodeVulnerability, error) {
	sqlText := `SELECT id, website_id, vulnerability_type, location, severity, description,
		code_snippet, recommendation, fixed, detected_at, fixed_at
		FROM code_vulnerabilities WHERE website_id = $1`
	if !includeFixed {
		sqlText += ` AND NOT fixed`
	}
	sqlText += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, sqlText, websiteID)
	if err != nil {
		return nil, fmt.Errorf("query vulnerabilities: %w", err)
	}
	defer rows.Close()

	var out []*finding.CodeVulnerability
	for rows.Next() {
		v := &finding.CodeVulnerability{}
		var fixedAt sql.NullTime
		if err := rows.Scan(&v.ID, &v.WebsiteID, &v.VulnerabilityType, &v.Location,
			&v.Severity, &v.Description, &v.CodeSnippet, &v.Recommendation,
			&v.Fixed, &v.DetectedAt, &fixedAt); err != nil {
			return nil, err
		}
		v.FixedAt = fixedAt.Time
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *FindingRepository) MarkVulnerabilityFixed(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE code_vulnerabilities SET fixed = TRUE, fixed_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return sharederrors.ErrRepositoryOperation
	}
	return nil
}

func (r *FindingRepository) SaveMaliciousLink(ctx context.Context, l *finding.MaliciousLink) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO malicious_links (website_id, link_url, found_in, link_type,
			threat_type, active, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		l.WebsiteID, l.LinkURL, l.FoundIn, string(l.LinkType), string(l.ThreatType),
		l.Active, l.DetectedAt).Scan(&l.ID)
}

func (r *FindingRepository) FindMaliciousLinks(ctx context.Context, websiteID int64, activeOnly bool) ([]*finding.MaliciousLink, error) {
	sqlText := `SELECT id, website_id, link_url, found_in, link_type, threat_type,
		active, detected_at, verified_at
		FROM malicious_links WHERE website_id = $1`
	if activeOnly {
		sqlText += ` AND active`
	}
	sqlText += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, sqlText, websiteID)
	if err != nil {
		return nil, fmt.Errorf("query malicious links: %w", err)
	}
	defer rows.Close()

	var out []*finding.MaliciousLink
	for rows.Next() {
		l := &finding.MaliciousLink{}
		var linkType, threatType string
		var verifiedAt sql.NullTime
		if err := rows.Scan(&l.ID, &l.WebsiteID, &l.LinkURL, &l.FoundIn,
			&linkType, &threatType, &l.Active, &l.DetectedAt, &verifiedAt); err != nil {
			return nil, err
		}
		l.LinkType = finding.LinkType(linkType)
		l.ThreatType = finding.ThreatType(threatType)
		l.VerifiedAt = verifiedAt.Time
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *FindingRepository) SaveFingerprint(ctx context.Context, f *finding.BehaviorFingerprint) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO behavior_fingerprints (website_id, fingerprint_type, baseline,
			current_pattern, deviation_score, anomalous, last_updated, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (website_id, fingerprint_type) DO UPDATE SET
			baseline = EXCLUDED.baseline,
			current_pattern = EXCLUDED.current_pattern,
			deviation_score = EXCLUDED.deviation_score,
			anomalous = EXCLUDED.anomalous,
			last_updated = EXCLUDED.last_updated
		RETURNING id`,
		f.WebsiteID, string(f.FingerprintType), f.Baseline, f.CurrentPattern,
		f.DeviationScore, f.Anomalous, f.LastUpdated, f.CreatedAt).Scan(&f.ID)
}

func (r *FindingRepository) FindFingerprint(ctx context.Context, websiteID int64, fpType finding.FingerprintType) (*finding.BehaviorFingerprint, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, website_id, fingerprint_type, baseline, current_pattern,
			deviation_score, anomalous, last_updated, created_at
		FROM behavior_fingerprints WHERE website_id = $1 AND fingerprint_type = $2`,
		websiteID, string(fpType))
	f, err := scanFingerprint(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

func (r *FindingRepository) FindFingerprints(ctx context.Context, websiteID int64) ([]*finding.BehaviorFingerprint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, website_id, fingerprint_type, baseline, current_pattern,
			deviation_score, anomalous, last_updated, created_at
		FROM behavior_fingerprints WHERE website_id = $1 ORDER BY id`, websiteID)
	if err != nil {
		return nil, fmt.Errorf("query fingerprints: %w", err)
	}
	defer rows.Close()

	var out []*finding.BehaviorFingerprint
	for rows.Next() {
		f, err := scanFingerprint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanFingerprint(row pgx.Row) (*finding.BehaviorFingerprint, error) {
	f := &finding.BehaviorFingerprint{}
	var fpType string
	if err := row.Scan(&f.ID, &f.WebsiteID, &fpType, &f.Baseline, &f.CurrentPattern,
		&f.DeviationScore, &f.Anomalous, &f.LastUpdated, &f.CreatedAt); err != nil {
		return nil, err
	}
	f.FingerprintType = finding.FingerprintType(fpType)
	return f, nil
}

func (r *FindingRepository) SavePrediction(ctx context.Context, p *finding.AttackPrediction) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO attack_predictions (website_id, prediction_type, threat_level,
			predicted_attack_type, probability, timeframe, reasoning,
			preventive_measures, active, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		p.WebsiteID, string(p.PredictionType), p.ThreatLevel, p.PredictedAttackType,
		p.Probability, p.Timeframe, p.Reasoning, p.PreventiveMeasures,
		p.Active, p.CreatedAt, p.ExpiresAt).Scan(&p.ID)
}

func (r *FindingRepository) FindActivePredictions(ctx context.Context, websiteID int64, now time.Time) ([]*finding.AttackPrediction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, website_id, prediction_type, threat_level, predicted_attack_type,
			probability, timeframe, reasoning, preventive_measures, active,
			created_at, expires_at
		FROM attack_predictions
		WHERE website_id = $1 AND active AND expires_at >= $2
		ORDER BY id`, websiteID, now)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var out []*finding.AttackPrediction
	for rows.Next() {
		p := &finding.AttackPrediction{}
		var predType string
		if err := rows.Scan(&p.ID, &p.WebsiteID, &predType, &p.ThreatLevel,
			&p.PredictedAttackType, &p.Probability, &p.Timeframe, &p.Reasoning,
			&p.PreventiveMeasures, &p.Active, &p.CreatedAt, &p.ExpiresAt); err != nil {
			return nil, err
		}
		p.PredictionType = finding.PredictionType(predType)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *FindingRepository) UpsertAttackerPattern(ctx context.Context, p *finding.AttackerPattern) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO attacker_patterns (website_id, pattern_hash, profile, techniques,
			targeted_areas, first_seen, last_seen, attack_count, threat_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (website_id, pattern_hash) DO UPDATE SET
			attack_count = attacker_patterns.attack_count + 1,
			last_seen = EXCLUDED.last_seen,
			threat_level = EXCLUDED.threat_level
		RETURNING id, attack_count, first_seen`,
		p.WebsiteID, p.PatternHash, p.Profile, p.Techniques, p.TargetedAreas,
		p.FirstSeen, p.LastSeen, p.AttackCount, p.ThreatLevel,
	).Scan(&p.ID, &p.AttackCount, &p.FirstSeen)
}

func (r *FindingRepository) FindAttackerPatterns(ctx context.Context, websiteID int64) ([]*finding.AttackerPattern, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, website_id, pattern_hash, profile, techniques, targeted_areas,
			first_seen, last_seen, attack_count, threat_level
		FROM attacker_patterns WHERE website_id = $1 ORDER BY id`, websiteID)
	if err != nil {
		return nil, fmt.Errorf("query attacker patterns: %w", err)
	}
	defer rows.Close()

	var out []*finding.AttackerPattern
	for rows.Next() {
		p := &finding.AttackerPattern{}
		if err := rows.Scan(&p.ID, &p.WebsiteID, &p.PatternHash, &p.Profile,
			&p.Techniques, &p.TargetedAreas, &p.FirstSeen, &p.LastSeen,
			&p.AttackCount, &p.ThreatLevel); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *FindingRepository) SaveFileChange(ctx context.Context, fc *finding.FileChange) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO file_changes (website_id, file_path, change_type, previous_hash,
			current_hash, size_difference, suspicious, suspicion_reason, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		fc.WebsiteID, fc.FilePath, string(fc.ChangeType), fc.PreviousHash,
		fc.CurrentHash, fc.SizeDifference, fc.Suspicious, fc.SuspicionReason,
		fc.DetectedAt).Scan(&fc.ID)
}

func (r *FindingRepository) FindFileChanges(ctx context.Context, websiteID int64, limit int) ([]*finding.FileChange, error) {
	sqlText := `SELECT id, website_id, file_path, change_type, previous_hash,
		current_hash, size_difference, suspicious, suspicion_reason, detected_at
		FROM file_changes WHERE website_id = $1 ORDER BY detected_at DESC, id DESC`
	args := []any{websiteID}
	if limit > 0 {
		sqlText += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query file changes: %w", err)
	}
	defer rows.Close()

	var out []*finding.FileChange
	for rows.Next() {
		fc := &finding.FileChange{}
		var changeType string
		if err := rows.Scan(&fc.ID, &fc.WebsiteID, &fc.FilePath, &changeType,
			&fc.PreviousHash, &fc.CurrentHash, &fc.SizeDifference, &fc.Suspicious,
			&fc.SuspicionReason, &fc.DetectedAt); err != nil {
			return nil, err
		}
		fc.ChangeType = finding.ChangeType(changeType)
		out = append(out, fc)
	}
	return out, rows.Err()
}

func (r *FindingRepository) SavePhishingClone(ctx context.Context, pc *finding.PhishingClone) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO phishing_clones (website_id, clone_url, similarity_score,
			clone_type, status, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		pc.WebsiteID, pc.CloneURL, pc.SimilarityScore, string(pc.CloneType),
		pc.Status, pc.DetectedAt).Scan(&pc.ID)
}

func (r *FindingRepository) FindPhishingClones(ctx context.Context, websiteID int64) ([]*finding.PhishingClone, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, website_id, clone_url, similarity_score, clone_type, status,
			detected_at, reported_at
		FROM phishing_clones WHERE website_id = $1 ORDER BY id`, websiteID)
	if err != nil {
		return nil, fmt.Errorf("query phishing clones: %w", err)
	}
	defer rows.Close()

	var out []*finding.PhishingClone
	for rows.Next() {
		pc := &finding.PhishingClone{}
		var cloneType string
		var reportedAt sql.NullTime
		if err := rows.Scan(&pc.ID, &pc.WebsiteID, &pc.CloneURL, &pc.SimilarityScore,
			&cloneType, &pc.Status, &pc.DetectedAt, &reportedAt); err != nil {
			return nil, err
		}
		pc.CloneType = finding.CloneType(cloneType)
		pc.ReportedAt = reportedAt.Time
		out = append(out, pc)
	}
	return out, rows.Err()
}

func (r *FindingRepository) SaveVisitorAnalysis(ctx context.Context, va *finding.VisitorAnalysis) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO visitor_analyses (website_id, session_id, visitor_type, intent,
			behavior_score, source_ip, user_agent, request_count,
			suspicious_actions, first_seen, last_seen)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		va.WebsiteID, va.SessionID, string(va.VisitorType), va.Intent,
		va.BehaviorScore, va.SourceIP, va.UserAgent, va.RequestCount,
		va.SuspiciousActions, va.FirstSeen, va.LastSeen).Scan(&va.ID)
}

func (r *FindingRepository) FindVisitorAnalyses(ctx context.Context, websiteID int64, limit int) ([]*finding.VisitorAnalysis, error) {
	sqlText := `SELECT id, website_id, session_id, visitor_type, intent, behavior_score,
		source_ip, user_agent, request_count, suspicious_actions, first_seen, last_seen
		FROM visitor_analyses WHERE website_id = $1 ORDER BY last_seen DESC, id DESC`
	args := []any{websiteID}
	if limit > 0 {
		sqlText += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query visitor analyses: %w", err)
	}
	defer rows.Close()

	var out []*finding.VisitorAnalysis
	for rows.Next() {
		va := &finding.VisitorAnalysis{}
		var visitorType string
		if err := rows.Scan(&va.ID, &va.WebsiteID, &va.SessionID, &visitorType,
			&va.Intent, &va.BehaviorScore, &va.SourceIP, &va.UserAgent,
			&va.RequestCount, &va.SuspiciousActions, &va.FirstSeen, &va.LastSeen); err != nil {
			return nil, err
		}
		va.VisitorType = finding.VisitorType(visitorType)
		out = append(out, va)
	}
	return out, rows.Err()
}

func (r *FindingRepository) SaveExternalService(ctx context.Context, es *finding.ExternalService) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO external_services (website_id, service_url, service_type, status,
			last_check_at, response_time, security_issues, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		es.WebsiteID, es.ServiceURL, string(es.ServiceType), es.Status,
		nullTime(es.LastCheckAt), es.ResponseTime, es.SecurityIssues,
		es.CreatedAt).Scan(&es.ID)
}

func (r *FindingRepository) FindExternalServices(ctx context.Context, websiteID int64) ([]*finding.ExternalService, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, website_id, service_url, service_type, status, last_check_at,
			response_time, security_issues, created_at
		FROM external_services WHERE website_id = $1 ORDER BY id`, websiteID)
	if err != nil {
		return nil, fmt.Errorf("query external services: %w", err)
	}
	defer rows.Close()

	var out []*finding.ExternalService
	for rows.Next() {
		es := &finding.ExternalService{}
		var serviceType string
		var lastCheck sql.NullTime
		if err := rows.Scan(&es.ID, &es.WebsiteID, &es.ServiceURL, &serviceType,
			&es.Status, &lastCheck, &es.ResponseTime, &es.SecurityIssues,
			&es.CreatedAt); err != nil {
			return nil, err
		}
		es.ServiceType = finding.ServiceType(serviceType)
		es.LastCheckAt = lastCheck.Time
		out = append(out, es)
	}
	return out, rows.Err()
}

func (r *FindingRepository) SaveBenchmark(ctx context.Context, b *finding.SecurityBenchmark) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO security_benchmarks (website_id, overall_score, industry_average,
			percentile_rank, strengths, weaknesses, recommendations, compared_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		b.WebsiteID, b.OverallScore, b.IndustryAverage, b.PercentileRank,
		b.Strengths, b.Weaknesses, b.Recommendations, b.ComparedAt).Scan(&b.ID)
}

func (r *FindingRepository) LatestBenchmark(ctx context.Context, websiteID int64) (*finding.SecurityBenchmark, error) {
	b := &finding.SecurityBenchmark{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, website_id, overall_score, industry_average, percentile_rank,
			strengths, weaknesses, recommendations, compared_at
		FROM security_benchmarks WHERE website_id = $1
		ORDER BY compared_at DESC, id DESC LIMIT 1`, websiteID,
	).Scan(&b.ID, &b.WebsiteID, &b.OverallScore, &b.IndustryAverage, &b.PercentileRank,
		&b.Strengths, &b.Weaknesses, &b.Recommendations, &b.ComparedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}
