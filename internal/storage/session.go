package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobpulse/internal/enrich"
)

// Session is one worker task's private storage connection. It must be
// released when the task finishes.
type Session struct {
	conn *pgxpool.Conn
}

// Claim atomically transitions a pending or failed analysis to processing
// and returns its id. A concurrent scheduler racing on the same job loses
// with ErrNotClaimed because the status guard matches no row.
func (s *Session) Claim(ctx context.Context, jobID string) (string, error) {
	var analysisID string
	err := s.conn.QueryRow(ctx,
		`UPDATE job_analyses SET status = 'processing', updated_at = now()
		 WHERE job_id = $1 AND status IN ('pending', 'failed')
		 RETURNING id`, jobID).Scan(&analysisID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotClaimed
	}
	if err != nil {
		return "", fmt.Errorf("claim analysis for job %s: %w", jobID, err)
	}
	return analysisID, nil
}

// Complete writes the enrichment result and transitions processing to
// completed. The status guard keeps a cleaned-up (failed) analysis from
// being resurrected by a slow worker.
func (s *Session) Complete(ctx context.Context, analysisID string, result *enrich.Result) error {
	analysis := result.ToAnalysis("")

	locations, err := json.Marshal(analysis.Locations)
	if err != nil {
		return fmt.Errorf("encode locations: %w", err)
	}
	if analysis.Locations == nil {
		locations = nil
	}

	tag, err := s.conn.Exec(ctx,
		`UPDATE job_analyses SET
			status = 'completed',
			salary_min = $2, salary_max = $3, salary_fixed = $4,
			salary_currency = $5, salary_period = $6, is_salary_estimated = $7,
			skill_tags = $8, experience_level = $9, summary = $10,
			locations = $11, updated_at = now()
		 WHERE id = $1 AND status = 'processing'`,
		analysisID,
		analysis.SalaryMin, analysis.SalaryMax, analysis.SalaryFixed,
		analysis.SalaryCurrency, analysis.SalaryPeriod, analysis.IsSalaryEstimated,
		analysis.SkillTags, analysis.ExperienceLevel, analysis.Summary,
		locations)
	if err != nil {
		return fmt.Errorf("complete analysis %s: %w", analysisID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotClaimed
	}
	return nil
}

// Fail transitions processing to failed, returning the job to the eligible
// pool for a later attempt.
func (s *Session) Fail(ctx context.Context, analysisID string) error {
	_, err := s.conn.Exec(ctx,
		`UPDATE job_analyses SET status = 'failed', updated_at = now()
		 WHERE id = $1 AND status = 'processing'`, analysisID)
	if err != nil {
		return fmt.Errorf("fail analysis %s: %w", analysisID, err)
	}
	return nil
}

// Release returns the connection to the pool.
func (s *Session) Release() {
	s.conn.Release()
}
