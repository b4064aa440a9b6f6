// Package storage provides the Postgres store behind the enrichment
// pipeline. The analysis status column doubles as the work-distribution
// token: claiming is always a conditional update, never read-then-write.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobpulse/pkg/models"
)

var (
	// ErrNotClaimed means the conditional claim matched no row: either the
	// job has no analysis or another worker holds it.
	ErrNotClaimed = errors.New("analysis not claimed")

	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("not found")
)

// NewPool creates and verifies a pgxpool connection pool.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}

// Store wraps the connection pool with the queries the pipeline needs.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store over an existing pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

const eligibleQuery = `
SELECT j.id, j.title, j.url, j.full_description, COALESCE(j.posted_date, ''),
       COALESCE(j.employment_type, ''), COALESCE(j.location, ''), j.is_remote,
       j.expired, j.company_id, j.created_at,
       c.id, c.code, c.name, c.icon_url
FROM jobs j
JOIN companies c ON c.id = j.company_id
JOIN job_analyses ja ON ja.job_id = j.id
WHERE ja.status IN ('pending', 'failed')
ORDER BY ja.created_at ASC
LIMIT $1`

// FetchEligible returns up to limit jobs whose analysis is pending or
// failed, oldest first.
func (s *Store) FetchEligible(ctx context.Context, limit int) ([]models.Job, error) {
	rows, err := s.pool.Query(ctx, eligibleQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch eligible jobs: %w", err)
	}
	defer rows.Close()

	return scanJobs(rows)
}

func scanJobs(rows pgx.Rows) ([]models.Job, error) {
	var jobs []models.Job
	for rows.Next() {
		var job models.Job
		var company models.Company
		if err := rows.Scan(
			&job.ID, &job.Title, &job.URL, &job.FullDescription, &job.PostedDate,
			&job.EmploymentType, &job.Location, &job.IsRemote,
			&job.Expired, &job.CompanyID, &job.CreatedAt,
			&company.ID, &company.Code, &company.Name, &company.IconURL,
		); err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		job.Company = &company
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Acquire checks a dedicated connection out of the pool for one worker task.
// Connections are never shared across concurrent tasks.
func (s *Store) Acquire(ctx context.Context) (*Session, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Session{conn: conn}, nil
}

// FailProcessing forces the given analyses back to failed if they are still
// processing. Used for crash/shutdown cleanup so no job is left invisibly
// stuck.
func (s *Store) FailProcessing(ctx context.Context, analysisIDs []string) error {
	if len(analysisIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE job_analyses SET status = 'failed', updated_at = now()
		 WHERE id = ANY($1) AND status = 'processing'`, analysisIDs)
	if err != nil {
		return fmt.Errorf("fail processing analyses: %w", err)
	}
	return nil
}

// GetAnalysis loads the analysis attached to a job.
func (s *Store) GetAnalysis(ctx context.Context, jobID string) (*models.Analysis, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, job_id, status, salary_min, salary_max, salary_fixed,
		       salary_currency, salary_period, is_salary_estimated,
		       COALESCE(skill_tags, ''), experience_level, COALESCE(summary, ''),
		       locations, created_at, updated_at
		FROM job_analyses WHERE job_id = $1`, jobID)

	analysis, err := scanAnalysis(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return analysis, err
}

func scanAnalysis(row pgx.Row) (*models.Analysis, error) {
	var a models.Analysis
	var period, level *string
	var locations []byte

	if err := row.Scan(
		&a.ID, &a.JobID, &a.Status, &a.SalaryMin, &a.SalaryMax, &a.SalaryFixed,
		&a.SalaryCurrency, &period, &a.IsSalaryEstimated,
		&a.SkillTags, &level, &a.Summary,
		&locations, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if period != nil {
		p := models.SalaryPeriod(*period)
		a.SalaryPeriod = &p
	}
	if level != nil {
		l := models.ExperienceLevel(*level)
		a.ExperienceLevel = &l
	}
	if len(locations) > 0 {
		if err := json.Unmarshal(locations, &a.Locations); err != nil {
			return nil, fmt.Errorf("decode locations: %w", err)
		}
	}
	return &a, nil
}

const pageQuery = `
SELECT j.id, j.title, j.url, j.full_description, COALESCE(j.posted_date, ''),
       COALESCE(j.employment_type, ''), COALESCE(j.location, ''), j.is_remote,
       j.expired, j.company_id, j.created_at,
       c.id, c.code, c.name, c.icon_url,
       ja.id, ja.status, ja.salary_min, ja.salary_max, ja.salary_fixed,
       ja.salary_currency, ja.salary_period, ja.is_salary_estimated,
       COALESCE(ja.skill_tags, ''), ja.experience_level, COALESCE(ja.summary, ''),
       ja.locations, ja.created_at, ja.updated_at
FROM jobs j
JOIN companies c ON c.id = j.company_id
JOIN job_analyses ja ON ja.job_id = j.id
WHERE ja.status = 'completed'
ORDER BY j.id
OFFSET $1 LIMIT $2`

// FetchPage returns one page of jobs with completed analyses, ordered by id,
// for bulk index rebuilds. Memory stays bounded regardless of corpus size.
func (s *Store) FetchPage(ctx context.Context, offset, limit int) ([]models.JobWithAnalysis, error) {
	rows, err := s.pool.Query(ctx, pageQuery, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch job page: %w", err)
	}
	defer rows.Close()

	var out []models.JobWithAnalysis
	for rows.Next() {
		var job models.Job
		var company models.Company
		var a models.Analysis
		var period, level *string
		var locations []byte

		if err := rows.Scan(
			&job.ID, &job.Title, &job.URL, &job.FullDescription, &job.PostedDate,
			&job.EmploymentType, &job.Location, &job.IsRemote,
			&job.Expired, &job.CompanyID, &job.CreatedAt,
			&company.ID, &company.Code, &company.Name, &company.IconURL,
			&a.ID, &a.Status, &a.SalaryMin, &a.SalaryMax, &a.SalaryFixed,
			&a.SalaryCurrency, &period, &a.IsSalaryEstimated,
			&a.SkillTags, &level, &a.Summary,
			&locations, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan job page row: %w", err)
		}

		job.Company = &company
		a.JobID = job.ID
		if period != nil {
			p := models.SalaryPeriod(*period)
			a.SalaryPeriod = &p
		}
		if level != nil {
			l := models.ExperienceLevel(*level)
			a.ExperienceLevel = &l
		}
		if len(locations) > 0 {
			if err := json.Unmarshal(locations, &a.Locations); err != nil {
				return nil, fmt.Errorf("decode locations: %w", err)
			}
		}

		out = append(out, models.JobWithAnalysis{Job: job, Analysis: &a})
	}
	return out, rows.Err()
}

// ResetAnalysis explicitly re-queues a completed analysis for enrichment.
// This is the only path back from completed; the worker loop never touches
// completed rows on its own.
func (s *Store) ResetAnalysis(ctx context.Context, jobID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE job_analyses SET status = 'pending', updated_at = now()
		 WHERE job_id = $1 AND status = 'completed'`, jobID)
	if err != nil {
		return fmt.Errorf("reset analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
